package synchronizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/clock"
)

func TestDebouncer(t *testing.T) {
	c := clock.NewFake(time.Now())
	fired := 0
	d := NewDebouncer(c, time.Second, func() { fired++ })

	d.Trigger()
	c.Advance(900 * time.Millisecond)
	d.Trigger()
	c.Advance(900 * time.Millisecond)
	assert.Equal(t, 0, fired)
	assert.True(t, d.Pending())
	assert.Equal(t, 1, c.Pending())

	c.Advance(100 * time.Millisecond)
	assert.Equal(t, 1, fired)
	assert.False(t, d.Pending())
}

func TestDebouncerStop(t *testing.T) {
	c := clock.NewFake(time.Now())
	fired := 0
	d := NewDebouncer(c, time.Second, func() { fired++ })

	assert.False(t, d.Stop())
	d.Trigger()
	assert.True(t, d.Stop())
	c.Advance(2 * time.Second)
	assert.Equal(t, 0, fired)
}
