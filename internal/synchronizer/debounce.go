package synchronizer

import (
	"sync"
	"time"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/clock"
)

// Debouncer runs fn once the quiet period has passed without another
// Trigger. At most one fire is scheduled at a time.
type Debouncer struct {
	clock clock.Clock
	wait  time.Duration
	fn    func()

	mu    sync.Mutex
	timer clock.Timer
	gen   uint64
}

func NewDebouncer(c clock.Clock, wait time.Duration, fn func()) *Debouncer {
	return &Debouncer{clock: c, wait: wait, fn: fn}
}

// Trigger (re)starts the quiet period.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.wait, func() {
		d.mu.Lock()
		// A Stop or Trigger that raced the timer wins.
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		d.fn()
	})
}

// Stop cancels a pending fire. It reports whether one was pending.
func (d *Debouncer) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	return true
}

// Pending reports whether a fire is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
