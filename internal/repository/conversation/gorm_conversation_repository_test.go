package conversation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/repository/conversation"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/testutil"
)

func TestCreateAssignsID(t *testing.T) {
	repo := conversation.NewGormConversationRepository(testutil.NewDB(t))

	c, err := repo.Create(context.Background(), &domain.Conversation{UserID: "u1", Title: "Oi", LastMessageAt: time.Now()})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)

	_, err = repo.Create(context.Background(), &domain.Conversation{Title: "sem dono"})
	assert.Error(t, err)
}

func TestUpdateOwnedRejectsOtherUser(t *testing.T) {
	ctx := context.Background()
	repo := conversation.NewGormConversationRepository(testutil.NewDB(t))

	c, err := repo.Create(ctx, &domain.Conversation{UserID: "owner", Title: "Original", LastMessageAt: time.Now()})
	require.NoError(t, err)

	err = repo.UpdateOwned(ctx, c.ID, "intruder", "Hijacked", time.Now())
	assert.ErrorIs(t, err, conversation.ErrConversationNotFound)

	got, err := repo.FindOwned(ctx, c.ID, "owner")
	require.NoError(t, err)
	assert.Equal(t, "Original", got.Title)

	later := time.Now().Add(time.Minute)
	require.NoError(t, repo.UpdateOwned(ctx, c.ID, "owner", "Renamed", later))
	got, err = repo.FindOwned(ctx, c.ID, "owner")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.WithinDuration(t, later, got.LastMessageAt, time.Second)
}

func TestFindOwnedHidesForeignRows(t *testing.T) {
	ctx := context.Background()
	repo := conversation.NewGormConversationRepository(testutil.NewDB(t))

	c, err := repo.Create(ctx, &domain.Conversation{UserID: "owner", LastMessageAt: time.Now()})
	require.NoError(t, err)

	_, err = repo.FindOwned(ctx, c.ID, "someone-else")
	assert.ErrorIs(t, err, conversation.ErrConversationNotFound)

	_, err = repo.FindOwned(ctx, "missing", "owner")
	assert.ErrorIs(t, err, conversation.ErrConversationNotFound)

	owned, err := repo.FindOwned(ctx, c.ID, "owner")
	require.NoError(t, err)
	assert.Equal(t, c.ID, owned.ID)
}

func TestListByUserOrdersByRecentActivity(t *testing.T) {
	ctx := context.Background()
	repo := conversation.NewGormConversationRepository(testutil.NewDB(t))
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	seed := []struct {
		title  string
		offset time.Duration
	}{
		{"antiga", 0},
		{"recente", 2 * time.Hour},
		{"meio", time.Hour},
	}
	for _, s := range seed {
		_, err := repo.Create(ctx, &domain.Conversation{UserID: "u1", Title: s.title, LastMessageAt: base.Add(s.offset)})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, &domain.Conversation{UserID: "u2", Title: "outro", LastMessageAt: base.Add(3 * time.Hour)})
	require.NoError(t, err)

	list, err := repo.ListByUser(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "recente", list[0].Title)
	assert.Equal(t, "meio", list[1].Title)
	assert.Equal(t, "antiga", list[2].Title)

	limited, err := repo.ListByUser(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
