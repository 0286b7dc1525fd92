package message_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/repository/message"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/testutil"
)

func transcript(conversationID string, at time.Time) []*domain.Message {
	user := domain.NewUserMessage("Crie um avatar", at)
	ai := domain.NewAIMessage(`Aqui está o resultado para "Crie um avatar"`, domain.ModelGemini,
		[]string{"https://example.com/a.png"}, at)
	out := []*domain.Message{&user, &ai}
	for i, m := range out {
		m.ConversationID = conversationID
		m.UserID = "u1"
		m.Position = i
	}
	return out
}

func TestInsertIgnoresDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := message.NewMessageRepository(testutil.NewDB(t))
	msgs := transcript("c1", time.Now())

	require.NoError(t, repo.InsertIgnoringDuplicates(ctx, msgs, 0))
	require.NoError(t, repo.InsertIgnoringDuplicates(ctx, msgs, 0))

	got, err := repo.FindByConversationID(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSameIDInDifferentConversations(t *testing.T) {
	ctx := context.Background()
	repo := message.NewMessageRepository(testutil.NewDB(t))
	at := time.Now()

	a := transcript("c1", at)
	b := transcript("c2", at)
	b[0].ID, b[1].ID = a[0].ID, a[1].ID

	require.NoError(t, repo.InsertIgnoringDuplicates(ctx, a, 10))
	require.NoError(t, repo.InsertIgnoringDuplicates(ctx, b, 10))

	got, err := repo.FindByConversationID(ctx, "c2")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestFindKeepsTranscriptOrder(t *testing.T) {
	ctx := context.Background()
	repo := message.NewMessageRepository(testutil.NewDB(t))
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	// Equal timestamps: position decides.
	require.NoError(t, repo.InsertIgnoringDuplicates(ctx, transcript("c1", at), 1))

	got, err := repo.FindByConversationID(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.RoleUser, got[0].Role)
	assert.Equal(t, domain.RoleAI, got[1].Role)
	assert.Equal(t, []string{"https://example.com/a.png"}, got[1].Images)
	assert.Equal(t, domain.ModelGemini, got[1].ModelType)
}

func TestInsertRejectsInvalidMessages(t *testing.T) {
	ctx := context.Background()
	repo := message.NewMessageRepository(testutil.NewDB(t))

	bad := domain.NewUserMessage("com imagem", time.Now())
	bad.ConversationID = "c1"
	bad.Images = []string{"x"}
	assert.Error(t, repo.InsertIgnoringDuplicates(ctx, []*domain.Message{&bad}, 0))

	missing := domain.NewUserMessage("sem conversa", time.Now())
	assert.Error(t, repo.InsertIgnoringDuplicates(ctx, []*domain.Message{&missing}, 0))

	got, err := repo.FindByConversationID(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, got)
}
