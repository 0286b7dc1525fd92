// File: internal/repository/conversation/interface.go
package conversation

import (
	"context"
	"errors"
	"time"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
)

// ErrConversationNotFound is returned for missing rows and for rows owned by
// someone else; callers cannot tell the two apart.
var ErrConversationNotFound = errors.New("conversation not found")

// MaxListLimit caps a single listing page.
const MaxListLimit = 1000

type ConversationRepository interface {
	Create(ctx context.Context, conversation *domain.Conversation) (*domain.Conversation, error)
	UpdateOwned(ctx context.Context, conversationID, userID, title string, lastMessageAt time.Time) error
	FindOwned(ctx context.Context, conversationID, userID string) (*domain.Conversation, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Conversation, error)
}
