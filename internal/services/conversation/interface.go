// File: internal/services/conversation/interface.go
package conversation

import (
	"context"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
)

// ConversationInput is the conversation part of a save request. An empty ID
// creates a new conversation.
type ConversationInput struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
}

type SaveRequest struct {
	Conversation ConversationInput `json:"conversation"`
	Messages     []domain.Message  `json:"messages"`
}

type ConversationService interface {
	Save(ctx context.Context, user *domain.User, req SaveRequest) (string, error)
	GetMessages(ctx context.Context, user *domain.User, conversationID string) (*domain.Conversation, []domain.Message, error)
	List(ctx context.Context, user *domain.User) ([]domain.Conversation, error)
}
