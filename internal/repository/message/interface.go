// File: internal/repository/message/interface.go
package message

import (
	"context"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
)

type MessageRepository interface {
	// InsertIgnoringDuplicates stores messages, silently skipping any whose
	// (conversation_id, id) pair is already present.
	InsertIgnoringDuplicates(ctx context.Context, messages []*domain.Message, batchSize int) error
	FindByConversationID(ctx context.Context, conversationID string) ([]domain.Message, error)
}
