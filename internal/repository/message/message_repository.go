// File: internal/repository/message/message_repository.go
package message

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultBatchSize = 100

type gormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

// InsertIgnoringDuplicates validates every message first, then inserts in
// batches inside one transaction.
func (r *gormMessageRepository) InsertIgnoringDuplicates(ctx context.Context, messages []*domain.Message, batchSize int) error {
	if len(messages) == 0 {
		return nil
	}
	if batchSize <= 0 || batchSize > 1000 {
		batchSize = defaultBatchSize
	}

	for i, m := range messages {
		if err := validateMessageInput(m); err != nil {
			return fmt.Errorf("validation failed for message %d: %w", i, err)
		}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "conversation_id"}, {Name: "id"}},
			DoNothing: true,
		}).CreateInBatches(messages, batchSize).Error
	})
	if err != nil {
		slog.Error("[MessageRepository] database error inserting messages",
			"conversation_id", messages[0].ConversationID, "count", len(messages), "error", err)
		return fmt.Errorf("error inserting messages: %w", err)
	}
	return nil
}

// FindByConversationID returns the transcript in chronological order.
func (r *gormMessageRepository) FindByConversationID(ctx context.Context, conversationID string) ([]domain.Message, error) {
	if conversationID == "" {
		return nil, errors.New("invalid conversation ID")
	}

	messages := []domain.Message{}
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, position ASC").
		Find(&messages).Error
	if err != nil {
		slog.Error("[MessageRepository] database error fetching messages", "conversation_id", conversationID, "error", err)
		return nil, fmt.Errorf("error fetching messages: %w", err)
	}
	return messages, nil
}

func validateMessageInput(m *domain.Message) error {
	if m == nil {
		return errors.New("message cannot be nil")
	}
	if m.ID == "" {
		return errors.New("message ID is required")
	}
	if m.ConversationID == "" {
		return errors.New("conversation ID is required")
	}
	return m.Validate()
}

var _ MessageRepository = (*gormMessageRepository)(nil)
