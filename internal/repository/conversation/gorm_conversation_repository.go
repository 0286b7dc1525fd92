// File: internal/repository/conversation/gorm_conversation_repository.go
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
	"gorm.io/gorm"
)

type gormConversationRepository struct {
	db *gorm.DB
}

func NewGormConversationRepository(db *gorm.DB) ConversationRepository {
	return &gormConversationRepository{db: db}
}

// Create inserts a conversation; the id is assigned by the BeforeCreate hook.
func (r *gormConversationRepository) Create(ctx context.Context, conversation *domain.Conversation) (*domain.Conversation, error) {
	if err := validateConversationInput(conversation); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(conversation).Error; err != nil {
		slog.Error("[ConversationRepository] database error creating conversation", "user_id", conversation.UserID, "error", err)
		return nil, fmt.Errorf("error creating conversation: %w", err)
	}

	slog.Debug("[ConversationRepository] conversation created", "conversation_id", conversation.ID, "user_id", conversation.UserID)
	return conversation, nil
}

// UpdateOwned refreshes title and timestamp of a row the user owns.
func (r *gormConversationRepository) UpdateOwned(ctx context.Context, conversationID, userID, title string, lastMessageAt time.Time) error {
	if conversationID == "" || userID == "" {
		return errors.New("invalid conversation ID or user ID")
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ? AND user_id = ?", conversationID, userID).
		Updates(map[string]interface{}{
			"title":           title,
			"last_message_at": lastMessageAt,
		})

	if result.Error != nil {
		slog.Error("[ConversationRepository] database error updating conversation", "conversation_id", conversationID, "error", result.Error)
		return fmt.Errorf("error updating conversation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrConversationNotFound
	}
	return nil
}

func (r *gormConversationRepository) FindOwned(ctx context.Context, conversationID, userID string) (*domain.Conversation, error) {
	if conversationID == "" || userID == "" {
		return nil, ErrConversationNotFound
	}

	var conversation domain.Conversation
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", conversationID, userID).
		First(&conversation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		slog.Error("[ConversationRepository] database error finding conversation", "conversation_id", conversationID, "error", err)
		return nil, fmt.Errorf("error fetching conversation: %w", err)
	}
	return &conversation, nil
}

// ListByUser returns the user's conversations, most recent activity first.
func (r *gormConversationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Conversation, error) {
	if userID == "" {
		return nil, errors.New("invalid user ID")
	}
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}

	conversations := []domain.Conversation{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_message_at DESC, id DESC").
		Limit(limit).
		Find(&conversations).Error
	if err != nil {
		slog.Error("[ConversationRepository] database error listing conversations", "user_id", userID, "error", err)
		return nil, fmt.Errorf("error fetching conversations: %w", err)
	}
	return conversations, nil
}

func validateConversationInput(conversation *domain.Conversation) error {
	if conversation == nil {
		return errors.New("conversation cannot be nil")
	}
	if strings.TrimSpace(conversation.UserID) == "" {
		return errors.New("user ID is required")
	}
	if len(conversation.Title) > 500 {
		return errors.New("title too long")
	}
	return nil
}

var _ ConversationRepository = (*gormConversationRepository)(nil)
