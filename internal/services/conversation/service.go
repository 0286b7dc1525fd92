// File: internal/services/conversation/service.go
package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
	repo "github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/repository/conversation"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/repository/message"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/services"
)

const insertBatchSize = 100

type Service struct {
	conversations repo.ConversationRepository
	messages      message.MessageRepository
	logger        services.Logger
	now           func() time.Time
}

func NewService(conversations repo.ConversationRepository, messages message.MessageRepository, logger services.Logger) *Service {
	if logger == nil {
		logger = &services.NoOpLogger{}
	}
	return &Service{
		conversations: conversations,
		messages:      messages,
		logger:        logger,
		now:           time.Now,
	}
}

// Save creates or updates the conversation, then stores any messages the
// store has not seen yet. It returns the conversation id.
func (s *Service) Save(ctx context.Context, user *domain.User, req SaveRequest) (string, error) {
	const op = "Save"
	if user == nil || user.ID == "" {
		return "", NewValidationError(op, "user is required")
	}

	now := s.now()
	conversationID := strings.TrimSpace(req.Conversation.ID)
	title := strings.TrimSpace(req.Conversation.Title)

	if conversationID == "" {
		if title == "" {
			title = domain.DefaultConversationTitle
		}
		created, err := s.conversations.Create(ctx, &domain.Conversation{
			UserID:        user.ID,
			Title:         title,
			LastMessageAt: now,
		})
		if err != nil {
			s.logger.Error("failed to create conversation", "user_id", user.ID, "error", err)
			return "", NewStorageError(op, "failed to create conversation", err)
		}
		conversationID = created.ID
		s.logger.Info("conversation created", "conversation_id", conversationID, "user_id", user.ID)
	} else {
		if title == "" {
			title = domain.UntitledConversationTitle
		}
		err := s.conversations.UpdateOwned(ctx, conversationID, user.ID, title, now)
		if errors.Is(err, repo.ErrConversationNotFound) {
			s.logger.Warn("save rejected for foreign or missing conversation", "conversation_id", conversationID, "user_id", user.ID)
			return "", NewNotFoundError(op)
		}
		if err != nil {
			s.logger.Error("failed to update conversation", "conversation_id", conversationID, "error", err)
			return "", NewStorageError(op, "failed to update conversation", err)
		}
	}

	if len(req.Messages) == 0 {
		return conversationID, nil
	}

	batch := make([]*domain.Message, 0, len(req.Messages))
	for i := range req.Messages {
		m := req.Messages[i]
		if !m.Role.Valid() {
			return "", NewValidationError(op, "invalid message role: "+string(m.Role))
		}
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if m.Timestamp.IsZero() {
			m.Timestamp = now
		}
		m.ConversationID = conversationID
		m.UserID = user.ID
		m.Position = i
		if err := m.Validate(); err != nil {
			return "", NewValidationError(op, err.Error())
		}
		batch = append(batch, &m)
	}

	if err := s.messages.InsertIgnoringDuplicates(ctx, batch, insertBatchSize); err != nil {
		s.logger.Error("failed to insert messages", "conversation_id", conversationID, "count", len(batch), "error", err)
		return "", NewStorageError(op, "failed to insert messages", err)
	}

	s.logger.Debug("conversation saved", "conversation_id", conversationID, "messages", len(batch))
	return conversationID, nil
}

// GetMessages returns the conversation and its transcript in chronological order.
func (s *Service) GetMessages(ctx context.Context, user *domain.User, conversationID string) (*domain.Conversation, []domain.Message, error) {
	const op = "GetMessages"
	if user == nil || user.ID == "" {
		return nil, nil, NewValidationError(op, "user is required")
	}
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return nil, nil, NewValidationError(op, "conversation_id is required")
	}

	conv, err := s.conversations.FindOwned(ctx, conversationID, user.ID)
	if errors.Is(err, repo.ErrConversationNotFound) {
		return nil, nil, NewNotFoundError(op)
	}
	if err != nil {
		return nil, nil, NewStorageError(op, "failed to fetch conversation", err)
	}

	msgs, err := s.messages.FindByConversationID(ctx, conversationID)
	if err != nil {
		return nil, nil, NewStorageError(op, "failed to fetch messages", err)
	}
	return conv, msgs, nil
}

// List returns the caller's conversations, most recent first.
func (s *Service) List(ctx context.Context, user *domain.User) ([]domain.Conversation, error) {
	const op = "List"
	if user == nil || user.ID == "" {
		return nil, NewValidationError(op, "user is required")
	}
	list, err := s.conversations.ListByUser(ctx, user.ID, repo.MaxListLimit)
	if err != nil {
		return nil, NewStorageError(op, "failed to list conversations", err)
	}
	return list, nil
}

var _ ConversationService = (*Service)(nil)
