// File: internal/repository/supabase/store.go
package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/repository/conversation"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/repository/message"
)

const (
	conversationsTable = "conversations"
	messagesTable      = "messages"
	restPath           = "/rest/v1"
)

// Config holds Supabase connection configuration
type Config struct {
	URL    string
	APIKey string // service role key; row access is enforced by user_id filters
}

// Store keeps conversations and messages in Supabase tables through PostgREST.
type Store struct {
	client *supa.Client
	// inserts writes messages. Its upserts skip rows that already exist.
	inserts *postgrest.Client
}

// New creates a new Supabase-backed store
func New(cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("supabase URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("supabase API key is required")
	}

	client, err := supa.NewClient(cfg.URL, cfg.APIKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	inserts := postgrest.NewClient(cfg.URL+restPath, "public", map[string]string{
		"Authorization": "Bearer " + cfg.APIKey,
		"apikey":        cfg.APIKey,
	})
	if inserts.ClientError != nil {
		return nil, fmt.Errorf("failed to create postgrest client: %w", inserts.ClientError)
	}
	inserts.Transport.Parent = ignoreDuplicates{next: http.DefaultTransport}

	return &Store{client: client, inserts: inserts}, nil
}

// ignoreDuplicates rewrites PostgREST upserts into inserts that leave
// conflicting rows untouched, the same as ON CONFLICT DO NOTHING.
type ignoreDuplicates struct {
	next http.RoundTripper
}

func (t ignoreDuplicates) RoundTrip(req *http.Request) (*http.Response, error) {
	prefer := req.Header.Get("Prefer")
	if strings.Contains(prefer, "resolution=merge-duplicates") {
		req = req.Clone(req.Context())
		req.Header.Set("Prefer", strings.Replace(prefer, "resolution=merge-duplicates", "resolution=ignore-duplicates", 1))
	}
	return t.next.RoundTrip(req)
}

// Client exposes the underlying client for the auth driver.
func (s *Store) Client() *supa.Client {
	return s.client
}

type conversationRow struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Title         string    `json:"title"`
	LastMessageAt time.Time `json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

func (r conversationRow) toDomain() domain.Conversation {
	return domain.Conversation{
		ID:            r.ID,
		UserID:        r.UserID,
		Title:         r.Title,
		LastMessageAt: r.LastMessageAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

type messageRow struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	UserID         string    `json:"user_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	Images         []string  `json:"images"`
	ModelType      *string   `json:"model_type"`
	Position       int       `json:"position"`
	CreatedAt      time.Time `json:"created_at"`
}

func messageRowFrom(m *domain.Message) messageRow {
	row := messageRow{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		UserID:         m.UserID,
		Role:           string(m.Role),
		Content:        m.Content,
		Images:         m.Images,
		Position:       m.Position,
		CreatedAt:      m.Timestamp.UTC(),
	}
	if m.ModelType != "" {
		model := string(m.ModelType)
		row.ModelType = &model
	}
	return row
}

func (r messageRow) toDomain() domain.Message {
	m := domain.Message{
		ID:             r.ID,
		ConversationID: r.ConversationID,
		UserID:         r.UserID,
		Role:           domain.Role(r.Role),
		Content:        r.Content,
		Images:         r.Images,
		Position:       r.Position,
		Timestamp:      r.CreatedAt,
	}
	if r.ModelType != nil {
		m.ModelType = domain.ModelType(*r.ModelType)
	}
	return m
}

// --- conversation.ConversationRepository ---

func (s *Store) Create(ctx context.Context, c *domain.Conversation) (*domain.Conversation, error) {
	if c == nil || c.UserID == "" {
		return nil, errors.New("validation failed: user ID is required")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	row := conversationRow{
		ID:            c.ID,
		UserID:        c.UserID,
		Title:         c.Title,
		LastMessageAt: c.LastMessageAt.UTC(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var created []conversationRow
	_, err := s.client.From(conversationsTable).
		Insert(row, false, "", "representation", "").
		ExecuteTo(&created)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	if len(created) == 0 {
		return nil, errors.New("failed to create conversation: empty response")
	}
	out := created[0].toDomain()
	return &out, nil
}

func (s *Store) UpdateOwned(ctx context.Context, conversationID, userID, title string, lastMessageAt time.Time) error {
	patch := map[string]any{
		"title":           title,
		"last_message_at": lastMessageAt.UTC(),
		"updated_at":      time.Now().UTC(),
	}

	var updated []conversationRow
	_, err := s.client.From(conversationsTable).
		Update(patch, "representation", "").
		Eq("id", conversationID).
		Eq("user_id", userID).
		ExecuteTo(&updated)
	if err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}
	if len(updated) == 0 {
		return conversation.ErrConversationNotFound
	}
	return nil
}

func (s *Store) FindOwned(ctx context.Context, conversationID, userID string) (*domain.Conversation, error) {
	var rows []conversationRow
	_, err := s.client.From(conversationsTable).
		Select("*", "", false).
		Eq("id", conversationID).
		Eq("user_id", userID).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	if len(rows) == 0 {
		return nil, conversation.ErrConversationNotFound
	}
	out := rows[0].toDomain()
	return &out, nil
}

func (s *Store) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Conversation, error) {
	if limit <= 0 || limit > conversation.MaxListLimit {
		limit = conversation.MaxListLimit
	}

	var rows []conversationRow
	_, err := s.client.From(conversationsTable).
		Select("*", "", false).
		Eq("user_id", userID).
		Order("last_message_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(limit, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	out := make([]domain.Conversation, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// --- message.MessageRepository ---

func (s *Store) InsertIgnoringDuplicates(ctx context.Context, messages []*domain.Message, batchSize int) error {
	if len(messages) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	rows := make([]messageRow, 0, len(messages))
	for i, m := range messages {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("validation failed for message %d: %w", i, err)
		}
		rows = append(rows, messageRowFrom(m))
	}

	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		_, _, err := s.inserts.From(messagesTable).
			Upsert(rows[start:end], "conversation_id,id", "minimal", "").
			Execute()
		if err != nil {
			return fmt.Errorf("failed to insert messages: %w", err)
		}
	}
	return nil
}

func (s *Store) FindByConversationID(ctx context.Context, conversationID string) ([]domain.Message, error) {
	var rows []messageRow
	_, err := s.client.From(messagesTable).
		Select("*", "", false).
		Eq("conversation_id", conversationID).
		Order("created_at", &postgrest.OrderOpts{Ascending: true}).
		Order("position", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	out := make([]domain.Message, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

var (
	_ conversation.ConversationRepository = (*Store)(nil)
	_ message.MessageRepository           = (*Store)(nil)
)
