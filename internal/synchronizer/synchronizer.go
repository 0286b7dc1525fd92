// Package synchronizer mirrors the chat transcript into the remote
// conversation store and keeps the caller's conversation list current.
package synchronizer

import (
	"context"
	"sync"
	"time"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/client"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/clock"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/events"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/services"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/ui"
)

// DefaultAutosaveWait is the quiet period before a changed transcript is saved.
const DefaultAutosaveWait = time.Second

// ConversationAPI is the remote conversation store.
type ConversationAPI interface {
	ListConversations(ctx context.Context, token string) ([]domain.Conversation, error)
	SaveConversation(ctx context.Context, token string, req client.SaveConversationRequest) (string, error)
	GetConversationMessages(ctx context.Context, token, conversationID string) (*client.ConversationMessages, error)
}

// SessionSource provides the token calls are made with.
type SessionSource interface {
	CurrentSession() *domain.Session
}

type Config struct {
	AutosaveWait time.Duration
	Clock        clock.Clock
	Logger       services.Logger
}

type Synchronizer struct {
	api      ConversationAPI
	sessions SessionSource
	notifier ui.Notifier
	logger   services.Logger
	autosave *Debouncer

	// base is used for calls the synchronizer starts itself.
	base   context.Context
	cancel context.CancelFunc

	// saveMu serializes saves so a slow create cannot race the next save
	// into a second conversation.
	saveMu sync.Mutex

	mu            sync.Mutex
	conversations []domain.Conversation
	activeID      string
	loading       bool
	pending       []domain.Message
	// epoch changes on logout; results of calls started before it are dropped.
	epoch uint64
	// switches changes whenever the active conversation is replaced. A save
	// started before a switch must not adopt its id.
	switches uint64
}

func New(api ConversationAPI, sessions SessionSource, notifier ui.Notifier, cfg Config) *Synchronizer {
	if cfg.AutosaveWait <= 0 {
		cfg.AutosaveWait = DefaultAutosaveWait
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if cfg.Logger == nil {
		cfg.Logger = &services.NoOpLogger{}
	}
	base, cancel := context.WithCancel(context.Background())
	s := &Synchronizer{
		api:      api,
		sessions: sessions,
		notifier: notifier,
		logger:   cfg.Logger,
		base:     base,
		cancel:   cancel,
	}
	s.autosave = NewDebouncer(cfg.Clock, cfg.AutosaveWait, s.flush)
	return s
}

func (s *Synchronizer) token() string {
	session := s.sessions.CurrentSession()
	if session == nil || session.User.ID == "" {
		return ""
	}
	return session.AccessToken
}

// Conversations returns the last fetched list in store order.
func (s *Synchronizer) Conversations() []domain.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Conversation(nil), s.conversations...)
}

func (s *Synchronizer) ActiveConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

func (s *Synchronizer) SetActiveConversation(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = id
	s.switches++
}

// NewConversation makes the next save create a conversation. A save still in
// flight finishes under the previous conversation.
func (s *Synchronizer) NewConversation() {
	s.autosave.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = ""
	s.pending = nil
	s.switches++
}

// HasUnsavedChanges reports whether a transcript is waiting for its quiet period.
func (s *Synchronizer) HasUnsavedChanges() bool {
	return s.autosave.Pending()
}

func (s *Synchronizer) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Synchronizer) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Synchronizer) currentEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// FetchConversations replaces the local list with the store's. On failure
// the list is kept and the user is told.
func (s *Synchronizer) FetchConversations(ctx context.Context) error {
	token := s.token()
	if token == "" {
		return client.ErrNotAuthenticated
	}
	epoch := s.currentEpoch()

	s.setLoading(true)
	defer s.setLoading(false)

	list, err := s.api.ListConversations(ctx, token)
	if err != nil {
		s.logger.Error("failed to fetch conversations", "error", err)
		s.notifyError("Erro ao carregar conversas", "Não foi possível carregar suas conversas", err)
		return err
	}

	s.mu.Lock()
	if s.epoch == epoch {
		s.conversations = list
	}
	s.mu.Unlock()
	return nil
}

// SaveConversation sends the whole transcript under the active conversation,
// or a new one when none is active, and returns its id.
func (s *Synchronizer) SaveConversation(ctx context.Context, title string, messages []domain.Message) (string, error) {
	token := s.token()
	if token == "" {
		return "", client.ErrNotAuthenticated
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	activeID := s.activeID
	epoch := s.epoch
	switches := s.switches
	s.mu.Unlock()

	if title == "" {
		title = domain.TitleFromMessages(messages)
	}

	id, err := s.api.SaveConversation(ctx, token, client.SaveConversationRequest{
		Conversation: client.ConversationRef{ID: activeID, Title: title},
		Messages:     messages,
	})
	if err != nil {
		s.logger.Error("failed to save conversation", "conversation_id", activeID, "error", err)
		s.notifyError("Erro ao salvar conversa", "Não foi possível salvar sua conversa", err)
		return "", err
	}

	s.mu.Lock()
	if s.epoch == epoch && s.switches == switches && s.activeID == "" {
		s.activeID = id
	}
	s.mu.Unlock()
	s.logger.Debug("conversation saved", "conversation_id", id, "messages", len(messages))

	// The save itself succeeded; a failed refresh is reported on its own.
	_ = s.FetchConversations(ctx)
	return id, nil
}

// LoadMessages fetches a conversation's transcript in chronological order
// and makes it the active conversation.
func (s *Synchronizer) LoadMessages(ctx context.Context, id string) ([]domain.Message, error) {
	token := s.token()
	if token == "" {
		return nil, client.ErrNotAuthenticated
	}

	s.setLoading(true)
	defer s.setLoading(false)

	result, err := s.api.GetConversationMessages(ctx, token, id)
	if err != nil {
		s.logger.Error("failed to load messages", "conversation_id", id, "error", err)
		s.notifyError("Erro ao carregar mensagens", "Não foi possível carregar as mensagens desta conversa", err)
		return nil, err
	}

	s.autosave.Stop()
	s.mu.Lock()
	s.activeID = id
	s.pending = nil
	s.switches++
	s.mu.Unlock()

	if result.Messages == nil {
		return []domain.Message{}, nil
	}
	return result.Messages, nil
}

// TranscriptChanged is called after every transcript mutation. When logged
// in it snapshots the transcript and restarts the autosave quiet period.
func (s *Synchronizer) TranscriptChanged(messages []domain.Message) {
	if s.token() == "" || len(messages) == 0 {
		return
	}
	snapshot := make([]domain.Message, len(messages))
	copy(snapshot, messages)

	s.mu.Lock()
	s.pending = snapshot
	s.mu.Unlock()
	s.autosave.Trigger()
}

func (s *Synchronizer) flush() {
	s.mu.Lock()
	messages := s.pending
	s.pending = nil
	s.mu.Unlock()
	if len(messages) == 0 {
		return
	}
	if _, err := s.SaveConversation(s.base, "", messages); err != nil {
		s.logger.Warn("autosave failed", "error", err)
	}
}

// Flush saves a transcript still waiting for its quiet period right away.
func (s *Synchronizer) Flush(ctx context.Context) error {
	if !s.autosave.Stop() {
		return nil
	}
	s.mu.Lock()
	messages := s.pending
	s.pending = nil
	s.mu.Unlock()
	if len(messages) == 0 {
		return nil
	}
	_, err := s.SaveConversation(ctx, "", messages)
	return err
}

// HandleSessionChanged refreshes the list on login and forgets everything
// tied to the previous user on logout.
func (s *Synchronizer) HandleSessionChanged(evt events.SessionChanged) {
	if evt.IsLoggedIn {
		_ = s.FetchConversations(s.base)
		return
	}
	s.autosave.Stop()
	s.mu.Lock()
	s.epoch++
	s.switches++
	s.conversations = nil
	s.activeID = ""
	s.pending = nil
	s.mu.Unlock()
}

// Close cancels a pending autosave and calls still in flight.
func (s *Synchronizer) Close() {
	s.autosave.Stop()
	s.cancel()
}

func (s *Synchronizer) notifyError(title, fallback string, err error) {
	description := fallback
	if err != nil && err.Error() != "" {
		description = err.Error()
	}
	s.notifier.Notify(ui.Notification{Title: title, Description: description, Variant: ui.VariantDestructive})
}
