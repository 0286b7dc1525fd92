// File: internal/client/session_store.go
package client

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
)

// RemoteSessionStore keeps the current session for a Client and tells
// listeners when it changes. With a non-empty path the session survives
// restarts.
type RemoteSessionStore struct {
	api  *Client
	path string
	now  func() time.Time

	mu        sync.Mutex
	session   *domain.Session
	loaded    bool
	nextID    int
	listeners map[int]func(*domain.Session)
}

func NewRemoteSessionStore(api *Client, path string) *RemoteSessionStore {
	return &RemoteSessionStore{
		api:       api,
		path:      path,
		now:       time.Now,
		listeners: make(map[int]func(*domain.Session)),
	}
}

// GetSession returns the current session, or nil when logged out. A
// persisted session is checked against the server once before it is trusted.
func (s *RemoteSessionStore) GetSession(ctx context.Context) (*domain.Session, error) {
	s.mu.Lock()
	if s.loaded {
		session := s.validLocked()
		s.mu.Unlock()
		return session, nil
	}
	s.mu.Unlock()

	stored, err := s.readFile()
	if err != nil {
		s.api.logger.Warn("discarding unreadable session file", "path", s.path, "error", err)
	}
	if stored != nil && !stored.Expired(s.now()) {
		user, err := s.api.GetUser(ctx, stored.AccessToken)
		var apiErr *APIError
		switch {
		case err == nil:
			stored.User = *user
		case errors.As(err, &apiErr) && apiErr.Type == ErrTypeAuth:
			stored = nil
		default:
			return nil, err
		}
	} else {
		stored = nil
	}

	s.mu.Lock()
	if !s.loaded {
		s.session = stored
		s.loaded = true
	}
	session := s.validLocked()
	s.mu.Unlock()
	return session, nil
}

func (s *RemoteSessionStore) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	session, err := s.api.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.set(session)
	return session, nil
}

func (s *RemoteSessionStore) SignUp(ctx context.Context, email, password string) (*domain.Session, error) {
	session, err := s.api.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.set(session)
	return session, nil
}

// SignOut revokes the token and clears the local session. When the server
// call fails the session is kept, unless the server rejected the token
// itself, in which case there is nothing left to revoke.
func (s *RemoteSessionStore) SignOut(ctx context.Context) error {
	s.mu.Lock()
	var token string
	if s.session != nil {
		token = s.session.AccessToken
	}
	s.mu.Unlock()

	if token != "" {
		if err := s.api.SignOut(ctx, token); err != nil {
			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.Type != ErrTypeAuth {
				return err
			}
			s.set(nil)
			return err
		}
	}
	s.set(nil)
	return nil
}

func (s *RemoteSessionStore) OAuthURL(ctx context.Context, provider, redirectTo string) (string, error) {
	return s.api.AuthorizeURL(ctx, provider, redirectTo)
}

// OnAuthStateChange registers fn for every session change and returns a
// function that removes it.
func (s *RemoteSessionStore) OnAuthStateChange(fn func(*domain.Session)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *RemoteSessionStore) set(session *domain.Session) {
	s.mu.Lock()
	s.session = session
	s.loaded = true
	fns := make([]func(*domain.Session), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	if err := s.writeFile(session); err != nil {
		s.api.logger.Warn("could not persist session", "path", s.path, "error", err)
	}
	for _, fn := range fns {
		fn(session)
	}
}

func (s *RemoteSessionStore) validLocked() *domain.Session {
	if s.session == nil || s.session.Expired(s.now()) {
		return nil
	}
	return s.session
}

func (s *RemoteSessionStore) readFile() (*domain.Session, error) {
	if s.path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, err
	}
	if session.AccessToken == "" {
		return nil, nil
	}
	return &session, nil
}

func (s *RemoteSessionStore) writeFile(session *domain.Session) error {
	if s.path == "" {
		return nil
	}
	if session == nil {
		err := os.Remove(s.path)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}
