package authbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
)

// DemoGenerations is the image allowance a fresh demo profile starts with.
const DemoGenerations = 5

var ErrDemoOAuthUnavailable = errors.New("Login com Google indisponível no modo demonstração")

// DemoProfile is the locally persisted demo account.
type DemoProfile struct {
	ID                   string `json:"id,omitempty"`
	Email                string `json:"email,omitempty"`
	Name                 string `json:"name,omitempty"`
	IsLoggedIn           bool   `json:"isLoggedIn"`
	IsPro                bool   `json:"isPro"`
	ImageGenerationsLeft int    `json:"imageGenerationsLeft"`
}

// DemoSessionStore signs users in without any network access. Any
// credentials are accepted; the profile is written to a single JSON file.
type DemoSessionStore struct {
	path string
	now  func() time.Time

	mu        sync.Mutex
	profile   DemoProfile
	nextID    int
	listeners map[int]func(*domain.Session)
}

// NewDemoSessionStore loads the profile at path. A missing or unreadable
// file starts a logged-out profile.
func NewDemoSessionStore(path string) *DemoSessionStore {
	s := &DemoSessionStore{
		path:      path,
		now:       time.Now,
		profile:   DemoProfile{ImageGenerationsLeft: DemoGenerations},
		listeners: make(map[int]func(*domain.Session)),
	}
	if raw, err := os.ReadFile(path); err == nil {
		var p DemoProfile
		if err := json.Unmarshal(raw, &p); err == nil {
			s.profile = p
		}
	}
	return s
}

// Profile returns a copy of the current demo profile.
func (s *DemoSessionStore) Profile() DemoProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

func (s *DemoSessionStore) GetSession(ctx context.Context) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionLocked(), nil
}

func (s *DemoSessionStore) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	return s.login(email)
}

func (s *DemoSessionStore) SignUp(ctx context.Context, email, password string) (*domain.Session, error) {
	return s.login(email)
}

func (s *DemoSessionStore) SignOut(ctx context.Context) error {
	s.mu.Lock()
	s.profile = DemoProfile{ImageGenerationsLeft: DemoGenerations}
	err := s.saveLocked()
	s.mu.Unlock()

	s.notify(nil)
	return err
}

func (s *DemoSessionStore) OAuthURL(ctx context.Context, provider, redirectTo string) (string, error) {
	return "", ErrDemoOAuthUnavailable
}

func (s *DemoSessionStore) OnAuthStateChange(fn func(*domain.Session)) func() {
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

func (s *DemoSessionStore) login(email string) (*domain.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, errors.New("Email é obrigatório")
	}

	s.mu.Lock()
	s.profile = DemoProfile{
		ID:                   fmt.Sprintf("user-%d", s.now().UnixMilli()),
		Email:                email,
		IsLoggedIn:           true,
		IsPro:                s.profile.IsPro,
		ImageGenerationsLeft: DemoGenerations,
	}
	err := s.saveLocked()
	session := s.sessionLocked()
	s.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("failed to persist demo profile: %w", err)
	}
	s.notify(session)
	return session, nil
}

func (s *DemoSessionStore) sessionLocked() *domain.Session {
	if !s.profile.IsLoggedIn {
		return nil
	}
	user := domain.SessionUser{ID: s.profile.ID, Email: s.profile.Email}
	if s.profile.Name != "" {
		user.Metadata = map[string]any{"full_name": s.profile.Name}
	}
	return &domain.Session{
		AccessToken: "demo-" + s.profile.ID,
		TokenType:   "bearer",
		User:        user,
	}
}

func (s *DemoSessionStore) saveLocked() error {
	if s.path == "" {
		return nil
	}
	raw, err := json.Marshal(s.profile)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}

func (s *DemoSessionStore) notify(session *domain.Session) {
	s.mu.Lock()
	fns := make([]func(*domain.Session), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(session)
	}
}
