// Package chat drives a conversation with the simulated image assistant.
package chat

import (
	"fmt"
	"strings"
	"sync"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/clock"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/services"
)

type Config struct {
	Clock    clock.Clock
	Auth     AuthState
	Observer TranscriptObserver
	// OnPrompt is called when the user has to log in or upgrade.
	OnPrompt func(Prompt)
	// OnChange is called after every state change with a fresh snapshot.
	OnChange func(Snapshot)
	Logger   services.Logger
}

type Machine struct {
	clock    clock.Clock
	auth     AuthState
	observer TranscriptObserver
	onPrompt func(Prompt)
	onChange func(Snapshot)
	logger   services.Logger

	mu              sync.Mutex
	state           State
	mood            Mood
	messages        []domain.Message
	cooldown        int
	imageCount      int
	upload          *Attachment
	uploadPanelOpen bool

	pending clock.Timer
	gen     uint64 // invalidates a pending response after Reset or Close
	ticker  clock.Timer
	closed  bool
}

func NewMachine(cfg Config) *Machine {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if cfg.Logger == nil {
		cfg.Logger = &services.NoOpLogger{}
	}
	return &Machine{
		clock:    cfg.Clock,
		auth:     cfg.Auth,
		observer: cfg.Observer,
		onPrompt: cfg.OnPrompt,
		onChange: cfg.OnChange,
		logger:   cfg.Logger,
		state:    StateIdle,
		mood:     MoodHappy,
	}
}

func (m *Machine) loggedIn() bool {
	return m.auth != nil && m.auth.IsLoggedIn()
}

// IsGPTRequest reports whether a prompt asks for the GPT model.
func IsGPTRequest(prompt string) bool {
	return strings.Contains(strings.ToLower(prompt), "gpt")
}

// effects collects what must run once the lock is released.
type effects struct {
	transcript []domain.Message
	prompt     Prompt
	snapshot   *Snapshot
}

func (m *Machine) run(fx effects) {
	if fx.transcript != nil && m.observer != nil {
		m.observer.TranscriptChanged(fx.transcript)
	}
	if fx.prompt != "" && m.onPrompt != nil {
		m.onPrompt(fx.prompt)
	}
	if fx.snapshot != nil && m.onChange != nil {
		m.onChange(*fx.snapshot)
	}
}

// Send appends the user's message and schedules the simulated reply.
func (m *Machine) Send(req SendRequest) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrBusy
	}
	if strings.TrimSpace(req.Prompt) == "" && m.upload == nil {
		m.mu.Unlock()
		return ErrEmptyInput
	}
	if m.state != StateIdle {
		m.mu.Unlock()
		return ErrBusy
	}

	m.messages = append(m.messages, domain.NewUserMessage(req.Prompt, m.clock.Now()))
	m.mood = MoodThinking
	m.state = StateAwaitingResponse

	gpt := IsGPTRequest(req.Prompt)
	withImage := req.GenerateImage || m.upload != nil
	loggedIn := m.loggedIn()
	m.gen++
	gen := m.gen

	switch {
	case gpt && !loggedIn:
		m.state = StateQuotaBlock
		m.pending = m.clock.AfterFunc(UpgradeDelay, func() { m.block(gen, PromptUpgrade) })
	case withImage && !loggedIn && m.imageCount >= AnonymousImageLimit:
		m.state = StateQuotaBlock
		m.pending = m.clock.AfterFunc(LoginDelay, func() { m.block(gen, PromptLogin) })
	default:
		m.state = StateResponding
		if gpt && m.cooldown == 0 {
			m.cooldown = GPTCooldown
			m.startTickerLocked()
		}
		prompt := req.Prompt
		m.pending = m.clock.AfterFunc(ResponseDelay, func() { m.respond(gen, prompt, gpt, withImage) })
	}

	m.logger.Debug("message sent", "state", m.state, "gpt", gpt, "image", withImage)
	fx := effects{transcript: m.copyMessagesLocked(), snapshot: m.snapshotLocked()}
	m.mu.Unlock()

	m.run(fx)
	return nil
}

func (m *Machine) block(gen uint64, prompt Prompt) {
	m.mu.Lock()
	if gen != m.gen || m.closed {
		m.mu.Unlock()
		return
	}
	m.pending = nil
	m.mood = MoodConfused
	m.state = StateIdle
	fx := effects{prompt: prompt, snapshot: m.snapshotLocked()}
	m.mu.Unlock()

	m.run(fx)
}

func (m *Machine) respond(gen uint64, prompt string, gpt, withImage bool) {
	m.mu.Lock()
	if gen != m.gen || m.closed {
		m.mu.Unlock()
		return
	}
	m.pending = nil

	model := domain.ModelGemini
	if gpt {
		model = domain.ModelGPT
	}
	var images []string
	if withImage {
		images = []string{MockImageURL}
		m.imageCount++
	}
	content := fmt.Sprintf("Aqui está o resultado para \"%s\"", prompt)
	m.messages = append(m.messages, domain.NewAIMessage(content, model, images, m.clock.Now()))
	m.upload = nil
	if gpt {
		m.mood = MoodExcited
	} else {
		m.mood = MoodHappy
	}
	m.state = StateIdle
	fx := effects{transcript: m.copyMessagesLocked(), snapshot: m.snapshotLocked()}
	m.mu.Unlock()

	m.run(fx)
}

func (m *Machine) startTickerLocked() {
	if m.ticker != nil {
		return
	}
	m.ticker = m.clock.AfterFunc(CooldownTick, m.tick)
}

func (m *Machine) tick() {
	m.mu.Lock()
	m.ticker = nil
	if m.closed {
		m.mu.Unlock()
		return
	}
	if m.cooldown > 0 {
		m.cooldown--
	}
	if m.cooldown > 0 {
		m.startTickerLocked()
	}
	fx := effects{snapshot: m.snapshotLocked()}
	m.mu.Unlock()

	m.run(fx)
}

// AttachUpload sets the image sent with the next message and closes the
// upload panel.
func (m *Machine) AttachUpload(a Attachment) {
	m.mu.Lock()
	m.upload = &a
	m.uploadPanelOpen = false
	fx := effects{snapshot: m.snapshotLocked()}
	m.mu.Unlock()
	m.run(fx)
}

func (m *Machine) ToggleUploadPanel() {
	m.mu.Lock()
	m.uploadPanelOpen = !m.uploadPanelOpen
	fx := effects{snapshot: m.snapshotLocked()}
	m.mu.Unlock()
	m.run(fx)
}

// ReplaceTranscript hydrates the machine with a loaded conversation. The
// observer is not told, since the messages came from the store.
func (m *Machine) ReplaceTranscript(messages []domain.Message) error {
	m.mu.Lock()
	if m.state != StateIdle {
		m.mu.Unlock()
		return ErrBusy
	}
	m.messages = append([]domain.Message(nil), messages...)
	fx := effects{snapshot: m.snapshotLocked()}
	m.mu.Unlock()
	m.run(fx)
	return nil
}

// Reset starts an empty conversation, dropping any reply still pending.
// Counters and the cooldown carry over.
func (m *Machine) Reset() {
	m.mu.Lock()
	m.gen++
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}
	m.messages = nil
	m.upload = nil
	m.uploadPanelOpen = false
	m.mood = MoodHappy
	m.state = StateIdle
	fx := effects{snapshot: m.snapshotLocked()}
	m.mu.Unlock()
	m.run(fx)
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.snapshotLocked()
}

// Close stops the pending reply and the cooldown ticker.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.gen++
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}
	if m.ticker != nil {
		m.ticker.Stop()
		m.ticker = nil
	}
}

func (m *Machine) copyMessagesLocked() []domain.Message {
	return append([]domain.Message(nil), m.messages...)
}

func (m *Machine) snapshotLocked() *Snapshot {
	s := &Snapshot{
		State:                m.state,
		Mood:                 m.mood,
		Messages:             m.copyMessagesLocked(),
		Cooldown:             m.cooldown,
		ImageGenerationCount: m.imageCount,
		UploadPanelOpen:      m.uploadPanelOpen,
	}
	if m.upload != nil {
		a := *m.upload
		s.Upload = &a
	}
	return s
}
