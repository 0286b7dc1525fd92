package chat

import (
	"errors"
	"time"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/domain"
)

type State string

const (
	StateIdle             State = "idle"
	StateAwaitingResponse State = "awaiting_response"
	StateQuotaBlock       State = "quota_block"
	StateResponding       State = "responding"
)

type Mood string

const (
	MoodHappy    Mood = "happy"
	MoodThinking Mood = "thinking"
	MoodExcited  Mood = "excited"
	MoodConfused Mood = "confused"
)

// Prompt is a modal the machine asks the UI to show.
type Prompt string

const (
	PromptUpgrade Prompt = "upgrade"
	PromptLogin   Prompt = "login"
)

const (
	// GPTCooldown is how long GPT requests stay throttled after one is answered.
	GPTCooldown = 30
	// AnonymousImageLimit is the number of images a logged-out user gets.
	AnonymousImageLimit = 4

	UpgradeDelay  = 1500 * time.Millisecond
	LoginDelay    = 1000 * time.Millisecond
	ResponseDelay = 2000 * time.Millisecond
	CooldownTick  = time.Second

	MockImageURL = "https://images.unsplash.com/photo-1618160702438-9b02ab6515c9?crop=entropy&cs=tinysrgb&fit=max&fm=jpg&ixid=M3wxMjA3fDB8MXxhbGx8fHx8fHx8fHwxNjE4MTYwNzAzfA&ixlib=rb-4.0.3&q=80&w=400"
)

var (
	ErrEmptyInput = errors.New("nothing to send")
	ErrBusy       = errors.New("a response is already in progress")
)

// Attachment is an image the user attached to the next message.
type Attachment struct {
	Name string
	Size int64
}

type SendRequest struct {
	Prompt string
	// GenerateImage asks for an image even without an attachment.
	GenerateImage bool
}

// TranscriptObserver is told about every message appended to the transcript.
type TranscriptObserver interface {
	TranscriptChanged(messages []domain.Message)
}

// AuthState reports whether the user is signed in.
type AuthState interface {
	IsLoggedIn() bool
}

// Snapshot is a copy of the machine's observable state.
type Snapshot struct {
	State                State
	Mood                 Mood
	Messages             []domain.Message
	Cooldown             int
	ImageGenerationCount int
	Upload               *Attachment
	UploadPanelOpen      bool
}
