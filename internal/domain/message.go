// File: internal/domain/message.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a message. It never changes after creation.
type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAI
}

// ModelType tags which simulated model answered an AI message.
type ModelType string

const (
	ModelGemini ModelType = "gemini"
	ModelGPT    ModelType = "gpt"
)

// Message is a single transcript entry. The id is generated by the client at
// creation time, so resending a transcript is idempotent at the store.
type Message struct {
	ID             string    `json:"id" gorm:"primaryKey;size:64"`
	ConversationID string    `json:"-" gorm:"primaryKey;size:36"`
	UserID         string    `json:"-" gorm:"index;not null;size:36"`
	Role           Role      `json:"role" gorm:"not null;size:8"`
	Content        string    `json:"content"`
	Images         []string  `json:"images,omitempty" gorm:"serializer:json"`
	ModelType      ModelType `json:"modelType,omitempty" gorm:"size:16"`
	Timestamp      time.Time `json:"timestamp" gorm:"column:created_at;index"`
	// Position is the index within the transcript at save time. It breaks
	// ties between messages sharing a timestamp.
	Position int `json:"-" gorm:"not null;default:0"`
}

// NewUserMessage builds a user message. User messages never carry images.
func NewUserMessage(content string, at time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: at,
	}
}

// NewAIMessage builds an AI message tagged with the model that produced it.
func NewAIMessage(content string, model ModelType, images []string, at time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleAI,
		Content:   content,
		Images:    images,
		ModelType: model,
		Timestamp: at,
	}
}

// Validate checks the fields the store relies on.
func (m *Message) Validate() error {
	if !m.Role.Valid() {
		return fmt.Errorf("invalid message role %q", m.Role)
	}
	if m.Role == RoleUser && len(m.Images) > 0 {
		return fmt.Errorf("user messages cannot carry images")
	}
	if m.ModelType != "" && m.ModelType != ModelGemini && m.ModelType != ModelGPT {
		return fmt.Errorf("invalid model type %q", m.ModelType)
	}
	return nil
}
