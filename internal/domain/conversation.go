// File: internal/domain/conversation.go
package domain

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// DefaultConversationTitle is used when a new conversation has no title.
	DefaultConversationTitle = "Nova conversa"
	// UntitledConversationTitle is used when an existing conversation is saved without a title.
	UntitledConversationTitle = "Conversa sem título"
	// TitleMaxRunes bounds titles derived from the first message.
	TitleMaxRunes = 30
)

// Conversation represents a single chat thread owned by a user.
type Conversation struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	UserID        string    `json:"user_id" gorm:"index;not null;size:36"`
	Title         string    `json:"title"`
	LastMessageAt time.Time `json:"last_message_at" gorm:"index"`
	Unread        int       `json:"unread,omitempty" gorm:"-"` // display only, never persisted
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BeforeCreate assigns a store-generated id.
func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// TitleFromMessages derives a conversation title from the first message of a
// transcript: its first TitleMaxRunes runes, taken as written.
func TitleFromMessages(messages []Message) string {
	if len(messages) == 0 {
		return DefaultConversationTitle
	}
	content := messages[0].Content
	if content == "" {
		return DefaultConversationTitle
	}
	if utf8.RuneCountInString(content) <= TitleMaxRunes {
		return content
	}
	return string([]rune(content)[:TitleMaxRunes])
}
