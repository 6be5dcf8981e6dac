package valueobjects

import (
	"errors"
	"time"
)

// MessageRole identifies who produced a message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// IsValid reports whether the role is one of the known roles
func (r MessageRole) IsValid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message is a single entry in a card's conversation transcript.
// Messages are immutable once appended; position in the card's
// ordered list is their identity.
type Message struct {
	Role      MessageRole `json:"role"`
	Text      string      `json:"text"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewMessage creates a message with the current timestamp
func NewMessage(role MessageRole, text string) (Message, error) {
	if !role.IsValid() {
		return Message{}, errors.New("message role must be user, assistant or system")
	}
	if text == "" {
		return Message{}, errors.New("message text cannot be empty")
	}
	return Message{Role: role, Text: text, Timestamp: time.Now()}, nil
}

// CopyMessages returns a deep copy of a message slice
func CopyMessages(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}
