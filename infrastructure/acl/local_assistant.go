package acl

import (
	"context"
	"fmt"
	"strings"

	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
)

// LocalAssistant is the no-provider fallback used in development and
// tests. Replies acknowledge the input and report how much context the
// card resolved, which is enough to exercise the whole graph without an
// API key.
type LocalAssistant struct{}

// NewLocalAssistant creates the fallback assistant
func NewLocalAssistant() *LocalAssistant {
	return &LocalAssistant{}
}

// Complete implements ports.ChatCompletionService
func (l *LocalAssistant) Complete(ctx context.Context, inherited valueobjects.InheritedContext, transcript []valueobjects.Message, input string) (valueobjects.Message, error) {
	text := fmt.Sprintf("(local) received %q with %d inherited and %d transcript messages",
		truncate(input, 80), inherited.MessageCount(), len(transcript))
	return valueobjects.NewMessage(valueobjects.RoleAssistant, text)
}

// Summarize implements ports.SummarizationService
func (l *LocalAssistant) Summarize(ctx context.Context, messages []valueobjects.Message) (string, error) {
	if len(messages) == 0 {
		return "", nil
	}
	first := truncate(strings.TrimSpace(messages[0].Text), 60)
	return fmt.Sprintf("Conversation of %d messages, starting with %q", len(messages), first), nil
}
