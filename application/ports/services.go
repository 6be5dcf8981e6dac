package ports

import (
	"context"

	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
)

// ChatCompletionService is the external LLM collaborator. The engine
// hands it a card's resolved context plus the new user input and only
// needs the final assistant message back; streaming mechanics stay on
// the other side of this port.
type ChatCompletionService interface {
	Complete(ctx context.Context, inherited valueobjects.InheritedContext, transcript []valueobjects.Message, input string) (valueobjects.Message, error)
}

// SummarizationService produces the opaque summary-mode context text.
// The engine stores and propagates the result but never re-derives or
// validates it.
type SummarizationService interface {
	Summarize(ctx context.Context, messages []valueobjects.Message) (string, error)
}
