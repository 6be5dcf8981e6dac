// Package acl contains anti-corruption adapters to external services.
// The LLM adapter translates between the engine's context model and the
// completion API's wire format, and shields the engine behind a circuit
// breaker so a degraded provider fails fast instead of hanging every
// send.
package acl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
)

// LLMAdapter implements the chat completion and summarization ports
// against an OpenAI-compatible HTTP endpoint
type LLMAdapter struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	model      string
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewLLMAdapter creates an adapter for the given endpoint
func NewLLMAdapter(endpoint, apiKey, model string, logger *zap.Logger) *LLMAdapter {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "llm",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("llm circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &LLMAdapter{
		httpClient: &http.Client{Timeout: 90 * time.Second},
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		model:      model,
		breaker:    breaker,
		logger:     logger,
	}
}

// wireMessage is the provider's chat message shape
type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message wireMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete implements ports.ChatCompletionService
func (a *LLMAdapter) Complete(ctx context.Context, inherited valueobjects.InheritedContext, transcript []valueobjects.Message, input string) (valueobjects.Message, error) {
	wire := a.contextMessages(inherited)
	for _, msg := range transcript {
		wire = append(wire, wireMessage{Role: string(msg.Role), Content: msg.Text})
	}

	text, err := a.call(ctx, wire)
	if err != nil {
		return valueobjects.Message{}, err
	}
	reply, err := valueobjects.NewMessage(valueobjects.RoleAssistant, text)
	if err != nil {
		return valueobjects.Message{}, pkgerrors.Wrap(err, pkgerrors.ErrorTypeExternal, "provider returned an empty completion")
	}
	return reply, nil
}

// Summarize implements ports.SummarizationService
func (a *LLMAdapter) Summarize(ctx context.Context, messages []valueobjects.Message) (string, error) {
	var b strings.Builder
	for _, msg := range messages {
		fmt.Fprintf(&b, "[%s] %s\n", msg.Role, msg.Text)
	}

	wire := []wireMessage{
		{Role: "system", Content: "Summarize the following conversation concisely, keeping decisions, open questions and key facts."},
		{Role: "user", Content: b.String()},
	}
	return a.call(ctx, wire)
}

// contextMessages flattens the resolved inherited context into leading
// system and transcript messages
func (a *LLMAdapter) contextMessages(inherited valueobjects.InheritedContext) []wireMessage {
	var wire []wireMessage
	for _, seg := range inherited.Segments() {
		if seg.Summary != "" {
			label := "Workspace instructions"
			if !seg.SourceCardID.IsZero() {
				label = "Summary of an earlier conversation"
			}
			wire = append(wire, wireMessage{
				Role:    "system",
				Content: label + ":\n" + seg.Summary,
			})
			continue
		}
		for _, msg := range seg.Messages {
			wire = append(wire, wireMessage{Role: string(msg.Role), Content: msg.Text})
		}
	}
	return wire
}

func (a *LLMAdapter) call(ctx context.Context, messages []wireMessage) (string, error) {
	if a.endpoint == "" {
		return "", pkgerrors.NewUnavailableError("llm")
	}

	result, err := a.breaker.Execute(func() (interface{}, error) {
		return a.post(ctx, completionRequest{Model: a.model, Messages: messages})
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return "", pkgerrors.NewUnavailableError("llm")
		}
		return "", pkgerrors.Wrap(err, pkgerrors.ErrorTypeExternal, "llm request failed")
	}
	return result.(string), nil
}

func (a *LLMAdapter) post(ctx context.Context, payload completionRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm endpoint returned %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var parsed completionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("malformed llm response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("llm error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("llm response has no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
