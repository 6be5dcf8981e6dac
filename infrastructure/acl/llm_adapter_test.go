package acl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
)

func mustMessage(t *testing.T, role valueobjects.MessageRole, text string) valueobjects.Message {
	t.Helper()
	msg, err := valueobjects.NewMessage(role, text)
	require.NoError(t, err)
	return msg
}

func TestCompleteRoundTrip(t *testing.T) {
	var captured completionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "the answer"}},
			},
		})
	}))
	defer srv.Close()

	adapter := NewLLMAdapter(srv.URL, "test-key", "test-model", zap.NewNop())

	inherited := valueobjects.NewInheritedContext([]valueobjects.ContextSegment{
		{Mode: valueobjects.InheritSummary, Summary: "Answer tersely"},
		{
			SourceCardID: valueobjects.NewCardID(),
			Mode:         valueobjects.InheritFull,
			Messages:     []valueobjects.Message{mustMessage(t, valueobjects.RoleUser, "earlier question")},
		},
	})
	transcript := []valueobjects.Message{mustMessage(t, valueobjects.RoleUser, "current question")}

	reply, err := adapter.Complete(context.Background(), inherited, transcript, "current question")
	require.NoError(t, err)
	assert.Equal(t, valueobjects.RoleAssistant, reply.Role)
	assert.Equal(t, "the answer", reply.Text)

	require.Len(t, captured.Messages, 3)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Contains(t, captured.Messages[0].Content, "Workspace instructions")
	assert.Contains(t, captured.Messages[0].Content, "Answer tersely")
	assert.Equal(t, "earlier question", captured.Messages[1].Content)
	assert.Equal(t, "current question", captured.Messages[2].Content)
	assert.Equal(t, "test-model", captured.Model)
}

func TestContextMessagesLabelsCardSummaries(t *testing.T) {
	adapter := NewLLMAdapter("http://unused", "", "m", zap.NewNop())

	wire := adapter.contextMessages(valueobjects.NewInheritedContext([]valueobjects.ContextSegment{
		{SourceCardID: valueobjects.NewCardID(), Mode: valueobjects.InheritSummary, Summary: "we chose chi"},
	}))

	require.Len(t, wire, 1)
	assert.Contains(t, wire[0].Content, "Summary of an earlier conversation")
	assert.Contains(t, wire[0].Content, "we chose chi")
}

func TestCompleteSurfacesProviderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	adapter := NewLLMAdapter(srv.URL, "", "m", zap.NewNop())
	_, err := adapter.Complete(context.Background(), valueobjects.EmptyInheritedContext(), nil, "hi")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeExternal))
}

func TestCompleteWithoutEndpointIsUnavailable(t *testing.T) {
	adapter := NewLLMAdapter("", "", "m", zap.NewNop())
	_, err := adapter.Complete(context.Background(), valueobjects.EmptyInheritedContext(), nil, "hi")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnavailable))
}

func TestSummarizeSendsTranscript(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Contains(t, req.Messages[1].Content, "[user] how do merges work?")

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "a summary"}},
			},
		})
	}))
	defer srv.Close()

	adapter := NewLLMAdapter(srv.URL, "", "m", zap.NewNop())
	summary, err := adapter.Summarize(context.Background(), []valueobjects.Message{
		mustMessage(t, valueobjects.RoleUser, "how do merges work?"),
	})
	require.NoError(t, err)
	assert.Equal(t, "a summary", summary)
}

func TestLocalAssistantWorksOffline(t *testing.T) {
	assistant := NewLocalAssistant()

	reply, err := assistant.Complete(context.Background(), valueobjects.EmptyInheritedContext(),
		[]valueobjects.Message{mustMessage(t, valueobjects.RoleUser, "hello")}, "hello")
	require.NoError(t, err)
	assert.Equal(t, valueobjects.RoleAssistant, reply.Role)
	assert.Contains(t, reply.Text, "hello")

	summary, err := assistant.Summarize(context.Background(), []valueobjects.Message{
		mustMessage(t, valueobjects.RoleUser, "first message"),
	})
	require.NoError(t, err)
	assert.Contains(t, summary, "first message")

	empty, err := assistant.Summarize(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
