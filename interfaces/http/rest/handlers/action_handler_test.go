package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/modryn-studio/ProjectLoom-sub000/application/commands"
	cmdbus "github.com/modryn-studio/ProjectLoom-sub000/application/commands/bus"
	commandhandlers "github.com/modryn-studio/ProjectLoom-sub000/application/commands/handlers"
	"github.com/modryn-studio/ProjectLoom-sub000/application/services"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/config"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
	"github.com/modryn-studio/ProjectLoom-sub000/infrastructure/acl"
	"github.com/modryn-studio/ProjectLoom-sub000/infrastructure/messaging"
	"github.com/modryn-studio/ProjectLoom-sub000/infrastructure/persistence/memory"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
)

type actionEnv struct {
	router      http.Handler
	deps        *commandhandlers.Deps
	bus         *cmdbus.CommandBus
	workspaceID string
}

func newActionEnv(t *testing.T) *actionEnv {
	t.Helper()
	logger := zap.NewNop()
	rules := config.StaticProvider(config.DefaultDomainConfig())
	assistant := acl.NewLocalAssistant()

	deps := &commandhandlers.Deps{
		Repo:       memory.NewWorkspaceRepository(nil, rules, logger),
		History:    services.NewHistory(rules, logger),
		Resolver:   services.NewContextResolver(logger),
		Layout:     services.NewLayoutEngine(rules, logger),
		Events:     messaging.NewEventBus(logger),
		Chat:       assistant,
		Summarizer: assistant,
		Config:     rules,
		Logger:     logger,
	}
	b := cmdbus.NewCommandBus()
	require.NoError(t, commandhandlers.RegisterAll(b, deps))

	workspaceID := uuid.New().String()
	require.NoError(t, b.Send(context.Background(), commands.CreateWorkspaceCommand{
		WorkspaceID: workspaceID,
		Name:        "Action tests",
	}))

	executor := services.NewActionExecutor(b, deps.Repo, logger)
	handler := NewActionHandler(executor, pkgerrors.NewErrorHandler(logger), logger)

	router := chi.NewRouter()
	router.Post("/workspaces/{workspaceID}/actions", handler.Execute)

	return &actionEnv{router: router, deps: deps, bus: b, workspaceID: workspaceID}
}

func (e *actionEnv) post(t *testing.T, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/workspaces/"+e.workspaceID+"/actions", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *actionEnv) createRoot(t *testing.T, messages ...string) string {
	t.Helper()
	id := uuid.New().String()
	require.NoError(t, e.bus.Send(context.Background(), commands.CreateRootCardCommand{
		WorkspaceID: e.workspaceID,
		CardID:      id,
	}))
	for _, text := range messages {
		require.NoError(t, e.bus.Send(context.Background(), commands.AppendMessageCommand{
			WorkspaceID: e.workspaceID,
			CardID:      id,
			Role:        "user",
			Text:        text,
		}))
	}
	return id
}

func (e *actionEnv) cardTitle(t *testing.T, id string) string {
	t.Helper()
	wsID, err := valueobjects.NewWorkspaceIDFromString(e.workspaceID)
	require.NoError(t, err)
	ws, err := e.deps.Repo.GetByID(context.Background(), wsID)
	require.NoError(t, err)
	cardID, err := valueobjects.NewCardIDFromString(id)
	require.NoError(t, err)
	card, err := ws.Card(cardID)
	require.NoError(t, err)
	return card.Title()
}

func TestExecuteActionRenamesCard(t *testing.T) {
	env := newActionEnv(t)
	id := env.createRoot(t)

	w := env.post(t, map[string]interface{}{
		"kind":     "rename_card",
		"cardId":   id,
		"newTitle": "Proposed title",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Proposed title", env.cardTitle(t, id))
}

func TestExecuteActionBranchReturnsCreatedCard(t *testing.T) {
	env := newActionEnv(t)
	source := env.createRoot(t, "first", "second")

	w := env.post(t, map[string]interface{}{
		"kind":         "create_branch",
		"parentCardId": source,
		"branchReason": "Try a different approach",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp ExecuteActionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.CreatedCardID)
	assert.Equal(t, "Try a different approach", env.cardTitle(t, resp.CreatedCardID))
}

func TestExecuteActionUnknownKind(t *testing.T) {
	env := newActionEnv(t)

	w := env.post(t, map[string]interface{}{"kind": "drop_everything"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
