package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/modryn-studio/ProjectLoom-sub000/application/commands"
	cmdbus "github.com/modryn-studio/ProjectLoom-sub000/application/commands/bus"
	"github.com/modryn-studio/ProjectLoom-sub000/application/queries"
	querybus "github.com/modryn-studio/ProjectLoom-sub000/application/queries/bus"
	"github.com/modryn-studio/ProjectLoom-sub000/pkg/common"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
)

// HistoryHandler handles undo and redo HTTP requests
type HistoryHandler struct {
	commandBus *cmdbus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(commandBus *cmdbus.CommandBus, queryBus *querybus.QueryBus, errors *pkgerrors.ErrorHandler, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errors,
		logger:     logger,
	}
}

// Status handles GET /workspaces/{workspaceID}/history
func (h *HistoryHandler) Status(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetHistoryStatusQuery{
		WorkspaceID: chi.URLParam(r, "workspaceID"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// Undo handles POST /workspaces/{workspaceID}/undo
func (h *HistoryHandler) Undo(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceID")
	err := h.commandBus.Send(r.Context(), commands.UndoCommand{
		WorkspaceID: workspaceID,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.respondStatus(w, r, workspaceID)
}

// Redo handles POST /workspaces/{workspaceID}/redo
func (h *HistoryHandler) Redo(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceID")
	err := h.commandBus.Send(r.Context(), commands.RedoCommand{
		WorkspaceID: workspaceID,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.respondStatus(w, r, workspaceID)
}

func (h *HistoryHandler) respondStatus(w http.ResponseWriter, r *http.Request, workspaceID string) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetHistoryStatusQuery{
		WorkspaceID: workspaceID,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}
