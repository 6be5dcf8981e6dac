package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/modryn-studio/ProjectLoom-sub000/application/commands"
	cmdbus "github.com/modryn-studio/ProjectLoom-sub000/application/commands/bus"
	"github.com/modryn-studio/ProjectLoom-sub000/application/queries"
	querybus "github.com/modryn-studio/ProjectLoom-sub000/application/queries/bus"
	"github.com/modryn-studio/ProjectLoom-sub000/pkg/common"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
	"github.com/modryn-studio/ProjectLoom-sub000/pkg/utils"
)

// WorkspaceHandler handles workspace-level HTTP requests
type WorkspaceHandler struct {
	commandBus *cmdbus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(commandBus *cmdbus.CommandBus, queryBus *querybus.QueryBus, errors *pkgerrors.ErrorHandler, logger *zap.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errors,
		logger:     logger,
	}
}

// CreateWorkspaceRequest represents the request body for creating a workspace
type CreateWorkspaceRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}

// CreateWorkspace handles POST /workspaces
func (h *WorkspaceHandler) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkspaceRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	workspaceID := uuid.New().String()
	err := h.commandBus.Send(r.Context(), commands.CreateWorkspaceCommand{
		WorkspaceID: workspaceID,
		Name:        req.Name,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, map[string]string{
		"id":   workspaceID,
		"name": req.Name,
	})
}

// ListWorkspaces handles GET /workspaces
func (h *WorkspaceHandler) ListWorkspaces(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListWorkspacesQuery{})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// GetWorkspace handles GET /workspaces/{workspaceID}
func (h *WorkspaceHandler) GetWorkspace(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetWorkspaceQuery{
		WorkspaceID: chi.URLParam(r, "workspaceID"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// DeleteWorkspace handles DELETE /workspaces/{workspaceID}
func (h *WorkspaceHandler) DeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	err := h.commandBus.Send(r.Context(), commands.DeleteWorkspaceCommand{
		WorkspaceID: chi.URLParam(r, "workspaceID"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// SetInstructionsRequest represents the request body for updating
// workspace instructions
type SetInstructionsRequest struct {
	Instructions string `json:"instructions" validate:"max=20000"`
}

// SetInstructions handles PUT /workspaces/{workspaceID}/instructions
func (h *WorkspaceHandler) SetInstructions(w http.ResponseWriter, r *http.Request) {
	var req SetInstructionsRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	err := h.commandBus.Send(r.Context(), commands.SetInstructionsCommand{
		WorkspaceID:  chi.URLParam(r, "workspaceID"),
		Instructions: req.Instructions,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// AddDocumentRequest represents the request body for adding a knowledge
// document
type AddDocumentRequest struct {
	Title    string `json:"title" validate:"required,min=1,max=200"`
	Markdown string `json:"markdown" validate:"max=100000"`
}

// AddDocument handles POST /workspaces/{workspaceID}/documents
func (h *WorkspaceHandler) AddDocument(w http.ResponseWriter, r *http.Request) {
	var req AddDocumentRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	err := h.commandBus.Send(r.Context(), commands.AddKnowledgeDocumentCommand{
		WorkspaceID: chi.URLParam(r, "workspaceID"),
		Title:       req.Title,
		Markdown:    req.Markdown,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, map[string]string{"title": req.Title})
}
