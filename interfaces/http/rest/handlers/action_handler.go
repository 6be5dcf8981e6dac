package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/modryn-studio/ProjectLoom-sub000/application/services"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/actions"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
	"github.com/modryn-studio/ProjectLoom-sub000/pkg/common"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
	"github.com/modryn-studio/ProjectLoom-sub000/pkg/utils"
)

// ActionHandler handles agent-proposed action HTTP requests
type ActionHandler struct {
	executor *services.ActionExecutor
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewActionHandler creates a new action handler
func NewActionHandler(executor *services.ActionExecutor, errors *pkgerrors.ErrorHandler, logger *zap.Logger) *ActionHandler {
	return &ActionHandler{
		executor: executor,
		errors:   errors,
		logger:   logger,
	}
}

// ExecuteActionRequest is a tagged union over the action kinds. Kind
// selects the variant; the other fields are read per kind.
type ExecuteActionRequest struct {
	Kind         string `json:"kind" validate:"required"`
	CardID       string `json:"cardId,omitempty"`
	CardTitle    string `json:"cardTitle,omitempty"`
	NewTitle     string `json:"newTitle,omitempty"`
	ParentCardID string `json:"parentCardId,omitempty"`
	BranchReason string `json:"branchReason,omitempty"`
	Title        string `json:"title,omitempty"`
	Markdown     string `json:"markdown,omitempty"`
}

// ExecuteActionResponse reports the applied action and any card it made
type ExecuteActionResponse struct {
	Kind          string `json:"kind"`
	Description   string `json:"description"`
	CreatedCardID string `json:"createdCardId,omitempty"`
}

// Execute handles POST /workspaces/{workspaceID}/actions
func (h *ActionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteActionRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	workspaceID, err := valueobjects.NewWorkspaceIDFromString(chi.URLParam(r, "workspaceID"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	action, err := req.toAction()
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	createdID, err := h.executor.Execute(r.Context(), workspaceID, action)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	resp := ExecuteActionResponse{
		Kind:        string(action.Kind()),
		Description: action.Describe(),
	}
	if !createdID.IsZero() {
		resp.CreatedCardID = createdID.String()
	}
	common.RespondJSON(w, http.StatusOK, resp)
}

func (req ExecuteActionRequest) toAction() (actions.Action, error) {
	switch actions.ActionKind(req.Kind) {
	case actions.KindDeleteCard:
		return actions.DeleteCard{CardID: req.CardID, CardTitle: req.CardTitle}, nil
	case actions.KindRenameCard:
		return actions.RenameCard{CardID: req.CardID, NewTitle: req.NewTitle}, nil
	case actions.KindCreateBranch:
		return actions.CreateBranch{ParentCardID: req.ParentCardID, BranchReason: req.BranchReason}, nil
	case actions.KindCreateDocument:
		return actions.CreateDocument{Title: req.Title, Markdown: req.Markdown}, nil
	}
	return nil, pkgerrors.NewValidationError("unknown action kind: " + req.Kind)
}
