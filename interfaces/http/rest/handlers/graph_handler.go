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
	domaincfg "github.com/modryn-studio/ProjectLoom-sub000/domain/config"
	"github.com/modryn-studio/ProjectLoom-sub000/pkg/common"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
	"github.com/modryn-studio/ProjectLoom-sub000/pkg/utils"
)

// GraphHandler handles whole-canvas HTTP requests
type GraphHandler struct {
	commandBus *cmdbus.CommandBus
	queryBus   *querybus.QueryBus
	cfg        domaincfg.Provider
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(commandBus *cmdbus.CommandBus, queryBus *querybus.QueryBus, cfg domaincfg.Provider, errors *pkgerrors.ErrorHandler, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		cfg:        cfg,
		errors:     errors,
		logger:     logger,
	}
}

// GetGraph handles GET /workspaces/{workspaceID}/graph
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetGraphDataQuery{
		WorkspaceID: chi.URLParam(r, "workspaceID"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// GetContext handles GET /workspaces/{workspaceID}/cards/{cardID}/context
func (h *GraphHandler) GetContext(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetInheritedContextQuery{
		WorkspaceID: chi.URLParam(r, "workspaceID"),
		CardID:      chi.URLParam(r, "cardID"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// MergeRequest represents the request body for merging cards
type MergeRequest struct {
	CardIDs []string `json:"cardIds" validate:"required,min=2,dive,uuid"`
	X       *float64 `json:"x,omitempty"`
	Y       *float64 `json:"y,omitempty"`
}

// MergeResponse reports the created merge card and the complex-merge
// advisory when three or more lineages were joined
type MergeResponse struct {
	ID       string `json:"id"`
	Parents  int    `json:"parents"`
	Advisory string `json:"advisory,omitempty"`
}

// Merge handles POST /workspaces/{workspaceID}/merges
func (h *GraphHandler) Merge(w http.ResponseWriter, r *http.Request) {
	var req MergeRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	cardID := uuid.New().String()
	err := h.commandBus.Send(r.Context(), commands.MergeCardsCommand{
		WorkspaceID:   chi.URLParam(r, "workspaceID"),
		CardID:        cardID,
		ParentCardIDs: req.CardIDs,
		X:             req.X,
		Y:             req.Y,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	resp := MergeResponse{ID: cardID, Parents: len(req.CardIDs)}
	if len(req.CardIDs) >= h.cfg.Current().ComplexMergeThreshold {
		resp.Advisory = complexMergeAdvisory
	}
	common.RespondJSON(w, http.StatusCreated, resp)
}

// ApplyLayout handles POST /workspaces/{workspaceID}/layout
func (h *GraphHandler) ApplyLayout(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceID")
	err := h.commandBus.Send(r.Context(), commands.ApplyLayoutCommand{
		WorkspaceID: workspaceID,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetGraphDataQuery{
		WorkspaceID: workspaceID,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}
