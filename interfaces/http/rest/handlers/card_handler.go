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
	"github.com/modryn-studio/ProjectLoom-sub000/application/queries/models"
	domaincfg "github.com/modryn-studio/ProjectLoom-sub000/domain/config"
	"github.com/modryn-studio/ProjectLoom-sub000/pkg/common"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
	"github.com/modryn-studio/ProjectLoom-sub000/pkg/utils"
)

// CardHandler handles card-related HTTP requests
type CardHandler struct {
	commandBus *cmdbus.CommandBus
	queryBus   *querybus.QueryBus
	cfg        domaincfg.Provider
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewCardHandler creates a new card handler
func NewCardHandler(commandBus *cmdbus.CommandBus, queryBus *querybus.QueryBus, cfg domaincfg.Provider, errors *pkgerrors.ErrorHandler, logger *zap.Logger) *CardHandler {
	return &CardHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		cfg:        cfg,
		errors:     errors,
		logger:     logger,
	}
}

// CreateCardRequest represents the request body for creating a root card
type CreateCardRequest struct {
	Title string  `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// CreateCard handles POST /workspaces/{workspaceID}/cards
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req CreateCardRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	cardID := uuid.New().String()
	err := h.commandBus.Send(r.Context(), commands.CreateRootCardCommand{
		WorkspaceID: chi.URLParam(r, "workspaceID"),
		CardID:      cardID,
		Title:       req.Title,
		X:           req.X,
		Y:           req.Y,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, map[string]string{"id": cardID})
}

// GetCard handles GET /workspaces/{workspaceID}/cards/{cardID}
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetCardQuery{
		WorkspaceID: chi.URLParam(r, "workspaceID"),
		CardID:      chi.URLParam(r, "cardID"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// UpdateCardRequest represents the request body for a partial card edit
type UpdateCardRequest struct {
	Title *string   `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Tags  *[]string `json:"tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=50"`
	X     *float64  `json:"x,omitempty"`
	Y     *float64  `json:"y,omitempty"`
}

// UpdateCard handles PATCH /workspaces/{workspaceID}/cards/{cardID}
func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	var req UpdateCardRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	err := h.commandBus.Send(r.Context(), commands.UpdateCardCommand{
		WorkspaceID: chi.URLParam(r, "workspaceID"),
		CardID:      chi.URLParam(r, "cardID"),
		Title:       req.Title,
		Tags:        req.Tags,
		X:           req.X,
		Y:           req.Y,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteCard handles DELETE /workspaces/{workspaceID}/cards/{cardID}
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	err := h.commandBus.Send(r.Context(), commands.DeleteCardCommand{
		WorkspaceID: chi.URLParam(r, "workspaceID"),
		CardID:      chi.URLParam(r, "cardID"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AppendMessageRequest represents the request body for appending a
// message without invoking the assistant
type AppendMessageRequest struct {
	Role string `json:"role" validate:"required,oneof=user assistant system"`
	Text string `json:"text" validate:"required"`
}

// AppendMessage handles POST /workspaces/{workspaceID}/cards/{cardID}/messages
func (h *CardHandler) AppendMessage(w http.ResponseWriter, r *http.Request) {
	var req AppendMessageRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	err := h.commandBus.Send(r.Context(), commands.AppendMessageCommand{
		WorkspaceID: chi.URLParam(r, "workspaceID"),
		CardID:      chi.URLParam(r, "cardID"),
		Role:        req.Role,
		Text:        req.Text,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, map[string]string{"status": "appended"})
}

// ChatRequest represents the request body for a full message exchange
type ChatRequest struct {
	Text string `json:"text" validate:"required"`
}

// Chat handles POST /workspaces/{workspaceID}/cards/{cardID}/chat. The
// user message and the assistant reply both land on the card; the
// updated card is returned.
func (h *CardHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	workspaceID := chi.URLParam(r, "workspaceID")
	cardID := chi.URLParam(r, "cardID")

	err := h.commandBus.Send(r.Context(), commands.SendMessageCommand{
		WorkspaceID: workspaceID,
		CardID:      cardID,
		Text:        req.Text,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetCardQuery{
		WorkspaceID: workspaceID,
		CardID:      cardID,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// BranchRequest represents the request body for branching a card
type BranchRequest struct {
	MessageIndex    int      `json:"messageIndex" validate:"gte=0"`
	InheritanceMode string   `json:"inheritanceMode,omitempty" validate:"omitempty,oneof=full summary custom"`
	BranchReason    string   `json:"branchReason,omitempty" validate:"omitempty,max=200"`
	CustomSelection []int    `json:"customSelection,omitempty"`
	X               *float64 `json:"x,omitempty"`
	Y               *float64 `json:"y,omitempty"`
}

// Branch handles POST /workspaces/{workspaceID}/cards/{cardID}/branch
func (h *CardHandler) Branch(w http.ResponseWriter, r *http.Request) {
	var req BranchRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	cardID := uuid.New().String()
	err := h.commandBus.Send(r.Context(), commands.BranchCardCommand{
		WorkspaceID:     chi.URLParam(r, "workspaceID"),
		CardID:          cardID,
		SourceCardID:    chi.URLParam(r, "cardID"),
		MessageIndex:    req.MessageIndex,
		InheritanceMode: req.InheritanceMode,
		BranchReason:    utils.CapWords(req.BranchReason, titleWordCap),
		CustomSelection: req.CustomSelection,
		X:               req.X,
		Y:               req.Y,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, map[string]string{"id": cardID})
}

// AddParentRequest represents the request body for attaching one more
// parent to a card
type AddParentRequest struct {
	ParentCardID string `json:"parentCardId" validate:"required,uuid"`
}

// AddParentResponse reports the attachment outcome, including the
// advisory shown when a card accumulates enough parents that a
// hierarchical merge would read better
type AddParentResponse struct {
	CardID      string `json:"cardId"`
	ParentCount int    `json:"parentCount"`
	Advisory    string `json:"advisory,omitempty"`
}

// AddParent handles POST /workspaces/{workspaceID}/cards/{cardID}/parents
func (h *CardHandler) AddParent(w http.ResponseWriter, r *http.Request) {
	var req AddParentRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	workspaceID := chi.URLParam(r, "workspaceID")
	cardID := chi.URLParam(r, "cardID")

	err := h.commandBus.Send(r.Context(), commands.AddMergeParentCommand{
		WorkspaceID:  workspaceID,
		CardID:       cardID,
		ParentCardID: req.ParentCardID,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	resp := AddParentResponse{CardID: cardID}
	if result, err := h.queryBus.Ask(r.Context(), queries.GetCardQuery{
		WorkspaceID: workspaceID,
		CardID:      cardID,
	}); err == nil {
		if view, ok := result.(*models.CardView); ok {
			resp.ParentCount = len(view.ParentCardIDs)
		}
	}
	if resp.ParentCount >= h.cfg.Current().ComplexMergeThreshold {
		resp.Advisory = complexMergeAdvisory
	}
	common.RespondJSON(w, http.StatusOK, resp)
}

// complexMergeAdvisory is returned alongside successful wide merges; it
// never blocks the operation
const complexMergeAdvisory = "merging this many conversations tends to dilute context; consider merging merge nodes hierarchically instead"

// titleWordCap bounds titles derived from free-text branch reasons
const titleWordCap = 8
