package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/modryn-studio/ProjectLoom-sub000/application/ports"
	"github.com/modryn-studio/ProjectLoom-sub000/application/services"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/config"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/aggregates"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/entities"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
	"github.com/modryn-studio/ProjectLoom-sub000/pkg/observability"
)

// Deps bundles the collaborators every command handler shares. Handlers
// embed it instead of repeating seven constructor parameters each.
type Deps struct {
	Repo       ports.WorkspaceRepository
	History    *services.History
	Resolver   *services.ContextResolver
	Layout     *services.LayoutEngine
	Events     ports.EventBus
	Chat       ports.ChatCompletionService
	Summarizer ports.SummarizationService
	Config     config.Provider
	Logger     *zap.Logger
}

// rules reads the rule set currently in force. Handlers call this per
// operation so hot-reloaded limits apply without a restart.
func (d *Deps) rules() *config.DomainConfig {
	return d.Config.Current()
}

// workspace loads the aggregate for a pre-validated workspace id string
func (d *Deps) workspace(ctx context.Context, id string) (*aggregates.Workspace, error) {
	wsID, err := valueobjects.NewWorkspaceIDFromString(id)
	if err != nil {
		return nil, err
	}
	return d.Repo.GetByID(ctx, wsID)
}

// commit persists the mutated workspace, records the history entry when
// one is given, and publishes the batch of uncommitted domain events.
// Undo and redo pass a nil entry: they move entries between stacks
// themselves and must not clear the redo stack.
func (d *Deps) commit(ctx context.Context, ws *aggregates.Workspace, entry *services.Entry) error {
	if err := d.Repo.Save(ctx, ws); err != nil {
		return err
	}
	observability.SetWorkspaceCards(ws.ID().String(), ws.CardCount())
	if entry != nil {
		d.History.Record(ws.ID(), entry)
	}
	evts := ws.GetUncommittedEvents()
	if len(evts) > 0 {
		d.Events.Publish(ctx, evts...)
		ws.MarkEventsAsCommitted()
	}
	return nil
}

// snapshots captures the listed cards as they stand right now, silently
// skipping ids the workspace no longer holds
func snapshots(ws *aggregates.Workspace, ids ...valueobjects.CardID) []entities.CardSnapshot {
	out := make([]entities.CardSnapshot, 0, len(ids))
	for _, id := range ids {
		card, err := ws.Card(id)
		if err != nil {
			continue
		}
		out = append(out, card.Snapshot())
	}
	return out
}
