package memory

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/modryn-studio/ProjectLoom-sub000/application/ports"
	domaincfg "github.com/modryn-studio/ProjectLoom-sub000/domain/config"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/aggregates"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
)

// WorkspaceRepository keeps live aggregates in memory and writes
// through to a snapshot store when one is configured. The in-memory map
// is the authority while the process runs; snapshots exist so the graph
// survives a restart, loaded lazily on first access.
type WorkspaceRepository struct {
	mu         sync.RWMutex
	workspaces map[string]*aggregates.Workspace

	store  ports.SnapshotStore
	rules  domaincfg.Provider
	logger *zap.Logger
}

// NewWorkspaceRepository creates a repository. store may be nil, which
// makes the repository purely in-memory; a nil rules provider binds the
// default rule set.
func NewWorkspaceRepository(store ports.SnapshotStore, rules domaincfg.Provider, logger *zap.Logger) *WorkspaceRepository {
	if rules == nil {
		rules = domaincfg.StaticProvider(nil)
	}
	return &WorkspaceRepository{
		workspaces: make(map[string]*aggregates.Workspace),
		store:      store,
		rules:      rules,
		logger:     logger,
	}
}

// Save persists a workspace (create or update)
func (r *WorkspaceRepository) Save(ctx context.Context, ws *aggregates.Workspace) error {
	r.mu.Lock()
	r.workspaces[ws.ID().String()] = ws
	r.mu.Unlock()

	if r.store == nil {
		return nil
	}
	if err := r.store.Write(ctx, ws.Snapshot()); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrorTypePersistence, "failed to persist workspace snapshot")
	}
	return nil
}

// GetByID retrieves a workspace, falling back to the snapshot store for
// workspaces not yet loaded this process lifetime
func (r *WorkspaceRepository) GetByID(ctx context.Context, id valueobjects.WorkspaceID) (*aggregates.Workspace, error) {
	key := id.String()

	cfg := r.rules.Current()

	r.mu.RLock()
	ws, ok := r.workspaces[key]
	r.mu.RUnlock()
	if ok {
		// Rebind the rules so a reloaded config governs cached aggregates
		ws.SetConfig(cfg)
		return ws, nil
	}

	if r.store == nil {
		return nil, pkgerrors.NewNotFoundError("workspace", key)
	}

	snap, err := r.store.Read(ctx, key)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, pkgerrors.NewNotFoundError("workspace", key)
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrorTypePersistence, "failed to read workspace snapshot")
	}
	loaded, err := aggregates.ReconstructWorkspace(snap, cfg)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another goroutine may have loaded it while we read the snapshot
	if existing, ok := r.workspaces[key]; ok {
		existing.SetConfig(cfg)
		return existing, nil
	}
	r.workspaces[key] = loaded
	r.logger.Debug("workspace loaded from snapshot store", zap.String("workspaceId", key))
	return loaded, nil
}

// List retrieves all workspaces, including ones still only in the
// snapshot store
func (r *WorkspaceRepository) List(ctx context.Context) ([]*aggregates.Workspace, error) {
	if r.store != nil {
		ids, err := r.store.ListIDs(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.ErrorTypePersistence, "failed to list workspace snapshots")
		}
		for _, idStr := range ids {
			id, err := valueobjects.NewWorkspaceIDFromString(idStr)
			if err != nil {
				r.logger.Warn("skipping snapshot with malformed id", zap.String("id", idStr))
				continue
			}
			if _, err := r.GetByID(ctx, id); err != nil {
				r.logger.Warn("skipping unreadable workspace snapshot",
					zap.String("workspaceId", idStr),
					zap.Error(err),
				)
			}
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*aggregates.Workspace, 0, len(r.workspaces))
	for _, ws := range r.workspaces {
		out = append(out, ws)
	}
	return out, nil
}

// Delete removes a workspace and its snapshot
func (r *WorkspaceRepository) Delete(ctx context.Context, id valueobjects.WorkspaceID) error {
	key := id.String()

	r.mu.Lock()
	_, existed := r.workspaces[key]
	delete(r.workspaces, key)
	r.mu.Unlock()

	if r.store != nil {
		if err := r.store.Remove(ctx, key); err != nil && !pkgerrors.IsNotFound(err) {
			return pkgerrors.Wrap(err, pkgerrors.ErrorTypePersistence, "failed to remove workspace snapshot")
		}
		return nil
	}
	if !existed {
		return pkgerrors.NewNotFoundError("workspace", key)
	}
	return nil
}
