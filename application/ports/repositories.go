package ports

import (
	"context"

	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/aggregates"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/events"
)

// WorkspaceRepository is the port for the authoritative workspace store.
// The engine is single-writer: implementations serialize mutations, and
// the aggregate handed out is the live instance, not a copy. Only
// command handlers may call its mutating methods.
type WorkspaceRepository interface {
	// Save persists a workspace (create or update)
	Save(ctx context.Context, ws *aggregates.Workspace) error

	// GetByID retrieves a workspace by its ID
	GetByID(ctx context.Context, id valueobjects.WorkspaceID) (*aggregates.Workspace, error)

	// List retrieves all workspaces
	List(ctx context.Context) ([]*aggregates.Workspace, error)

	// Delete removes a workspace and everything in it
	Delete(ctx context.Context, id valueobjects.WorkspaceID) error
}

// SnapshotStore is the durable-persistence collaborator. Its whole
// contract is "produces and consumes workspace snapshots"; the engine
// does not care about the storage format behind it.
type SnapshotStore interface {
	// Write persists a snapshot, replacing any previous one
	Write(ctx context.Context, snap aggregates.WorkspaceSnapshot) error

	// Read loads the snapshot for a workspace id
	Read(ctx context.Context, workspaceID string) (aggregates.WorkspaceSnapshot, error)

	// ListIDs returns the workspace ids with stored snapshots
	ListIDs(ctx context.Context) ([]string, error)

	// Remove deletes a stored snapshot
	Remove(ctx context.Context, workspaceID string) error
}

// EventBus publishes domain events after successful mutations. The UI
// layer subscribes for change notification; subscribers must treat
// events as read-only.
type EventBus interface {
	Publish(ctx context.Context, evts ...events.DomainEvent)
	Subscribe(eventType string, handler func(events.DomainEvent)) (unsubscribe func())
	SubscribeAll(handler func(events.DomainEvent)) (unsubscribe func())
}
