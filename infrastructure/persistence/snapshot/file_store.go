// Package snapshot implements the durable snapshot store on the local
// filesystem: one JSON file per workspace, written atomically via a
// temp file rename.
package snapshot

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/aggregates"
	pkgerrors "github.com/modryn-studio/ProjectLoom-sub000/pkg/errors"
)

const fileExt = ".json"

// FileStore persists workspace snapshots under a single directory
type FileStore struct {
	dir    string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewFileStore creates the directory if needed and returns the store
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrorTypePersistence, "failed to create snapshot directory")
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

// Write persists a snapshot, replacing any previous one
func (s *FileStore) Write(ctx context.Context, snap aggregates.WorkspaceSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrorTypePersistence, "failed to encode workspace snapshot")
	}

	final := s.path(snap.ID)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrorTypePersistence, "failed to write workspace snapshot")
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return pkgerrors.Wrap(err, pkgerrors.ErrorTypePersistence, "failed to commit workspace snapshot")
	}

	s.logger.Debug("workspace snapshot written",
		zap.String("workspaceId", snap.ID),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// Read loads the snapshot for a workspace id
func (s *FileStore) Read(ctx context.Context, workspaceID string) (aggregates.WorkspaceSnapshot, error) {
	var snap aggregates.WorkspaceSnapshot

	data, err := os.ReadFile(s.path(workspaceID))
	if err != nil {
		if os.IsNotExist(err) {
			return snap, pkgerrors.NewNotFoundError("workspace snapshot", workspaceID)
		}
		return snap, pkgerrors.Wrap(err, pkgerrors.ErrorTypePersistence, "failed to read workspace snapshot")
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, pkgerrors.Wrap(err, pkgerrors.ErrorTypePersistence, "failed to decode workspace snapshot")
	}
	return snap, nil
}

// ListIDs returns the workspace ids with stored snapshots
func (s *FileStore) ListIDs(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrorTypePersistence, "failed to list snapshot directory")
	}
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, fileExt))
	}
	return ids, nil
}

// Remove deletes a stored snapshot
func (s *FileStore) Remove(ctx context.Context, workspaceID string) error {
	if err := os.Remove(s.path(workspaceID)); err != nil {
		if os.IsNotExist(err) {
			return pkgerrors.NewNotFoundError("workspace snapshot", workspaceID)
		}
		return pkgerrors.Wrap(err, pkgerrors.ErrorTypePersistence, "failed to remove workspace snapshot")
	}
	return nil
}

func (s *FileStore) path(workspaceID string) string {
	// Workspace ids are UUIDs; filepath.Base guards against a corrupted
	// id escaping the directory.
	return filepath.Join(s.dir, filepath.Base(workspaceID)+fileExt)
}
