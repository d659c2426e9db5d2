package service

import (
	"bytes"
	"context"
	"fmt"

	"go.uber.org/zap"

	"podnet/internal/codec"
	"podnet/internal/repository"
)

// SnapshotService saves the editor's design to a snapshot store and loads
// it back through the editor's document path.
type SnapshotService struct {
	store  repository.SnapshotStore
	editor *EditorService
	logger *zap.Logger
}

// NewSnapshotService creates a snapshot service
func NewSnapshotService(store repository.SnapshotStore, editor *EditorService, logger *zap.Logger) *SnapshotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotService{
		store:  store,
		editor: editor,
		logger: logger.Named("snapshots"),
	}
}

// Save exports the current design under name, replacing any snapshot
// with the same name.
func (s *SnapshotService) Save(ctx context.Context, name, description string) (*repository.Snapshot, error) {
	doc := s.editor.Document()

	var buf bytes.Buffer
	if err := codec.NewJSONCodec().Export(doc, &buf); err != nil {
		return nil, err
	}

	snap := &repository.Snapshot{
		Name:        name,
		Description: description,
		Format:      "json",
		Document:    buf.Bytes(),
		Hosts:       len(doc.Hosts),
		Connections: len(doc.Connections),
	}
	for _, n := range doc.Networks {
		snap.Networks = append(snap.Networks, n.Name)
	}

	if err := s.store.SaveSnapshot(ctx, snap); err != nil {
		s.logger.Error("failed to save snapshot", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("failed to save snapshot %q: %w", name, err)
	}
	s.editor.eventBus.Publish(Event{Type: EventSnapshotSaved, Payload: *snap})
	return snap, nil
}

// Load replaces the design with the named snapshot.
func (s *SnapshotService) Load(ctx context.Context, name string) (codec.RestoreResult, error) {
	snap, err := s.store.GetSnapshot(ctx, name)
	if err != nil {
		return codec.RestoreResult{}, err
	}
	return s.editor.OnDocumentLoaded(snap.Document, snap.Format)
}

// List returns snapshot metadata
func (s *SnapshotService) List(ctx context.Context) ([]repository.Snapshot, error) {
	return s.store.ListSnapshots(ctx)
}

// FindByNetwork lists snapshots containing a network name
func (s *SnapshotService) FindByNetwork(ctx context.Context, network string) ([]repository.Snapshot, error) {
	return s.store.FindByNetwork(ctx, network)
}

// Delete removes a snapshot
func (s *SnapshotService) Delete(ctx context.Context, name string) error {
	return s.store.DeleteSnapshot(ctx, name)
}
