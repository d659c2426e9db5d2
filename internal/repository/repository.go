package repository

import (
	"context"
	"time"
)

// Snapshot is a named, serialized topology document.
type Snapshot struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Format      string    `json:"format"`
	Document    []byte    `json:"-"`
	Hosts       int       `json:"hosts"`
	Networks    []string  `json:"networks"`
	Connections int       `json:"connections"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SnapshotStore persists design snapshots
type SnapshotStore interface {
	// SaveSnapshot inserts or replaces the snapshot with the same name
	SaveSnapshot(ctx context.Context, snap *Snapshot) error
	// GetSnapshot returns the named snapshot, or an error wrapping domain.ErrNotFound
	GetSnapshot(ctx context.Context, name string) (*Snapshot, error)
	// ListSnapshots returns snapshot metadata without documents, ordered by name
	ListSnapshots(ctx context.Context) ([]Snapshot, error)
	// FindByNetwork lists snapshots that contain a network with the given name
	FindByNetwork(ctx context.Context, network string) ([]Snapshot, error)
	DeleteSnapshot(ctx context.Context, name string) error

	Close() error
}
