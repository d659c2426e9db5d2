package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"podnet/internal/domain"
	"podnet/internal/repository"
)

// Repository implements repository.SnapshotStore using SQLite
type Repository struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ repository.SnapshotStore = (*Repository)(nil)

// New opens (and migrates) the SQLite database at dbPath.
func New(dbPath string, logger *zap.Logger) (*Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dsn := dbPath
	if dbPath != ":memory:" {
		dsn = dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db, logger: logger.Named("sqlite")}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	repo.logger.Debug("snapshot store opened", zap.String("path", dbPath))
	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	PRAGMA foreign_keys = ON;

	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT,
		format TEXT NOT NULL DEFAULT 'json',
		document BLOB NOT NULL,
		host_count INTEGER NOT NULL DEFAULT 0,
		connection_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshot_networks (
		snapshot_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		network_name TEXT NOT NULL,
		PRIMARY KEY (snapshot_id, position),
		FOREIGN KEY (snapshot_id) REFERENCES snapshots(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_snapshot_networks_name ON snapshot_networks(network_name);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveSnapshot inserts or replaces a snapshot by name
func (r *Repository) SaveSnapshot(ctx context.Context, snap *repository.Snapshot) error {
	if snap.Name == "" {
		return fmt.Errorf("%w: snapshot name is required", domain.ErrValidation)
	}
	if snap.Format == "" {
		snap.Format = "json"
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	var existingID string
	var createdAt time.Time
	err = tx.QueryRowContext(ctx, `SELECT id, created_at FROM snapshots WHERE name = ?`, snap.Name).Scan(&existingID, &createdAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		snap.ID = uuid.NewString()
		snap.CreatedAt = now
		_, err = tx.ExecContext(ctx, `
			INSERT INTO snapshots (id, name, description, format, document, host_count, connection_count, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, snap.ID, snap.Name, stringToNull(snap.Description), snap.Format, snap.Document,
			snap.Hosts, snap.Connections, now, now)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to query snapshot: %w", err)
	default:
		snap.ID = existingID
		snap.CreatedAt = createdAt
		_, err = tx.ExecContext(ctx, `
			UPDATE snapshots
			SET description = ?, format = ?, document = ?, host_count = ?, connection_count = ?, updated_at = ?
			WHERE id = ?
		`, stringToNull(snap.Description), snap.Format, snap.Document, snap.Hosts, snap.Connections, now, snap.ID)
		if err != nil {
			return fmt.Errorf("failed to update snapshot: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_networks WHERE snapshot_id = ?`, snap.ID); err != nil {
			return fmt.Errorf("failed to clear snapshot networks: %w", err)
		}
	}
	snap.UpdatedAt = now

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_networks (snapshot_id, position, network_name) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, name := range snap.Networks {
		if _, err := stmt.ExecContext(ctx, snap.ID, i, name); err != nil {
			return fmt.Errorf("failed to insert network %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("snapshot saved",
		zap.String("name", snap.Name),
		zap.Int("hosts", snap.Hosts),
		zap.Int("networks", len(snap.Networks)),
		zap.Int("connections", snap.Connections))
	return nil
}

// GetSnapshot loads a snapshot including its document
func (r *Repository) GetSnapshot(ctx context.Context, name string) (*repository.Snapshot, error) {
	var (
		snap        repository.Snapshot
		description sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, format, document, host_count, connection_count, created_at, updated_at
		FROM snapshots WHERE name = ?
	`, name).Scan(&snap.ID, &snap.Name, &description, &snap.Format, &snap.Document,
		&snap.Hosts, &snap.Connections, &snap.CreatedAt, &snap.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: snapshot %q", domain.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	snap.Description = nullToString(description)

	networks, err := r.networksFor(ctx, []string{snap.ID})
	if err != nil {
		return nil, err
	}
	snap.Networks = networks[snap.ID]
	return &snap, nil
}

// ListSnapshots returns all snapshots without their documents
func (r *Repository) ListSnapshots(ctx context.Context) ([]repository.Snapshot, error) {
	return r.listWhere(ctx, "", nil)
}

// FindByNetwork lists snapshots containing the named network
func (r *Repository) FindByNetwork(ctx context.Context, network string) ([]repository.Snapshot, error) {
	return r.listWhere(ctx,
		`WHERE id IN (SELECT snapshot_id FROM snapshot_networks WHERE network_name = ?)`,
		[]any{network})
}

func (r *Repository) listWhere(ctx context.Context, where string, args []any) ([]repository.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, format, host_count, connection_count, created_at, updated_at
		FROM snapshots `+where+`
		ORDER BY name
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var (
		snaps []repository.Snapshot
		ids   []string
	)
	for rows.Next() {
		var (
			snap        repository.Snapshot
			description sql.NullString
		)
		if err := rows.Scan(&snap.ID, &snap.Name, &description, &snap.Format,
			&snap.Hosts, &snap.Connections, &snap.CreatedAt, &snap.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snap.Description = nullToString(description)
		snaps = append(snaps, snap)
		ids = append(ids, snap.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	rows.Close()

	networks, err := r.networksFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range snaps {
		snaps[i].Networks = networks[snaps[i].ID]
	}
	return snaps, nil
}

// networksFor loads network names per snapshot id, in stored order
func (r *Repository) networksFor(ctx context.Context, ids []string) (map[string][]string, error) {
	out := make(map[string][]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT snapshot_id, network_name FROM snapshot_networks
		WHERE snapshot_id IN (`+placeholders+`)
		ORDER BY snapshot_id, position
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot networks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot network: %w", err)
		}
		out[id] = append(out[id], name)
	}
	return out, rows.Err()
}

// DeleteSnapshot removes a snapshot and its network rows
func (r *Repository) DeleteSnapshot(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: snapshot %q", domain.ErrNotFound, name)
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
