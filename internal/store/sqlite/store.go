// Package sqlite stores session snapshots in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/zuckel/ImperialCommander2/internal/deploy"
	"github.com/zuckel/ImperialCommander2/internal/store/sqlite/migrations"
)

// Store provides SQLite-backed snapshot persistence.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens and migrates a session SQLite store.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB, now: time.Now}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save upserts the snapshot for sessionID.
func (s *Store) Save(ctx context.Context, sessionID string, snap deploy.Snapshot) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}
	data, err := deploy.MarshalSnapshot(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	now := s.now().UTC().UnixMilli()
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO sessions (id, snapshot_json, threat, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   snapshot_json = excluded.snapshot_json,
		   threat = excluded.threat,
		   updated_at = excluded.updated_at`,
		sessionID, string(data), snap.Economy.Threat, now, now,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the snapshot for sessionID. found is false when no row exists.
func (s *Store) Load(ctx context.Context, sessionID string) (deploy.Snapshot, bool, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return deploy.Snapshot{}, false, fmt.Errorf("session id is required")
	}
	var data string
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT snapshot_json FROM sessions WHERE id = ?`, sessionID,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return deploy.Snapshot{}, false, nil
	}
	if err != nil {
		return deploy.Snapshot{}, false, fmt.Errorf("load session: %w", err)
	}
	snap, err := deploy.UnmarshalSnapshot([]byte(data))
	if err != nil {
		return deploy.Snapshot{}, false, err
	}
	return snap, true, nil
}

// Delete removes the row for sessionID, if any.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// SessionInfo is a row summary for listings.
type SessionInfo struct {
	ID        string
	Threat    int
	UpdatedAt time.Time
}

// List returns saved sessions, most recently updated first.
func (s *Store) List(ctx context.Context) ([]SessionInfo, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, threat, updated_at FROM sessions ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionInfo
	for rows.Next() {
		var info SessionInfo
		var updated int64
		if err := rows.Scan(&info.ID, &info.Threat, &updated); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		info.UpdatedAt = time.UnixMilli(updated).UTC()
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return out, nil
}
