// Package store persists deployment session snapshots.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/zuckel/ImperialCommander2/internal/config"
	"github.com/zuckel/ImperialCommander2/internal/deploy"
	"github.com/zuckel/ImperialCommander2/internal/store/redis"
	"github.com/zuckel/ImperialCommander2/internal/store/sqlite"
)

// Store saves and loads snapshots by session id. Load reports found=false,
// with a nil error, for an unknown session.
type Store interface {
	Save(ctx context.Context, sessionID string, s deploy.Snapshot) error
	Load(ctx context.Context, sessionID string) (deploy.Snapshot, bool, error)
	Delete(ctx context.Context, sessionID string) error
	Close() error
}

// threatReader is implemented by backends that keep the threat beside the
// snapshot.
type threatReader interface {
	Threat(ctx context.Context, sessionID string) (int, bool, error)
}

// SavedThreat returns the threat of a saved session. Backends that index the
// threat answer without decoding the snapshot.
func SavedThreat(ctx context.Context, st Store, sessionID string) (int, bool, error) {
	if tr, ok := st.(threatReader); ok {
		return tr.Threat(ctx, sessionID)
	}
	snap, found, err := st.Load(ctx, sessionID)
	if err != nil || !found {
		return 0, found, err
	}
	return snap.Economy.Threat, true, nil
}

// NewSessionID returns a fresh random session id.
func NewSessionID() string {
	return uuid.NewString()
}

// ValidateID rejects ids that are empty or could escape a directory.
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("session id is required")
	}
	if id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("invalid session id %q", id)
	}
	return nil
}

// Open returns the backend named by cfg.Store.
func Open(cfg config.Config) (Store, error) {
	var (
		st  Store
		err error
	)
	switch cfg.Store {
	case config.StoreFile:
		st, err = NewFileStore(cfg.DataDir)
	case config.StoreSQLite:
		st, err = sqlite.Open(cfg.SQLitePath)
	case config.StoreRedis:
		st, err = redis.NewClient(cfg.RedisURL, 0)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	return st, nil
}
