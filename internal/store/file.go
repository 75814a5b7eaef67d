package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/zuckel/ImperialCommander2/internal/deploy"
)

// Session directory layout. Each pool is an independent file so a partial
// save still restores the pools it did write.
const (
	handFile     = "deploymenthand.json"
	manualFile   = "manualdeployment.json"
	deployedFile = "deployedenemies.json"
	heroesFile   = "heroesallies.json"
	eventsFile   = "events.json"
	sessionFile  = "session.json"
)

// sessionState is the rule state outside the five pools.
type sessionState struct {
	EarnedVillains   []deploy.GroupID        `json:"earnedVillains"`
	DeferredVillains []deploy.InstanceRecord `json:"deferredVillains"`
	CannotRedeploy   []deploy.GroupID        `json:"cannotRedeploy"`
	Overrides        []*deploy.Override      `json:"overrides"`
	Economy          deploy.Economy          `json:"economy"`
}

// FileStore keeps one directory of JSON files per session.
type FileStore struct {
	root string
}

// NewFileStore creates root if needed.
func NewFileStore(root string) (*FileStore, error) {
	if root == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{root: root}, nil
}

func (f *FileStore) Close() error { return nil }

func (f *FileStore) Save(ctx context.Context, sessionID string, s deploy.Snapshot) error {
	if err := ValidateID(sessionID); err != nil {
		return err
	}
	dir := filepath.Join(f.root, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	files := []struct {
		name string
		v    any
	}{
		{handFile, s.DeploymentHand},
		{manualFile, s.ManualDeployment},
		{deployedFile, s.DeployedEnemies},
		{heroesFile, s.DeployedHeroes},
		{eventsFile, s.Events},
		{sessionFile, sessionState{
			EarnedVillains:   s.EarnedVillains,
			DeferredVillains: s.DeferredVillains,
			CannotRedeploy:   s.CannotRedeploy,
			Overrides:        s.Overrides,
			Economy:          s.Economy,
		}},
	}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeJSON(filepath.Join(dir, file.name), file.v); err != nil {
			return err
		}
	}
	return nil
}

func (f *FileStore) Load(ctx context.Context, sessionID string) (deploy.Snapshot, bool, error) {
	if err := ValidateID(sessionID); err != nil {
		return deploy.Snapshot{}, false, err
	}
	dir := filepath.Join(f.root, sessionID)
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return deploy.Snapshot{}, false, nil
	} else if err != nil {
		return deploy.Snapshot{}, false, fmt.Errorf("stat session directory: %w", err)
	}

	var s deploy.Snapshot
	var state sessionState
	files := []struct {
		name string
		v    any
	}{
		{handFile, &s.DeploymentHand},
		{manualFile, &s.ManualDeployment},
		{deployedFile, &s.DeployedEnemies},
		{heroesFile, &s.DeployedHeroes},
		{eventsFile, &s.Events},
		{sessionFile, &state},
	}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return deploy.Snapshot{}, false, err
		}
		// a missing file is an empty pool
		if err := readJSON(filepath.Join(dir, file.name), file.v); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return deploy.Snapshot{}, false, err
		}
	}
	s.EarnedVillains = state.EarnedVillains
	s.DeferredVillains = state.DeferredVillains
	s.CannotRedeploy = state.CannotRedeploy
	s.Overrides = state.Overrides
	s.Economy = state.Economy
	return s, true, nil
}

// Delete removes the session directory. Deleting an unknown session is not
// an error.
func (f *FileStore) Delete(ctx context.Context, sessionID string) error {
	if err := ValidateID(sessionID); err != nil {
		return err
	}
	if err := os.RemoveAll(filepath.Join(f.root, sessionID)); err != nil {
		return fmt.Errorf("remove session directory: %w", err)
	}
	return nil
}

// writeJSON replaces path atomically.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
