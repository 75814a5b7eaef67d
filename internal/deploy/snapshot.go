package deploy

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zuckel/ImperialCommander2/internal/log"
)

// ErrMalformedSnapshot is returned when a snapshot breaks a pool invariant.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// InstanceRecord is the serialized form of a CardInstance. The full card
// definition is stored so custom groups survive a catalog change.
type InstanceRecord struct {
	Card         Card       `json:"card"`
	CurrentSize  int        `json:"currentSize"`
	HasActivated bool       `json:"hasActivated"`
	ColorIndex   int        `json:"colorIndex"`
	Activation   Activation `json:"activation"`
}

// Snapshot is the persisted session state. The first five fields are the
// independent pools a session save is made of; the rest is rule state that
// must survive a restore.
type Snapshot struct {
	DeploymentHand   []InstanceRecord `json:"deploymentHand"`
	ManualDeployment []InstanceRecord `json:"manualDeployment"`
	DeployedEnemies  []InstanceRecord `json:"deployedEnemies"`
	DeployedHeroes   []InstanceRecord `json:"deployedHeroes"`
	Events           []string         `json:"events"`

	EarnedVillains   []GroupID        `json:"earnedVillains"`
	DeferredVillains []InstanceRecord `json:"deferredVillains"`
	CannotRedeploy   []GroupID        `json:"cannotRedeploy"`
	Overrides        []*Override      `json:"overrides"`
	Economy          Economy          `json:"economy"`
}

func recordsOf(pool []*CardInstance) []InstanceRecord {
	out := make([]InstanceRecord, 0, len(pool))
	for _, ci := range pool {
		out = append(out, InstanceRecord{
			Card:         *ci.Card,
			CurrentSize:  ci.CurrentSize,
			HasActivated: ci.HasActivated,
			ColorIndex:   ci.ColorIndex,
			Activation:   ci.Activation,
		})
	}
	return out
}

// Snapshot captures the engine's pools and rule state.
func (e *Engine) Snapshot() Snapshot {
	overrides := make([]*Override, 0, e.overrides.Len())
	for _, o := range e.overrides.Entries() {
		cp := *o
		overrides = append(overrides, &cp)
	}
	return Snapshot{
		DeploymentHand:   recordsOf(e.hand),
		ManualDeployment: recordsOf(e.manualList),
		DeployedEnemies:  recordsOf(e.deployed),
		DeployedHeroes:   recordsOf(e.deployedHeroes),
		Events:           cloneSlice(e.eventQueue),
		EarnedVillains:   cloneSlice(e.earnedVillains),
		DeferredVillains: recordsOf(e.villainsToManual),
		CannotRedeploy:   cloneSlice(e.cannotRedeploy),
		Overrides:        overrides,
		Economy:          e.economy,
	}
}

// Restore replaces the engine's state with s. The engine is left unchanged
// when s is malformed.
func (e *Engine) Restore(s Snapshot) error {
	hand, err := e.instancesOf(s.DeploymentHand)
	if err != nil {
		return fmt.Errorf("deployment hand: %w", err)
	}
	manual, err := e.instancesOf(s.ManualDeployment)
	if err != nil {
		return fmt.Errorf("manual deployment: %w", err)
	}
	deployed, err := e.instancesOf(s.DeployedEnemies)
	if err != nil {
		return fmt.Errorf("deployed enemies: %w", err)
	}
	heroes, err := e.instancesOf(s.DeployedHeroes)
	if err != nil {
		return fmt.Errorf("deployed heroes: %w", err)
	}
	deferred, err := e.instancesOf(s.DeferredVillains)
	if err != nil {
		return fmt.Errorf("deferred villains: %w", err)
	}

	seen := make(idSet)
	for _, pool := range [][]*CardInstance{hand, manual, deployed} {
		for _, ci := range pool {
			if seen[ci.ID()] {
				return fmt.Errorf("%w: %s is in more than one pool", ErrMalformedSnapshot, ci.ID())
			}
			seen[ci.ID()] = true
		}
	}

	overrides := NewOverrideTable()
	for _, o := range s.Overrides {
		// malformed overrides are treated as absent
		overrides.Set(o)
	}

	e.hand = hand
	e.manualList = manual
	e.deployed = deployed
	e.deployedHeroes = heroes
	e.eventQueue = cloneSlice(s.Events)
	e.earnedVillains = cloneSlice(s.EarnedVillains)
	e.villainsToManual = deferred
	e.cannotRedeploy = cloneSlice(s.CannotRedeploy)
	e.overrides = overrides
	e.economy = s.Economy

	e.log(log.NewRestoreEvent(e.economy.Threat, len(hand), len(manual), len(deployed)))
	return nil
}

// instancesOf rebuilds instances, sharing the catalog definition whenever
// the stored card matches it.
func (e *Engine) instancesOf(records []InstanceRecord) ([]*CardInstance, error) {
	out := make([]*CardInstance, 0, len(records))
	for _, r := range records {
		if r.Card.ID.IsZero() {
			return nil, fmt.Errorf("%w: record without id", ErrMalformedSnapshot)
		}
		if r.CurrentSize < 0 || r.CurrentSize > r.Card.Size {
			return nil, fmt.Errorf("%w: %s has size %d of %d", ErrMalformedSnapshot, r.Card.ID, r.CurrentSize, r.Card.Size)
		}
		var card *Card
		if c, ok := e.catalog.Lookup(r.Card.ID); ok && *c == r.Card {
			card = c
		} else {
			cp := r.Card
			card = &cp
		}
		out = append(out, &CardInstance{
			Card:         card,
			CurrentSize:  r.CurrentSize,
			HasActivated: r.HasActivated,
			ColorIndex:   r.ColorIndex,
			Activation:   r.Activation,
		})
	}
	return out, nil
}

// MarshalSnapshot encodes a snapshot as JSON.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalSnapshot decodes a snapshot from JSON.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}
