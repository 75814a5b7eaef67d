package deploy

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/zuckel/ImperialCommander2/internal/log"
)

// ErrNotFound is returned when an id is absent from the pool or catalog an
// operation looks in. It is never fatal to the engine.
var ErrNotFound = errors.New("group not found")

// Triggers is the external event-trigger collaborator.
type Triggers interface {
	// FireTrigger sets a named mission trigger.
	FireTrigger(name string)
	// DoEvent runs a named mission event.
	DoEvent(name string)
	// CheckIfEventsTriggered is called when no enemy groups remain deployed.
	CheckIfEventsTriggered()
}

type nopTriggers struct{}

func (nopTriggers) FireTrigger(string)      {}
func (nopTriggers) DoEvent(string)          {}
func (nopTriggers) CheckIfEventsTriggered() {}

// Setup is the per-session configuration chosen before the first round.
type Setup struct {
	OwnedExpansions []string
	Faction         Faction
	Ignored         []GroupID
	Starting        []GroupID
	Reserved        []GroupID
	// AdaptiveDifficulty grants fame and refunds threat on each defeat.
	AdaptiveDifficulty bool
}

// Config holds configuration for creating a new Engine.
type Config struct {
	Catalog  *Catalog
	Setup    Setup
	Source   Source // nil: seeded from Seed
	Seed     int64  // used when Source is nil (0 for random)
	Economy  Economy
	Triggers Triggers
	Events   log.EventLogger
	Logger   *zerolog.Logger
}

// Engine owns every pool, the override table and the economy for one
// session. It is not safe for concurrent use; the session driver serializes
// calls.
type Engine struct {
	catalog  *Catalog
	setup    Setup
	rng      Source
	triggers Triggers
	events   log.EventLogger
	logger   zerolog.Logger

	owned    map[string]bool
	ignored  idSet
	starting idSet
	reserved idSet

	hand           []*CardInstance
	manualList     []*CardInstance
	deployed       []*CardInstance
	deployedHeroes []*CardInstance
	eventQueue     []string

	earnedVillains   []GroupID
	villainsToManual []*CardInstance
	cannotRedeploy   []GroupID

	overrides *OverrideTable
	economy   Economy
}

// NewEngine creates an engine with empty pools.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	rng := cfg.Source
	if rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			s, err := NewSeed()
			if err != nil {
				return nil, err
			}
			seed = s
		}
		rng = NewSource(seed)
	}
	triggers := cfg.Triggers
	if triggers == nil {
		triggers = nopTriggers{}
	}
	events := cfg.Events
	if events == nil {
		events = log.NewMemoryLogger()
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "deploy").Logger()
	}

	e := &Engine{
		catalog:   cfg.Catalog,
		setup:     cfg.Setup,
		rng:       rng,
		triggers:  triggers,
		events:    events,
		logger:    logger,
		owned:     make(map[string]bool),
		ignored:   newIDSet(cfg.Setup.Ignored),
		starting:  newIDSet(cfg.Setup.Starting),
		reserved:  newIDSet(cfg.Setup.Reserved),
		overrides: NewOverrideTable(),
		economy:   cfg.Economy,
	}
	for _, x := range cfg.Setup.OwnedExpansions {
		e.owned[x] = true
	}
	return e, nil
}

func (e *Engine) log(ev log.GameEvent) {
	e.events.Log(ev)
}

// --- Accessors (copies; pools are only changed through operations) ---

func (e *Engine) Catalog() *Catalog { return e.catalog }

func (e *Engine) Setup() Setup { return e.setup }

func (e *Engine) Events() log.EventLogger { return e.events }

func (e *Engine) Hand() []*CardInstance { return cloneSlice(e.hand) }

func (e *Engine) ManualList() []*CardInstance { return cloneSlice(e.manualList) }

func (e *Engine) DeployedEnemies() []*CardInstance { return cloneSlice(e.deployed) }

func (e *Engine) DeployedHeroes() []*CardInstance { return cloneSlice(e.deployedHeroes) }

func (e *Engine) EarnedVillains() []GroupID { return cloneSlice(e.earnedVillains) }

func (e *Engine) CannotRedeployList() []GroupID { return cloneSlice(e.cannotRedeploy) }

// DeferredVillains returns earned villains waiting for the manual list.
func (e *Engine) DeferredVillains() []*CardInstance { return cloneSlice(e.villainsToManual) }

func (e *Engine) EventQueue() []string { return cloneSlice(e.eventQueue) }

// SetEventQueue replaces the remaining mission event queue.
func (e *Engine) SetEventQueue(ids []string) { e.eventQueue = cloneSlice(ids) }

func (e *Engine) Economy() Economy { return e.economy }

// ModifyThreat changes the threat budget, clamped at zero.
func (e *Engine) ModifyThreat(delta int, reason string) {
	old := e.economy.Threat
	e.economy.ModifyThreat(delta)
	if old != e.economy.Threat {
		e.log(log.NewThreatChangeEvent(old, e.economy.Threat, reason))
	}
}

// Overrides exposes the override table.
func (e *Engine) Overrides() *OverrideTable { return e.overrides }

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append([]T(nil), s...)
}

// --- Pool helpers ---

func indexOf(pool []*CardInstance, id GroupID) int {
	for i, ci := range pool {
		if ci.ID() == id {
			return i
		}
	}
	return -1
}

func containsID(pool []*CardInstance, id GroupID) bool {
	return indexOf(pool, id) >= 0
}

func removeID(pool []*CardInstance, id GroupID) ([]*CardInstance, *CardInstance) {
	i := indexOf(pool, id)
	if i < 0 {
		return pool, nil
	}
	ci := pool[i]
	return append(pool[:i], pool[i+1:]...), ci
}

func idStrings(pool []*CardInstance) []string {
	out := make([]string, 0, len(pool))
	for _, ci := range pool {
		out = append(out, ci.ID().String())
	}
	return out
}

// FindDeployed returns a deployed enemy group by id.
func (e *Engine) FindDeployed(id GroupID) (*CardInstance, error) {
	i := indexOf(e.deployed, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s is not deployed", ErrNotFound, id)
	}
	return e.deployed[i], nil
}

// --- Overrides ---

// Override returns the override for id. Absence means the default-open policy.
func (e *Engine) Override(id GroupID) (*Override, bool) {
	return e.overrides.Get(id)
}

// SetOverride stores o. Malformed entries are ignored and reported false.
func (e *Engine) SetOverride(o *Override) bool {
	if !e.overrides.Set(o) {
		e.logger.Debug().Msg("ignoring malformed override")
		return false
	}
	e.log(log.NewOverrideSetEvent(e.economy.Threat, o.ID.String()))
	return true
}

// RemoveOverride deletes the override for id, if any.
func (e *Engine) RemoveOverride(id GroupID) bool {
	if !e.overrides.Remove(id) {
		return false
	}
	e.log(log.NewOverrideRemovedEvent(e.economy.Threat, id.String()))
	return true
}

// effectiveCard returns the custom definition when an override substitutes one.
func (e *Engine) effectiveCard(card *Card) *Card {
	if o, ok := e.overrides.Get(card.ID); ok && o.IsCustom && o.CustomCard != nil {
		return o.CustomCard
	}
	return card
}
