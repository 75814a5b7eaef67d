// Package session serializes access to one deployment engine and connects
// it to persistence and the event stream.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/zuckel/ImperialCommander2/internal/deploy"
	"github.com/zuckel/ImperialCommander2/internal/log"
	"github.com/zuckel/ImperialCommander2/internal/store"
)

// ErrNoStore is returned by Save and Load on a session without a store.
var ErrNoStore = errors.New("session has no store")

// ErrUnknownSession is returned by Load for an id the store has never seen.
var ErrUnknownSession = errors.New("unknown session")

// Options configures a new Session.
type Options struct {
	ID      string // empty: a new random id
	Catalog *deploy.Catalog
	Setup   deploy.Setup
	Seed    int64 // 0 for random
	Source  deploy.Source
	Economy deploy.Economy
	Store   store.Store // optional
	Logger  zerolog.Logger
}

// Session holds one engine. All methods are safe for concurrent use; engine
// operations run one at a time.
type Session struct {
	mu       sync.Mutex
	id       string
	engine   *deploy.Engine
	triggers *TriggerLog
	events   *log.FanoutLogger
	store    store.Store
	logger   zerolog.Logger
}

// New creates a session with empty pools.
func New(opts Options) (*Session, error) {
	id := opts.ID
	if id == "" {
		id = store.NewSessionID()
	}
	if err := store.ValidateID(id); err != nil {
		return nil, err
	}
	logger := opts.Logger.With().Str("session", id).Logger()
	s := &Session{
		id:       id,
		triggers: &TriggerLog{},
		events:   log.NewFanoutLogger(),
		store:    opts.Store,
		logger:   logger,
	}
	engine, err := deploy.NewEngine(deploy.Config{
		Catalog:  opts.Catalog,
		Setup:    opts.Setup,
		Source:   opts.Source,
		Seed:     opts.Seed,
		Economy:  opts.Economy,
		Triggers: s.triggers,
		Events:   s.events,
		Logger:   &logger,
	})
	if err != nil {
		return nil, err
	}
	s.engine = engine
	logger.Info().Int("threat", opts.Economy.Threat).Msg("session started")
	return s, nil
}

func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Events returns the session's event log, which also feeds subscribers.
func (s *Session) Events() *log.FanoutLogger { return s.events }

// State returns a view of the current state.
func (s *Session) State() StateView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() StateView {
	return BuildStateView(s.id, s.engine, *s.triggers)
}

// Threat returns the current threat budget.
func (s *Session) Threat() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Economy().Threat
}

// ModifyThreat adds delta to the threat budget.
func (s *Session) ModifyThreat(delta int, reason string) StateView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.ModifyThreat(delta, reason)
	return s.stateLocked()
}

// BuildHand builds a new deployment hand and manual deployment list.
func (s *Session) BuildHand(earned []string, threatLevel int) (StateView, error) {
	ids, err := deploy.ParseGroupIDs(earned)
	if err != nil {
		return StateView{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.BuildDeploymentHand(ids, threatLevel)
	s.engine.BuildManualDeploymentList()
	return s.stateLocked(), nil
}

// BuildManualList rebuilds only the manual deployment list.
func (s *Session) BuildManualList() StateView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.BuildManualDeploymentList()
	return s.stateLocked()
}

// PickDeployable runs the fuzzy selector without moving anything.
func (s *Session) PickDeployable(threat int, onslaught bool) (GroupView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ci, ok := s.engine.PickFuzzyDeployable(threat, onslaught)
	if !ok {
		return GroupView{}, false
	}
	return s.viewLocked(ci), true
}

// DeployFuzzy picks a group with the fuzzy selector at the current threat
// and deploys it, paying its cost.
func (s *Session) DeployFuzzy(onslaught bool) (GroupView, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ci, ok := s.engine.PickFuzzyDeployable(s.engine.Economy().Threat, onslaught)
	if !ok {
		return GroupView{}, false, nil
	}
	ci, err := s.engine.DeployFromHand(ci.ID(), onslaught)
	if err != nil {
		return GroupView{}, false, err
	}
	return s.viewLocked(ci), true, nil
}

// Deploy places a group from the deployment hand, paying its cost, or from
// the manual deployment list for free.
func (s *Session) Deploy(rawID string, onslaught bool) (GroupView, error) {
	id, err := deploy.ParseGroupID(rawID)
	if err != nil {
		return GroupView{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ci, err := s.engine.DeployFromHand(id, onslaught)
	if errors.Is(err, deploy.ErrNotFound) {
		ci, err = s.engine.DeployManual(id)
	}
	if err != nil {
		return GroupView{}, err
	}
	return s.viewLocked(ci), nil
}

// PickReinforcement runs the reinforcement selector without changing anything.
func (s *Session) PickReinforcement(threat int, onslaught bool) (GroupView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ci, ok := s.engine.PickReinforcement(threat, onslaught)
	if !ok {
		return GroupView{}, false
	}
	return s.viewLocked(ci), true
}

// ReinforceRandom picks a group at the current threat and reinforces it.
func (s *Session) ReinforceRandom(onslaught bool) (GroupView, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ci, ok := s.engine.PickReinforcement(s.engine.Economy().Threat, onslaught)
	if !ok {
		return GroupView{}, false, nil
	}
	if _, err := s.engine.ResolveReinforce(ci.ID(), onslaught); err != nil {
		return GroupView{}, false, err
	}
	return s.viewLocked(ci), true, nil
}

// Reinforce adds a figure to a deployed group.
func (s *Session) Reinforce(rawID string, onslaught bool) (bool, error) {
	id, err := deploy.ParseGroupID(rawID)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.ResolveReinforce(id, onslaught)
}

// Defeat resolves the defeat of a deployed enemy group.
func (s *Session) Defeat(rawID string) (deploy.DefeatResult, error) {
	id, err := deploy.ParseGroupID(rawID)
	if err != nil {
		return deploy.DefeatResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.ResolveDefeat(id)
}

// DeployHero adds a hero or ally to the board.
func (s *Session) DeployHero(rawID string) (GroupView, error) {
	id, err := deploy.ParseGroupID(rawID)
	if err != nil {
		return GroupView{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ci, err := s.engine.DeployHeroOrAlly(id)
	if err != nil {
		return GroupView{}, err
	}
	return s.viewLocked(ci), nil
}

// SetOverride stores an override. It reports false for a malformed entry.
func (s *Session) SetOverride(o *deploy.Override) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.SetOverride(o)
}

// RemoveOverride deletes the override for a group.
func (s *Session) RemoveOverride(rawID string) (bool, error) {
	id, err := deploy.ParseGroupID(rawID)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.RemoveOverride(id), nil
}

// Override returns a copy of the override for a group.
func (s *Session) Override(rawID string) (deploy.Override, bool, error) {
	id, err := deploy.ParseGroupID(rawID)
	if err != nil {
		return deploy.Override{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.engine.Override(id)
	if !ok {
		return deploy.Override{}, false, nil
	}
	return *o, true, nil
}

// groupOp parses rawID and runs op on the engine under the lock.
func (s *Session) groupOp(rawID string, op func(deploy.GroupID) (*deploy.CardInstance, error)) (GroupView, error) {
	id, err := deploy.ParseGroupID(rawID)
	if err != nil {
		return GroupView{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ci, err := op(id)
	if err != nil {
		return GroupView{}, err
	}
	return s.viewLocked(ci), nil
}

// SetGroupSize sets the figure count of a group on the board, as when
// figures are lost.
func (s *Session) SetGroupSize(rawID string, size int) (GroupView, error) {
	return s.groupOp(rawID, func(id deploy.GroupID) (*deploy.CardInstance, error) {
		return s.engine.SetGroupSize(id, size)
	})
}

// ToggleExhausted exhausts or readies a group on the board.
func (s *Session) ToggleExhausted(rawID string, exhausted bool) (GroupView, error) {
	return s.groupOp(rawID, func(id deploy.GroupID) (*deploy.CardInstance, error) {
		return s.engine.ToggleExhausted(id, exhausted)
	})
}

// MarkActivated records a group's activation.
func (s *Session) MarkActivated(rawID string, a deploy.Activation) (GroupView, error) {
	return s.groupOp(rawID, func(id deploy.GroupID) (*deploy.CardInstance, error) {
		return s.engine.MarkActivated(id, a)
	})
}

// CycleColor advances a group's colour pip.
func (s *Session) CycleColor(rawID string) (GroupView, error) {
	return s.groupOp(rawID, func(id deploy.GroupID) (*deploy.CardInstance, error) {
		if _, err := s.engine.CycleColor(id); err != nil {
			return nil, err
		}
		return s.engine.FindOnBoard(id)
	})
}

// Counterpart returns the elite version of a regular group or the regular
// version of an elite one. ok is false when no counterpart is available.
func (s *Session) Counterpart(rawID string) (GroupView, bool, error) {
	id, err := deploy.ParseGroupID(rawID)
	if err != nil {
		return GroupView{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	card, err := s.engine.Catalog().Enemy(id)
	if err != nil {
		return GroupView{}, false, err
	}
	var other *deploy.Card
	var ok bool
	if card.IsElite {
		other, ok = s.engine.NonEliteVersion(card)
	} else {
		other, ok = s.engine.EliteVersion(card)
	}
	if !ok {
		return GroupView{}, false, nil
	}
	return BuildGroupView(deploy.NewCardInstance(other), nil), true, nil
}

// RemoveHero takes a hero or ally off the board.
func (s *Session) RemoveHero(rawID string) error {
	id, err := deploy.ParseGroupID(rawID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.RemoveHeroOrAlly(id)
}

// EndRound readies every group on the board.
func (s *Session) EndRound() StateView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.ReadyAll()
	return s.stateLocked()
}

// Save writes the session to its store under the session id.
func (s *Session) Save(ctx context.Context) error {
	if s.store == nil {
		return ErrNoStore
	}
	s.mu.Lock()
	id := s.id
	snap := s.engine.Snapshot()
	s.mu.Unlock()
	if err := s.store.Save(ctx, id, snap); err != nil {
		return fmt.Errorf("save session %s: %w", id, err)
	}
	s.logger.Info().Int("threat", snap.Economy.Threat).Msg("session saved")
	return nil
}

// Load replaces the engine state with the snapshot saved under id. The
// session takes over that id, so the next Save overwrites it.
func (s *Session) Load(ctx context.Context, id string) error {
	if s.store == nil {
		return ErrNoStore
	}
	snap, found, err := s.store.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("load session %s: %w", id, err)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.Restore(snap); err != nil {
		return fmt.Errorf("restore session %s: %w", id, err)
	}
	s.id = id
	s.logger = s.logger.With().Str("restored", id).Logger()
	s.logger.Info().Msg("session restored")
	return nil
}

func (s *Session) viewLocked(ci *deploy.CardInstance) GroupView {
	o, _ := s.engine.Override(ci.ID())
	return BuildGroupView(ci, o)
}
