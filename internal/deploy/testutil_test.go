package deploy

import (
	"testing"

	"github.com/zuckel/ImperialCommander2/internal/log"
)

// scriptedSource is a Source that replays queued answers. Perm answers are
// consumed only for n > 0, matching the real source's contract that an
// empty draw consumes nothing. An unscripted Perm returns the identity.
type scriptedSource struct {
	t     *testing.T
	bools []bool
	perms [][]int

	boolCalls int
	permCalls int
}

func newScriptedSource(t *testing.T) *scriptedSource {
	return &scriptedSource{t: t}
}

func (s *scriptedSource) AddBool(b ...bool) *scriptedSource {
	s.bools = append(s.bools, b...)
	return s
}

func (s *scriptedSource) AddPerm(p ...int) *scriptedSource {
	s.perms = append(s.perms, p)
	return s
}

func (s *scriptedSource) Bool() bool {
	s.boolCalls++
	if len(s.bools) == 0 {
		s.t.Fatalf("unexpected coin flip #%d", s.boolCalls)
	}
	b := s.bools[0]
	s.bools = s.bools[1:]
	return b
}

func (s *scriptedSource) Perm(n int) []int {
	if n <= 0 {
		return nil
	}
	s.permCalls++
	if len(s.perms) == 0 {
		p := make([]int, n)
		for i := range p {
			p[i] = i
		}
		return p
	}
	p := s.perms[0]
	s.perms = s.perms[1:]
	if len(p) != n {
		s.t.Fatalf("perm #%d scripted with %d entries, drawn with n=%d", s.permCalls, len(p), n)
	}
	return p
}

// --- Card helpers ---

func enemy(id string, tier, cost int) *Card {
	return &Card{
		ID:        MustParseGroupID(id),
		Name:      "Group " + id,
		Tier:      tier,
		Cost:      cost,
		RCost:     2,
		Size:      3,
		Faction:   FactionImperial,
		Expansion: "Core",
		Fame:      2,
		Reimb:     1,
	}
}

func villain(id string, tier, cost int) *Card {
	c := enemy(id, tier, cost)
	c.Name = "Villain " + id
	c.RCost = 0
	c.Size = 1
	return c
}

func hero(id string) *Card {
	return &Card{ID: MustParseGroupID(id), Name: "Hero " + id, Size: 1}
}

func ids(s ...string) []GroupID {
	out := make([]GroupID, 0, len(s))
	for _, x := range s {
		out = append(out, MustParseGroupID(x))
	}
	return out
}

func mustCatalog(t *testing.T, enemies, villains []*Card) *Catalog {
	t.Helper()
	cat, err := NewCatalog(enemies, villains, nil, []*Card{hero("H1"), hero("H2")})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return cat
}

// newTestEngine builds an engine owning the Core expansion with a scripted
// source and a memory logger.
func newTestEngine(t *testing.T, cat *Catalog, src Source, setup Setup) (*Engine, *log.MemoryLogger) {
	t.Helper()
	if setup.OwnedExpansions == nil {
		setup.OwnedExpansions = []string{"Core"}
	}
	logger := log.NewMemoryLogger()
	e, err := NewEngine(Config{
		Catalog: cat,
		Setup:   setup,
		Source:  src,
		Economy: Economy{Threat: 10},
		Events:  logger,
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e, logger
}

func poolIDs(pool []*CardInstance) []string {
	out := make([]string, 0, len(pool))
	for _, ci := range pool {
		out = append(out, ci.ID().String())
	}
	return out
}

func cardIDStrings(cards []*Card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.ID.String())
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// recordingTriggers counts trigger collaborator calls.
type recordingTriggers struct {
	triggers []string
	events   []string
	checks   int
}

func (r *recordingTriggers) FireTrigger(name string) { r.triggers = append(r.triggers, name) }
func (r *recordingTriggers) DoEvent(name string)     { r.events = append(r.events, name) }
func (r *recordingTriggers) CheckIfEventsTriggered() { r.checks++ }
