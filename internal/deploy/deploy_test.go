package deploy

import (
	"errors"
	"testing"
)

func TestDeployManualIsFree(t *testing.T) {
	a := enemy("DG001", 1, 5)
	cat := mustCatalog(t, []*Card{a}, nil)
	e, _ := newTestEngine(t, cat, newScriptedSource(t), Setup{})
	e.manualList = handOf(a)

	if _, err := e.DeployManual(a.ID); err != nil {
		t.Fatal(err)
	}
	if e.Economy().Threat != 10 {
		t.Errorf("threat = %d, manual placement should be free", e.Economy().Threat)
	}
	if len(e.ManualList()) != 0 || len(e.DeployedEnemies()) != 1 {
		t.Error("group should move from the manual list to the board")
	}
	if _, err := e.DeployManual(a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeployUsesCustomOverrideCard(t *testing.T) {
	a := enemy("DG001", 1, 2)
	cat := mustCatalog(t, []*Card{a}, nil)
	e, _ := newTestEngine(t, cat, newScriptedSource(t), Setup{})
	e.hand = handOf(a)

	custom := &Card{ID: MustParseGroupID("X1"), Name: "Custom Squad", Tier: 1, Cost: 2, Size: 5}
	o := NewOverride(a.ID)
	o.IsCustom = true
	o.CustomCard = custom
	if !e.SetOverride(o) {
		t.Fatal("custom override rejected")
	}

	ci, err := e.DeployFromHand(a.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if ci.Card.Name != "Custom Squad" || ci.CurrentSize != 5 {
		t.Errorf("deployed %s at %d", ci.Card.Name, ci.CurrentSize)
	}
	if ci.ID() != a.ID {
		t.Errorf("custom card should keep the group id, got %s", ci.ID())
	}
	if custom.ID.String() != "X1" {
		t.Error("the caller's card must not be modified")
	}
}

func TestHeroDeployIdempotent(t *testing.T) {
	cat := mustCatalog(t, nil, nil)
	e, _ := newTestEngine(t, cat, newScriptedSource(t), Setup{})

	first, err := e.DeployHeroOrAlly(MustParseGroupID("H1"))
	if err != nil {
		t.Fatal(err)
	}
	second, _ := e.DeployHeroOrAlly(MustParseGroupID("H1"))
	if first != second || len(e.DeployedHeroes()) != 1 {
		t.Error("deploying a hero twice should return the same instance")
	}
	if _, err := e.DeployHeroOrAlly(MustParseGroupID("H9")); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := e.RemoveHeroOrAlly(MustParseGroupID("H1")); err != nil {
		t.Fatal(err)
	}
	if len(e.DeployedHeroes()) != 0 {
		t.Error("hero should be removed")
	}
}

func TestGroupStateOperations(t *testing.T) {
	a := enemy("DG001", 1, 2)
	cat := mustCatalog(t, []*Card{a}, nil)
	e, _ := newTestEngine(t, cat, newScriptedSource(t), Setup{})
	e.deployed = handOf(a)

	ci, err := e.MarkActivated(a.ID, Activation{InstructionOption: "attack", BonusName: "Focus"})
	if err != nil {
		t.Fatal(err)
	}
	if !ci.HasActivated || ci.Activation.BonusName != "Focus" {
		t.Errorf("activation not recorded: %+v", ci)
	}

	e.ToggleExhausted(a.ID, false)
	if ci.HasActivated || ci.Activation != (Activation{}) {
		t.Error("readying should clear the activation annotations")
	}
	e.ToggleExhausted(a.ID, true)
	if !ci.HasActivated {
		t.Error("group should be exhausted")
	}
	e.ReadyAll()
	if ci.HasActivated {
		t.Error("ReadyAll should ready the group")
	}

	if _, err := e.SetGroupSize(a.ID, 9); err != nil {
		t.Fatal(err)
	}
	if ci.CurrentSize != a.Size {
		t.Errorf("size = %d, want clamped to %d", ci.CurrentSize, a.Size)
	}
	e.SetGroupSize(a.ID, -1)
	if ci.CurrentSize != 0 {
		t.Errorf("size = %d, want 0", ci.CurrentSize)
	}

	var last int
	for i := 0; i < PipColorCount; i++ {
		last, _ = e.CycleColor(a.ID)
	}
	if last != 0 {
		t.Errorf("colour should wrap after %d steps, got %d", PipColorCount, last)
	}
	if _, err := e.CycleColor(MustParseGroupID("DG099")); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestEliteVersion(t *testing.T) {
	reg := enemy("DG001", 1, 2)
	reg.Name = "Stormtrooper"
	elite := enemy("DG002", 2, 4)
	elite.Name = "Elite Stormtrooper"
	elite.IsElite = true
	other := enemy("DG003", 2, 4)
	other.Name = "Elite Probe Droid"
	other.IsElite = true
	cat := mustCatalog(t, []*Card{reg, elite, other}, nil)
	e, _ := newTestEngine(t, cat, newScriptedSource(t), Setup{})

	got, ok := e.EliteVersion(reg)
	if !ok || got != elite {
		t.Errorf("EliteVersion = %v, want Elite Stormtrooper", got)
	}
	back, ok := e.NonEliteVersion(elite)
	if !ok || back != reg {
		t.Errorf("NonEliteVersion = %v, want Stormtrooper", back)
	}

	e.deployed = handOf(elite)
	if _, ok := e.EliteVersion(reg); ok {
		t.Error("a deployed elite is not available")
	}
}

func TestDeployedGroupsStayOutOfOtherPools(t *testing.T) {
	a, b, c := enemy("DG001", 1, 2), enemy("DG002", 1, 2), enemy("DG010", 2, 4)
	cat := mustCatalog(t, []*Card{a, b, c}, nil)
	e, _ := newTestEngine(t, cat, NewSource(3), Setup{})
	e.economy.Threat = 20

	for _, ci := range e.BuildDeploymentHand(nil, 3) {
		if _, err := e.DeployFromHand(ci.ID(), false); err != nil {
			t.Fatal(err)
		}
	}
	e.BuildManualDeploymentList()

	seen := make(map[string]string)
	for name, pool := range map[string][]*CardInstance{
		"hand":     e.Hand(),
		"manual":   e.ManualList(),
		"deployed": e.DeployedEnemies(),
	} {
		for _, id := range poolIDs(pool) {
			if other, ok := seen[id]; ok {
				t.Errorf("%s is in both %s and %s", id, other, name)
			}
			seen[id] = name
		}
	}

	if _, err := e.DeployManual(a.ID); !errors.Is(err, ErrAlreadyDeployed) {
		t.Errorf("expected ErrAlreadyDeployed, got %v", err)
	}
	if len(e.DeployedEnemies()) != 3 {
		t.Errorf("deployed = %v", poolIDs(e.DeployedEnemies()))
	}

	if err := e.Restore(e.Snapshot()); err != nil {
		t.Errorf("engine snapshot should restore: %v", err)
	}

	// a rebuilt hand skips the board too
	if hand := e.BuildDeploymentHand(nil, 3); len(hand) != 0 {
		t.Errorf("hand = %v, want empty", poolIDs(hand))
	}
}

func TestDeployFromHandRejectsDeployedGroup(t *testing.T) {
	a := enemy("DG001", 1, 2)
	cat := mustCatalog(t, []*Card{a}, nil)
	e, _ := newTestEngine(t, cat, newScriptedSource(t), Setup{})
	e.hand = handOf(a)
	e.deployed = handOf(a)

	if _, err := e.DeployFromHand(a.ID, false); !errors.Is(err, ErrAlreadyDeployed) {
		t.Errorf("expected ErrAlreadyDeployed, got %v", err)
	}
	if e.Economy().Threat != 10 {
		t.Error("a refused deploy must not spend threat")
	}
}

func TestRedeployDropsStaleCustomCard(t *testing.T) {
	a := enemy("DG001", 1, 2)
	cat := mustCatalog(t, []*Card{a}, nil)
	e, _ := newTestEngine(t, cat, newScriptedSource(t), Setup{})
	e.hand = handOf(a)

	o := NewOverride(a.ID)
	o.IsCustom = true
	o.CustomCard = &Card{Name: "Custom", Tier: 1, Cost: 9, Size: 1}
	o.UseResetOnRedeployment = true
	e.SetOverride(o)

	if _, err := e.DeployFromHand(a.ID, false); err != nil {
		t.Fatal(err)
	}
	if _, err := e.ResolveDefeat(a.ID); err != nil {
		t.Fatal(err)
	}
	if _, ok := e.Override(a.ID); ok {
		t.Fatal("override should be gone after the defeat")
	}

	ci, err := e.DeployFromHand(a.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if ci.Card != a || ci.CurrentSize != a.Size {
		t.Errorf("redeployed as %q size %d, want the catalog card", ci.Card.Name, ci.CurrentSize)
	}
}
