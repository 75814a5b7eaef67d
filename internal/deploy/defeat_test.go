package deploy

import (
	"errors"
	"testing"

	"github.com/zuckel/ImperialCommander2/internal/log"
)

func TestDefeatReturnsToHand(t *testing.T) {
	a, b := enemy("DG001", 1, 2), enemy("DG002", 1, 3)
	cat := mustCatalog(t, []*Card{a, b}, nil)
	trig := &recordingTriggers{}
	e, err := NewEngine(Config{Catalog: cat, Source: newScriptedSource(t), Triggers: trig})
	if err != nil {
		t.Fatal(err)
	}
	e.deployed = handOf(a, b)

	res, err := e.ResolveDefeat(a.ID)
	if err != nil {
		t.Fatalf("ResolveDefeat: %v", err)
	}
	if !res.ReturnedToHand || res.PoolEmptied {
		t.Errorf("result = %+v", res)
	}
	if !equalStrings(poolIDs(e.Hand()), []string{"DG001"}) {
		t.Errorf("hand = %v", poolIDs(e.Hand()))
	}
	if !equalStrings(poolIDs(e.DeployedEnemies()), []string{"DG002"}) {
		t.Errorf("deployed = %v", poolIDs(e.DeployedEnemies()))
	}
	if trig.checks != 0 {
		t.Error("events should not be checked while groups remain")
	}

	res, _ = e.ResolveDefeat(b.ID)
	if !res.PoolEmptied || trig.checks != 1 {
		t.Errorf("expected the trigger check when the board empties, got %+v checks=%d", res, trig.checks)
	}
}

func TestDefeatPlaceholderStaysOut(t *testing.T) {
	ph := enemy("DG070", 1, 0)
	cat := mustCatalog(t, []*Card{ph}, nil)
	e, _ := newTestEngine(t, cat, newScriptedSource(t), Setup{})
	e.deployed = handOf(ph)

	res, err := e.ResolveDefeat(PlaceholderID)
	if err != nil {
		t.Fatal(err)
	}
	if res.ReturnedToHand || len(e.Hand()) != 0 {
		t.Error("the placeholder group never returns to the hand")
	}
	if len(e.DeployedEnemies()) != 0 {
		t.Error("the placeholder should leave the board")
	}
}

func TestDefeatVillainCannotRedeploy(t *testing.T) {
	v := villain("DG090", 2, 6)
	cat := mustCatalog(t, []*Card{enemy("DG001", 1, 2)}, []*Card{v})
	e, logger := newTestEngine(t, cat, newScriptedSource(t), Setup{})
	e.earnedVillains = ids("DG090")
	e.manualList = handOf(enemy("DG100", 1, 2), enemy("DG001", 1, 2))
	e.deployed = handOf(v)
	o := NewOverride(v.ID)
	o.CanRedeploy = false
	e.SetOverride(o)

	res, err := e.ResolveDefeat(v.ID)
	if err != nil {
		t.Fatal(err)
	}

	if !equalStrings(idStringsOf(e.CannotRedeployList()), []string{"DG090"}) {
		t.Errorf("cannot redeploy = %v", e.CannotRedeployList())
	}
	if _, ok := e.Override(v.ID); ok {
		t.Error("override should be removed")
	}
	if containsID(e.Hand(), v.ID) || res.ReturnedToHand {
		t.Error("villain should not return to the hand")
	}
	if !res.AddedToManual {
		t.Error("earned villain should go to the manual list")
	}
	if got := poolIDs(e.ManualList()); !equalStrings(got, []string{"DG001", "DG090", "DG100"}) {
		t.Errorf("manual list = %v, want sorted with DG090", got)
	}
	if len(logger.EventsOfType(log.EventCannotRedeploy)) != 1 {
		t.Error("expected a CannotRedeploy event")
	}
}

func TestDefeatUnearnedVillainGoesNowhere(t *testing.T) {
	v := villain("DG090", 2, 6)
	cat := mustCatalog(t, nil, []*Card{v})
	e, _ := newTestEngine(t, cat, newScriptedSource(t), Setup{})
	e.deployed = handOf(v)

	res, err := e.ResolveDefeat(v.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.ReturnedToHand || res.AddedToManual {
		t.Errorf("result = %+v", res)
	}
	if len(e.Hand()) != 0 || len(e.ManualList()) != 0 {
		t.Error("an unearned villain leaves every pool")
	}
}

func TestDefeatEarnedVillainAlreadyInManualList(t *testing.T) {
	v := villain("DG090", 2, 6)
	cat := mustCatalog(t, nil, []*Card{v})
	e, _ := newTestEngine(t, cat, newScriptedSource(t), Setup{})
	e.earnedVillains = ids("DG090")
	e.manualList = handOf(v)
	e.deployed = handOf(v)

	res, _ := e.ResolveDefeat(v.ID)
	if res.AddedToManual || len(e.ManualList()) != 1 {
		t.Errorf("manual list = %v", poolIDs(e.ManualList()))
	}
}

func TestDefeatRefused(t *testing.T) {
	a := enemy("DG001", 1, 2)
	cat := mustCatalog(t, []*Card{a}, nil)
	trig := &recordingTriggers{}
	e, err := NewEngine(Config{Catalog: cat, Source: newScriptedSource(t), Triggers: trig, Economy: Economy{Threat: 4}})
	if err != nil {
		t.Fatal(err)
	}
	e.deployed = handOf(a)
	o := NewOverride(a.ID)
	o.CanBeDefeated = false
	o.SetTrigger = "bossDown"
	o.SetEvent = "reinforcements"
	e.SetOverride(o)

	res, err := e.ResolveDefeat(a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Refused {
		t.Fatal("defeat should be refused")
	}
	if len(e.DeployedEnemies()) != 1 || len(e.Hand()) != 0 {
		t.Error("a refused defeat changes no pool")
	}
	if len(trig.triggers) != 1 || trig.triggers[0] != "bossDown" {
		t.Errorf("triggers = %v", trig.triggers)
	}
	if len(trig.events) != 1 || trig.events[0] != "reinforcements" {
		t.Errorf("events = %v", trig.events)
	}
}

func TestDefeatOverrideResetOrRemoved(t *testing.T) {
	a, b := enemy("DG001", 1, 2), enemy("DG002", 1, 2)
	cat := mustCatalog(t, []*Card{a, b}, nil)
	e, _ := newTestEngine(t, cat, newScriptedSource(t), Setup{})
	e.deployed = handOf(a, b)

	oa := NewOverride(a.ID)
	oa.DeploymentPoint = "north"
	e.SetOverride(oa)
	ob := NewOverride(b.ID)
	ob.UseResetOnRedeployment = true
	e.SetOverride(ob)

	res, _ := e.ResolveDefeat(a.ID)
	if !res.OverrideReset || !res.ReturnedToHand {
		t.Errorf("result = %+v", res)
	}
	got, ok := e.Override(a.ID)
	if !ok || got.DeploymentPoint != DeploymentPointActive {
		t.Errorf("override for DG001 = %+v, want reset in place", got)
	}

	res, _ = e.ResolveDefeat(b.ID)
	if !res.OverrideRemoved {
		t.Errorf("result = %+v", res)
	}
	if _, ok := e.Override(b.ID); ok {
		t.Error("override for DG002 should be removed")
	}
}

func TestDefeatAdaptiveDifficulty(t *testing.T) {
	a := enemy("DG001", 1, 2)
	a.Fame = 3
	a.Reimb = 2
	cat := mustCatalog(t, []*Card{a}, nil)
	e, logger := newTestEngine(t, cat, newScriptedSource(t), Setup{AdaptiveDifficulty: true})
	e.deployed = handOf(a)

	res, err := e.ResolveDefeat(a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.FameGained != 3 || res.ThreatRefunded != 2 {
		t.Errorf("result = %+v", res)
	}
	if got := e.Economy(); got.Fame != 3 || got.Threat != 12 {
		t.Errorf("economy = %+v, want fame 3 threat 12", got)
	}
	if len(logger.EventsOfType(log.EventFameChange)) != 1 {
		t.Error("expected a FameChange event")
	}
}

func TestDefeatNotDeployed(t *testing.T) {
	cat := mustCatalog(t, []*Card{enemy("DG001", 1, 2)}, nil)
	e, _ := newTestEngine(t, cat, newScriptedSource(t), Setup{})

	if _, err := e.ResolveDefeat(MustParseGroupID("DG001")); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func idStringsOf(list []GroupID) []string {
	out := make([]string, 0, len(list))
	for _, id := range list {
		out = append(out, id.String())
	}
	return out
}
