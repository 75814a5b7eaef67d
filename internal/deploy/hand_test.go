package deploy

import (
	"testing"

	"github.com/zuckel/ImperialCommander2/internal/log"
)

func TestQuotaForThreat(t *testing.T) {
	cases := []struct {
		level int
		want  Quota
	}{
		{0, Quota{2, 2, 0}},
		{3, Quota{2, 2, 0}},
		{4, Quota{1, 2, 1}},
		{5, Quota{1, 2, 2}},
		{9, Quota{1, 2, 2}},
	}
	for _, c := range cases {
		if got := QuotaForThreat(c.level); got != c.want {
			t.Errorf("QuotaForThreat(%d) = %+v, want %+v", c.level, got, c.want)
		}
	}
}

func TestSampleByTierSkipsZeroQuota(t *testing.T) {
	haystack := []*Card{
		enemy("DG001", 1, 2), enemy("DG002", 1, 3), enemy("DG003", 1, 3),
		enemy("DG010", 2, 5),
		enemy("DG030", 3, 8), enemy("DG031", 3, 9),
	}
	src := newScriptedSource(t).AddPerm(2, 0, 1).AddPerm(0)

	got := SampleByTier(haystack, QuotaForThreat(3), src)

	want := []string{"DG003", "DG001", "DG010"}
	if !equalStrings(cardIDStrings(got), want) {
		t.Errorf("sample = %v, want %v", cardIDStrings(got), want)
	}
	if src.permCalls != 2 {
		t.Errorf("expected 2 permutation draws (tier 3 quota is 0), got %d", src.permCalls)
	}
}

func TestSampleByTierBounds(t *testing.T) {
	var haystack []*Card
	for i := 1; i <= 5; i++ {
		haystack = append(haystack, enemy("DG00"+string(rune('0'+i)), 1, 2))
		haystack = append(haystack, enemy("DG01"+string(rune('0'+i)), 2, 4))
		haystack = append(haystack, enemy("DG02"+string(rune('0'+i)), 3, 7))
	}
	for level := 0; level <= 7; level++ {
		for seed := int64(1); seed <= 20; seed++ {
			got := SampleByTier(haystack, QuotaForThreat(level), NewSource(seed))
			q := QuotaForThreat(level)
			counts := map[int]int{}
			seen := map[GroupID]bool{}
			for _, c := range got {
				if seen[c.ID] {
					t.Fatalf("level %d seed %d: duplicate %s", level, seed, c.ID)
				}
				seen[c.ID] = true
				counts[c.Tier]++
			}
			if counts[1] != q.T1 || counts[2] != q.T2 || counts[3] != q.T3 {
				t.Errorf("level %d seed %d: tier counts %v, want %+v", level, seed, counts, q)
			}
		}
	}
}

func TestBuildHandSixTierOneAtThreatFour(t *testing.T) {
	var enemies []*Card
	for i, cost := range []int{2, 3, 3, 4, 5, 6} {
		enemies = append(enemies, enemy("DG00"+string(rune('1'+i)), 1, cost))
	}
	cat := mustCatalog(t, enemies, nil)
	src := newScriptedSource(t).AddPerm(4, 0, 1, 2, 3, 5)
	e, logger := newTestEngine(t, cat, src, Setup{})

	hand := e.BuildDeploymentHand(nil, 4)

	if len(hand) != 1 {
		t.Fatalf("hand = %v, want exactly 1 card", poolIDs(hand))
	}
	if hand[0].ID().String() != "DG005" {
		t.Errorf("hand[0] = %s, want DG005", hand[0].ID())
	}
	if hand[0].CurrentSize != hand[0].Card.Size {
		t.Errorf("hand card should be at full size, got %d", hand[0].CurrentSize)
	}
	if src.permCalls != 1 {
		t.Errorf("empty tiers should not draw, got %d draws", src.permCalls)
	}
	if len(logger.EventsOfType(log.EventHandBuilt)) != 1 {
		t.Error("expected a HandBuilt event")
	}
}

func TestBuildHandSameSeedSameHand(t *testing.T) {
	var enemies []*Card
	for i := 0; i < 6; i++ {
		enemies = append(enemies, enemy("DG00"+string(rune('1'+i)), 1, 2))
		enemies = append(enemies, enemy("DG01"+string(rune('1'+i)), 2, 4))
		enemies = append(enemies, enemy("DG02"+string(rune('1'+i)), 3, 7))
	}
	cat := mustCatalog(t, enemies, []*Card{villain("DG090", 2, 6)})

	build := func() []string {
		e, _ := newTestEngine(t, cat, NewSource(1234), Setup{})
		return poolIDs(e.BuildDeploymentHand(ids("DG090"), 5))
	}
	first := build()
	for i := 0; i < 5; i++ {
		if got := build(); !equalStrings(got, first) {
			t.Fatalf("seeded build %d = %v, want %v", i, got, first)
		}
	}
}

func TestBuildHandFiltersCandidates(t *testing.T) {
	other := enemy("DG004", 1, 2)
	other.Expansion = ExpansionOther
	unowned := enemy("DG005", 1, 2)
	unowned.Expansion = "Jabba"
	merc := enemy("DG006", 1, 2)
	merc.Faction = FactionMercenary
	cat := mustCatalog(t, []*Card{
		enemy("DG001", 1, 2), enemy("DG002", 1, 2), enemy("DG003", 1, 2),
		other, unowned, merc,
		enemy("DG007", 1, 2),
	}, nil)
	e, _ := newTestEngine(t, cat, newScriptedSource(t), Setup{
		Faction:  FactionImperial,
		Ignored:  ids("DG001"),
		Starting: ids("DG002"),
		Reserved: ids("DG007"),
	})

	got := cardIDStrings(e.handCandidates())
	want := []string{"DG003", "DG004"}
	if !equalStrings(got, want) {
		t.Errorf("hand candidates = %v, want %v", got, want)
	}
}

func TestInjectVillainsCoinTrue(t *testing.T) {
	v := villain("DG090", 2, 6)
	sampled := []*Card{enemy("DG001", 1, 2), enemy("DG010", 2, 4)}
	src := newScriptedSource(t).AddBool(true)

	hand, deferred, injected := InjectVillains(sampled, []*Card{v}, src)

	if injected != v {
		t.Fatalf("expected %s injected, got %v", v.ID, injected)
	}
	if len(hand) != 3 || hand[2] != v {
		t.Errorf("hand = %v, want the sample plus the villain", cardIDStrings(hand))
	}
	if len(deferred) != 0 {
		t.Errorf("deferred = %v, want none", cardIDStrings(deferred))
	}
	if len(sampled) != 2 {
		t.Error("the sampled slice must not grow")
	}
}

func TestInjectVillainsCoinTruePicksOne(t *testing.T) {
	v1, v2, v3 := villain("DG090", 2, 6), villain("DG091", 2, 6), villain("DG092", 3, 8)
	src := newScriptedSource(t).AddBool(true).AddPerm(1, 2, 0)

	hand, deferred, injected := InjectVillains(nil, []*Card{v1, v2, v3}, src)

	if injected != v2 {
		t.Fatalf("injected = %v, want DG091", injected)
	}
	if !equalStrings(cardIDStrings(hand), []string{"DG091"}) {
		t.Errorf("hand = %v", cardIDStrings(hand))
	}
	if !equalStrings(cardIDStrings(deferred), []string{"DG090", "DG092"}) {
		t.Errorf("deferred = %v, want DG090 DG092", cardIDStrings(deferred))
	}
}

func TestInjectVillainsCoinFalseDefersAll(t *testing.T) {
	v1, v2 := villain("DG090", 2, 6), villain("DG091", 2, 6)
	sampled := []*Card{enemy("DG001", 1, 2)}
	src := newScriptedSource(t).AddBool(false)

	hand, deferred, injected := InjectVillains(sampled, []*Card{v1, v2}, src)

	if injected != nil {
		t.Errorf("nothing should be injected, got %s", injected.ID)
	}
	if len(hand) != 1 {
		t.Errorf("hand = %v", cardIDStrings(hand))
	}
	if !equalStrings(cardIDStrings(deferred), []string{"DG090", "DG091"}) {
		t.Errorf("deferred = %v", cardIDStrings(deferred))
	}
	if src.permCalls != 0 {
		t.Error("no villain pick should be drawn on a false coin")
	}
}

func TestInjectVillainsAlreadySampledSkipsCoin(t *testing.T) {
	v1, v2 := villain("DG090", 2, 6), villain("DG091", 2, 6)
	sampled := []*Card{enemy("DG001", 1, 2), v1}
	// no scripted bools: a coin flip fails the test
	src := newScriptedSource(t)

	hand, deferred, injected := InjectVillains(sampled, []*Card{v1, v2}, src)

	if injected != nil || len(hand) != 2 {
		t.Errorf("hand = %v injected = %v", cardIDStrings(hand), injected)
	}
	if !equalStrings(cardIDStrings(deferred), []string{"DG091"}) {
		t.Errorf("deferred = %v, want DG091", cardIDStrings(deferred))
	}
	if src.boolCalls != 0 {
		t.Error("coin should not be flipped")
	}
}

func TestInjectVillainsNoneEarned(t *testing.T) {
	src := newScriptedSource(t)
	hand, deferred, injected := InjectVillains([]*Card{enemy("DG001", 1, 2)}, nil, src)
	if len(hand) != 1 || deferred != nil || injected != nil {
		t.Errorf("unexpected result %v %v %v", hand, deferred, injected)
	}
	if src.boolCalls != 0 {
		t.Error("coin should not be flipped without earned villains")
	}
}

func TestBuildHandSamplesEarnedVillain(t *testing.T) {
	cat := mustCatalog(t, []*Card{
		enemy("DG001", 1, 2), enemy("DG002", 1, 3),
		enemy("DG010", 2, 4), enemy("DG011", 2, 5),
	}, []*Card{villain("DG090", 2, 6), villain("DG091", 3, 9)})
	// tier 2 candidates are DG010, DG011, DG090 (earned villain appended)
	src := newScriptedSource(t).AddPerm(0, 1).AddPerm(2, 0, 1)
	e, _ := newTestEngine(t, cat, src, Setup{})

	hand := e.BuildDeploymentHand(ids("DG090"), 3)

	want := []string{"DG001", "DG002", "DG090", "DG010"}
	if !equalStrings(poolIDs(hand), want) {
		t.Errorf("hand = %v, want %v", poolIDs(hand), want)
	}
	if src.boolCalls != 0 {
		t.Error("coin should not be flipped when the villain was sampled")
	}
	if len(e.DeferredVillains()) != 0 {
		t.Errorf("deferred = %v, want none", poolIDs(e.DeferredVillains()))
	}

	// DG091 is not earned, so it stays a manual-only option
	manual := poolIDs(e.BuildManualDeploymentList())
	if !equalStrings(manual, []string{"DG011", "DG091"}) {
		t.Errorf("manual list = %v, want [DG011 DG091]", manual)
	}
}

func TestBuildHandDefersVillainToManual(t *testing.T) {
	cat := mustCatalog(t, []*Card{
		enemy("DG001", 1, 2), enemy("DG002", 1, 3),
		enemy("DG010", 2, 4), enemy("DG011", 2, 5),
	}, []*Card{villain("DG090", 3, 9)})
	// tier 3 quota is 0 at threat level 3, so the villain cannot be sampled
	src := newScriptedSource(t).AddBool(false)
	e, logger := newTestEngine(t, cat, src, Setup{})

	hand := e.BuildDeploymentHand(ids("DG090"), 3)
	if containsID(hand, MustParseGroupID("DG090")) {
		t.Fatal("villain should not be in the hand")
	}
	if !equalStrings(poolIDs(e.DeferredVillains()), []string{"DG090"}) {
		t.Fatalf("deferred = %v", poolIDs(e.DeferredVillains()))
	}
	if len(logger.EventsOfType(log.EventVillainDeferred)) != 1 {
		t.Error("expected a VillainDeferred event")
	}

	manual := poolIDs(e.BuildManualDeploymentList())
	if !equalStrings(manual, []string{"DG090"}) {
		t.Errorf("manual list = %v, want [DG090]", manual)
	}
}

func TestBuildHandInjectsVillainOverQuota(t *testing.T) {
	cat := mustCatalog(t, []*Card{
		enemy("DG001", 1, 2), enemy("DG002", 1, 3),
		enemy("DG010", 2, 4), enemy("DG011", 2, 5),
	}, []*Card{villain("DG090", 3, 9)})
	src := newScriptedSource(t).AddBool(true)
	e, logger := newTestEngine(t, cat, src, Setup{})

	hand := e.BuildDeploymentHand(ids("DG090"), 3)

	if len(hand) != 5 {
		t.Fatalf("hand = %v, want 4 sampled plus the villain", poolIDs(hand))
	}
	if hand[4].ID().String() != "DG090" {
		t.Errorf("last card = %s, want DG090", hand[4].ID())
	}
	if len(e.DeferredVillains()) != 0 {
		t.Error("deferral list should be empty")
	}
	if len(logger.EventsOfType(log.EventVillainInjected)) != 1 {
		t.Error("expected a VillainInjected event")
	}
}

func TestBuildHandIgnoresUnknownEarnedVillain(t *testing.T) {
	cat := mustCatalog(t, []*Card{enemy("DG001", 1, 2)}, nil)
	src := newScriptedSource(t)
	e, _ := newTestEngine(t, cat, src, Setup{})

	// DG001 is an enemy, not a villain; DG099 is not in the catalog
	e.BuildDeploymentHand(ids("DG001", "DG099"), 3)

	if len(e.EarnedVillains()) != 0 {
		t.Errorf("earned villains = %v, want none", e.EarnedVillains())
	}
	if src.boolCalls != 0 {
		t.Error("coin should not be flipped")
	}
}

func TestBuildManualListBothFactions(t *testing.T) {
	merc := enemy("DG020", 1, 2)
	merc.Faction = FactionMercenary
	unowned := enemy("DG021", 1, 2)
	unowned.Expansion = "Jabba"
	cat := mustCatalog(t, []*Card{
		enemy("DG012", 2, 4), enemy("DG001", 1, 2), merc, unowned, enemy("DG003", 1, 2),
	}, []*Card{villain("DG090", 3, 9)})
	e, _ := newTestEngine(t, cat, newScriptedSource(t), Setup{
		Faction:  FactionImperial,
		Reserved: ids("DG003"),
	})
	e.hand = []*CardInstance{NewCardInstance(cat.enemies[1])}

	got := poolIDs(e.BuildManualDeploymentList())
	want := []string{"DG012", "DG020", "DG090"}
	if !equalStrings(got, want) {
		t.Errorf("manual list = %v, want %v", got, want)
	}
}

func TestSortManualDeploymentListStableAndIdempotent(t *testing.T) {
	cat := mustCatalog(t, nil, nil)
	e, _ := newTestEngine(t, cat, newScriptedSource(t), Setup{})

	a := &Card{ID: MustParseGroupID("DG010"), Size: 1}
	b := &Card{ID: MustParseGroupID("CUSTOM10"), Size: 1}
	c := &Card{ID: MustParseGroupID("DG002"), Size: 1}
	d := &Card{ID: MustParseGroupID("DG100"), Size: 1}
	e.manualList = []*CardInstance{
		NewCardInstance(d), NewCardInstance(a), NewCardInstance(c), NewCardInstance(b),
	}

	e.SortManualDeploymentList()
	first := poolIDs(e.ManualList())
	want := []string{"DG002", "DG010", "CUSTOM10", "DG100"}
	if !equalStrings(first, want) {
		t.Fatalf("sorted = %v, want %v", first, want)
	}

	e.SortManualDeploymentList()
	if second := poolIDs(e.ManualList()); !equalStrings(second, first) {
		t.Errorf("second sort = %v, want %v", second, first)
	}
}
