package deploy

import (
	"cmp"
	"slices"

	"github.com/zuckel/ImperialCommander2/internal/log"
)

// BuildDeploymentHand replaces the deployment hand for a new mission.
//
// Earned villains join the candidate set before tier sampling, so one may
// land in the hand on its own. When none did, a coin flip decides whether
// one earned villain is added on top of the sampled hand; the hand may then
// exceed its nominal quota. Earned villains left out of the hand are
// deferred to the manual deployment list.
func (e *Engine) BuildDeploymentHand(earned []GroupID, threatLevel int) []*CardInstance {
	villains := e.resolveEarnedVillains(earned)
	e.earnedVillains = e.earnedVillains[:0]
	for _, v := range villains {
		e.earnedVillains = append(e.earnedVillains, v.ID)
	}

	// a villain still on the board is neither sampled nor deferred
	villains = minus(villains, instanceIDs(e.deployed))
	available := append(e.handCandidates(), villains...)
	available = dedupe(available)

	sampled := SampleByTier(available, QuotaForThreat(threatLevel), e.rng)
	hand, deferred, injected := InjectVillains(sampled, villains, e.rng)

	e.hand = e.hand[:0]
	for _, c := range hand {
		e.hand = append(e.hand, NewCardInstance(c))
	}
	e.villainsToManual = e.villainsToManual[:0]
	for _, c := range deferred {
		e.villainsToManual = append(e.villainsToManual, NewCardInstance(c))
		e.log(log.NewVillainDeferredEvent(e.economy.Threat, c.ID.String()))
	}
	if injected != nil {
		e.log(log.NewVillainInjectedEvent(e.economy.Threat, injected.ID.String()))
	}
	e.manualList = slices.DeleteFunc(e.manualList, func(ci *CardInstance) bool {
		return containsID(e.hand, ci.ID())
	})

	e.logger.Debug().
		Int("candidates", len(available)).
		Int("size", len(e.hand)).
		Int("threatLevel", threatLevel).
		Msg("deployment hand built")
	e.log(log.NewHandBuiltEvent(e.economy.Threat, threatLevel, idStrings(e.hand)))
	return e.Hand()
}

// InjectVillains folds earned villains into a sampled hand.
//
// If any earned villain is already in sampled, no coin is flipped. Otherwise
// a true coin flip adds one earned villain chosen uniformly at random.
// Every earned villain absent from the final hand is returned as deferred.
func InjectVillains(sampled, earned []*Card, rng Source) (hand, deferred []*Card, injected *Card) {
	hand = sampled
	if len(earned) == 0 {
		return hand, nil, nil
	}

	present := cardIDs(sampled)
	anyPresent := false
	for _, v := range earned {
		if present[v.ID] {
			anyPresent = true
			break
		}
	}

	if !anyPresent && rng.Bool() {
		rv := rng.Perm(len(earned))
		injected = earned[rv[0]]
		hand = append(cloneSlice(sampled), injected)
	}

	inHand := cardIDs(hand)
	for _, v := range earned {
		if !inHand[v.ID] {
			deferred = append(deferred, v)
		}
	}
	return hand, deferred, injected
}

// resolveEarnedVillains maps earned ids to villain definitions, dropping
// unknown ids and duplicates.
func (e *Engine) resolveEarnedVillains(earned []GroupID) []*Card {
	var out []*Card
	seen := make(idSet, len(earned))
	for _, id := range earned {
		if seen[id] {
			continue
		}
		seen[id] = true
		if !e.catalog.IsVillain(id) {
			e.logger.Debug().Str("id", id.String()).Msg("skipping earned villain missing from catalog")
			continue
		}
		card, _ := e.catalog.Lookup(id)
		out = append(out, card)
	}
	return out
}

// BuildManualDeploymentList rebuilds the list of groups available for
// manual placement: owned groups of both factions plus every villain, minus
// the hand, reserved, starting and earned villains, plus the earned villains
// deferred by the last BuildDeploymentHand. Sorted by ordinal.
func (e *Engine) BuildManualDeploymentList() []*CardInstance {
	available := e.manualCandidates()

	list := make([]*CardInstance, 0, len(available)+len(e.villainsToManual))
	for _, c := range available {
		list = append(list, NewCardInstance(c))
	}
	for _, v := range e.villainsToManual {
		if !containsID(list, v.ID()) && !containsID(e.deployed, v.ID()) {
			list = append(list, v)
		}
	}
	sortByOrdinal(list)
	e.manualList = list

	e.logger.Debug().Int("size", len(list)).Msg("manual deployment list built")
	e.log(log.NewManualListBuiltEvent(e.economy.Threat, len(list)))
	return e.ManualList()
}

// SortManualDeploymentList orders the manual list by ascending ordinal,
// keeping the existing order of equal ordinals.
func (e *Engine) SortManualDeploymentList() {
	sortByOrdinal(e.manualList)
}

func sortByOrdinal(pool []*CardInstance) {
	slices.SortStableFunc(pool, func(a, b *CardInstance) int {
		return cmp.Compare(a.ID().Ordinal, b.ID().Ordinal)
	})
}
