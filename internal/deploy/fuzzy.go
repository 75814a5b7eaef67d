package deploy

// TierThreeOverspend is how far a tier 3 group's cost may exceed the
// current threat and still deploy. Deploying it then drops threat to 0.
const TierThreeOverspend = 3

// PickFuzzyDeployable chooses one group from the deployment hand that the
// current threat can pay for. It does not change any pool; the caller moves
// the group and deducts threat (see DeployFromHand).
//
// Tier 1 and 2 groups must cost at most currentThreat. A tier 3 group may
// cost up to currentThreat+TierThreeOverspend. Under onslaught tier 2 costs
// 1 less and tier 3 costs 2 less. Groups already deployed are skipped.
//
// One tier 1/2 group and one tier 3 group are drawn, in that order. When
// both exist a coin flip decides: true returns the tier 1/2 group. The
// second result is false when nothing is deployable.
func (e *Engine) PickFuzzyDeployable(currentThreat int, onslaught bool) (*CardInstance, bool) {
	deployed := instanceIDs(e.deployed)

	var tier1, tier2, tier3 []*CardInstance
	for _, ci := range e.hand {
		if deployed[ci.ID()] {
			continue
		}
		cost := ci.Card.ModifiedCost(onslaught)
		switch ci.Card.Tier {
		case 1:
			if cost <= currentThreat {
				tier1 = append(tier1, ci)
			}
		case 2:
			if cost <= currentThreat {
				tier2 = append(tier2, ci)
			}
		case 3:
			if cost <= currentThreat+TierThreeOverspend {
				tier3 = append(tier3, ci)
			}
		}
	}

	// tier 1 groups come first, then tier 2
	tier12 := append(tier1, tier2...)

	var valid, elite *CardInstance
	if len(tier12) > 0 {
		valid = tier12[e.rng.Perm(len(tier12))[0]]
	}
	if len(tier3) > 0 {
		elite = tier3[e.rng.Perm(len(tier3))[0]]
	}

	switch {
	case valid != nil && elite != nil:
		e.logger.Debug().Str("tier12", valid.ID().String()).Str("tier3", elite.ID().String()).Msg("fuzzy deployment coin flip")
		if e.rng.Bool() {
			return valid, true
		}
		return elite, true
	case elite != nil:
		return elite, true
	case valid != nil:
		return valid, true
	default:
		return nil, false
	}
}
