package deploy

import (
	"fmt"

	"github.com/zuckel/ImperialCommander2/internal/log"
)

// PickReinforcement chooses one deployed enemy group that may grow by a
// figure: it has a reinforcement price, is below full size, its price
// max(1, rcost-m) fits currentThreat (m is 1 under onslaught) and no
// override forbids reinforcing. It does not change any pool.
func (e *Engine) PickReinforcement(currentThreat int, onslaught bool) (*CardInstance, bool) {
	var valid []*CardInstance
	for _, ci := range e.deployed {
		if !ci.CanGrow() || ci.Card.ReinforceCost(onslaught) > currentThreat {
			continue
		}
		if !e.overrides.canReinforce(ci.ID()) {
			e.logger.Debug().Str("id", ci.ID().String()).Msg("skipping group that cannot reinforce")
			continue
		}
		valid = append(valid, ci)
	}
	if len(valid) == 0 {
		return nil, false
	}
	return valid[e.rng.Perm(len(valid))[0]], true
}

// ResolveReinforce adds one figure to a deployed group and pays its
// reinforcement price from the threat budget. It reports false, without
// changing anything, when the group cannot grow.
func (e *Engine) ResolveReinforce(id GroupID, onslaught bool) (bool, error) {
	ci, err := e.FindDeployed(id)
	if err != nil {
		return false, err
	}
	if !ci.CanGrow() || !e.overrides.canReinforce(id) {
		return false, nil
	}
	cost := ci.Card.ReinforceCost(onslaught)
	ci.SetSize(ci.CurrentSize + 1)
	e.ModifyThreat(-cost, fmt.Sprintf("reinforce %s", id))
	e.log(log.NewReinforceEvent(e.economy.Threat, id.String(), ci.CurrentSize, ci.Card.Size, cost))
	return true, nil
}
