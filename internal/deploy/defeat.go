package deploy

import (
	"fmt"

	"github.com/zuckel/ImperialCommander2/internal/log"
)

// DefeatResult reports what ResolveDefeat did.
type DefeatResult struct {
	// Refused is set when an override forbids defeating the group. Nothing
	// else changes in that case except the override's trigger and event.
	Refused         bool
	ReturnedToHand  bool
	CannotRedeploy  bool
	AddedToManual   bool
	OverrideRemoved bool
	OverrideReset   bool
	PoolEmptied     bool
	FameGained      int
	ThreatRefunded  int
}

// ResolveDefeat moves a defeated enemy group out of play.
//
// The group returns to the deployment hand unless it is the placeholder
// group, a villain, or its override forbids redeploying; in the last case
// its id is recorded in the cannot-redeploy list and the override is
// dropped so it can later be placed again clean. An earned villain goes back
// to the manual deployment list. An override that allows redeploying is
// dropped when it asks to reset on redeployment and otherwise reset in
// place. With adaptive difficulty the group's fame is gained and its
// reimbursement is refunded to threat.
func (e *Engine) ResolveDefeat(id GroupID) (DefeatResult, error) {
	var res DefeatResult
	ci, err := e.FindDeployed(id)
	if err != nil {
		return res, err
	}

	ovrd, hasOvrd := e.overrides.Get(id)
	if hasOvrd {
		e.fireOverrideHooks(ovrd)
	}
	if hasOvrd && !ovrd.CanBeDefeated {
		res.Refused = true
		e.log(log.NewDefeatRefusedEvent(e.economy.Threat, id.String()))
		return res, nil
	}
	e.log(log.NewDefeatEvent(e.economy.Threat, id.String()))

	returnToHand := true
	if hasOvrd && !ovrd.CanRedeploy {
		e.cannotRedeploy = append(e.cannotRedeploy, id)
		e.overrides.Remove(id)
		returnToHand = false
		res.CannotRedeploy = true
		res.OverrideRemoved = true
		e.log(log.NewCannotRedeployEvent(e.economy.Threat, id.String()))
	}

	if id != PlaceholderID && !e.catalog.IsVillain(id) && returnToHand {
		e.hand = append(e.hand, ci)
		res.ReturnedToHand = true
		e.log(log.NewReturnToHandEvent(e.economy.Threat, id.String()))
	}

	e.deployed, _ = removeID(e.deployed, id)

	if e.isEarnedVillain(id) && !containsID(e.manualList, id) {
		e.manualList = append(e.manualList, ci)
		e.SortManualDeploymentList()
		res.AddedToManual = true
		e.log(log.NewAddToManualEvent(e.economy.Threat, id.String()))
	}

	if hasOvrd && ovrd.CanRedeploy {
		if ovrd.UseResetOnRedeployment {
			e.overrides.Remove(id)
			res.OverrideRemoved = true
			e.log(log.NewOverrideRemovedEvent(e.economy.Threat, id.String()))
		} else {
			ovrd.ResetDP()
			res.OverrideReset = true
			e.log(log.NewOverrideResetEvent(e.economy.Threat, id.String()))
		}
	}

	if len(e.deployed) == 0 {
		res.PoolEmptied = true
		e.log(log.NewPoolEmptiedEvent(e.economy.Threat))
		e.triggers.CheckIfEventsTriggered()
	}

	if e.setup.AdaptiveDifficulty {
		oldFame := e.economy.Fame
		e.economy.Fame += ci.Card.Fame
		res.FameGained = ci.Card.Fame
		e.log(log.NewFameChangeEvent(e.economy.Threat, oldFame, e.economy.Fame, id.String()))
		res.ThreatRefunded = ci.Card.Reimb
		e.ModifyThreat(ci.Card.Reimb, fmt.Sprintf("%s reimbursement", id))
	}
	return res, nil
}

func (e *Engine) fireOverrideHooks(o *Override) {
	if o.SetTrigger != "" {
		e.triggers.FireTrigger(o.SetTrigger)
		e.log(log.NewTriggerFiredEvent(e.economy.Threat, o.ID.String(), "trigger", o.SetTrigger))
	}
	if o.SetEvent != "" {
		e.triggers.DoEvent(o.SetEvent)
		e.log(log.NewTriggerFiredEvent(e.economy.Threat, o.ID.String(), "event", o.SetEvent))
	}
}

func (e *Engine) isEarnedVillain(id GroupID) bool {
	for _, v := range e.earnedVillains {
		if v == id {
			return true
		}
	}
	return false
}
