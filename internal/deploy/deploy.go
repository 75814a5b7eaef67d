package deploy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zuckel/ImperialCommander2/internal/log"
)

// ErrAlreadyDeployed is returned when placing a group that is on the board.
var ErrAlreadyDeployed = errors.New("group already deployed")

// DeployFromHand moves a group from the deployment hand into play at full
// strength and pays its (onslaught-modified) cost. Threat bottoms out at 0,
// which is how a tier 3 overspend is absorbed.
func (e *Engine) DeployFromHand(id GroupID, onslaught bool) (*CardInstance, error) {
	if containsID(e.deployed, id) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyDeployed, id)
	}
	hand, ci := removeID(e.hand, id)
	if ci == nil {
		return nil, fmt.Errorf("%w: %s is not in the deployment hand", ErrNotFound, id)
	}
	e.hand = hand
	cost := ci.Card.ModifiedCost(onslaught)
	e.enterPlay(ci)
	e.ModifyThreat(-cost, fmt.Sprintf("deploy %s", id))
	e.log(log.NewDeployEvent(e.economy.Threat, id.String(), cost))
	return ci, nil
}

// DeployManual places a group from the manual deployment list. Manual
// placement is free.
func (e *Engine) DeployManual(id GroupID) (*CardInstance, error) {
	if containsID(e.deployed, id) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyDeployed, id)
	}
	list, ci := removeID(e.manualList, id)
	if ci == nil {
		return nil, fmt.Errorf("%w: %s is not in the manual deployment list", ErrNotFound, id)
	}
	e.manualList = list
	e.enterPlay(ci)
	e.log(log.NewManualDeployEvent(e.economy.Threat, id.String()))
	return ci, nil
}

// enterPlay puts a group on the board at full strength. The definition is
// resolved again so a custom card from a removed override does not linger.
func (e *Engine) enterPlay(ci *CardInstance) {
	if base, ok := e.catalog.Lookup(ci.ID()); ok {
		ci.Card = base
	}
	ci.Card = e.effectiveCard(ci.Card)
	ci.CurrentSize = ci.Card.Size
	ci.ResetActivation()
	e.deployed = append(e.deployed, ci)
}

// DeployHeroOrAlly adds a hero or ally to the rebel side. Deploying one that
// is already present returns the existing instance.
func (e *Engine) DeployHeroOrAlly(id GroupID) (*CardInstance, error) {
	if i := indexOf(e.deployedHeroes, id); i >= 0 {
		return e.deployedHeroes[i], nil
	}
	card, err := e.catalog.Hero(id)
	if err != nil {
		card, err = e.catalog.Ally(id)
		if err != nil {
			return nil, err
		}
	}
	ci := NewCardInstance(card)
	e.deployedHeroes = append(e.deployedHeroes, ci)
	e.log(log.NewHeroDeployEvent(e.economy.Threat, id.String()))
	return ci, nil
}

// RemoveHeroOrAlly takes a hero or ally off the board.
func (e *Engine) RemoveHeroOrAlly(id GroupID) error {
	heroes, ci := removeID(e.deployedHeroes, id)
	if ci == nil {
		return fmt.Errorf("%w: %s is not deployed", ErrNotFound, id)
	}
	e.deployedHeroes = heroes
	return nil
}

// FindOnBoard looks a group up among deployed enemies, then heroes and allies.
func (e *Engine) FindOnBoard(id GroupID) (*CardInstance, error) {
	if i := indexOf(e.deployed, id); i >= 0 {
		return e.deployed[i], nil
	}
	if i := indexOf(e.deployedHeroes, id); i >= 0 {
		return e.deployedHeroes[i], nil
	}
	return nil, fmt.Errorf("%w: %s is not on the board", ErrNotFound, id)
}

// SetGroupSize sets the figure count of a group on the board, clamped to
// its size.
func (e *Engine) SetGroupSize(id GroupID, size int) (*CardInstance, error) {
	ci, err := e.FindOnBoard(id)
	if err != nil {
		return nil, err
	}
	ci.SetSize(size)
	return ci, nil
}

// MarkActivated records a group's activation and its rolled annotations.
func (e *Engine) MarkActivated(id GroupID, a Activation) (*CardInstance, error) {
	ci, err := e.FindOnBoard(id)
	if err != nil {
		return nil, err
	}
	ci.HasActivated = true
	ci.Activation = a
	return ci, nil
}

// ToggleExhausted readies or exhausts a group. Readying clears the
// activation annotations so the next activation rolls new ones.
func (e *Engine) ToggleExhausted(id GroupID, exhausted bool) (*CardInstance, error) {
	ci, err := e.FindOnBoard(id)
	if err != nil {
		return nil, err
	}
	if exhausted {
		ci.HasActivated = true
	} else {
		ci.ResetActivation()
	}
	return ci, nil
}

// ReadyAll readies every group on the board, as at the end of a round.
func (e *Engine) ReadyAll() {
	for _, ci := range e.deployed {
		ci.ResetActivation()
	}
	for _, ci := range e.deployedHeroes {
		ci.ResetActivation()
	}
}

// CycleColor advances a group's colour pip.
func (e *Engine) CycleColor(id GroupID) (int, error) {
	ci, err := e.FindOnBoard(id)
	if err != nil {
		return 0, err
	}
	return ci.CycleColor(), nil
}

// EliteVersion returns the elite counterpart of a regular group: an elite
// enemy whose name contains the group's name and that is not deployed,
// reserved or ignored. The second result is false when none exists.
func (e *Engine) EliteVersion(card *Card) (*Card, bool) {
	name := strings.ToLower(card.Name)
	return e.firstCounterpart(func(c *Card) bool {
		return c.IsElite && strings.Contains(strings.ToLower(c.Name), name)
	})
}

// NonEliteVersion returns the regular counterpart of an elite group: a
// regular enemy whose name is contained in the elite's name.
func (e *Engine) NonEliteVersion(elite *Card) (*Card, bool) {
	name := strings.ToLower(elite.Name)
	return e.firstCounterpart(func(c *Card) bool {
		return !c.IsElite && strings.Contains(name, strings.ToLower(c.Name))
	})
}

func (e *Engine) firstCounterpart(match func(*Card) bool) (*Card, bool) {
	var valid []*Card
	for _, c := range e.catalog.Enemies() {
		if match(c) {
			valid = append(valid, c)
		}
	}
	valid = minus(valid, instanceIDs(e.deployed))
	valid = minus(valid, e.reserved)
	valid = minus(valid, e.ignored)
	if len(valid) == 0 {
		return nil, false
	}
	return valid[0], true
}
