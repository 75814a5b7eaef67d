package deploy

import "fmt"

// --- Enums ---

type Faction string

const (
	FactionImperial  Faction = "Imperial"
	FactionMercenary Faction = "Mercenary"
)

// ExpansionOther marks cards that ship outside any expansion box. They are
// always available regardless of ownership.
const ExpansionOther = "Other"

// PipColorCount is the number of group colour pips a deployed group cycles through.
const PipColorCount = 7

// --- Card definition (static, from catalog) ---

type Card struct {
	ID        GroupID `yaml:"id" json:"id"`
	Name      string  `yaml:"name" json:"name"`
	Subname   string  `yaml:"subname,omitempty" json:"subname,omitempty"`
	Tier      int     `yaml:"tier" json:"tier"`
	Cost      int     `yaml:"cost" json:"cost"`
	RCost     int     `yaml:"rcost" json:"rcost"` // 0 = cannot reinforce
	Size      int     `yaml:"size" json:"size"`
	Faction   Faction `yaml:"faction" json:"faction"`
	Expansion string  `yaml:"expansion" json:"expansion"`
	IsElite   bool    `yaml:"isElite" json:"isElite"`
	IsDummy   bool    `yaml:"isDummy" json:"isDummy"`
	Fame      int     `yaml:"fame" json:"fame"`
	Reimb     int     `yaml:"reimb" json:"reimb"`
}

func (c *Card) String() string {
	return fmt.Sprintf("%s %s", c.ID, c.Name)
}

// ModifiedCost returns the deploy price with the onslaught discount applied:
// tier 2 costs 1 less, tier 3 costs 2 less. Tier 1 is never discounted.
func (c *Card) ModifiedCost(onslaught bool) int {
	if !onslaught {
		return c.Cost
	}
	switch c.Tier {
	case 2:
		return c.Cost - 1
	case 3:
		return c.Cost - 2
	default:
		return c.Cost
	}
}

// ReinforceCost returns the reinforcement price, never below 1.
func (c *Card) ReinforceCost(onslaught bool) int {
	m := 0
	if onslaught {
		m = 1
	}
	return max(1, c.RCost-m)
}

// --- CardInstance (runtime group in one of the pools) ---

// Activation holds the annotations rolled when a group activates. They are
// cleared when the group is readied again.
type Activation struct {
	InstructionOption string `json:"instructionOption,omitempty"`
	BonusName         string `json:"bonusName,omitempty"`
	BonusText         string `json:"bonusText,omitempty"`
	RebelName         string `json:"rebelName,omitempty"`
}

type CardInstance struct {
	Card         *Card
	CurrentSize  int
	HasActivated bool
	ColorIndex   int
	Activation   Activation
}

// NewCardInstance creates a full-strength instance of the definition.
func NewCardInstance(card *Card) *CardInstance {
	return &CardInstance{Card: card, CurrentSize: card.Size}
}

func (ci *CardInstance) ID() GroupID {
	return ci.Card.ID
}

func (ci *CardInstance) String() string {
	if ci == nil {
		return "(none)"
	}
	return fmt.Sprintf("%s (%d/%d)", ci.Card.Name, ci.CurrentSize, ci.Card.Size)
}

// CanGrow reports whether the group has a reinforcement price and missing figures.
func (ci *CardInstance) CanGrow() bool {
	return ci.Card.RCost > 0 && ci.CurrentSize < ci.Card.Size
}

// ResetActivation marks the group ready and drops its rolled annotations.
func (ci *CardInstance) ResetActivation() {
	ci.HasActivated = false
	ci.Activation = Activation{}
}

// SetSize sets the figure count, clamped to 0..Size.
func (ci *CardInstance) SetSize(n int) {
	ci.CurrentSize = min(max(n, 0), ci.Card.Size)
}

// CycleColor advances the colour pip, wrapping after the last one.
func (ci *CardInstance) CycleColor() int {
	ci.ColorIndex = (ci.ColorIndex + 1) % PipColorCount
	return ci.ColorIndex
}

// --- Economy ---

// Economy is the session's threat budget and fame counter.
type Economy struct {
	Threat int `json:"threat"`
	Fame   int `json:"fame"`
}

// ModifyThreat adds delta to the threat budget. Threat never drops below 0.
func (e *Economy) ModifyThreat(delta int) {
	e.Threat = max(0, e.Threat+delta)
}
