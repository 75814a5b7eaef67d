package deploy

import (
	"cmp"
	"slices"
)

// DeploymentPointActive is the default map deployment point a group uses.
const DeploymentPointActive = "active"

// Override changes the default rules for a single group. A group with no
// entry in the OverrideTable follows the default-open policy: it may
// reinforce, redeploy and be defeated.
type Override struct {
	ID GroupID `json:"id"`

	CanReinforce  bool `json:"canReinforce"`
	CanRedeploy   bool `json:"canRedeploy"`
	CanBeDefeated bool `json:"canBeDefeated"`

	// IsCustom substitutes CustomCard for the catalog definition.
	IsCustom   bool  `json:"isCustom"`
	CustomCard *Card `json:"customCard,omitempty"`

	// UseResetOnRedeployment drops the whole entry when the group redeploys
	// instead of only resetting its deployment point.
	UseResetOnRedeployment bool `json:"useResetOnRedeployment"`

	NameOverride     string `json:"nameOverride,omitempty"`
	Modification     string `json:"modification,omitempty"`
	ShowModification bool   `json:"showModification"`

	// Fired when the group is defeated, whether or not the defeat is allowed.
	SetTrigger string `json:"setTrigger,omitempty"`
	SetEvent   string `json:"setEvent,omitempty"`

	DeploymentPoint string `json:"deploymentPoint"`
}

// NewOverride returns an entry carrying the default-open policy for id.
func NewOverride(id GroupID) *Override {
	return &Override{
		ID:              id,
		CanReinforce:    true,
		CanRedeploy:     true,
		CanBeDefeated:   true,
		DeploymentPoint: DeploymentPointActive,
	}
}

// ResetDP puts the group back on the default deployment point.
func (o *Override) ResetDP() {
	o.DeploymentPoint = DeploymentPointActive
}

// Valid reports whether the entry is usable. Malformed entries are treated
// as absent.
func (o *Override) Valid() bool {
	if o == nil || o.ID.IsZero() {
		return false
	}
	if o.IsCustom && o.CustomCard == nil {
		return false
	}
	return true
}

// OverrideTable maps group ids to their overrides.
type OverrideTable struct {
	entries map[GroupID]*Override
}

func NewOverrideTable() *OverrideTable {
	return &OverrideTable{entries: make(map[GroupID]*Override)}
}

// Get returns the override for id, if one exists.
func (t *OverrideTable) Get(id GroupID) (*Override, bool) {
	o, ok := t.entries[id]
	return o, ok
}

// Set stores o, replacing any previous entry for the same id. Malformed
// entries are dropped and Set reports false.
func (t *OverrideTable) Set(o *Override) bool {
	if !o.Valid() {
		return false
	}
	if o.DeploymentPoint == "" {
		o.DeploymentPoint = DeploymentPointActive
	}
	if o.IsCustom {
		// the substitute keeps the overridden group's identity
		custom := *o.CustomCard
		custom.ID = o.ID
		o.CustomCard = &custom
	}
	t.entries[o.ID] = o
	return true
}

// Remove deletes the entry for id. Reports whether one existed.
func (t *OverrideTable) Remove(id GroupID) bool {
	if _, ok := t.entries[id]; !ok {
		return false
	}
	delete(t.entries, id)
	return true
}

// Ensure returns the entry for id, creating a default-open one on first use.
func (t *OverrideTable) Ensure(id GroupID) *Override {
	if o, ok := t.entries[id]; ok {
		return o
	}
	o := NewOverride(id)
	t.entries[id] = o
	return o
}

func (t *OverrideTable) Len() int {
	return len(t.entries)
}

// Entries returns all overrides ordered by group ordinal.
func (t *OverrideTable) Entries() []*Override {
	out := make([]*Override, 0, len(t.entries))
	for _, o := range t.entries {
		out = append(out, o)
	}
	slices.SortFunc(out, func(a, b *Override) int {
		if c := cmp.Compare(a.ID.Ordinal, b.ID.Ordinal); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out
}

// canReinforce applies the table to the reinforcement rule.
func (t *OverrideTable) canReinforce(id GroupID) bool {
	o, ok := t.entries[id]
	return !ok || o.CanReinforce
}
