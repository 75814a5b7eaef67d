package session

import (
	"github.com/zuckel/ImperialCommander2/internal/deploy"
)

// StateView is the session state as shown to a tool caller or browser.
type StateView struct {
	SessionID string `json:"session_id"`
	Threat    int    `json:"threat"`
	Fame      int    `json:"fame"`

	Hand       []GroupView `json:"hand"`
	ManualList []GroupView `json:"manual_list"`
	Deployed   []GroupView `json:"deployed"`
	Heroes     []GroupView `json:"heroes"`

	EarnedVillains   []string `json:"earned_villains"`
	DeferredVillains []string `json:"deferred_villains"`
	CannotRedeploy   []string `json:"cannot_redeploy"`
	EventQueue       []string `json:"event_queue"`

	Overrides []*deploy.Override `json:"overrides"`
	Triggers  TriggerLog         `json:"triggers"`
}

// GroupView describes one group in a pool.
type GroupView struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Tier         int                `json:"tier,omitempty"`
	Cost         int                `json:"cost,omitempty"`
	RCost        int                `json:"rcost,omitempty"`
	Size         int                `json:"size"`
	CurrentSize  int                `json:"current_size"`
	IsElite      bool               `json:"is_elite,omitempty"`
	HasActivated bool               `json:"has_activated,omitempty"`
	ColorIndex   int                `json:"color_index"`
	Activation   *deploy.Activation `json:"activation,omitempty"`
	Modification string             `json:"modification,omitempty"`
}

// BuildGroupView creates a GroupView, applying the display parts of an
// override if one exists.
func BuildGroupView(ci *deploy.CardInstance, o *deploy.Override) GroupView {
	gv := GroupView{
		ID:           ci.ID().String(),
		Name:         ci.Card.Name,
		Tier:         ci.Card.Tier,
		Cost:         ci.Card.Cost,
		RCost:        ci.Card.RCost,
		Size:         ci.Card.Size,
		CurrentSize:  ci.CurrentSize,
		IsElite:      ci.Card.IsElite,
		HasActivated: ci.HasActivated,
		ColorIndex:   ci.ColorIndex,
	}
	if ci.Activation != (deploy.Activation{}) {
		a := ci.Activation
		gv.Activation = &a
	}
	if o != nil {
		if o.NameOverride != "" {
			gv.Name = o.NameOverride
		}
		if o.ShowModification {
			gv.Modification = o.Modification
		}
	}
	return gv
}

// BuildStateView creates a StateView of the engine.
func BuildStateView(id string, e *deploy.Engine, triggers TriggerLog) StateView {
	eco := e.Economy()
	return StateView{
		SessionID:        id,
		Threat:           eco.Threat,
		Fame:             eco.Fame,
		Hand:             poolView(e, e.Hand()),
		ManualList:       poolView(e, e.ManualList()),
		Deployed:         poolView(e, e.DeployedEnemies()),
		Heroes:           poolView(e, e.DeployedHeroes()),
		EarnedVillains:   idView(e.EarnedVillains()),
		DeferredVillains: idView(instanceIDs(e.DeferredVillains())),
		CannotRedeploy:   idView(e.CannotRedeployList()),
		EventQueue:       nonNil(e.EventQueue()),
		Overrides:        overrideView(e.Overrides().Entries()),
		Triggers:         triggers.clone(),
	}
}

func poolView(e *deploy.Engine, pool []*deploy.CardInstance) []GroupView {
	out := make([]GroupView, 0, len(pool))
	for _, ci := range pool {
		o, _ := e.Override(ci.ID())
		out = append(out, BuildGroupView(ci, o))
	}
	return out
}

func instanceIDs(pool []*deploy.CardInstance) []deploy.GroupID {
	out := make([]deploy.GroupID, 0, len(pool))
	for _, ci := range pool {
		out = append(out, ci.ID())
	}
	return out
}

func idView(ids []deploy.GroupID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

// overrideView copies entries so the view outlives the session lock.
func overrideView(entries []*deploy.Override) []*deploy.Override {
	out := make([]*deploy.Override, 0, len(entries))
	for _, o := range entries {
		cp := *o
		if o.CustomCard != nil {
			card := *o.CustomCard
			cp.CustomCard = &card
		}
		out = append(out, &cp)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
