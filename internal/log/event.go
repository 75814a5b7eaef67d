package log

import "fmt"

// EventType enumerates all observable deployment events.
type EventType int

const (
	EventHandBuilt EventType = iota
	EventManualListBuilt
	EventVillainInjected
	EventVillainDeferred
	EventDeploy
	EventManualDeploy
	EventHeroDeploy
	EventReinforce
	EventDefeat
	EventDefeatRefused
	EventReturnToHand
	EventCannotRedeploy
	EventAddToManual
	EventOverrideSet
	EventOverrideRemoved
	EventOverrideReset
	EventTriggerFired
	EventPoolEmptied
	EventThreatChange
	EventFameChange
	EventRestore
)

func (e EventType) String() string {
	switch e {
	case EventHandBuilt:
		return "HandBuilt"
	case EventManualListBuilt:
		return "ManualListBuilt"
	case EventVillainInjected:
		return "VillainInjected"
	case EventVillainDeferred:
		return "VillainDeferred"
	case EventDeploy:
		return "Deploy"
	case EventManualDeploy:
		return "ManualDeploy"
	case EventHeroDeploy:
		return "HeroDeploy"
	case EventReinforce:
		return "Reinforce"
	case EventDefeat:
		return "Defeat"
	case EventDefeatRefused:
		return "DefeatRefused"
	case EventReturnToHand:
		return "ReturnToHand"
	case EventCannotRedeploy:
		return "CannotRedeploy"
	case EventAddToManual:
		return "AddToManual"
	case EventOverrideSet:
		return "OverrideSet"
	case EventOverrideRemoved:
		return "OverrideRemoved"
	case EventOverrideReset:
		return "OverrideReset"
	case EventTriggerFired:
		return "TriggerFired"
	case EventPoolEmptied:
		return "PoolEmptied"
	case EventThreatChange:
		return "ThreatChange"
	case EventFameChange:
		return "FameChange"
	case EventRestore:
		return "Restore"
	default:
		return "Unknown"
	}
}

// GameEvent represents a single observable event in a session.
type GameEvent struct {
	Seq     int       `json:"seq"`    // monotonic sequence number
	Type    EventType `json:"type"`   // event type
	Card    string    `json:"card"`   // group id (if applicable)
	Threat  int       `json:"threat"` // threat after the event
	Details string    `json:"details"`
}

func (e EventType) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *EventType) UnmarshalText(text []byte) error {
	for t := EventHandBuilt; t <= EventRestore; t++ {
		if t.String() == string(text) {
			*e = t
			return nil
		}
	}
	return fmt.Errorf("unknown event type %q", text)
}
