package session

// TriggerLog records the mission trigger and event calls the engine makes.
// Mission scripting lives outside this module, so callers read the log and
// act on it.
type TriggerLog struct {
	Triggers []string `json:"triggers"`
	Events   []string `json:"events"`
	// BoardCleared counts how often the last deployed enemy group fell.
	BoardCleared int `json:"board_cleared"`
}

func (t *TriggerLog) FireTrigger(name string) { t.Triggers = append(t.Triggers, name) }

func (t *TriggerLog) DoEvent(name string) { t.Events = append(t.Events, name) }

func (t *TriggerLog) CheckIfEventsTriggered() { t.BoardCleared++ }

func (t TriggerLog) clone() TriggerLog {
	return TriggerLog{
		Triggers:     append([]string{}, t.Triggers...),
		Events:       append([]string{}, t.Events...),
		BoardCleared: t.BoardCleared,
	}
}
