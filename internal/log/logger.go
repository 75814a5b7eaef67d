package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// EventLogger is the interface for logging deployment events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

func (l *MemoryLogger) Events() []GameEvent {
	return l.events
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	var result []GameEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(l.LastEvent()))
}

// --- FanoutLogger: records events and hands each one to subscribers ---

// FanoutLogger keeps every event like MemoryLogger and also delivers it to
// subscriber channels. Slow subscribers miss events rather than block the
// session.
type FanoutLogger struct {
	mu     sync.Mutex
	mem    MemoryLogger
	subs   map[int]chan GameEvent
	nextID int
}

func NewFanoutLogger() *FanoutLogger {
	return &FanoutLogger{subs: make(map[int]chan GameEvent)}
}

func (l *FanoutLogger) Log(event GameEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mem.Log(event)
	event = l.mem.LastEvent()
	for _, ch := range l.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

func (l *FanoutLogger) Events() []GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]GameEvent(nil), l.mem.Events()...)
}

// Subscribe returns a channel receiving future events and a cancel func
// that closes it.
func (l *FanoutLogger) Subscribe(buffer int) (<-chan GameEvent, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	ch := make(chan GameEvent, buffer)
	l.subs[id] = ch
	return ch, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if c, ok := l.subs[id]; ok {
			delete(l.subs, id)
			close(c)
		}
	}
}

// --- Formatting ---

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	kind := e.Type.String()
	// Pad type to 16 chars for alignment
	for len(kind) < 16 {
		kind += " "
	}
	return fmt.Sprintf("#%-3d threat %-3d %s| %s", e.Seq, e.Threat, kind, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---

func NewHandBuiltEvent(threat int, threatLevel int, ids []string) GameEvent {
	return GameEvent{
		Type:    EventHandBuilt,
		Threat:  threat,
		Details: fmt.Sprintf("Deployment hand built at threat level %d: %s", threatLevel, strings.Join(ids, ", ")),
	}
}

func NewManualListBuiltEvent(threat int, count int) GameEvent {
	return GameEvent{
		Type:    EventManualListBuilt,
		Threat:  threat,
		Details: fmt.Sprintf("Manual deployment list built with %d groups", count),
	}
}

func NewVillainInjectedEvent(threat int, id string) GameEvent {
	return GameEvent{
		Type:    EventVillainInjected,
		Card:    id,
		Threat:  threat,
		Details: fmt.Sprintf("Earned villain %s added to the deployment hand", id),
	}
}

func NewVillainDeferredEvent(threat int, id string) GameEvent {
	return GameEvent{
		Type:    EventVillainDeferred,
		Card:    id,
		Threat:  threat,
		Details: fmt.Sprintf("Earned villain %s deferred to manual deployment", id),
	}
}

func NewDeployEvent(threat int, id string, cost int) GameEvent {
	return GameEvent{
		Type:    EventDeploy,
		Card:    id,
		Threat:  threat,
		Details: fmt.Sprintf("%s deploys from the hand (cost %d)", id, cost),
	}
}

func NewManualDeployEvent(threat int, id string) GameEvent {
	return GameEvent{
		Type:    EventManualDeploy,
		Card:    id,
		Threat:  threat,
		Details: fmt.Sprintf("%s is placed manually", id),
	}
}

func NewHeroDeployEvent(threat int, id string) GameEvent {
	return GameEvent{
		Type:    EventHeroDeploy,
		Card:    id,
		Threat:  threat,
		Details: fmt.Sprintf("%s joins the rebels", id),
	}
}

func NewReinforceEvent(threat int, id string, size, maxSize, cost int) GameEvent {
	return GameEvent{
		Type:    EventReinforce,
		Card:    id,
		Threat:  threat,
		Details: fmt.Sprintf("%s reinforces to %d/%d (cost %d)", id, size, maxSize, cost),
	}
}

func NewDefeatEvent(threat int, id string) GameEvent {
	return GameEvent{
		Type:    EventDefeat,
		Card:    id,
		Threat:  threat,
		Details: fmt.Sprintf("%s is defeated", id),
	}
}

func NewDefeatRefusedEvent(threat int, id string) GameEvent {
	return GameEvent{
		Type:    EventDefeatRefused,
		Card:    id,
		Threat:  threat,
		Details: fmt.Sprintf("%s cannot be defeated", id),
	}
}

func NewReturnToHandEvent(threat int, id string) GameEvent {
	return GameEvent{
		Type:    EventReturnToHand,
		Card:    id,
		Threat:  threat,
		Details: fmt.Sprintf("%s returns to the deployment hand", id),
	}
}

func NewCannotRedeployEvent(threat int, id string) GameEvent {
	return GameEvent{
		Type:    EventCannotRedeploy,
		Card:    id,
		Threat:  threat,
		Details: fmt.Sprintf("%s cannot redeploy; override cleared", id),
	}
}

func NewAddToManualEvent(threat int, id string) GameEvent {
	return GameEvent{
		Type:    EventAddToManual,
		Card:    id,
		Threat:  threat,
		Details: fmt.Sprintf("%s is added to the manual deployment list", id),
	}
}

func NewOverrideSetEvent(threat int, id string) GameEvent {
	return GameEvent{
		Type:    EventOverrideSet,
		Card:    id,
		Threat:  threat,
		Details: fmt.Sprintf("Override set for %s", id),
	}
}

func NewOverrideRemovedEvent(threat int, id string) GameEvent {
	return GameEvent{
		Type:    EventOverrideRemoved,
		Card:    id,
		Threat:  threat,
		Details: fmt.Sprintf("Override removed for %s", id),
	}
}

func NewOverrideResetEvent(threat int, id string) GameEvent {
	return GameEvent{
		Type:    EventOverrideReset,
		Card:    id,
		Threat:  threat,
		Details: fmt.Sprintf("Override for %s reset to its default deployment point", id),
	}
}

func NewTriggerFiredEvent(threat int, id string, kind, name string) GameEvent {
	return GameEvent{
		Type:    EventTriggerFired,
		Card:    id,
		Threat:  threat,
		Details: fmt.Sprintf("%s fires %s %q", id, kind, name),
	}
}

func NewPoolEmptiedEvent(threat int) GameEvent {
	return GameEvent{
		Type:    EventPoolEmptied,
		Threat:  threat,
		Details: "No enemy groups remain deployed",
	}
}

func NewThreatChangeEvent(oldThreat, newThreat int, reason string) GameEvent {
	return GameEvent{
		Type:    EventThreatChange,
		Threat:  newThreat,
		Details: fmt.Sprintf("Threat: %d → %d (%s)", oldThreat, newThreat, reason),
	}
}

func NewFameChangeEvent(threat int, oldFame, newFame int, id string) GameEvent {
	return GameEvent{
		Type:    EventFameChange,
		Card:    id,
		Threat:  threat,
		Details: fmt.Sprintf("Fame: %d → %d (%s defeated)", oldFame, newFame, id),
	}
}

func NewRestoreEvent(threat int, hand, manual, deployed int) GameEvent {
	return GameEvent{
		Type:    EventRestore,
		Threat:  threat,
		Details: fmt.Sprintf("Session restored (hand %d, manual %d, deployed %d)", hand, manual, deployed),
	}
}
