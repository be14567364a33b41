package systems

import "github.com/vovakirdan/sandbox/internal/core"

// EventType identifies a simulation event.
type EventType int

const (
	EventBounce  EventType = iota // a body hit a wall or the ground
	EventSpawn                    // the user dropped a body
	EventCleared                  // the user removed every dropped body
)

// Event is queued during a sub-step and delivered when the bus is flushed.
type Event struct {
	Type     EventType
	Pos      core.Vec
	Strength float64 // impact speed for bounces, px/s
}

// EventHandler receives delivered events.
type EventHandler func(Event)

// Events is a queued event bus. Emit only records; the Events subsystem delivers
// the queue once per sub-step, after the systems registered before it have run.
type Events struct {
	handlers map[EventType][]EventHandler
	queue    []Event
	spare    []Event
}

// NewEvents creates an empty bus.
func NewEvents() *Events {
	return &Events{handlers: make(map[EventType][]EventHandler)}
}

// Subscribe registers fn for events of type t.
func (e *Events) Subscribe(t EventType, fn EventHandler) {
	e.handlers[t] = append(e.handlers[t], fn)
}

// Emit queues an event.
func (e *Events) Emit(ev Event) {
	e.queue = append(e.queue, ev)
}

// Pending returns the number of queued events.
func (e *Events) Pending() int { return len(e.queue) }

// Flush delivers queued events in emission order. Events emitted by handlers
// are delivered on the next flush.
func (e *Events) Flush() int {
	if len(e.queue) == 0 {
		return 0
	}
	batch := e.queue
	e.queue = e.spare[:0]
	for _, ev := range batch {
		for _, fn := range e.handlers[ev.Type] {
			fn(ev)
		}
	}
	e.spare = batch[:0]
	return len(batch)
}

func (e *Events) Name() string      { return "events" }
func (e *Events) Initialize() error { return nil }
func (e *Events) Shutdown() error   { return nil }

// Update delivers the sub-step's events.
func (e *Events) Update(float64) error {
	e.Flush()
	return nil
}

// Reset drops undelivered events.
func (e *Events) Reset() { e.queue = e.queue[:0] }
