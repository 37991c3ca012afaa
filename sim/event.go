package sim

// VTimeInDay defines the time in the simulated space in the unit of day. Day 0
// is the epoch of the simulation.
type VTimeInDay int

// An Event is something going to happen in the future.
type Event interface {
	// Return the day that the event should happen
	Time() VTimeInDay

	// Returns the handler that can should handle the event
	Handler() Handler

	// IsSecondary tells if the event is a secondary event. Secondary event are
	// handled after all same-day primary events are handled.
	IsSecondary() bool
}

// EventBase provides the basic fields and getters for other events
type EventBase struct {
	ID        string
	time      VTimeInDay
	handler   Handler
	secondary bool
}

// NewEventBase creates a new EventBase
func NewEventBase(t VTimeInDay, handler Handler) *EventBase {
	e := new(EventBase)
	e.ID = GetIDGenerator().Generate()
	e.time = t
	e.handler = handler
	e.secondary = false

	return e
}

// NewSecondaryEventBase creates a new EventBase that is handled after all the
// primary events of the same day.
func NewSecondaryEventBase(t VTimeInDay, handler Handler) *EventBase {
	e := NewEventBase(t, handler)
	e.secondary = true

	return e
}

// Time return the day that the event is going to happen
func (e EventBase) Time() VTimeInDay {
	return e.time
}

// Handler returns the handler to handle the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// IsSecondary returns true if the event is a secondary event.
func (e EventBase) IsSecondary() bool {
	return e.secondary
}

// A Handler defines a domain for the events.
//
// One event is always constraint to one Handler, which means the event can
// only be scheduled by one handler and can only directly modify that handler.
type Handler interface {
	Handle(e Event) error
}
