package sim

// TickEvent is a generic event that a daily component can use to update its
// status.
type TickEvent struct {
	*EventBase
}

// MakeTickEvent creates a new TickEvent
func MakeTickEvent(handler Handler, time VTimeInDay) TickEvent {
	return TickEvent{EventBase: NewEventBase(time, handler)}
}

// MakeSecondaryTickEvent creates a new TickEvent that is handled after all the
// primary events of the same day.
func MakeSecondaryTickEvent(handler Handler, time VTimeInDay) TickEvent {
	return TickEvent{EventBase: NewSecondaryEventBase(time, handler)}
}

// TickScheduler can help schedule tick events.
type TickScheduler struct {
	handler   Handler
	Engine    Engine
	secondary bool

	nextTickTime VTimeInDay
}

// NewTickScheduler creates a scheduler for tick events.
func NewTickScheduler(handler Handler, engine Engine) *TickScheduler {
	ticker := new(TickScheduler)

	ticker.handler = handler
	ticker.Engine = engine
	ticker.nextTickTime = -1 // This will make sure the first tick is scheduled

	return ticker
}

// NewSecondaryTickScheduler creates a scheduler that always schedule secondary
// tick events.
func NewSecondaryTickScheduler(handler Handler, engine Engine) *TickScheduler {
	ticker := NewTickScheduler(handler, engine)
	ticker.secondary = true

	return ticker
}

// TickNow schedule a Tick event at the current day.
func (t *TickScheduler) TickNow() {
	t.tickAt(t.Engine.CurrentTime())
}

// TickLater will schedule a tick event at the day after the current day.
func (t *TickScheduler) TickLater() {
	t.tickAt(t.Engine.CurrentTime() + 1)
}

func (t *TickScheduler) tickAt(time VTimeInDay) {
	if t.nextTickTime >= time {
		return
	}

	t.nextTickTime = time

	tick := MakeTickEvent(t.handler, time)
	if t.secondary {
		tick = MakeSecondaryTickEvent(t.handler, time)
	}

	t.Engine.Schedule(tick)
}
