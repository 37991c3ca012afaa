package scenario

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/sarchlab/fundsim/fund"
	"github.com/sarchlab/fundsim/sim"
)

// A LifecycleEvent applies one schedule entry when it is handled.
type LifecycleEvent struct {
	*sim.EventBase
	Entry Entry
}

// A Scheduler turns the schedule of a scenario into engine events and applies
// them to the fund as they fire.
type Scheduler struct {
	scenario Scenario
	fund     *fund.Fund
	rng      *rand.Rand
	logger   *log.Logger
}

// NewScheduler creates a Scheduler that mutates f. New members sample their
// performance from rng.
func NewScheduler(
	s Scenario,
	f *fund.Fund,
	rng *rand.Rand,
	logger *log.Logger,
) *Scheduler {
	if logger == nil {
		logger = log.Default()
	}

	return &Scheduler{
		scenario: s,
		fund:     f,
		rng:      rng,
		logger:   logger,
	}
}

// Name returns the name of the scheduler.
func (s *Scheduler) Name() string {
	return "Scheduler"
}

// ScheduleAll schedules one primary event per entry that falls within the
// horizon and returns how many were scheduled. Entries on or after the
// horizon would never fire and are skipped.
func (s *Scheduler) ScheduleAll(engine sim.EventScheduler, horizon int) int {
	count := 0

	for _, e := range sortedByDay(s.scenario.Schedule) {
		if e.Day >= horizon {
			s.logger.Printf("Day %d: %s of %s is beyond the horizon, skipped.",
				e.Day, e.Kind, e.Startup)
			continue
		}

		engine.Schedule(LifecycleEvent{
			EventBase: sim.NewEventBase(sim.VTimeInDay(e.Day), s),
			Entry:     e,
		})
		count++
	}

	return count
}

// Handle applies a LifecycleEvent.
func (s *Scheduler) Handle(e sim.Event) error {
	switch evt := e.(type) {
	case LifecycleEvent:
		return s.Apply(evt.Entry)
	default:
		return fmt.Errorf("scheduler cannot handle event of type %T", e)
	}
}

// Apply performs the transition described by an entry on the entry's day.
func (s *Scheduler) Apply(e Entry) error {
	date := s.scenario.Date(e.Day)

	switch e.Kind {
	case KindFail:
		st, err := s.fund.StartupByName(e.Startup)
		if err != nil {
			return err
		}

		if err := s.fund.Fail(st.ID, date); err != nil {
			return err
		}

		s.logger.Printf("Day %d: Startup '%s' failed.", e.Day, st.Name)
	case KindAcquire:
		st, err := s.fund.StartupByName(e.Startup)
		if err != nil {
			return err
		}

		if err := s.fund.Acquire(st.ID, date, e.Value); err != nil {
			return err
		}

		s.logger.Printf("Day %d: Startup '%s' acquired for %.0f.",
			e.Day, st.Name, e.Value)
	case KindNewEntrant:
		return s.addStartup(e)
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidScenario, e.Kind)
	}

	return nil
}

func (s *Scheduler) addStartup(e Entry) error {
	date := s.scenario.Date(e.Day)

	id, err := s.fund.AddStartup(e.Startup, date, performance(s.rng))
	if err != nil {
		return err
	}

	for _, name := range e.Founders {
		m := s.fund.AddMember(name, fund.RoleFounder, date, performance(s.rng))
		if err := s.fund.AssignFounder(id, m); err != nil {
			return err
		}
	}

	s.logger.Printf("Day %d: New startup '%s' added with %d founders.",
		e.Day, e.Startup, len(e.Founders))

	return nil
}
