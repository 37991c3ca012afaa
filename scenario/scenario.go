// Package scenario describes the starting state of a fund and the lifecycle
// events that happen to it, and applies those events during a simulation.
package scenario

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/sarchlab/fundsim/fund"
)

// ErrInvalidScenario is returned when a scenario cannot be used.
var ErrInvalidScenario = errors.New("invalid scenario")

// Kind is the type of a lifecycle transition.
type Kind string

// The lifecycle transitions a schedule can contain.
const (
	KindFail       Kind = "fail"
	KindAcquire    Kind = "acquire"
	KindNewEntrant Kind = "new_entrant"
)

// An Entry is one record of a schedule. Startup names the startup the
// transition applies to; for a new entrant it is the name of the startup to
// create.
type Entry struct {
	Day      int      `yaml:"day"`
	Kind     Kind     `yaml:"kind"`
	Startup  string   `yaml:"startup"`
	Value    float64  `yaml:"value,omitempty"`
	Founders []string `yaml:"founders,omitempty"`
}

// StartupSpec describes a startup that exists when the simulation begins.
// Its founders join on the startup's start day.
type StartupSpec struct {
	Name     string   `yaml:"name"`
	StartDay int      `yaml:"start_day"`
	Founders []string `yaml:"founders"`
}

// AdvisorSpec describes an advisor that exists when the simulation begins.
type AdvisorSpec struct {
	Name    string `yaml:"name"`
	JoinDay int    `yaml:"join_day"`
}

// A Scenario is the initial state of a fund plus the schedule of lifecycle
// events applied to it.
type Scenario struct {
	FundName     string        `yaml:"fund_name"`
	InitialValue float64       `yaml:"initial_value"`
	Epoch        time.Time     `yaml:"epoch"`
	Startups     []StartupSpec `yaml:"startups"`
	Advisors     []AdvisorSpec `yaml:"advisors"`
	Schedule     []Entry       `yaml:"schedule"`
}

// Default returns the built-in scenario: three startups with two founders
// each, three advisors, a failure on day 180, an acquisition on day 300 and a
// new startup on day 365.
func Default() Scenario {
	return Scenario{
		FundName:     "A* Fund",
		InitialValue: 1_000_000,
		Epoch:        time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		Startups: []StartupSpec{
			{Name: "Startup1", StartDay: 0,
				Founders: []string{"Founder_0", "Founder_1"}},
			{Name: "Startup2", StartDay: 60,
				Founders: []string{"Founder_2", "Founder_3"}},
			{Name: "Startup3", StartDay: 120,
				Founders: []string{"Founder_4", "Founder_5"}},
		},
		Advisors: []AdvisorSpec{
			{Name: "Advisor_0"},
			{Name: "Advisor_1"},
			{Name: "Advisor_2"},
		},
		Schedule: []Entry{
			{Day: 180, Kind: KindFail, Startup: "Startup1"},
			{Day: 300, Kind: KindAcquire, Startup: "Startup2",
				Value: 5_000_000},
			{Day: 365, Kind: KindNewEntrant, Startup: "Startup4",
				Founders: []string{"NewFounder_0", "NewFounder_1"}},
		},
	}
}

// Date converts a simulated day into a calendar date.
func (s Scenario) Date(day int) time.Time {
	return s.Epoch.AddDate(0, 0, day)
}

// Validate checks that the scenario can be simulated. Every transition must
// name a startup that exists by the time the transition fires.
func (s Scenario) Validate() error {
	if s.FundName == "" {
		return fmt.Errorf("%w: fund has no name", ErrInvalidScenario)
	}

	if len(s.Startups) == 0 && len(s.Advisors) == 0 {
		return fmt.Errorf("%w: fund has no members", ErrInvalidScenario)
	}

	known := make(map[string]bool)
	for _, st := range s.Startups {
		if err := validateStartup(st.Name, st.StartDay, st.Founders); err != nil {
			return err
		}

		if known[st.Name] {
			return fmt.Errorf("%w: duplicated startup %s",
				ErrInvalidScenario, st.Name)
		}
		known[st.Name] = true
	}

	for _, a := range s.Advisors {
		if a.Name == "" || a.JoinDay < 0 {
			return fmt.Errorf("%w: invalid advisor %q",
				ErrInvalidScenario, a.Name)
		}
	}

	return validateSchedule(s.Schedule, known)
}

func validateStartup(name string, day int, founders []string) error {
	if name == "" {
		return fmt.Errorf("%w: startup has no name", ErrInvalidScenario)
	}

	if day < 0 {
		return fmt.Errorf("%w: startup %s starts before the epoch",
			ErrInvalidScenario, name)
	}

	if len(founders) == 0 {
		return fmt.Errorf("%w: startup %s has no founders",
			ErrInvalidScenario, name)
	}

	if slices.Contains(founders, "") {
		return fmt.Errorf("%w: startup %s has a founder without a name",
			ErrInvalidScenario, name)
	}

	return nil
}

func validateSchedule(schedule []Entry, known map[string]bool) error {
	for _, e := range sortedByDay(schedule) {
		if e.Day < 0 {
			return fmt.Errorf("%w: day %d is before the epoch",
				ErrInvalidScenario, e.Day)
		}

		switch e.Kind {
		case KindFail, KindAcquire:
			if !known[e.Startup] {
				return fmt.Errorf("%w: day %d: %s refers to unknown startup %q",
					ErrInvalidScenario, e.Day, e.Kind, e.Startup)
			}

			if e.Value < 0 {
				return fmt.Errorf("%w: day %d: negative value",
					ErrInvalidScenario, e.Day)
			}
		case KindNewEntrant:
			err := validateStartup(e.Startup, e.Day, e.Founders)
			if err != nil {
				return err
			}

			if known[e.Startup] {
				return fmt.Errorf("%w: day %d: startup %s already exists",
					ErrInvalidScenario, e.Day, e.Startup)
			}
			known[e.Startup] = true
		default:
			return fmt.Errorf("%w: day %d: unknown kind %q",
				ErrInvalidScenario, e.Day, e.Kind)
		}
	}

	return nil
}

// sortedByDay returns a copy of the schedule ordered by day. Entries of the
// same day keep their order.
func sortedByDay(schedule []Entry) []Entry {
	sorted := slices.Clone(schedule)
	slices.SortStableFunc(sorted, func(a, b Entry) int {
		return a.Day - b.Day
	})

	return sorted
}

// Populate creates the fund described by the scenario. Founders are added to
// the fund before advisors, in the order of their startups. Performance
// multipliers are sampled from rng.
func (s Scenario) Populate(rng *rand.Rand) (*fund.Fund, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	f := fund.New(s.FundName, s.InitialValue)

	startupIDs := make([]fund.StartupID, len(s.Startups))
	for i, st := range s.Startups {
		id, err := f.AddStartup(st.Name, s.Date(st.StartDay), performance(rng))
		if err != nil {
			return nil, err
		}
		startupIDs[i] = id
	}

	for i, st := range s.Startups {
		for _, name := range st.Founders {
			m := f.AddMember(name, fund.RoleFounder,
				s.Date(st.StartDay), performance(rng))
			if err := f.AssignFounder(startupIDs[i], m); err != nil {
				return nil, err
			}
		}
	}

	for _, a := range s.Advisors {
		f.AddMember(a.Name, fund.RoleAdvisor,
			s.Date(a.JoinDay), performance(rng))
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}

	return f, nil
}

// performance samples a multiplier in [0.8, 1.2).
func performance(rng *rand.Rand) float64 {
	return 0.8 + 0.4*rng.Float64()
}
