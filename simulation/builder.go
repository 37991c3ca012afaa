package simulation

import (
	"log"
	"math/rand"
	"time"

	"github.com/rs/xid"
	"github.com/sarchlab/fundsim/history"
	"github.com/sarchlab/fundsim/ownership"
	"github.com/sarchlab/fundsim/scenario"
	"github.com/sarchlab/fundsim/sim"
)

// DefaultHorizon is the number of days simulated when no horizon is given.
const DefaultHorizon = 730

// Builder can be used to build a simulation.
type Builder struct {
	horizon       int
	scenario      scenario.Scenario
	epoch         time.Time
	seed          int64
	vestingPeriod int
	sinks         []history.Sink
	hooks         []sim.Hook
	eventLogger   *log.Logger
	logger        *log.Logger
}

// MakeBuilder creates a new builder with the default scenario.
func MakeBuilder() Builder {
	return Builder{
		horizon:       DefaultHorizon,
		scenario:      scenario.Default(),
		seed:          1,
		vestingPeriod: ownership.DefaultVestingPeriod,
	}
}

// WithHorizon sets the number of days to simulate.
func (b Builder) WithHorizon(days int) Builder {
	b.horizon = days
	return b
}

// WithScenario sets the fund and the lifecycle events to simulate.
func (b Builder) WithScenario(s scenario.Scenario) Builder {
	b.scenario = s
	return b
}

// WithEpoch overrides the calendar date of day 0 given by the scenario.
func (b Builder) WithEpoch(epoch time.Time) Builder {
	b.epoch = epoch
	return b
}

// WithSeed sets the seed of the performance multipliers.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// WithVestingPeriod sets the number of days it takes to fully vest.
func (b Builder) WithVestingPeriod(days int) Builder {
	b.vestingPeriod = days
	return b
}

// WithSink adds a sink that receives the snapshot of every day. It can be
// called several times.
func (b Builder) WithSink(sink history.Sink) Builder {
	b.sinks = append(b.sinks[:len(b.sinks):len(b.sinks)], sink)
	return b
}

// WithHook registers a hook to the engine.
func (b Builder) WithHook(hook sim.Hook) Builder {
	b.hooks = append(b.hooks[:len(b.hooks):len(b.hooks)], hook)
	return b
}

// WithEventLogger prints every event handled by the engine into logger.
func (b Builder) WithEventLogger(logger *log.Logger) Builder {
	b.eventLogger = logger
	return b
}

// WithLogger sets where lifecycle transitions are reported. The standard
// logger is used by default.
func (b Builder) WithLogger(logger *log.Logger) Builder {
	b.logger = logger
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.horizon <= 0 {
		panic("horizon must be positive")
	}

	if b.vestingPeriod <= 0 {
		panic("vesting period must be positive")
	}
}

// Build creates the fund described by the scenario and prepares the
// simulation. It fails if the scenario is invalid.
func (b Builder) Build() (*Simulation, error) {
	b.parametersMustBeValid()

	sc := b.scenario
	if !b.epoch.IsZero() {
		sc.Epoch = b.epoch
	}

	rng := rand.New(rand.NewSource(b.seed))

	f, err := sc.Populate(rng)
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		id:        xid.New().String(),
		horizon:   b.horizon,
		scenario:  sc,
		fund:      f,
		allocator: &ownership.Allocator{VestingPeriod: b.vestingPeriod},
		buffers:   history.NewBuffers(),
		sinks:     append([]history.Sink(nil), b.sinks...),
	}

	s.engine = sim.NewSerialEngine()
	s.scheduler = scenario.NewScheduler(sc, f, rng, b.logger)
	s.ticker = sim.NewSecondaryTickScheduler(s, s.engine)
	s.engine.RegisterSimulationEndHandler(&sinkFlusher{sinks: s.sinks})

	if b.eventLogger != nil {
		s.engine.AcceptHook(sim.NewEventLogger(b.eventLogger))
	}

	for _, h := range b.hooks {
		s.engine.AcceptHook(h)
	}

	return s, nil
}
