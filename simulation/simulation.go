// Package simulation runs a fund day by day and collects the ownership
// history.
package simulation

import (
	"errors"
	"maps"
	"slices"
	"sync/atomic"

	"github.com/sarchlab/fundsim/fund"
	"github.com/sarchlab/fundsim/history"
	"github.com/sarchlab/fundsim/ownership"
	"github.com/sarchlab/fundsim/scenario"
	"github.com/sarchlab/fundsim/sim"
)

// Result is the outcome of a run. Member rows are in creation order and
// startup rows in startup creation order.
type Result struct {
	// FundOwnership has one row per member and one column per day. Days
	// before a member joined are zero.
	FundOwnership [][]float64

	// StartupOwnership has the shape of FundOwnership and holds each
	// member's exposure to its startups that have not been acquired.
	StartupOwnership [][]float64

	// FundShare has one row per startup and holds the fraction of the
	// startup not held by its founders.
	FundShare [][]float64

	// FundValue holds the total value of the fund on each day.
	FundValue []float64

	Members  []fund.Member
	Startups []fund.Startup
}

// A Simulation advances a fund through the days of its horizon. On each day
// the lifecycle events of the day are applied first, then ownership is
// recomputed and a snapshot is recorded.
type Simulation struct {
	id      string
	horizon int
	ran     atomic.Bool

	engine    *sim.SerialEngine
	ticker    *sim.TickScheduler
	scenario  scenario.Scenario
	fund      *fund.Fund
	allocator *ownership.Allocator
	scheduler *scenario.Scheduler
	buffers   *history.Buffers
	sinks     []history.Sink
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Horizon returns the number of days the simulation covers.
func (s *Simulation) Horizon() int {
	return s.horizon
}

// Engine returns the engine that drives the simulation.
func (s *Simulation) Engine() sim.Engine {
	return s.engine
}

// Buffers returns the in-memory history. It can be read while the
// simulation runs.
func (s *Simulation) Buffers() *history.Buffers {
	return s.buffers
}

// Name returns the name of the daily ownership update.
func (s *Simulation) Name() string {
	return "Allocator"
}

// Run simulates every day of the horizon. It stops at the first lifecycle
// event or recomputation that fails. The sinks are flushed in both cases.
// A simulation can only run once.
func (s *Simulation) Run() (*Result, error) {
	if !s.ran.CompareAndSwap(false, true) {
		panic("simulation already run")
	}

	s.scheduler.ScheduleAll(s.engine, s.horizon)
	s.ticker.TickNow()

	runErr := s.engine.Run()
	finishErr := s.engine.Finished()

	if err := errors.Join(runErr, finishErr); err != nil {
		return nil, err
	}

	return s.result(), nil
}

// Handle recomputes ownership for the day of the tick and records it.
func (s *Simulation) Handle(e sim.Event) error {
	day := int(e.Time())
	date := s.scenario.Date(day)

	err := s.allocator.Recompute(s.fund, date)
	if err != nil {
		return err
	}

	snapshot, err := history.Take(day, date, s.fund)
	if err != nil {
		return err
	}

	if err := s.buffers.Record(snapshot); err != nil {
		return err
	}

	for _, sink := range s.sinks {
		if err := sink.Record(snapshot); err != nil {
			return err
		}
	}

	if day+1 < s.horizon {
		s.ticker.TickLater()
	}

	return nil
}

func (s *Simulation) result() *Result {
	r := &Result{
		FundOwnership:    s.buffers.FundOwnership(),
		StartupOwnership: s.buffers.StartupOwnership(),
		FundShare:        s.buffers.FundShare(),
		FundValue:        s.buffers.FundValue(),
	}

	for _, m := range s.fund.Members() {
		c := *m
		c.StartupOwnership = maps.Clone(m.StartupOwnership)
		c.Startups = slices.Clone(m.Startups)
		r.Members = append(r.Members, c)
	}

	for _, st := range s.fund.Startups() {
		c := *st
		c.Founders = slices.Clone(st.Founders)
		r.Startups = append(r.Startups, c)
	}

	return r
}

type sinkFlusher struct {
	sinks []history.Sink
}

func (f *sinkFlusher) Handle(_ sim.VTimeInDay) error {
	var errs []error
	for _, sink := range f.sinks {
		errs = append(errs, sink.Flush())
	}

	return errors.Join(errs...)
}
