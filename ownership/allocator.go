// Package ownership recomputes who owns what in a fund on a given date.
package ownership

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sarchlab/fundsim/fund"
)

// Errors reported when the fund is not in a state that ownership can be
// computed for.
var (
	ErrNoMembers      = errors.New("fund has no members")
	ErrUnknownFounder = errors.New("startup references an unknown founder")
)

// DecayPeriod is the number of days over which the founders of a failed
// startup lose their stake.
const DecayPeriod = 365

// An Allocator recomputes fund and startup ownership fractions in place.
type Allocator struct {
	VestingPeriod int
}

// NewAllocator creates an Allocator with the default vesting period.
func NewAllocator() *Allocator {
	return &Allocator{VestingPeriod: DefaultVestingPeriod}
}

// Recompute updates every member's fund fraction and every founder's startup
// fractions for the given date.
//
// Founders of a failed startup keep a decaying copy of their last fraction.
// The decay is applied at most once per date, so calling Recompute again for
// the same date does not change anything.
func (a *Allocator) Recompute(f *fund.Fund, now time.Time) error {
	if f.NumMembers() == 0 {
		return ErrNoMembers
	}

	startups := f.Startups()
	founders := make([][]*fund.Member, len(startups))

	for i, s := range startups {
		ms, err := foundersOf(f, s)
		if err != nil {
			return err
		}

		if s.Status == fund.StatusFailed && s.FailureDate == nil {
			return fmt.Errorf("%w: failed startup %s has no failure date",
				fund.ErrInconsistentGraph, s.Name)
		}

		founders[i] = ms
	}

	a.allocateFund(f, now)

	for i, s := range startups {
		a.allocateStartup(s, founders[i], now)
	}

	return nil
}

func (a *Allocator) allocateFund(f *fund.Fund, now time.Time) {
	members := f.Members()
	shares := a.distribute(joinDates(members), now, 1)

	for i, m := range members {
		m.FundOwnership = shares[i]
	}
}

func (a *Allocator) allocateStartup(
	s *fund.Startup,
	founders []*fund.Member,
	now time.Time,
) {
	switch s.Status {
	case fund.StatusActive:
		shares := a.distribute(joinDates(founders), now, fund.FounderPool)
		for i, m := range founders {
			m.StartupOwnership[s.ID] = shares[i]
		}
	case fund.StatusFailed:
		decayFailed(s, founders, now)
	case fund.StatusAcquired:
		return
	}

	s.FundShare = 1 - founderTotal(s, founders)
}

// distribute splits pool among entities by their vesting progress. If nobody
// has started vesting, the pool is split equally.
func (a *Allocator) distribute(
	joined []time.Time,
	now time.Time,
	pool float64,
) []float64 {
	shares := make([]float64, len(joined))
	if len(joined) == 0 {
		return shares
	}

	total := 0.0
	for i, d := range joined {
		shares[i] = Vesting(d, now, a.VestingPeriod)
		total += shares[i]
	}

	if total > 0 {
		for i := range shares {
			shares[i] = shares[i] / total * pool
		}

		return shares
	}

	equal := pool / float64(len(joined))
	for i := range shares {
		shares[i] = equal
	}

	return shares
}

// decayFailed requires s.FailureDate to be set.
func decayFailed(
	s *fund.Startup,
	founders []*fund.Member,
	now time.Time,
) {
	if s.DecayedOn != nil && s.DecayedOn.Equal(now) {
		return
	}

	sinceFailure := max(0, elapsedDays(*s.FailureDate, now))
	decay := math.Max(0, 1-float64(sinceFailure)/DecayPeriod)

	for _, m := range founders {
		m.StartupOwnership[s.ID] *= decay
	}

	decayedOn := now
	s.DecayedOn = &decayedOn
}

func founderTotal(s *fund.Startup, founders []*fund.Member) float64 {
	total := 0.0
	for _, m := range founders {
		total += m.StartupOwnership[s.ID]
	}

	return total
}

func foundersOf(f *fund.Fund, s *fund.Startup) ([]*fund.Member, error) {
	founders := make([]*fund.Member, 0, len(s.Founders))

	for _, id := range s.Founders {
		m, err := f.Member(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %s lists member %d",
				ErrUnknownFounder, s.Name, id)
		}

		founders = append(founders, m)
	}

	return founders, nil
}

func joinDates(members []*fund.Member) []time.Time {
	dates := make([]time.Time, len(members))
	for i, m := range members {
		dates[i] = m.JoinDate
	}

	return dates
}
