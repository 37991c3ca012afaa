// Package history records how ownership evolves over a simulation.
//
// Every simulated day the simulation takes a Snapshot of the fund and hands
// it to one or more Sinks. Buffers keeps the whole run in memory as
// per-member time series and exposes them as dense tables; CSVWriter and
// DBWriter stream the same snapshots to files.
package history

import (
	"time"

	"github.com/sarchlab/fundsim/fund"
)

// MemberSnapshot is the state of one member on one day.
type MemberSnapshot struct {
	ID            fund.MemberID
	Name          string
	Role          fund.Role
	FundOwnership float64

	// StartupOwnership is the member's total fraction over the startups it
	// founded that have not been acquired. It is zero for advisors.
	StartupOwnership float64
}

// StartupSnapshot is the state of one startup on one day.
type StartupSnapshot struct {
	ID           fund.StartupID
	Name         string
	Status       fund.Status
	FounderShare float64
	FundShare    float64
}

// A Snapshot is the state of a fund at the end of a simulated day.
type Snapshot struct {
	Day       int
	Date      time.Time
	FundValue float64
	Members   []MemberSnapshot
	Startups  []StartupSnapshot
}

// Take captures the state of f. It must be called after all the ownership
// fractions of the day have been computed.
func Take(day int, date time.Time, f *fund.Fund) (Snapshot, error) {
	s := Snapshot{
		Day:       day,
		Date:      date,
		FundValue: f.TotalValue,
		Members:   make([]MemberSnapshot, 0, f.NumMembers()),
		Startups:  make([]StartupSnapshot, 0, f.NumStartups()),
	}

	for _, m := range f.Members() {
		ms := MemberSnapshot{
			ID:            m.ID,
			Name:          m.Name,
			Role:          m.Role,
			FundOwnership: m.FundOwnership,
		}

		if m.IsFounder() {
			exposure, err := f.LiveExposure(m.ID)
			if err != nil {
				return Snapshot{}, err
			}
			ms.StartupOwnership = exposure
		}

		s.Members = append(s.Members, ms)
	}

	for _, st := range f.Startups() {
		s.Startups = append(s.Startups, StartupSnapshot{
			ID:           st.ID,
			Name:         st.Name,
			Status:       st.Status,
			FounderShare: 1 - st.FundShare,
			FundShare:    st.FundShare,
		})
	}

	return s, nil
}

// A Sink consumes the daily snapshots of a simulation.
type Sink interface {
	// Record stores the snapshot of one day. Days arrive in order.
	Record(s Snapshot) error

	// Flush writes out anything that is still buffered.
	Flush() error
}
