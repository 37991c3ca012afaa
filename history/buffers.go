package history

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sarchlab/fundsim/fund"
)

// ErrOutOfOrder is returned when a snapshot does not follow the previous one.
var ErrOutOfOrder = errors.New("snapshot out of order")

// A Row labels one member row of the ownership tables.
type Row struct {
	ID       fund.MemberID `json:"id"`
	Name     string        `json:"name"`
	Role     string        `json:"role"`
	FirstDay int           `json:"first_day"`
}

// A StartupRow labels one startup row of the fund share table.
type StartupRow struct {
	ID       fund.StartupID `json:"id"`
	Name     string         `json:"name"`
	FirstDay int            `json:"first_day"`
}

type series struct {
	firstDay int
	values   []float64
}

func (s *series) dense(days int) []float64 {
	out := make([]float64, days)
	copy(out[s.firstDay:], s.values)

	return out
}

// Buffers keeps the complete history of a run in memory. Each member and
// startup gets its own series that starts on the day it first appears, so
// members onboarded during the run need no preallocation.
//
// Buffers is safe to read from other goroutines while a simulation records
// into it.
type Buffers struct {
	lock sync.RWMutex

	days             int
	rows             []Row
	fundOwnership    []*series
	startupOwnership []*series
	startupRows      []StartupRow
	fundShare        []*series
	fundValue        []float64
}

// NewBuffers creates empty Buffers.
func NewBuffers() *Buffers {
	return &Buffers{}
}

// Record appends the snapshot of the next day.
func (b *Buffers) Record(s Snapshot) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if s.Day != b.days {
		return fmt.Errorf("%w: got day %d, expecting day %d",
			ErrOutOfOrder, s.Day, b.days)
	}

	for i, m := range s.Members {
		if i >= len(b.rows) {
			b.rows = append(b.rows, Row{
				ID:       m.ID,
				Name:     m.Name,
				Role:     m.Role.String(),
				FirstDay: s.Day,
			})
			b.fundOwnership = append(b.fundOwnership,
				&series{firstDay: s.Day})
			b.startupOwnership = append(b.startupOwnership,
				&series{firstDay: s.Day})
		}

		b.fundOwnership[i].values = append(
			b.fundOwnership[i].values, m.FundOwnership)
		b.startupOwnership[i].values = append(
			b.startupOwnership[i].values, m.StartupOwnership)
	}

	for i, st := range s.Startups {
		if i >= len(b.startupRows) {
			b.startupRows = append(b.startupRows, StartupRow{
				ID:       st.ID,
				Name:     st.Name,
				FirstDay: s.Day,
			})
			b.fundShare = append(b.fundShare, &series{firstDay: s.Day})
		}

		b.fundShare[i].values = append(b.fundShare[i].values, st.FundShare)
	}

	b.fundValue = append(b.fundValue, s.FundValue)
	b.days++

	return nil
}

// Flush does nothing, as Buffers keeps everything in memory.
func (b *Buffers) Flush() error {
	return nil
}

// Days returns the number of days recorded.
func (b *Buffers) Days() int {
	b.lock.RLock()
	defer b.lock.RUnlock()

	return b.days
}

// Rows returns the labels of the member rows in creation order.
func (b *Buffers) Rows() []Row {
	b.lock.RLock()
	defer b.lock.RUnlock()

	return append([]Row(nil), b.rows...)
}

// StartupRows returns the labels of the startup rows in creation order.
func (b *Buffers) StartupRows() []StartupRow {
	b.lock.RLock()
	defer b.lock.RUnlock()

	return append([]StartupRow(nil), b.startupRows...)
}

// FundOwnership returns the fund fraction of every member, one row per member
// and one column per day. Days before a member joined the fund are zero.
func (b *Buffers) FundOwnership() [][]float64 {
	return b.table(func() []*series { return b.fundOwnership })
}

// StartupOwnership returns the live startup exposure of every member, shaped
// like FundOwnership. Rows of advisors are zero.
func (b *Buffers) StartupOwnership() [][]float64 {
	return b.table(func() []*series { return b.startupOwnership })
}

// FundShare returns the share of each startup that is not held by its
// founders, one row per startup and one column per day.
func (b *Buffers) FundShare() [][]float64 {
	return b.table(func() []*series { return b.fundShare })
}

// FundValue returns the total value of the fund on each day.
func (b *Buffers) FundValue() []float64 {
	b.lock.RLock()
	defer b.lock.RUnlock()

	return append([]float64(nil), b.fundValue...)
}

// MemberSeries returns the fund and startup series of a single member.
func (b *Buffers) MemberSeries(
	id fund.MemberID,
) (fundOwnership, startupOwnership []float64, ok bool) {
	b.lock.RLock()
	defer b.lock.RUnlock()

	if id < 0 || int(id) >= len(b.rows) {
		return nil, nil, false
	}

	return b.fundOwnership[id].dense(b.days),
		b.startupOwnership[id].dense(b.days),
		true
}

func (b *Buffers) table(pick func() []*series) [][]float64 {
	b.lock.RLock()
	defer b.lock.RUnlock()

	all := pick()
	out := make([][]float64, len(all))
	for i, s := range all {
		out[i] = s.dense(b.days)
	}

	return out
}
