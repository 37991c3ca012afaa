package monitoring

import (
	"sync"
	"time"

	"github.com/sarchlab/fundsim/sim"
)

// A ProgressBar is a tracker of the progress
type ProgressBar struct {
	sync.Mutex
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

// ProgressBarStatus is a copy of the counters of a ProgressBar.
type ProgressBarStatus struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

// Status returns a consistent copy of the bar.
func (b *ProgressBar) Status() ProgressBarStatus {
	b.Lock()
	defer b.Unlock()

	return ProgressBarStatus{
		ID:         b.ID,
		Name:       b.Name,
		StartTime:  b.StartTime,
		Total:      b.Total,
		Finished:   b.Finished,
		InProgress: b.InProgress,
	}
}

// IncrementInProgress adds the number of in-progress element.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress += amount
}

// IncrementFinished add a certain amount to finished element.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished += amount
}

// MoveInProgressToFinished reduces the number of in progress item by a certain
// amount and increase the finished item by the same amount.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress -= amount
	b.Finished += amount
}

// A DayProgressHook advances a progress bar by one each time a simulated day
// starts and finishes.
type DayProgressHook struct {
	bar *ProgressBar
}

// NewDayProgressHook creates a hook that reports to bar.
func NewDayProgressHook(bar *ProgressBar) *DayProgressHook {
	return &DayProgressHook{bar: bar}
}

// Func moves the bar on the daily tick events.
func (h *DayProgressHook) Func(ctx sim.HookCtx) {
	if _, ok := ctx.Item.(sim.TickEvent); !ok {
		return
	}

	switch ctx.Pos {
	case sim.HookPosBeforeEvent:
		h.bar.IncrementInProgress(1)
	case sim.HookPosAfterEvent:
		h.bar.MoveInProgressToFinished(1)
	}
}
