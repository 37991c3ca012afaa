package fund

import "time"

// StartupID identifies a startup of a fund. IDs follow creation order.
type StartupID int

// Status is the lifecycle state of a startup.
type Status int

// A startup starts active and may move to failed or acquired exactly once.
const (
	StatusActive Status = iota
	StatusFailed
	StatusAcquired
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusFailed:
		return "failed"
	case StatusAcquired:
		return "acquired"
	default:
		return "unknown"
	}
}

// FounderPool is the share of a startup held collectively by its founders.
const FounderPool = 0.5

// A Startup is a portfolio company of the fund.
type Startup struct {
	ID          StartupID
	Name        string
	Founders    []MemberID
	Performance float64
	StartDate   time.Time

	Status          Status
	FailureDate     *time.Time
	AcquisitionDate *time.Time

	// FundShare is the part of the startup not held by its founders. It is
	// the complement of the founders' fractions and is kept up to date by
	// the ownership allocator.
	FundShare float64

	// DecayedOn is the last date on which post-failure decay was applied.
	DecayedOn *time.Time
}

// IsActive returns true if the startup has neither failed nor been acquired.
func (s *Startup) IsActive() bool {
	return s.Status == StatusActive
}
