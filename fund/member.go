package fund

import "time"

// MemberID identifies a member of a fund. IDs follow creation order.
type MemberID int

// Role is the part a member plays in the fund.
type Role int

// The roles a member can take.
const (
	RoleFounder Role = iota
	RoleAdvisor
)

func (r Role) String() string {
	switch r {
	case RoleFounder:
		return "Founder"
	case RoleAdvisor:
		return "Advisor"
	default:
		return "Unknown"
	}
}

// A Member is a person that holds a claim on the fund, and, for founders, on
// the startups they found.
type Member struct {
	ID       MemberID
	Name     string
	Role     Role
	JoinDate time.Time

	// Performance is sampled once when the member is created. Nothing reads
	// it yet.
	Performance float64

	// FundOwnership is the fraction of the fund held by the member.
	FundOwnership float64

	// StartupOwnership maps each startup the member founded to the fraction
	// of that startup the member holds.
	StartupOwnership map[StartupID]float64

	// Startups lists the startups the member founded, in assignment order.
	Startups []StartupID
}

// IsFounder returns true if the member has the founder role.
func (m *Member) IsFounder() bool {
	return m.Role == RoleFounder
}
