package fund

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Errors reported when the entity graph is used incorrectly.
var (
	ErrUnknownMember      = errors.New("unknown member")
	ErrUnknownStartup     = errors.New("unknown startup")
	ErrNotFounder         = errors.New("member is not a founder")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInconsistentGraph  = errors.New("inconsistent entity graph")
	ErrDuplicatedStartup  = errors.New("duplicated startup name")
	ErrDuplicatedFounding = errors.New("founder already assigned")
)

// A Fund is the root of the entity graph. It owns all the startups and members
// for the duration of a simulation.
type Fund struct {
	Name       string
	TotalValue float64

	startups []*Startup
	members  []*Member
}

// New creates an empty fund.
func New(name string, totalValue float64) *Fund {
	return &Fund{
		Name:       name,
		TotalValue: totalValue,
	}
}

// AddMember appends a new member to the fund and returns its ID.
func (f *Fund) AddMember(
	name string,
	role Role,
	joinDate time.Time,
	performance float64,
) MemberID {
	id := MemberID(len(f.members))
	f.members = append(f.members, &Member{
		ID:               id,
		Name:             name,
		Role:             role,
		JoinDate:         joinDate,
		Performance:      performance,
		StartupOwnership: make(map[StartupID]float64),
	})

	return id
}

// AddStartup appends a new active startup to the fund and returns its ID.
// Startup names must be unique within a fund.
func (f *Fund) AddStartup(
	name string,
	startDate time.Time,
	performance float64,
) (StartupID, error) {
	if _, err := f.StartupByName(name); err == nil {
		return 0, fmt.Errorf("%w: %s", ErrDuplicatedStartup, name)
	}

	id := StartupID(len(f.startups))
	f.startups = append(f.startups, &Startup{
		ID:          id,
		Name:        name,
		Performance: performance,
		StartDate:   startDate,
		Status:      StatusActive,
		FundShare:   1,
	})

	return id, nil
}

// AssignFounder records that a member founded a startup. Both directions of
// the relation are updated together.
func (f *Fund) AssignFounder(startupID StartupID, memberID MemberID) error {
	s, err := f.Startup(startupID)
	if err != nil {
		return err
	}

	m, err := f.Member(memberID)
	if err != nil {
		return err
	}

	if !m.IsFounder() {
		return fmt.Errorf("%w: %s", ErrNotFounder, m.Name)
	}

	if slices.Contains(s.Founders, memberID) {
		return fmt.Errorf("%w: %s in %s",
			ErrDuplicatedFounding, m.Name, s.Name)
	}

	s.Founders = append(s.Founders, memberID)
	m.Startups = append(m.Startups, startupID)

	return nil
}

// Member returns the member with the given ID.
func (f *Fund) Member(id MemberID) (*Member, error) {
	if id < 0 || int(id) >= len(f.members) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMember, id)
	}

	return f.members[id], nil
}

// Startup returns the startup with the given ID.
func (f *Fund) Startup(id StartupID) (*Startup, error) {
	if id < 0 || int(id) >= len(f.startups) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStartup, id)
	}

	return f.startups[id], nil
}

// StartupByName returns the startup with the given name.
func (f *Fund) StartupByName(name string) (*Startup, error) {
	for _, s := range f.startups {
		if s.Name == name {
			return s, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownStartup, name)
}

// Members returns all the members in creation order. The slice must not be
// modified.
func (f *Fund) Members() []*Member {
	return f.members
}

// Startups returns all the startups in creation order. The slice must not be
// modified.
func (f *Fund) Startups() []*Startup {
	return f.startups
}

// NumMembers returns the number of members in the fund.
func (f *Fund) NumMembers() int {
	return len(f.members)
}

// NumStartups returns the number of startups in the fund.
func (f *Fund) NumStartups() int {
	return len(f.startups)
}

// Fail moves an active startup to the failed state.
func (f *Fund) Fail(id StartupID, date time.Time) error {
	s, err := f.activeStartup(id)
	if err != nil {
		return err
	}

	s.Status = StatusFailed
	s.FailureDate = &date

	return nil
}

// Acquire moves an active startup to the acquired state and adds the
// acquisition value to the fund.
func (f *Fund) Acquire(id StartupID, date time.Time, value float64) error {
	s, err := f.activeStartup(id)
	if err != nil {
		return err
	}

	s.Status = StatusAcquired
	s.AcquisitionDate = &date
	f.TotalValue += value

	return nil
}

func (f *Fund) activeStartup(id StartupID) (*Startup, error) {
	s, err := f.Startup(id)
	if err != nil {
		return nil, err
	}

	if !s.IsActive() {
		return nil, fmt.Errorf("%w: %s is already %s",
			ErrInvalidTransition, s.Name, s.Status)
	}

	return s, nil
}

// LiveExposure returns the sum of the member's startup fractions over the
// startups that have not been acquired.
func (f *Fund) LiveExposure(id MemberID) (float64, error) {
	m, err := f.Member(id)
	if err != nil {
		return 0, err
	}

	sum := 0.0
	for _, sid := range m.Startups {
		s, err := f.Startup(sid)
		if err != nil {
			return 0, err
		}

		if s.Status == StatusAcquired {
			continue
		}

		sum += m.StartupOwnership[sid]
	}

	return sum, nil
}

// Validate checks that the entity graph is consistent. Every founder listed by
// a startup must exist and list the startup back, and the other way around.
func (f *Fund) Validate() error {
	for i, m := range f.members {
		if m.ID != MemberID(i) {
			return fmt.Errorf("%w: member %s has ID %d at position %d",
				ErrInconsistentGraph, m.Name, m.ID, i)
		}

		for _, sid := range m.Startups {
			s, err := f.Startup(sid)
			if err != nil {
				return fmt.Errorf("%w: member %s: %w",
					ErrInconsistentGraph, m.Name, err)
			}

			if !slices.Contains(s.Founders, m.ID) {
				return fmt.Errorf("%w: %s does not list founder %s",
					ErrInconsistentGraph, s.Name, m.Name)
			}
		}
	}

	for i, s := range f.startups {
		if s.ID != StartupID(i) {
			return fmt.Errorf("%w: startup %s has ID %d at position %d",
				ErrInconsistentGraph, s.Name, s.ID, i)
		}

		for _, mid := range s.Founders {
			m, err := f.Member(mid)
			if err != nil {
				return fmt.Errorf("%w: startup %s: %w",
					ErrInconsistentGraph, s.Name, err)
			}

			if !slices.Contains(m.Startups, s.ID) {
				return fmt.Errorf("%w: %s does not list startup %s",
					ErrInconsistentGraph, m.Name, s.Name)
			}
		}
	}

	return nil
}
