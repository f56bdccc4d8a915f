// Package team holds the configured team roster, absence calendar and
// per-sprint capacity overrides consumed by the capacity planner and the
// velocity engine.
package team

import (
	"fmt"
	"time"
)

// Member is a configured team member.
type Member struct {
	Username        string  `yaml:"username" json:"username"`
	Name            string  `yaml:"name" json:"name"`
	DefaultCapacity float64 `yaml:"default_capacity" json:"default_capacity"` // hours per sprint
	WeeklyCapacity  float64 `yaml:"weekly_capacity" json:"weekly_capacity"`   // hours per week
}

// Config is the team roster.
type Config struct {
	Members []Member `yaml:"members" json:"members"`
}

// FindMember returns the member with the given username, or nil.
func (c *Config) FindMember(username string) *Member {
	for i := range c.Members {
		if c.Members[i].Username == username {
			return &c.Members[i]
		}
	}
	return nil
}

// AddMember adds a member or updates an existing one in place.
func (c *Config) AddMember(m Member) error {
	if m.Username == "" {
		return fmt.Errorf("member username cannot be empty")
	}
	for i := range c.Members {
		if c.Members[i].Username == m.Username {
			c.Members[i] = m
			return nil
		}
	}
	c.Members = append(c.Members, m)
	return nil
}

// RemoveMember removes a member by username.
func (c *Config) RemoveMember(username string) error {
	for i := range c.Members {
		if c.Members[i].Username == username {
			c.Members = append(c.Members[:i], c.Members[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("member not found: %s", username)
}

// Absence is a planned unavailability for a member. Hours are lost per
// working day within [From, To].
type Absence struct {
	Username    string    `yaml:"username" json:"username"`
	From        time.Time `yaml:"from" json:"from"`
	To          time.Time `yaml:"to" json:"to"`
	HoursPerDay float64   `yaml:"hours_per_day" json:"hours_per_day"`
	Reason      string    `yaml:"reason,omitempty" json:"reason,omitempty"`
}

// Override replaces a member's capacity for one sprint.
type Override struct {
	SprintID int     `yaml:"sprint_id" json:"sprint_id"`
	Username string  `yaml:"username" json:"username"`
	Hours    float64 `yaml:"hours" json:"hours"`
	Reason   string  `yaml:"reason" json:"reason"`
}

// FindOverride returns the override for a (sprint, member) pair, or nil.
func FindOverride(overrides []Override, sprintID int, username string) *Override {
	for i := range overrides {
		if overrides[i].SprintID == sprintID && overrides[i].Username == username {
			return &overrides[i]
		}
	}
	return nil
}

// WorkingDays counts the non-weekend days in [from, to] inclusive.
func WorkingDays(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	days := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return days
}

// AbsenceHours sums a member's absence hours over working days inside
// the [from, to] window.
func AbsenceHours(absences []Absence, username string, from, to time.Time) float64 {
	var total float64
	for _, a := range absences {
		if a.Username != username {
			continue
		}
		start, end := a.From, a.To
		if start.Before(from) {
			start = from
		}
		if end.After(to) {
			end = to
		}
		if days := WorkingDays(start, end); days > 0 {
			total += float64(days) * a.HoursPerDay
		}
	}
	return total
}
