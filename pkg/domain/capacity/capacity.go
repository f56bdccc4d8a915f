// Package capacity plans sprint capacity per member: available hours net
// of absences and overrides, allocation from assigned open work, and
// utilization banding.
package capacity

import (
	"math"

	"github.com/felixgeelhaar/pulse/pkg/domain/config"
	"github.com/felixgeelhaar/pulse/pkg/domain/team"
	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
)

// Band classifies a member's utilization for display.
type Band string

const (
	BandHealthy    Band = "healthy"
	BandAtCapacity Band = "at-capacity"
	BandOverloaded Band = "overloaded"
)

// MemberPlan is one member's plan for the selected sprint.
type MemberPlan struct {
	Username       string  `json:"username"`
	Name           string  `json:"name"`
	AvailableHours float64 `json:"available_hours"`
	AllocatedHours float64 `json:"allocated_hours"`
	RemainingHours float64 `json:"remaining_hours"`
	Utilization    float64 `json:"utilization"` // percent
	Band           Band    `json:"band"`
	OverrideReason string  `json:"override_reason,omitempty"`
	OpenIssues     int     `json:"open_issues"`
}

// Plan is the team's plan for one sprint.
type Plan struct {
	SprintID       int          `json:"sprint_id"`
	Sprint         string       `json:"sprint"`
	Members        []MemberPlan `json:"members"`
	AvailableHours float64      `json:"available_hours"`
	AllocatedHours float64      `json:"allocated_hours"`
	RemainingHours float64      `json:"remaining_hours"`
	Utilization    float64      `json:"utilization"`
}

// BuildPlan computes the capacity plan for the sprint identified by
// iteration id. Allocation counts open issues assigned to the member and
// scheduled into this sprint; all hour figures round to one decimal.
func BuildPlan(
	issues []tracker.Issue,
	sprint tracker.Iteration,
	roster *team.Config,
	absences []team.Absence,
	overrides []team.Override,
	settings config.CapacitySettings,
) Plan {
	plan := Plan{SprintID: sprint.ID, Sprint: sprint.Name}
	conv := tracker.HourConversion{
		HoursPerPoint:      settings.HoursPerPoint,
		HoursPerIssue:      settings.HoursPerIssue,
		WorkingDaysPerWeek: settings.WorkingDaysPerWeek,
	}

	for _, m := range roster.Members {
		mp := MemberPlan{Username: m.Username, Name: m.Name, AvailableHours: m.DefaultCapacity}

		if ov := team.FindOverride(overrides, sprint.ID, m.Username); ov != nil {
			mp.AvailableHours = ov.Hours
			mp.OverrideReason = ov.Reason
		} else if sprint.StartDate != nil && sprint.DueDate != nil {
			mp.AvailableHours -= team.AbsenceHours(absences, m.Username, *sprint.StartDate, *sprint.DueDate)
			if mp.AvailableHours < 0 {
				mp.AvailableHours = 0
			}
		}

		for i := range issues {
			is := &issues[i]
			if is.IsClosed() || !assignedTo(is, m.Username) || !inSprint(is, sprint.ID) {
				continue
			}
			mp.AllocatedHours += tracker.EstimatedHours(is, conv)
			mp.OpenIssues++
		}

		mp.AvailableHours = round1(mp.AvailableHours)
		mp.AllocatedHours = round1(mp.AllocatedHours)
		mp.RemainingHours = round1(mp.AvailableHours - mp.AllocatedHours)
		if mp.AvailableHours > 0 {
			mp.Utilization = round1(mp.AllocatedHours / mp.AvailableHours * 100)
		}
		mp.Band = bandFor(mp.Utilization)

		plan.Members = append(plan.Members, mp)
		plan.AvailableHours += mp.AvailableHours
		plan.AllocatedHours += mp.AllocatedHours
	}

	plan.AvailableHours = round1(plan.AvailableHours)
	plan.AllocatedHours = round1(plan.AllocatedHours)
	plan.RemainingHours = round1(plan.AvailableHours - plan.AllocatedHours)
	if plan.AvailableHours > 0 {
		plan.Utilization = round1(plan.AllocatedHours / plan.AvailableHours * 100)
	}
	return plan
}

func bandFor(utilization float64) Band {
	switch {
	case utilization >= 100:
		return BandOverloaded
	case utilization >= 80:
		return BandAtCapacity
	default:
		return BandHealthy
	}
}

func assignedTo(issue *tracker.Issue, username string) bool {
	for _, a := range issue.Assignees {
		if a.Username == username {
			return true
		}
	}
	return false
}

func inSprint(issue *tracker.Issue, sprintID int) bool {
	return issue.Iteration != nil && issue.Iteration.ID == sprintID
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
