package tracker

import (
	"strings"
	"time"
)

// atRiskWindow is how close an open issue's due date must be before it
// counts as at-risk.
const atRiskWindow = 7 * 24 * time.Hour

// Progress estimates an issue's completion percentage from its state and
// workflow labels. The highest rung matched by any label wins.
func Progress(issue *Issue) int {
	if issue.IsClosed() {
		return 100
	}
	has := func(subs ...string) bool {
		for _, label := range issue.Labels {
			lower := strings.ToLower(label)
			for _, sub := range subs {
				if strings.Contains(lower, sub) {
					return true
				}
			}
		}
		return false
	}
	switch {
	case has("review", "testing"):
		return 75
	case has("progress", "wip"):
		return 50
	case has("started"):
		return 25
	}
	return 0
}

// IsOverdue reports whether the issue is open with a due date in the past.
func IsOverdue(issue *Issue, now time.Time) bool {
	return !issue.IsClosed() && issue.DueDate != nil && issue.DueDate.Before(now)
}

// IsAtRisk reports whether the issue is open with a due date within the
// next seven days.
func IsAtRisk(issue *Issue, now time.Time) bool {
	if issue.IsClosed() || issue.DueDate == nil {
		return false
	}
	until := issue.DueDate.Sub(now)
	return until >= 0 && until <= atRiskWindow
}

// IsHighPriority reports whether the issue's labels mark it high priority.
func IsHighPriority(issue *Issue) bool {
	return InterpretIssue(issue).Priority == PriorityHigh
}

// IsBlocked reports whether the issue carries a blocker-family label.
func IsBlocked(issue *Issue) bool {
	return InterpretIssue(issue).Blocker
}

// HourConversion maps estimates to hours: story points through a
// configured rate, point-less issues through a flat default.
type HourConversion struct {
	HoursPerPoint      float64
	HoursPerIssue      float64
	WorkingDaysPerWeek int
}

// EstimatedHours converts an issue's estimate to hours.
func EstimatedHours(issue *Issue, conv HourConversion) float64 {
	facets := InterpretIssue(issue)
	if facets.HasPoints() {
		return float64(facets.Points()) * conv.HoursPerPoint
	}
	return conv.HoursPerIssue
}
