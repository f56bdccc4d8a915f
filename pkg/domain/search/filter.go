package search

import (
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
)

// Filter is a compound, conjunctive filter over issues. Zero values mean
// "no constraint"; application order is irrelevant.
type Filter struct {
	State              tracker.State
	Labels             []string // any-of
	Assignee           string
	Epic               string
	Milestone          string
	Priority           tracker.Priority
	Overdue            bool
	MissingDescription bool
	MissingAssignee    bool
	MissingLabels      bool
	MissingDueDate     bool
}

// Apply keeps the issues satisfying every set constraint, evaluated at
// the given time.
func (f Filter) Apply(issues []tracker.Issue, now time.Time) []tracker.Issue {
	var kept []tracker.Issue
	for i := range issues {
		if f.matches(&issues[i], now) {
			kept = append(kept, issues[i])
		}
	}
	return kept
}

func (f Filter) matches(is *tracker.Issue, now time.Time) bool {
	if f.State != "" && is.State != f.State {
		return false
	}
	if len(f.Labels) > 0 && !hasAnyLabel(is, f.Labels) {
		return false
	}
	if f.Assignee != "" && !hasAssignee(is, f.Assignee) {
		return false
	}
	if f.Epic != "" && (is.Epic == nil || is.Epic.Title != f.Epic) {
		return false
	}
	if f.Milestone != "" && (is.Milestone == nil || is.Milestone.Title != f.Milestone) {
		return false
	}
	if f.Priority != "" && tracker.InterpretIssue(is).Priority != f.Priority {
		return false
	}
	if f.Overdue && !tracker.IsOverdue(is, now) {
		return false
	}
	if f.MissingDescription && is.Description != "" {
		return false
	}
	if f.MissingAssignee && len(is.Assignees) > 0 {
		return false
	}
	if f.MissingLabels && len(is.Labels) > 0 {
		return false
	}
	if f.MissingDueDate && is.DueDate != nil {
		return false
	}
	return true
}

func hasAnyLabel(is *tracker.Issue, wanted []string) bool {
	for _, have := range is.Labels {
		for _, want := range wanted {
			if have == want {
				return true
			}
		}
	}
	return false
}

func hasAssignee(is *tracker.Issue, username string) bool {
	for _, a := range is.Assignees {
		if a.Username == username {
			return true
		}
	}
	return false
}
