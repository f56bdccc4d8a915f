// Package timeline derives schedule views: the upcoming-milestone window
// and the quarterly epic board.
package timeline

import (
	"math"
	"sort"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
)

// MilestoneStatus bands a milestone's schedule position.
type MilestoneStatus string

const (
	MilestoneOnTrack MilestoneStatus = "on-track"
	MilestoneAtRisk  MilestoneStatus = "at-risk"
	MilestoneOverdue MilestoneStatus = "overdue"
)

// MilestoneEntry is one milestone enriched for the timeline view.
type MilestoneEntry struct {
	Milestone tracker.Milestone `json:"milestone"`
	DaysUntil int               `json:"days_until"`
	Progress  float64           `json:"progress"`
	Status    MilestoneStatus   `json:"status"`
}

// Upcoming keeps milestones due within the window (plus overdue open
// ones), enriches them and sorts ascending by days-until-due.
func Upcoming(milestones []tracker.Milestone, windowDays int, now time.Time) []MilestoneEntry {
	horizon := now.AddDate(0, 0, windowDays)

	var entries []MilestoneEntry
	for _, m := range milestones {
		if m.DueDate == nil {
			continue
		}
		overdue := m.DueDate.Before(now) && !m.State.IsClosed()
		inWindow := !m.DueDate.Before(now) && !m.DueDate.After(horizon)
		if !overdue && !inWindow {
			continue
		}

		days := int(math.Floor(m.DueDate.Sub(now).Hours() / 24))
		entry := MilestoneEntry{
			Milestone: m,
			DaysUntil: days,
			Progress:  m.Progress(),
		}
		switch {
		case overdue:
			entry.Status = MilestoneOverdue
		case entry.Progress >= 80 || days > 7:
			entry.Status = MilestoneOnTrack
		default:
			entry.Status = MilestoneAtRisk
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].DaysUntil < entries[j].DaysUntil
	})
	return entries
}
