package application

import (
	"github.com/felixgeelhaar/pulse/pkg/domain/timeline"
	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
)

// defaultMilestoneWindow is the lookahead for the milestone timeline.
const defaultMilestoneWindow = 30

// TimelineService builds the milestone timeline and the quarterly epic
// assignment.
type TimelineService struct{}

func NewTimelineService() *TimelineService {
	return &TimelineService{}
}

// Milestones lists upcoming and overdue milestones inside the window,
// soonest first. A non-positive window uses the default of thirty days.
func (s *TimelineService) Milestones(snap *tracker.Snapshot, windowDays int) []timeline.MilestoneEntry {
	if windowDays <= 0 {
		windowDays = defaultMilestoneWindow
	}
	return timeline.Upcoming(snap.Milestones, windowDays, snap.TakenAt)
}

// Quarters buckets the snapshot's epics into calendar quarters.
func (s *TimelineService) Quarters(snap *tracker.Snapshot) []timeline.Quarter {
	return timeline.Quarters(snap.Epics, snap.TakenAt)
}
