package tracker_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func timePtr(t time.Time) *time.Time { return &t }

func TestProgress(t *testing.T) {
	tests := []struct {
		name  string
		issue tracker.Issue
		want  int
	}{
		{"closed", tracker.Issue{State: tracker.StateClosed}, 100},
		{"in review", tracker.Issue{State: tracker.StateOpen, Labels: []string{"in-review"}}, 75},
		{"testing", tracker.Issue{State: tracker.StateOpen, Labels: []string{"Testing"}}, 75},
		{"in progress", tracker.Issue{State: tracker.StateOpen, Labels: []string{"In Progress"}}, 50},
		{"wip", tracker.Issue{State: tracker.StateOpen, Labels: []string{"WIP"}}, 50},
		{"started", tracker.Issue{State: tracker.StateOpen, Labels: []string{"started"}}, 25},
		{"untouched", tracker.Issue{State: tracker.StateOpen, Labels: []string{"backend"}}, 0},
		{"highest rung wins", tracker.Issue{State: tracker.StateOpen, Labels: []string{"review", "wip"}}, 75},
		{"rung order beats label order", tracker.Issue{State: tracker.StateOpen, Labels: []string{"started", "code review"}}, 75},
		{"wip beats started", tracker.Issue{State: tracker.StateOpen, Labels: []string{"started", "wip"}}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tracker.Progress(&tt.issue); got != tt.want {
				t.Errorf("Progress() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsOverdue(t *testing.T) {
	past := timePtr(now.AddDate(0, 0, -2))
	future := timePtr(now.AddDate(0, 0, 2))

	if !tracker.IsOverdue(&tracker.Issue{State: tracker.StateOpen, DueDate: past}, now) {
		t.Error("open issue with past due date should be overdue")
	}
	if tracker.IsOverdue(&tracker.Issue{State: tracker.StateClosed, DueDate: past}, now) {
		t.Error("closed issue is never overdue")
	}
	if tracker.IsOverdue(&tracker.Issue{State: tracker.StateOpen, DueDate: future}, now) {
		t.Error("future due date is not overdue")
	}
	if tracker.IsOverdue(&tracker.Issue{State: tracker.StateOpen}, now) {
		t.Error("issue without due date is not overdue")
	}
}

func TestIsAtRisk(t *testing.T) {
	tests := []struct {
		name string
		due  *time.Time
		want bool
	}{
		{"due in 3 days", timePtr(now.AddDate(0, 0, 3)), true},
		{"due today", timePtr(now), true},
		{"due in exactly 7 days", timePtr(now.Add(7 * 24 * time.Hour)), true},
		{"due in 10 days", timePtr(now.AddDate(0, 0, 10)), false},
		{"already overdue", timePtr(now.AddDate(0, 0, -1)), false},
		{"no due date", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := tracker.Issue{State: tracker.StateOpen, DueDate: tt.due}
			if got := tracker.IsAtRisk(&is, now); got != tt.want {
				t.Errorf("IsAtRisk() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEstimatedHours(t *testing.T) {
	conv := tracker.HourConversion{HoursPerPoint: 4, HoursPerIssue: 6}

	withPoints := tracker.Issue{Labels: []string{"sp::3"}}
	if got := tracker.EstimatedHours(&withPoints, conv); got != 12 {
		t.Errorf("EstimatedHours with points = %v, want 12", got)
	}

	noPoints := tracker.Issue{Labels: []string{"bug"}}
	if got := tracker.EstimatedHours(&noPoints, conv); got != 6 {
		t.Errorf("EstimatedHours without points = %v, want 6", got)
	}
}

func TestClosedTime(t *testing.T) {
	snapAt := now
	closedAt := now.AddDate(0, 0, -5)

	t.Run("explicit closed-at", func(t *testing.T) {
		is := tracker.Issue{State: tracker.StateClosed, ClosedAt: &closedAt}
		got, ok := is.ClosedTime(snapAt)
		if !ok || !got.Equal(closedAt) {
			t.Errorf("ClosedTime = %v, %v; want %v, true", got, ok, closedAt)
		}
	})

	t.Run("missing closed-at falls back to snapshot time", func(t *testing.T) {
		is := tracker.Issue{State: tracker.StateClosed}
		got, ok := is.ClosedTime(snapAt)
		if !ok || !got.Equal(snapAt) {
			t.Errorf("ClosedTime = %v, %v; want snapshot time", got, ok)
		}
	})

	t.Run("open issue has no closed time", func(t *testing.T) {
		is := tracker.Issue{State: tracker.StateOpen}
		if _, ok := is.ClosedTime(snapAt); ok {
			t.Error("open issue should not report a closed time")
		}
	})
}
