package tracker_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
)

func intPtr(n int) *int { return &n }

func TestInterpret_Priority(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		want   tracker.Priority
	}{
		{"no labels defaults to medium", nil, tracker.PriorityMedium},
		{"critical", []string{"Critical"}, tracker.PriorityHigh},
		{"urgent", []string{"urgent-fix"}, tracker.PriorityHigh},
		{"high", []string{"priority::high"}, tracker.PriorityHigh},
		{"low", []string{"low-hanging"}, tracker.PriorityLow},
		{"high beats low", []string{"low", "HIGH"}, tracker.PriorityHigh},
		{"unrelated labels ignored", []string{"frontend", "bug"}, tracker.PriorityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tracker.Interpret(tt.labels, nil, nil)
			if got.Priority != tt.want {
				t.Errorf("Priority = %q, want %q", got.Priority, tt.want)
			}
		})
	}
}

func TestInterpret_Blocker(t *testing.T) {
	for _, label := range []string{"blocker", "Blocked", "blocking-release", "BLOCKED: upstream"} {
		got := tracker.Interpret([]string{label}, nil, nil)
		if !got.Blocker {
			t.Errorf("label %q should mark a blocker", label)
		}
	}
	if tracker.Interpret([]string{"backlog"}, nil, nil).Blocker {
		t.Error("'backlog' should not mark a blocker")
	}
}

func TestInterpret_StoryPoints(t *testing.T) {
	t.Run("sp label", func(t *testing.T) {
		got := tracker.Interpret([]string{"SP::5"}, nil, nil)
		if !got.HasPoints() || got.Points() != 5 {
			t.Errorf("Points = %v, want 5", got.StoryPoints)
		}
	})

	t.Run("label wins over weight", func(t *testing.T) {
		got := tracker.Interpret([]string{"sp::3"}, nil, intPtr(8))
		if got.Points() != 3 {
			t.Errorf("Points = %d, want 3", got.Points())
		}
	})

	t.Run("weight fallback", func(t *testing.T) {
		got := tracker.Interpret([]string{"bug"}, nil, intPtr(8))
		if got.Points() != 8 {
			t.Errorf("Points = %d, want 8", got.Points())
		}
	})

	t.Run("absent is absent", func(t *testing.T) {
		got := tracker.Interpret([]string{"bug"}, nil, nil)
		if got.HasPoints() {
			t.Errorf("expected no points, got %d", got.Points())
		}
	})
}

func TestInterpret_Sprint(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	t.Run("iteration name wins", func(t *testing.T) {
		it := &tracker.Iteration{ID: 7, Name: "Sprint 12", StartDate: &start}
		got := tracker.Interpret([]string{"Sprint 4"}, it, nil)
		if got.Sprint != "Sprint 12" {
			t.Errorf("Sprint = %q, want %q", got.Sprint, "Sprint 12")
		}
	})

	t.Run("sprint label fallback", func(t *testing.T) {
		got := tracker.Interpret([]string{"bug", "sprint 4"}, nil, nil)
		if got.Sprint != "sprint 4" {
			t.Errorf("Sprint = %q, want %q", got.Sprint, "sprint 4")
		}
	})

	t.Run("absent", func(t *testing.T) {
		got := tracker.Interpret([]string{"bug"}, nil, nil)
		if got.Sprint != "" {
			t.Errorf("Sprint = %q, want empty", got.Sprint)
		}
	})
}

func TestInterpret_InitiativeAndTeam(t *testing.T) {
	got := tracker.Interpret([]string{"Initiative::Payments", "squad::Core"}, nil, nil)
	if got.Initiative != "Payments" {
		t.Errorf("Initiative = %q, want Payments", got.Initiative)
	}
	if got.Team != "Core" {
		t.Errorf("Team = %q, want Core", got.Team)
	}

	got = tracker.Interpret([]string{"team::Platform"}, nil, nil)
	if got.Team != "Platform" {
		t.Errorf("Team = %q, want Platform", got.Team)
	}
}

func TestInterpret_Idempotent(t *testing.T) {
	labels := []string{"blocker", "sp::5", "team::Core", "critical"}
	doubled := append(append([]string{}, labels...), labels...)

	once := tracker.Interpret(labels, nil, nil)
	twice := tracker.Interpret(doubled, nil, nil)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("duplicated labels changed the bundle: %+v vs %+v", once, twice)
	}
}
