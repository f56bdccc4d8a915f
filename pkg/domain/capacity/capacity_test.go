package capacity_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/capacity"
	"github.com/felixgeelhaar/pulse/pkg/domain/config"
	"github.com/felixgeelhaar/pulse/pkg/domain/team"
	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
)

var (
	sprintStart = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // Monday
	sprintDue   = time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)
	sprint      = tracker.Iteration{ID: 12, Name: "Sprint 12", StartDate: &sprintStart, DueDate: &sprintDue}
)

func roster() *team.Config {
	return &team.Config{Members: []team.Member{
		{Username: "alice", Name: "Alice", DefaultCapacity: 60, WeeklyCapacity: 40},
		{Username: "bob", Name: "Bob", DefaultCapacity: 60, WeeklyCapacity: 40},
	}}
}

func assignedIssue(id int, username string, points int) tracker.Issue {
	is := tracker.Issue{
		ID:        id,
		State:     tracker.StateOpen,
		Iteration: &sprint,
		Assignees: []tracker.User{{Username: username}},
	}
	if points > 0 {
		is.Labels = []string{"sp::" + string(rune('0'+points))}
	}
	return is
}

func settings() config.CapacitySettings {
	return config.CapacitySettings{HoursPerPoint: 4, HoursPerIssue: 6, WorkingDaysPerWeek: 5}
}

func TestBuildPlan_Allocation(t *testing.T) {
	issues := []tracker.Issue{
		assignedIssue(1, "alice", 5),  // 20h
		assignedIssue(2, "alice", 0),  // 6h default
		assignedIssue(3, "bob", 3),    // 12h
		{ID: 4, State: tracker.StateClosed, Iteration: &sprint, Assignees: []tracker.User{{Username: "alice"}}}, // closed: skipped
		assignedIssue(5, "alice", 9),  // other sprint
	}
	issues[4].Iteration = &tracker.Iteration{ID: 99, Name: "Sprint 99"}

	plan := capacity.BuildPlan(issues, sprint, roster(), nil, nil, settings())

	if len(plan.Members) != 2 {
		t.Fatalf("plan has %d members, want 2", len(plan.Members))
	}

	alice := plan.Members[0]
	if alice.AllocatedHours != 26 {
		t.Errorf("alice allocated = %v, want 26", alice.AllocatedHours)
	}
	if alice.RemainingHours != 34 {
		t.Errorf("alice remaining = %v, want 34", alice.RemainingHours)
	}
	if alice.Utilization != 43.3 {
		t.Errorf("alice utilization = %v, want 43.3", alice.Utilization)
	}
	if alice.Band != capacity.BandHealthy {
		t.Errorf("alice band = %q, want healthy", alice.Band)
	}
	if alice.OpenIssues != 2 {
		t.Errorf("alice open issues = %d, want 2", alice.OpenIssues)
	}

	if plan.AllocatedHours != 38 || plan.AvailableHours != 120 {
		t.Errorf("team totals = %v/%v, want 38/120", plan.AllocatedHours, plan.AvailableHours)
	}
}

func TestBuildPlan_Override(t *testing.T) {
	overrides := []team.Override{
		{SprintID: sprint.ID, Username: "alice", Hours: 20, Reason: "conference week"},
	}
	plan := capacity.BuildPlan(nil, sprint, roster(), nil, overrides, settings())

	alice := plan.Members[0]
	if alice.AvailableHours != 20 {
		t.Errorf("alice available = %v, want 20 (override)", alice.AvailableHours)
	}
	if alice.OverrideReason != "conference week" {
		t.Errorf("override reason = %q", alice.OverrideReason)
	}
	if bob := plan.Members[1]; bob.OverrideReason != "" {
		t.Errorf("bob should have no override reason, got %q", bob.OverrideReason)
	}
}

func TestBuildPlan_Absences(t *testing.T) {
	absences := []team.Absence{
		// Three working days out inside the sprint window.
		{Username: "bob", From: sprintStart, To: sprintStart.AddDate(0, 0, 2), HoursPerDay: 8},
	}
	plan := capacity.BuildPlan(nil, sprint, roster(), absences, nil, settings())

	if bob := plan.Members[1]; bob.AvailableHours != 36 {
		t.Errorf("bob available = %v, want 36", bob.AvailableHours)
	}
}

func TestBuildPlan_Bands(t *testing.T) {
	tests := []struct {
		name   string
		points int // against a 20h override capacity
		want   capacity.Band
	}{
		{"healthy", 2, capacity.BandHealthy},          // 8h / 20h = 40%
		{"at capacity", 4, capacity.BandAtCapacity},   // 16h / 20h = 80%
		{"overloaded", 5, capacity.BandOverloaded},    // 20h / 20h = 100%
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			overrides := []team.Override{{SprintID: sprint.ID, Username: "alice", Hours: 20}}
			issues := []tracker.Issue{assignedIssue(1, "alice", tt.points)}
			plan := capacity.BuildPlan(issues, sprint, roster(), nil, overrides, settings())
			if got := plan.Members[0].Band; got != tt.want {
				t.Errorf("band = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildPlan_ZeroAvailable(t *testing.T) {
	overrides := []team.Override{{SprintID: sprint.ID, Username: "alice", Hours: 0, Reason: "leave"}}
	issues := []tracker.Issue{assignedIssue(1, "alice", 2)}
	plan := capacity.BuildPlan(issues, sprint, roster(), nil, overrides, settings())

	if got := plan.Members[0].Utilization; got != 0 {
		t.Errorf("utilization with zero available = %v, want 0", got)
	}
}
