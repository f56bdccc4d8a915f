package rag_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/config"
	"github.com/felixgeelhaar/pulse/pkg/domain/rag"
	"github.com/felixgeelhaar/pulse/pkg/domain/team"
	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
	"github.com/felixgeelhaar/pulse/pkg/domain/velocity"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func analyzer() *rag.Analyzer {
	engine := velocity.NewEngine(config.Default().Velocity, &team.Config{}, nil, nil)
	return rag.NewAnalyzer(engine)
}

// sprintIssues returns n closed issues spread evenly over three past
// sprints, giving the epic a measurable velocity of n/3 per iteration.
func sprintIssues(n int) []tracker.Issue {
	issues := make([]tracker.Issue, 0, n)
	for i := 0; i < n; i++ {
		week := i%3 + 1
		start := now.AddDate(0, 0, -7*week-4)
		due := start.AddDate(0, 0, 4)
		issues = append(issues, tracker.Issue{
			ID:    100 + i,
			State: tracker.StateClosed,
			Iteration: &tracker.Iteration{
				ID:        week,
				Name:      []string{"Sprint 1", "Sprint 2", "Sprint 3"}[week-1],
				StartDate: &start,
				DueDate:   &due,
			},
		})
	}
	return issues
}

func openIssues(n int, labels ...string) []tracker.Issue {
	issues := make([]tracker.Issue, 0, n)
	for i := 0; i < n; i++ {
		issues = append(issues, tracker.Issue{ID: 200 + i, State: tracker.StateOpen, Labels: labels})
	}
	return issues
}

// futureCalendar returns n upcoming two-week iterations.
func futureCalendar(n int) []tracker.Iteration {
	cal := make([]tracker.Iteration, 0, n)
	for i := 0; i < n; i++ {
		start := now.AddDate(0, 0, 14*i+1)
		due := start.AddDate(0, 0, 13)
		cal = append(cal, tracker.Iteration{ID: 10 + i, Name: "upcoming", StartDate: &start, DueDate: &due})
	}
	return cal
}

func TestAnalyze_ZeroIssueEpic(t *testing.T) {
	epic := &tracker.Epic{ID: 1, Title: "Empty"}
	res := analyzer().Analyze(epic, nil, now)

	if res.Status != rag.StatusGreen {
		t.Errorf("status = %q, want green", res.Status)
	}
	if len(res.Factors) != 1 || res.Factors[0].Tag != rag.FactorInfo {
		t.Errorf("expected a single info factor, got %+v", res.Factors)
	}
	if res.Metrics.ProgressPercent != 0 {
		t.Errorf("progress = %v, want 0", res.Metrics.ProgressPercent)
	}
}

func TestAnalyze_Green(t *testing.T) {
	due := now.AddDate(0, 0, 60)
	epic := &tracker.Epic{
		ID:      2,
		Title:   "Cruising",
		DueDate: &due,
		Issues:  append(sprintIssues(9), openIssues(2)...),
	}
	res := analyzer().Analyze(epic, futureCalendar(4), now)

	if res.Status != rag.StatusGreen {
		t.Fatalf("status = %q (reason %q), want green", res.Status, res.Reason)
	}
	if res.Reason != "on track" {
		t.Errorf("reason = %q, want on track", res.Reason)
	}
	if res.Projection == nil || !res.Projection.OnTime {
		t.Errorf("expected an on-time projection, got %+v", res.Projection)
	}
}

func TestAnalyze_OverdueIsRed(t *testing.T) {
	due := now.AddDate(0, 0, -10)
	epic := &tracker.Epic{
		ID:      3,
		Title:   "Late",
		DueDate: &due,
		Issues:  append(sprintIssues(6), openIssues(4)...),
	}
	res := analyzer().Analyze(epic, nil, now)

	if res.Status != rag.StatusRed {
		t.Fatalf("status = %q, want red", res.Status)
	}
	if res.Reason == "" {
		t.Error("overdue verdict must carry a reason")
	}

	var replan bool
	for _, a := range res.Actions {
		if a.Title == "Replan due date" && a.Priority == rag.PriorityCritical {
			replan = true
		}
	}
	if !replan {
		t.Errorf("expected a critical replan action, got %+v", res.Actions)
	}
}

func TestAnalyze_VelocityGap(t *testing.T) {
	// 7 closed with sprints over 3 iterations: velocity 7/3 ~ 2.33.
	// 10 open against 3 remaining iterations: required 10/3 ~ 3.33.
	// Required exceeds current but stays under the 1.5x red line.
	due := now.AddDate(0, 0, 42)
	epic := &tracker.Epic{
		ID:      4,
		Title:   "Stretched",
		DueDate: &due,
		Issues:  append(append(sprintIssues(7), openIssues(3)...), openIssues(7)...),
	}
	res := analyzer().Analyze(epic, futureCalendar(3), now)

	if res.Status != rag.StatusAmber {
		t.Fatalf("status = %q (reason %q), want amber", res.Status, res.Reason)
	}
	if res.Metrics.RemainingIterations == nil || *res.Metrics.RemainingIterations != 3 {
		t.Fatalf("remaining iterations = %v, want 3", res.Metrics.RemainingIterations)
	}

	p := res.Projection
	if p == nil {
		t.Fatal("expected a projection")
	}
	if p.IterationsNeeded != 5 {
		t.Errorf("iterations needed = %d, want 5", p.IterationsNeeded)
	}
	if p.WeeksNeeded != 10 {
		t.Errorf("weeks needed = %d, want 10", p.WeeksNeeded)
	}
	if want := now.AddDate(0, 0, 70); !p.Date.Equal(want) {
		t.Errorf("projected date = %v, want %v", p.Date, want)
	}
	if p.OnTime {
		t.Error("projection should miss the due date")
	}
	if p.DaysVariance != 28 {
		t.Errorf("days variance = %d, want +28", p.DaysVariance)
	}
}

func TestAnalyze_ExtremeGapIsRed(t *testing.T) {
	// Velocity 1 per iteration against 10 remaining in 3 iterations:
	// required 3.33 is beyond 1.5x current.
	due := now.AddDate(0, 0, 42)
	epic := &tracker.Epic{
		ID:      5,
		Title:   "Underwater",
		DueDate: &due,
		Issues:  append(sprintIssues(3), openIssues(10)...),
	}
	res := analyzer().Analyze(epic, futureCalendar(3), now)

	if res.Status != rag.StatusRed {
		t.Fatalf("status = %q, want red", res.Status)
	}
	var reduce bool
	for _, a := range res.Actions {
		if a.Title == "Reduce scope or add capacity" && a.Priority == rag.PriorityCritical {
			reduce = true
		}
	}
	if !reduce {
		t.Errorf("expected a critical scope action, got %+v", res.Actions)
	}
}

func TestAnalyze_BlockersPromote(t *testing.T) {
	due := now.AddDate(0, 0, 60)
	epic := &tracker.Epic{
		ID:      6,
		Title:   "Blocked",
		DueDate: &due,
		Issues:  append(sprintIssues(9), openIssues(2, "blocked")...),
	}
	res := analyzer().Analyze(epic, futureCalendar(4), now)

	if res.Status != rag.StatusAmber {
		t.Fatalf("status = %q, want amber from blockers", res.Status)
	}
	var unblock bool
	for _, a := range res.Actions {
		if a.Title == "Resolve blocking dependencies" && a.Priority == rag.PriorityHigh {
			unblock = true
		}
	}
	if !unblock {
		t.Errorf("expected an unblock action, got %+v", res.Actions)
	}

	var warning bool
	for _, f := range res.Factors {
		if f.Tag == rag.FactorWarning {
			warning = true
		}
	}
	if !warning {
		t.Errorf("expected a warning factor, got %+v", res.Factors)
	}
}

func TestAnalyze_FactorsAccumulate(t *testing.T) {
	// Overdue and blocked: red status with both a critical and a warning factor.
	due := now.AddDate(0, 0, -5)
	epic := &tracker.Epic{
		ID:      7,
		Title:   "Troubled",
		DueDate: &due,
		Issues:  append(sprintIssues(6), openIssues(4, "blocker")...),
	}
	res := analyzer().Analyze(epic, nil, now)

	if res.Status != rag.StatusRed {
		t.Fatalf("status = %q, want red", res.Status)
	}
	var critical, warning int
	for _, f := range res.Factors {
		switch f.Tag {
		case rag.FactorCritical:
			critical++
		case rag.FactorWarning:
			warning++
		}
	}
	if critical == 0 || warning == 0 {
		t.Errorf("factors = %+v, want both critical and warning entries", res.Factors)
	}
}
