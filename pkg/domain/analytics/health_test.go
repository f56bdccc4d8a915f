package analytics_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/analytics"
	"github.com/felixgeelhaar/pulse/pkg/domain/config"
	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func timePtr(t time.Time) *time.Time { return &t }

func TestScoreHealth_ZeroOverdue(t *testing.T) {
	// 10 issues, half closed, nothing overdue or blocked: completion 50,
	// everything else perfect, overall round(15+25+25+20) = 85, green.
	stats := analytics.Stats{Total: 10, Open: 5, Closed: 5, CompletionRate: 50}
	report := analytics.ScoreHealth(stats, config.Default())

	if report.SubScores.Completion != 50 {
		t.Errorf("completion = %d, want 50", report.SubScores.Completion)
	}
	for name, got := range map[string]int{
		"schedule": report.SubScores.Schedule,
		"blockers": report.SubScores.Blockers,
		"risk":     report.SubScores.Risk,
	} {
		if got != 100 {
			t.Errorf("%s = %d, want 100", name, got)
		}
	}
	if report.Overall != 85 {
		t.Errorf("overall = %d, want 85", report.Overall)
	}
	if report.Status != analytics.HealthGreen {
		t.Errorf("status = %q, want green", report.Status)
	}
}

func TestScoreHealth_WithBlockers(t *testing.T) {
	// 2 blockers out of 20 at amplifier 300: blocker score 70, overall 78, amber.
	stats := analytics.Stats{Total: 20, Open: 10, Closed: 10, Blockers: 2, CompletionRate: 50}
	report := analytics.ScoreHealth(stats, config.Default())

	if report.SubScores.Blockers != 70 {
		t.Errorf("blocker score = %d, want 70", report.SubScores.Blockers)
	}
	if report.Overall != 78 {
		t.Errorf("overall = %d, want 78", report.Overall)
	}
	if report.Status != analytics.HealthAmber {
		t.Errorf("status = %q, want amber", report.Status)
	}
}

func TestScoreHealth_EmptySet(t *testing.T) {
	report := analytics.ScoreHealth(analytics.Stats{}, config.Default())
	sub := report.SubScores
	if sub.Schedule != 100 || sub.Blockers != 100 || sub.Risk != 100 {
		t.Errorf("empty set sub-scores = %+v, want 100 across schedule/blockers/risk", sub)
	}
}

func TestScoreHealth_Bounds(t *testing.T) {
	// Saturated amplifier must clamp at zero, never negative.
	stats := analytics.Stats{Total: 4, Open: 4, Overdue: 4, Blockers: 4, AtRisk: 4}
	report := analytics.ScoreHealth(stats, config.Default())
	if report.Overall < 0 || report.Overall > 100 {
		t.Errorf("overall = %d outside [0, 100]", report.Overall)
	}
	if report.SubScores.Blockers != 0 {
		t.Errorf("saturated blocker score = %d, want 0", report.SubScores.Blockers)
	}
}

func TestScoreHealth_BandMonotone(t *testing.T) {
	cfg := config.Default()
	rank := map[analytics.HealthStatus]int{
		analytics.HealthRed:   0,
		analytics.HealthAmber: 1,
		analytics.HealthGreen: 2,
	}

	prev := -1
	for closed := 0; closed <= 10; closed++ {
		stats := analytics.Stats{
			Total:          10,
			Closed:         closed,
			Open:           10 - closed,
			CompletionRate: closed * 10,
		}
		report := analytics.ScoreHealth(stats, cfg)
		if r := rank[report.Status]; r < prev {
			t.Fatalf("status band regressed at completion %d%%", closed*10)
		} else {
			prev = r
		}
	}
}

func TestApplyTimeframe_All(t *testing.T) {
	issues := []tracker.Issue{{ID: 1}, {ID: 2}}
	got := analytics.ApplyTimeframe(issues, config.Timeframe{Mode: config.TimeframeAll}, nil, now)
	if len(got) != 2 {
		t.Errorf("all-mode kept %d issues, want 2", len(got))
	}
}

func TestApplyTimeframe_Iteration(t *testing.T) {
	current := &tracker.Iteration{ID: 9, Name: "Sprint 12"}
	issues := []tracker.Issue{
		{ID: 1, Iteration: &tracker.Iteration{Name: "Sprint 12"}},
		{ID: 2, Iteration: &tracker.Iteration{Name: "Sprint 11"}},
		{ID: 3, Labels: []string{"Sprint 12"}},
		{ID: 4},
	}

	got := analytics.ApplyTimeframe(issues, config.Timeframe{Mode: config.TimeframeIteration}, current, now)
	if len(got) != 2 {
		t.Fatalf("iteration-mode kept %d issues, want 2", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 3 {
		t.Errorf("kept wrong issues: %v, %v", got[0].ID, got[1].ID)
	}

	t.Run("no current iteration keeps everything", func(t *testing.T) {
		got := analytics.ApplyTimeframe(issues, config.Timeframe{Mode: config.TimeframeIteration}, nil, now)
		if len(got) != len(issues) {
			t.Errorf("kept %d issues, want %d", len(got), len(issues))
		}
	})
}

func TestApplyTimeframe_Days(t *testing.T) {
	tf := config.Timeframe{Mode: config.TimeframeDays, Days: 14}
	issues := []tracker.Issue{
		{ID: 1, State: tracker.StateOpen},                                                      // open: always kept
		{ID: 2, State: tracker.StateClosed, ClosedAt: timePtr(now.AddDate(0, 0, -3))},          // recent close
		{ID: 3, State: tracker.StateClosed, ClosedAt: timePtr(now.AddDate(0, 0, -60))},         // stale close
		{ID: 4, State: tracker.StateClosed, ClosedAt: timePtr(now.AddDate(0, 0, -60)), UpdatedAt: timePtr(now.AddDate(0, 0, -2))}, // recent touch
		{ID: 5, State: tracker.StateClosed}, // closed-at absent: treated as closed at snapshot time
	}

	got := analytics.ApplyTimeframe(issues, tf, nil, now)
	wantIDs := map[int]bool{1: true, 2: true, 4: true, 5: true}
	if len(got) != len(wantIDs) {
		t.Fatalf("kept %d issues, want %d", len(got), len(wantIDs))
	}
	for _, is := range got {
		if !wantIDs[is.ID] {
			t.Errorf("unexpectedly kept issue %d", is.ID)
		}
	}
}

func TestAggregate(t *testing.T) {
	issues := []tracker.Issue{
		{ID: 1, State: tracker.StateClosed},
		{ID: 2, State: tracker.StateOpen, Labels: []string{"blocked"}},
		{ID: 3, State: tracker.StateOpen, DueDate: timePtr(now.AddDate(0, 0, -1))},
		{ID: 4, State: tracker.StateOpen, DueDate: timePtr(now.AddDate(0, 0, 3))},
	}

	stats := analytics.Aggregate(issues, now)
	want := analytics.Stats{Total: 4, Open: 3, Closed: 1, Blockers: 1, Overdue: 1, AtRisk: 1, CompletionRate: 25}
	if stats != want {
		t.Errorf("Aggregate() = %+v, want %+v", stats, want)
	}
}

func TestAggregate_Empty(t *testing.T) {
	stats := analytics.Aggregate(nil, now)
	if stats.CompletionRate != 0 || stats.Total != 0 {
		t.Errorf("empty aggregate = %+v, want zeros", stats)
	}
}
