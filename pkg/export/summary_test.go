package export

import (
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/analytics"
	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
)

func TestBuildSummary_CapsAndTruncation(t *testing.T) {
	long := strings.Repeat("x", 60)

	blockers := make([]tracker.Issue, 7)
	for i := range blockers {
		blockers[i] = tracker.Issue{IID: i + 1, Title: long}
	}
	blockers[0].Assignees = []tracker.User{{Username: "alice", Name: "Alice A"}}

	risks := make([]Risk, 6)
	for i := range risks {
		risks[i] = Risk{Title: "supplier delay", Probability: 3, Impact: 4, Owner: "bob"}
	}
	risks[1].Owner = "  "

	s := BuildSummary(SummaryInput{
		ProjectID: "42",
		Blockers:  blockers,
		Risks:     risks,
	})

	if len(s.Blockers) != 5 {
		t.Fatalf("len(Blockers) = %d, want 5", len(s.Blockers))
	}
	if len(s.Risks) != 5 {
		t.Fatalf("len(Risks) = %d, want 5", len(s.Risks))
	}

	if got := s.Blockers[0].Title; len([]rune(got)) != 51 || !strings.HasSuffix(got, "…") {
		t.Errorf("truncated title = %q, want 50 runes plus ellipsis", got)
	}
	if got := s.Blockers[0].Assignee; got != "Alice A" {
		t.Errorf("Assignee = %q, want %q", got, "Alice A")
	}
	if got := s.Blockers[1].Assignee; got != "Unassigned" {
		t.Errorf("unassigned blocker = %q, want %q", got, "Unassigned")
	}

	if got := s.Risks[0].Score; got != 12 {
		t.Errorf("risk score = %d, want 12", got)
	}
	if got := s.Risks[1].Owner; got != "Unassigned" {
		t.Errorf("blank owner = %q, want %q", got, "Unassigned")
	}
}

func TestSummaryRender(t *testing.T) {
	s := BuildSummary(SummaryInput{
		ProjectID:  "platform",
		SnapshotAt: time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC),
		Health: analytics.HealthReport{
			Overall: 78,
			Status:  analytics.HealthAmber,
			Stats: analytics.Stats{
				Total: 20, Open: 10, Closed: 10,
				Blockers: 2, CompletionRate: 50,
			},
			SubScores: analytics.SubScores{Completion: 50, Schedule: 100, Blockers: 70, Risk: 100},
		},
		Weights: WeightLine{Completion: 0.30, Schedule: 0.25, Blockers: 0.25, Risk: 0.20},
	})

	out := s.Render()
	for _, want := range []string{
		"Project platform (snapshot 2026-02-01)",
		"Health: 78/100 (amber)",
		"Issues: 20 total, 10 open, 10 closed (50% complete)",
		"blockers 70 (w 0.25)",
		"(none in window)",
		"(none)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q in:\n%s", want, out)
		}
	}
}
