package velocity_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/config"
	"github.com/felixgeelhaar/pulse/pkg/domain/team"
	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
	"github.com/felixgeelhaar/pulse/pkg/domain/velocity"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// iteration builds a Mon-Fri sprint n weeks before now.
func iteration(id int, weeksAgo int) *tracker.Iteration {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -7*weeksAgo)
	due := start.AddDate(0, 0, 4)
	return &tracker.Iteration{
		ID:        id,
		Name:      sprintName(id),
		StartDate: &start,
		DueDate:   &due,
	}
}

func sprintName(id int) string {
	return map[int]string{1: "Sprint 1", 2: "Sprint 2", 3: "Sprint 3", 4: "Sprint 4"}[id]
}

func closedIssue(id int, it *tracker.Iteration, points int, username string) tracker.Issue {
	return tracker.Issue{
		ID:        id,
		State:     tracker.StateClosed,
		Labels:    []string{"sp::" + string(rune('0'+points))},
		Iteration: it,
		Assignees: []tracker.User{{Username: username}},
	}
}

func defaultEngine(roster *team.Config, absences []team.Absence) *velocity.Engine {
	return velocity.NewEngine(config.Default().Velocity, roster, absences, nil)
}

func TestSprint(t *testing.T) {
	it1, it2, it3, it4 := iteration(1, 4), iteration(2, 3), iteration(3, 2), iteration(4, 1)

	issues := []tracker.Issue{
		closedIssue(1, it1, 3, "alice"),
		closedIssue(2, it2, 5, "alice"),
		closedIssue(3, it2, 2, "bob"),
		closedIssue(4, it3, 4, "alice"),
		closedIssue(5, it4, 6, "bob"),
		{ID: 6, State: tracker.StateOpen, Iteration: it4}, // open: not counted
		{ID: 7, State: tracker.StateClosed},               // no sprint: not counted
	}

	e := defaultEngine(&team.Config{}, nil)
	got := e.Sprint(issues, now)

	if len(got.Sprints) != 3 {
		t.Fatalf("lookback kept %d sprints, want 3", len(got.Sprints))
	}
	// Most recent first.
	if got.Sprints[0].Sprint != "Sprint 4" || got.Sprints[2].Sprint != "Sprint 2" {
		t.Errorf("sprint order wrong: %q .. %q", got.Sprints[0].Sprint, got.Sprints[2].Sprint)
	}
	// Sprint 4: 1 issue/6 pts; Sprint 3: 1 issue/4 pts; Sprint 2: 2 issues/7 pts.
	if got.ByIssues != 4.0/3.0 {
		t.Errorf("ByIssues = %v, want %v", got.ByIssues, 4.0/3.0)
	}
	if got.ByPoints != 17.0/3.0 {
		t.Errorf("ByPoints = %v, want %v", got.ByPoints, 17.0/3.0)
	}
	if got.Quality != velocity.QualityExcellent {
		t.Errorf("quality = %q, want excellent", got.Quality)
	}
}

func TestSprint_DataQuality(t *testing.T) {
	e := defaultEngine(&team.Config{}, nil)

	if got := e.Sprint(nil, now); got.Quality != velocity.QualityNoData {
		t.Errorf("empty quality = %q, want no-data", got.Quality)
	}

	two := []tracker.Issue{
		closedIssue(1, iteration(1, 2), 3, "alice"),
		closedIssue(2, iteration(2, 1), 3, "alice"),
	}
	if got := e.Sprint(two, now); got.Quality != velocity.QualityModerate {
		t.Errorf("two-sprint quality = %q, want moderate", got.Quality)
	}

	one := two[:1]
	if got := e.Sprint(one, now); got.Quality != velocity.QualityLow {
		t.Errorf("one-sprint quality = %q, want low", got.Quality)
	}
}

func TestMember(t *testing.T) {
	roster := &team.Config{Members: []team.Member{
		{Username: "alice", WeeklyCapacity: 40},
	}}

	t.Run("rate over two iterations", func(t *testing.T) {
		// Two 5-working-day iterations at 40h/week = 40h each; 8 points each.
		issues := []tracker.Issue{
			closedIssue(1, iteration(1, 2), 8, "alice"),
			closedIssue(2, iteration(2, 1), 8, "alice"),
		}
		res := defaultEngine(roster, nil).Member(issues, "alice")
		if !res.OK {
			t.Fatalf("expected a rate, got insufficient (%s)", res.Quality)
		}
		if res.Rate.HoursPerUnit != 5 {
			t.Errorf("HoursPerUnit = %v, want 5", res.Rate.HoursPerUnit)
		}
		if res.Rate.Iterations != 2 {
			t.Errorf("Iterations = %d, want 2", res.Rate.Iterations)
		}
	})

	t.Run("absences reduce available hours", func(t *testing.T) {
		it1, it2 := iteration(1, 2), iteration(2, 1)
		issues := []tracker.Issue{
			closedIssue(1, it1, 8, "alice"),
			closedIssue(2, it2, 8, "alice"),
		}
		// Two days out in the older iteration: 80h - 16h = 64h over 16 points.
		absences := []team.Absence{
			{Username: "alice", From: *it1.StartDate, To: it1.StartDate.AddDate(0, 0, 1), HoursPerDay: 8},
		}
		res := defaultEngine(roster, absences).Member(issues, "alice")
		if !res.OK || res.Rate.HoursPerUnit != 4 {
			t.Errorf("HoursPerUnit = %+v, want 4", res.Rate)
		}
	})

	t.Run("single iteration is insufficient", func(t *testing.T) {
		issues := []tracker.Issue{closedIssue(1, iteration(1, 1), 8, "alice")}
		res := defaultEngine(roster, nil).Member(issues, "alice")
		if res.OK {
			t.Fatalf("expected insufficient data, got %+v", res.Rate)
		}
		if res.Quality != velocity.QualityLow {
			t.Errorf("quality = %q, want low", res.Quality)
		}
	})

	t.Run("unknown member", func(t *testing.T) {
		res := defaultEngine(roster, nil).Member(nil, "nobody")
		if res.OK || res.Quality != velocity.QualityNoData {
			t.Errorf("unknown member = %+v, want no-data", res)
		}
	})
}

func TestTeamAndFallback(t *testing.T) {
	// Three members; alice and bob qualify at 5 h/pt, carol has a single
	// iteration and does not.
	roster := &team.Config{Members: []team.Member{
		{Username: "alice", WeeklyCapacity: 40},
		{Username: "bob", WeeklyCapacity: 40},
		{Username: "carol", WeeklyCapacity: 40},
	}}
	issues := []tracker.Issue{
		closedIssue(1, iteration(1, 2), 8, "alice"),
		closedIssue(2, iteration(2, 1), 8, "alice"),
		closedIssue(3, iteration(1, 2), 8, "bob"),
		closedIssue(4, iteration(2, 1), 8, "bob"),
		closedIssue(5, iteration(2, 1), 8, "carol"),
	}
	e := defaultEngine(roster, nil)

	t.Run("team average", func(t *testing.T) {
		res := e.Team(issues)
		if !res.OK || res.Rate.HoursPerUnit != 5 {
			t.Fatalf("team rate = %+v, want 5 h/unit", res)
		}
		if res.Rate.Iterations != 2 {
			t.Errorf("qualifying members = %d, want 2", res.Rate.Iterations)
		}
	})

	t.Run("fallback to team average", func(t *testing.T) {
		got := e.WithFallback(issues, "carol")
		if got.Provenance != velocity.ProvenanceTeamAverage {
			t.Errorf("provenance = %q, want team-average", got.Provenance)
		}
		if got.HoursPerUnit != 5 {
			t.Errorf("HoursPerUnit = %v, want 5", got.HoursPerUnit)
		}
	})

	t.Run("individual when measurable", func(t *testing.T) {
		got := e.WithFallback(issues, "alice")
		if got.Provenance != velocity.ProvenanceIndividual {
			t.Errorf("provenance = %q, want individual", got.Provenance)
		}
	})

	t.Run("static when nothing measurable", func(t *testing.T) {
		got := e.WithFallback(nil, "alice")
		if got.Provenance != velocity.ProvenanceStatic {
			t.Errorf("provenance = %q, want static", got.Provenance)
		}
		if got.HoursPerUnit != config.Default().Velocity.StaticHoursPerPoint {
			t.Errorf("HoursPerUnit = %v, want static hours per point", got.HoursPerUnit)
		}
	})

	t.Run("static mode skips measurement", func(t *testing.T) {
		cfg := config.Default().Velocity
		cfg.Mode = config.VelocityStatic
		static := velocity.NewEngine(cfg, roster, nil, nil)
		got := static.WithFallback(issues, "alice")
		if got.Provenance != velocity.ProvenanceStatic {
			t.Errorf("provenance = %q, want static", got.Provenance)
		}
	})
}

func TestCache(t *testing.T) {
	t.Run("hit within ttl", func(t *testing.T) {
		cache := velocity.NewCache(time.Minute)
		e := velocity.NewEngine(config.Default().Velocity, &team.Config{}, nil, cache)

		issues := []tracker.Issue{closedIssue(1, iteration(1, 1), 3, "alice")}
		first := e.Sprint(issues, now)
		second := e.Sprint(issues, now)
		if first.ByPoints != second.ByPoints {
			t.Errorf("cached result differs: %v vs %v", first.ByPoints, second.ByPoints)
		}
		if cache.Len() == 0 {
			t.Error("expected a cached entry")
		}
	})

	t.Run("flush empties the cache", func(t *testing.T) {
		cache := velocity.NewCache(time.Minute)
		e := velocity.NewEngine(config.Default().Velocity, &team.Config{}, nil, cache)
		e.Sprint([]tracker.Issue{closedIssue(1, iteration(1, 1), 3, "alice")}, now)

		cache.Flush()
		if cache.Len() != 0 {
			t.Errorf("cache kept %d entries after flush", cache.Len())
		}
	})

	t.Run("entries expire", func(t *testing.T) {
		cache := velocity.NewCache(time.Millisecond)
		cacheKeyed := velocity.NewEngine(config.Default().Velocity, &team.Config{}, nil, cache)
		issues := []tracker.Issue{closedIssue(1, iteration(1, 1), 3, "alice")}
		cacheKeyed.Sprint(issues, now)

		time.Sleep(5 * time.Millisecond)
		// A fresh computation must repopulate rather than serve the dead entry.
		got := cacheKeyed.Sprint(issues, now)
		if got.Quality != velocity.QualityLow {
			t.Errorf("recomputed quality = %q, want low", got.Quality)
		}
	})
}
