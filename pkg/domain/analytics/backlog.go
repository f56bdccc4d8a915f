package analytics

import (
	"math"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
)

// BacklogStatus bands the backlog refinement score.
type BacklogStatus string

const (
	BacklogHealthy        BacklogStatus = "healthy"
	BacklogNeedsAttention BacklogStatus = "needs-attention"
	BacklogCritical       BacklogStatus = "critical"
)

// BacklogTrend describes recent movement of the refinement score.
type BacklogTrend string

const (
	TrendImproving BacklogTrend = "improving"
	TrendDeclining BacklogTrend = "declining"
	TrendStable    BacklogTrend = "stable"
)

// trendBand is the score-point movement required before a trend reads as
// anything but stable.
const trendBand = 3.0

// maxBacklogHistory caps the measurement ring.
const maxBacklogHistory = 30

// BacklogReport is the refinement-quality verdict over open issues.
type BacklogReport struct {
	Refined     float64       `json:"refined"`
	Described   float64       `json:"described"`
	SprintReady float64       `json:"sprint_ready"`
	Score       int           `json:"score"`
	Status      BacklogStatus `json:"status"`
	Trend       BacklogTrend  `json:"trend,omitempty"`
	OpenIssues  int           `json:"open_issues"`
}

// BacklogMeasurement is one dated entry in the history ring.
type BacklogMeasurement struct {
	Date  string `json:"date" yaml:"date"` // YYYY-MM-DD
	Score int    `json:"score" yaml:"score"`
}

// BacklogHealth scores refinement quality over the open issues only.
// Empty backlogs score zero on every ratio.
func BacklogHealth(issues []tracker.Issue) BacklogReport {
	var open, refined, described, ready int
	for i := range issues {
		is := &issues[i]
		if is.IsClosed() {
			continue
		}
		open++

		facets := tracker.InterpretIssue(is)
		hasPoints := facets.HasPoints()
		hasDesc := is.Description != ""
		if hasPoints {
			refined++
		}
		if hasDesc {
			described++
		}
		if hasPoints && hasDesc && len(is.Assignees) > 0 && facets.Sprint != "" {
			ready++
		}
	}

	report := BacklogReport{OpenIssues: open}
	if open > 0 {
		report.Refined = float64(refined) / float64(open)
		report.Described = float64(described) / float64(open)
		report.SprintReady = float64(ready) / float64(open)
	}
	report.Score = int(math.Round((report.Refined + report.Described + report.SprintReady) / 3 * 100))

	switch {
	case report.Score >= 75:
		report.Status = BacklogHealthy
	case report.Score >= 60:
		report.Status = BacklogNeedsAttention
	default:
		report.Status = BacklogCritical
	}
	return report
}

// RecordBacklogMeasurement appends a dated measurement to the history,
// replacing any same-day entry, and trims the ring to its capacity.
func RecordBacklogMeasurement(history []BacklogMeasurement, score int, at time.Time) []BacklogMeasurement {
	date := at.Format("2006-01-02")
	if n := len(history); n > 0 && history[n-1].Date == date {
		history[n-1].Score = score
	} else {
		history = append(history, BacklogMeasurement{Date: date, Score: score})
	}
	if len(history) > maxBacklogHistory {
		history = history[len(history)-maxBacklogHistory:]
	}
	return history
}

// BacklogTrendOf compares the mean of the last three measurements with
// the three before that. Fewer than six measurements read as stable.
func BacklogTrendOf(history []BacklogMeasurement) BacklogTrend {
	if len(history) < 6 {
		return TrendStable
	}
	recent := meanScore(history[len(history)-3:])
	prior := meanScore(history[len(history)-6 : len(history)-3])

	switch {
	case recent-prior > trendBand:
		return TrendImproving
	case prior-recent > trendBand:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func meanScore(ms []BacklogMeasurement) float64 {
	if len(ms) == 0 {
		return 0
	}
	var sum int
	for _, m := range ms {
		sum += m.Score
	}
	return float64(sum) / float64(len(ms))
}
