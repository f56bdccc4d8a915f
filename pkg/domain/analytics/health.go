package analytics

import (
	"math"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/config"
	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
)

// HealthStatus is the red/amber/green band over the composite score.
type HealthStatus string

const (
	HealthGreen HealthStatus = "green"
	HealthAmber HealthStatus = "amber"
	HealthRed   HealthStatus = "red"
)

// SubScores are the four weighted dimensions of the health score.
type SubScores struct {
	Completion int `json:"completion"`
	Schedule   int `json:"schedule"`
	Blockers   int `json:"blockers"`
	Risk       int `json:"risk"`
}

// HealthReport is the composite health verdict for an issue set.
type HealthReport struct {
	Overall   int              `json:"overall"`
	Status    HealthStatus     `json:"status"`
	SubScores SubScores        `json:"sub_scores"`
	Stats     Stats            `json:"stats"`
	Timeframe config.Timeframe `json:"timeframe"`
}

// ApplyTimeframe restricts an issue set per the configured timeframe.
// This is the single gatekeeper: no other component re-derives the
// filter. The iteration mode keeps issues whose sprint facet matches the
// current iteration; the day-bounded mode keeps issues with recent
// activity (closed, updated or due within the window) plus every open
// issue.
func ApplyTimeframe(issues []tracker.Issue, tf config.Timeframe, current *tracker.Iteration, now time.Time) []tracker.Issue {
	switch tf.Mode {
	case config.TimeframeIteration:
		if current == nil || current.Name == "" {
			return issues
		}
		var kept []tracker.Issue
		for i := range issues {
			if tracker.InterpretIssue(&issues[i]).Sprint == current.Name {
				kept = append(kept, issues[i])
			}
		}
		return kept

	case config.TimeframeDays:
		cutoff := now.AddDate(0, 0, -tf.Days)
		var kept []tracker.Issue
		for i := range issues {
			is := &issues[i]
			if !is.IsClosed() {
				kept = append(kept, issues[i])
				continue
			}
			if closed, ok := is.ClosedTime(now); ok && closed.After(cutoff) {
				kept = append(kept, issues[i])
				continue
			}
			if is.UpdatedAt != nil && is.UpdatedAt.After(cutoff) {
				kept = append(kept, issues[i])
				continue
			}
			if is.DueDate != nil && is.DueDate.After(cutoff) {
				kept = append(kept, issues[i])
			}
		}
		return kept

	default:
		return issues
	}
}

// ScoreHealth computes the composite health score from pre-aggregated
// stats. Empty sets score 100 on schedule, blockers and risk.
func ScoreHealth(stats Stats, cfg config.Config) HealthReport {
	sub := SubScores{
		Completion: stats.CompletionRate,
		Schedule:   ratioScore(stats.Overdue, stats.Total, cfg.Amplifiers.Schedule),
		Blockers:   ratioScore(stats.Blockers, stats.Total, cfg.Amplifiers.Blockers),
		Risk:       ratioScore(stats.AtRisk, stats.Total, cfg.Amplifiers.Risk),
	}

	w := cfg.Weights
	overall := int(math.Round(
		float64(sub.Completion)*w.Completion +
			float64(sub.Schedule)*w.Schedule +
			float64(sub.Blockers)*w.Blockers +
			float64(sub.Risk)*w.Risk))

	return HealthReport{
		Overall:   overall,
		Status:    bandFor(overall, cfg.Thresholds),
		SubScores: sub,
		Stats:     stats,
		Timeframe: cfg.Timeframe,
	}
}

// Health filters the issue set through the timeframe gatekeeper,
// aggregates it and scores the result.
func Health(issues []tracker.Issue, cfg config.Config, current *tracker.Iteration, now time.Time) HealthReport {
	scoped := ApplyTimeframe(issues, cfg.Timeframe, current, now)
	return ScoreHealth(Aggregate(scoped, now), cfg)
}

// ratioScore maps a count/total ratio through an amplifier into a
// 0..100 score, with empty sets scoring perfect.
func ratioScore(count, total, amplifier int) int {
	if total == 0 {
		return 100
	}
	score := 100 - float64(count)/float64(total)*float64(amplifier)
	if score < 0 {
		return 0
	}
	return int(math.Round(score))
}

func bandFor(overall int, t config.HealthThresholds) HealthStatus {
	switch {
	case overall >= t.Good:
		return HealthGreen
	case overall >= t.Warning:
		return HealthAmber
	default:
		return HealthRed
	}
}
