// Package analytics derives decision-support metrics from a tracker
// snapshot: issue-set statistics, the composite health score and backlog
// refinement quality.
package analytics

import (
	"math"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
)

// Stats summarizes a set of issues.
type Stats struct {
	Total          int `json:"total"`
	Open           int `json:"open"`
	Closed         int `json:"closed"`
	Blockers       int `json:"blockers"`
	Overdue        int `json:"overdue"`
	AtRisk         int `json:"at_risk"`
	CompletionRate int `json:"completion_rate"`
}

// Aggregate summarizes issues as of the given time. Deterministic and
// order-independent.
func Aggregate(issues []tracker.Issue, now time.Time) Stats {
	var s Stats
	s.Total = len(issues)

	for i := range issues {
		is := &issues[i]
		if is.IsClosed() {
			s.Closed++
		} else {
			s.Open++
		}
		if tracker.IsBlocked(is) {
			s.Blockers++
		}
		if tracker.IsOverdue(is, now) {
			s.Overdue++
		}
		if tracker.IsAtRisk(is, now) {
			s.AtRisk++
		}
	}

	if s.Total > 0 {
		s.CompletionRate = int(math.Round(float64(s.Closed) / float64(s.Total) * 100))
	}
	return s
}
