// Package velocity measures delivered work per iteration at the sprint,
// member and team level, with a fallback chain down to statically
// configured rates and a TTL cache over computed results.
package velocity

import (
	"sort"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/config"
	"github.com/felixgeelhaar/pulse/pkg/domain/team"
	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
)

// DataQuality bands how much signal backs a result.
type DataQuality string

const (
	QualityNoData    DataQuality = "no-data"
	QualityLow       DataQuality = "low"
	QualityModerate  DataQuality = "moderate"
	QualityGood      DataQuality = "good"
	QualityExcellent DataQuality = "excellent"
)

// Provenance records which rung of the fallback chain produced a rate.
type Provenance string

const (
	ProvenanceIndividual  Provenance = "individual"
	ProvenanceTeamAverage Provenance = "team-average"
	ProvenanceStatic      Provenance = "static"
)

// SprintStat is one sprint's completed work.
type SprintStat struct {
	Sprint          string     `json:"sprint"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	CompletedIssues int        `json:"completed_issues"`
	CompletedPoints int        `json:"completed_points"`
}

// SprintVelocity is the lookback-window average of completed work.
type SprintVelocity struct {
	Sprints  []SprintStat `json:"sprints"` // most recent first, at most lookback entries
	ByIssues float64      `json:"by_issues"`
	ByPoints float64      `json:"by_points"`
	Quality  DataQuality  `json:"quality"`
}

// MemberRate is a member's measured hours-per-unit rate.
type MemberRate struct {
	Username       string                `json:"username"`
	Metric         config.VelocityMetric `json:"metric"`
	HoursPerUnit   float64               `json:"hours_per_unit"`
	Iterations     int                   `json:"iterations"`
	TotalUnits     float64               `json:"total_units"`
	AvailableHours float64               `json:"available_hours"`
}

// RateResult is the tagged outcome of a rate computation: either a rate
// or an insufficient-data verdict, never an error.
type RateResult struct {
	OK      bool        `json:"ok"`
	Quality DataQuality `json:"quality"`
	Rate    *MemberRate `json:"rate,omitempty"`
}

// Insufficient builds the insufficient-data variant.
func Insufficient(quality DataQuality) RateResult {
	return RateResult{OK: false, Quality: quality}
}

// FallbackRate is the result of the individual -> team -> static chain.
type FallbackRate struct {
	HoursPerUnit float64               `json:"hours_per_unit"`
	Metric       config.VelocityMetric `json:"metric"`
	Provenance   Provenance            `json:"provenance"`
	Quality      DataQuality           `json:"quality"`
}

// Engine computes velocity over a snapshot's issues. It is pure apart
// from its cache; construct one per configuration.
type Engine struct {
	cfg      config.VelocityConfig
	roster   *team.Config
	absences []team.Absence
	cache    *Cache
}

// NewEngine builds an engine. A nil cache disables caching.
func NewEngine(cfg config.VelocityConfig, roster *team.Config, absences []team.Absence, cache *Cache) *Engine {
	return &Engine{cfg: cfg, roster: roster, absences: absences, cache: cache}
}

// Sprint groups closed issues by sprint name, sorts sprints by end date
// descending and averages completed work over the lookback window.
func (e *Engine) Sprint(issues []tracker.Issue, now time.Time) SprintVelocity {
	if v, ok := cacheGet[SprintVelocity](e.cache, "sprint", sprintKey(issues)); ok {
		return v
	}

	type bucket struct {
		stat SprintStat
	}
	buckets := make(map[string]*bucket)

	for i := range issues {
		is := &issues[i]
		if !is.IsClosed() {
			continue
		}
		facets := tracker.InterpretIssue(is)
		if facets.Sprint == "" {
			continue
		}
		b, ok := buckets[facets.Sprint]
		if !ok {
			b = &bucket{stat: SprintStat{Sprint: facets.Sprint}}
			buckets[facets.Sprint] = b
		}
		b.stat.CompletedIssues++
		b.stat.CompletedPoints += facets.Points()
		if is.Iteration != nil && is.Iteration.DueDate != nil {
			if b.stat.EndDate == nil || is.Iteration.DueDate.After(*b.stat.EndDate) {
				b.stat.EndDate = is.Iteration.DueDate
			}
		}
	}

	stats := make([]SprintStat, 0, len(buckets))
	for _, b := range buckets {
		stats = append(stats, b.stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		di, dj := stats[i].EndDate, stats[j].EndDate
		switch {
		case di == nil && dj == nil:
			return stats[i].Sprint > stats[j].Sprint
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return di.After(*dj)
		}
	})

	if len(stats) > e.cfg.Lookback {
		stats = stats[:e.cfg.Lookback]
	}

	result := SprintVelocity{Sprints: stats, Quality: sprintQuality(len(stats), e.cfg.Lookback)}
	if n := len(stats); n > 0 {
		var issuesSum, pointsSum int
		for _, s := range stats {
			issuesSum += s.CompletedIssues
			pointsSum += s.CompletedPoints
		}
		result.ByIssues = float64(issuesSum) / float64(n)
		result.ByPoints = float64(pointsSum) / float64(n)
	}

	cacheSet(e.cache, "sprint", sprintKey(issues), result)
	return result
}

// Member measures one member's hours-per-unit rate over iterations that
// carry both start and due dates. Requires completed work in at least
// MinIterations iterations.
func (e *Engine) Member(issues []tracker.Issue, username string) RateResult {
	if v, ok := cacheGet[RateResult](e.cache, "member", username+"|"+sprintKey(issues)); ok {
		return v
	}
	result := e.memberUncached(issues, username)
	cacheSet(e.cache, "member", username+"|"+sprintKey(issues), result)
	return result
}

func (e *Engine) memberUncached(issues []tracker.Issue, username string) RateResult {
	member := e.roster.FindMember(username)
	if member == nil {
		return Insufficient(QualityNoData)
	}

	type iterWork struct {
		iteration *tracker.Iteration
		units     float64
	}
	work := make(map[int]*iterWork)

	for i := range issues {
		is := &issues[i]
		if !is.IsClosed() || !assignedTo(is, username) {
			continue
		}
		it := is.Iteration
		if it == nil || it.StartDate == nil || it.DueDate == nil {
			continue
		}
		w, ok := work[it.ID]
		if !ok {
			w = &iterWork{iteration: it}
			work[it.ID] = w
		}
		if e.cfg.Metric == config.MetricPoints {
			w.units += float64(tracker.InterpretIssue(is).Points())
		} else {
			w.units++
		}
	}

	if len(work) < e.cfg.MinIterations {
		q := QualityLow
		if len(work) == 0 {
			q = QualityNoData
		}
		return Insufficient(q)
	}

	var totalUnits, totalHours float64
	for _, w := range work {
		it := w.iteration
		days := team.WorkingDays(*it.StartDate, *it.DueDate)
		hours := float64(days) * (member.WeeklyCapacity / 5)
		hours -= team.AbsenceHours(e.absences, username, *it.StartDate, *it.DueDate)
		if hours < 0 {
			hours = 0
		}
		totalUnits += w.units
		totalHours += hours
	}
	if totalUnits == 0 {
		return Insufficient(QualityLow)
	}

	quality := QualityGood
	if len(work) >= e.cfg.Lookback+1 {
		quality = QualityExcellent
	} else if len(work) == e.cfg.MinIterations {
		quality = QualityModerate
	}

	return RateResult{
		OK:      true,
		Quality: quality,
		Rate: &MemberRate{
			Username:       username,
			Metric:         e.cfg.Metric,
			HoursPerUnit:   totalHours / totalUnits,
			Iterations:     len(work),
			TotalUnits:     totalUnits,
			AvailableHours: totalHours,
		},
	}
}

// Team averages the hours-per-unit rate across roster members that
// individually clear the minimum-iterations bar.
func (e *Engine) Team(issues []tracker.Issue) RateResult {
	var rates []float64
	quality := QualityNoData
	for _, m := range e.roster.Members {
		res := e.memberUncached(issues, m.Username)
		if !res.OK {
			continue
		}
		rates = append(rates, res.Rate.HoursPerUnit)
		if rank(res.Quality) > rank(quality) {
			quality = res.Quality
		}
	}
	if len(rates) == 0 {
		return Insufficient(QualityNoData)
	}

	var sum float64
	for _, r := range rates {
		sum += r
	}
	return RateResult{
		OK:      true,
		Quality: quality,
		Rate: &MemberRate{
			Metric:       e.cfg.Metric,
			HoursPerUnit: sum / float64(len(rates)),
			Iterations:   len(rates),
		},
	}
}

// WithFallback resolves a member's rate through the chain: individual
// measurement, then team average, then the static configured value.
func (e *Engine) WithFallback(issues []tracker.Issue, username string) FallbackRate {
	if e.cfg.Mode == config.VelocityDynamic {
		if res := e.Member(issues, username); res.OK {
			return FallbackRate{
				HoursPerUnit: res.Rate.HoursPerUnit,
				Metric:       e.cfg.Metric,
				Provenance:   ProvenanceIndividual,
				Quality:      res.Quality,
			}
		}
		if res := e.Team(issues); res.OK {
			return FallbackRate{
				HoursPerUnit: res.Rate.HoursPerUnit,
				Metric:       e.cfg.Metric,
				Provenance:   ProvenanceTeamAverage,
				Quality:      res.Quality,
			}
		}
	}

	static := e.cfg.StaticHoursPerIssue
	if e.cfg.Metric == config.MetricPoints {
		static = e.cfg.StaticHoursPerPoint
	}
	return FallbackRate{
		HoursPerUnit: static,
		Metric:       e.cfg.Metric,
		Provenance:   ProvenanceStatic,
		Quality:      QualityLow,
	}
}

func sprintQuality(sprints, lookback int) DataQuality {
	switch {
	case sprints == 0:
		return QualityNoData
	case sprints >= lookback:
		return QualityExcellent
	case sprints == 2:
		return QualityModerate
	default:
		return QualityLow
	}
}

func assignedTo(issue *tracker.Issue, username string) bool {
	for _, a := range issue.Assignees {
		if a.Username == username {
			return true
		}
	}
	return false
}

func rank(q DataQuality) int {
	switch q {
	case QualityExcellent:
		return 4
	case QualityGood:
		return 3
	case QualityModerate:
		return 2
	case QualityLow:
		return 1
	default:
		return 0
	}
}
