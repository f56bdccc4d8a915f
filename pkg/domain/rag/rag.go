// Package rag classifies epics red, amber or green, explains the verdict
// through contributing factors, derives recommended actions and projects
// completion from current velocity.
package rag

import (
	"fmt"
	"math"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
	"github.com/felixgeelhaar/pulse/pkg/domain/velocity"
)

// Status is the red/amber/green severity band.
type Status string

const (
	StatusRed   Status = "red"
	StatusAmber Status = "amber"
	StatusGreen Status = "green"
)

// Severity ranks statuses for comparison; higher is worse.
func (s Status) Severity() int {
	switch s {
	case StatusRed:
		return 2
	case StatusAmber:
		return 1
	default:
		return 0
	}
}

// FactorTag marks how serious a contributing factor is.
type FactorTag string

const (
	FactorCritical FactorTag = "critical"
	FactorWarning  FactorTag = "warning"
	FactorInfo     FactorTag = "info"
)

// Factor is one contributing reason behind a verdict.
type Factor struct {
	Tag    FactorTag `json:"tag"`
	Reason string    `json:"reason"`
}

// Effort sizes a recommended action.
type Effort string

const (
	EffortSmall  Effort = "small"
	EffortMedium Effort = "medium"
	EffortLarge  Effort = "large"
)

// ActionPriority orders recommended actions.
type ActionPriority string

const (
	PriorityLow      ActionPriority = "low"
	PriorityMedium   ActionPriority = "medium"
	PriorityHigh     ActionPriority = "high"
	PriorityCritical ActionPriority = "critical"
)

// Action is a mechanically derived recommendation.
type Action struct {
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	EstimatedEffort Effort         `json:"estimated_effort"`
	Impact          string         `json:"impact"`
	Priority        ActionPriority `json:"priority"`
}

// Metrics are the figures the verdict rests on.
type Metrics struct {
	TotalIssues         int     `json:"total_issues"`
	ClosedIssues        int     `json:"closed_issues"`
	ProgressPercent     float64 `json:"progress_percent"`
	CurrentVelocity     float64 `json:"current_velocity"` // closed issues per iteration
	RemainingIssues     int     `json:"remaining_issues"`
	RemainingIterations *int    `json:"remaining_iterations,omitempty"`
	RequiredVelocity    float64 `json:"required_velocity"`
}

// Projection estimates completion from current velocity.
type Projection struct {
	IterationsNeeded int       `json:"iterations_needed"`
	WeeksNeeded      int       `json:"weeks_needed"`
	Date             time.Time `json:"date"`
	OnTime           bool      `json:"on_time"`
	DaysVariance     int       `json:"days_variance"`
}

// Result is the full verdict for one epic.
type Result struct {
	EpicID      int                  `json:"epic_id"`
	EpicTitle   string               `json:"epic_title"`
	Status      Status               `json:"status"`
	Reason      string               `json:"reason"`
	Metrics     Metrics              `json:"metrics"`
	Factors     []Factor             `json:"factors,omitempty"`
	Actions     []Action             `json:"actions,omitempty"`
	Projection  *Projection          `json:"projection,omitempty"`
	DataQuality velocity.DataQuality `json:"data_quality"`
}

// defaultIterationWeeks is assumed when the calendar gives no cadence.
const defaultIterationWeeks = 2

// Analyzer classifies epics against the iteration calendar using the
// velocity engine for the epic's own throughput.
type Analyzer struct {
	vel *velocity.Engine
}

// NewAnalyzer builds an analyzer over a velocity engine.
func NewAnalyzer(vel *velocity.Engine) *Analyzer {
	return &Analyzer{vel: vel}
}

// Analyze produces the verdict for one epic as of now.
func (a *Analyzer) Analyze(epic *tracker.Epic, calendar []tracker.Iteration, now time.Time) Result {
	res := Result{EpicID: epic.ID, EpicTitle: epic.Title, Status: StatusGreen, DataQuality: velocity.QualityNoData}

	if len(epic.Issues) == 0 {
		res.Reason = "no issues attached"
		res.Factors = append(res.Factors, Factor{Tag: FactorInfo, Reason: "no issues attached"})
		return res
	}

	res.Metrics = a.metrics(epic, calendar, now)
	sprintVel := a.vel.Sprint(epic.Issues, now)
	res.DataQuality = sprintVel.Quality

	rules := evaluateRules(epic, res.Metrics, now)
	for _, r := range rules {
		tag := FactorWarning
		if r.status == StatusRed {
			tag = FactorCritical
		}
		res.Factors = append(res.Factors, Factor{Tag: tag, Reason: r.reason})
		if r.status.Severity() > res.Status.Severity() {
			res.Status = r.status
		}
	}
	if len(rules) > 0 {
		res.Reason = rules[0].reason
	} else {
		res.Reason = "on track"
	}

	res.Actions = deriveActions(epic, res.Metrics, now)

	if res.Metrics.CurrentVelocity > 0 {
		res.Projection = project(epic, res.Metrics, now)
	}
	return res
}

func (a *Analyzer) metrics(epic *tracker.Epic, calendar []tracker.Iteration, now time.Time) Metrics {
	var m Metrics
	m.TotalIssues = len(epic.Issues)
	for i := range epic.Issues {
		if epic.Issues[i].IsClosed() {
			m.ClosedIssues++
		}
	}
	if m.TotalIssues > 0 {
		m.ProgressPercent = float64(m.ClosedIssues) / float64(m.TotalIssues) * 100
	}
	m.RemainingIssues = m.TotalIssues - m.ClosedIssues
	m.CurrentVelocity = a.vel.Sprint(epic.Issues, now).ByIssues

	if deadline := epic.Deadline(); deadline != nil {
		count := 0
		for i := range calendar {
			it := &calendar[i]
			if it.StartDate == nil || it.DueDate == nil {
				continue
			}
			if it.DueDate.After(now) && !it.StartDate.After(*deadline) {
				count++
			}
		}
		m.RemainingIterations = &count
	}

	divisor := 1
	if m.RemainingIterations != nil && *m.RemainingIterations > 1 {
		divisor = *m.RemainingIterations
	}
	m.RequiredVelocity = float64(m.RemainingIssues) / float64(divisor)
	return m
}

type ruleHit struct {
	status Status
	reason string
}

// evaluateRules applies the ordered rule set. Every triggered rule is
// returned so factors can explain the verdict; the caller keeps the
// highest severity.
func evaluateRules(epic *tracker.Epic, m Metrics, now time.Time) []ruleHit {
	var hits []ruleHit
	deadline := epic.Deadline()
	var daysToDue float64
	if deadline != nil {
		daysToDue = deadline.Sub(now).Hours() / 24
	}

	if deadline != nil && deadline.Before(now) && m.RemainingIssues > 0 {
		overdue := int(math.Ceil(now.Sub(*deadline).Hours() / 24))
		hits = append(hits, ruleHit{StatusRed, fmt.Sprintf("%d days overdue with %d open issues", overdue, m.RemainingIssues)})
	}
	if m.RequiredVelocity > m.CurrentVelocity*1.5 {
		hits = append(hits, ruleHit{StatusRed, fmt.Sprintf("required velocity %.1f far exceeds current %.1f", m.RequiredVelocity, m.CurrentVelocity)})
	}
	if deadline != nil && m.ProgressPercent < 30 && daysToDue >= 0 && daysToDue < 14 {
		hits = append(hits, ruleHit{StatusRed, fmt.Sprintf("only %.0f%% complete with %.0f days to due date", m.ProgressPercent, daysToDue)})
	}
	if blocked := countBlocked(epic.Issues); blocked > 0 {
		hits = append(hits, ruleHit{StatusAmber, fmt.Sprintf("%d blocked issues", blocked)})
	}
	if deadline != nil && m.ProgressPercent >= 30 && m.ProgressPercent < 80 && daysToDue >= 0 && daysToDue <= 14 {
		hits = append(hits, ruleHit{StatusAmber, fmt.Sprintf("%.0f%% complete with %.0f days to due date", m.ProgressPercent, daysToDue)})
	}
	if m.RequiredVelocity > m.CurrentVelocity && m.RequiredVelocity <= m.CurrentVelocity*1.5 {
		hits = append(hits, ruleHit{StatusAmber, fmt.Sprintf("required velocity %.1f exceeds current %.1f", m.RequiredVelocity, m.CurrentVelocity)})
	}
	return hits
}

func deriveActions(epic *tracker.Epic, m Metrics, now time.Time) []Action {
	var actions []Action
	if countBlocked(epic.Issues) > 0 {
		actions = append(actions, Action{
			Title:           "Resolve blocking dependencies",
			Description:     "Unblock the epic's blocked issues before scheduling new work.",
			EstimatedEffort: EffortMedium,
			Impact:          "Restores flow on the epic's critical path.",
			Priority:        PriorityHigh,
		})
	}
	if m.RequiredVelocity > m.CurrentVelocity*1.5 {
		actions = append(actions, Action{
			Title:           "Reduce scope or add capacity",
			Description:     "Required throughput is more than 1.5x the measured throughput.",
			EstimatedEffort: EffortLarge,
			Impact:          "Brings required velocity back within reach.",
			Priority:        PriorityCritical,
		})
	}
	if deadline := epic.Deadline(); deadline != nil && deadline.Before(now) && m.RemainingIssues > 0 {
		actions = append(actions, Action{
			Title:           "Replan due date",
			Description:     "The epic is past due with open issues; agree a realistic new date.",
			EstimatedEffort: EffortSmall,
			Impact:          "Restores a credible plan for stakeholders.",
			Priority:        PriorityCritical,
		})
	}
	return actions
}

func project(epic *tracker.Epic, m Metrics, now time.Time) *Projection {
	p := &Projection{
		IterationsNeeded: int(math.Ceil(float64(m.RemainingIssues) / m.CurrentVelocity)),
	}
	p.WeeksNeeded = p.IterationsNeeded * defaultIterationWeeks
	p.Date = now.AddDate(0, 0, p.WeeksNeeded*7)

	if deadline := epic.Deadline(); deadline != nil {
		p.OnTime = !p.Date.After(*deadline)
		p.DaysVariance = int(math.Round(p.Date.Sub(*deadline).Hours() / 24))
	} else {
		p.OnTime = true
	}
	return p
}

func countBlocked(issues []tracker.Issue) int {
	n := 0
	for i := range issues {
		if tracker.IsBlocked(&issues[i]) {
			n++
		}
	}
	return n
}
