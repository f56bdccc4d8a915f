// Package config defines the engine configuration groups: health
// weighting, velocity mode and capacity conversion. Validation lives at
// this boundary; components downstream assume a valid configuration.
package config

import (
	"fmt"
	"math"
)

// Weight-sum tolerance per the store contract.
const weightTolerance = 0.01

// HealthWeights distributes the composite health score across its four
// dimensions. Fractions must sum to 1.0 within tolerance.
type HealthWeights struct {
	Completion float64 `json:"completion" yaml:"completion"`
	Schedule   float64 `json:"schedule" yaml:"schedule"`
	Blockers   float64 `json:"blockers" yaml:"blockers"`
	Risk       float64 `json:"risk" yaml:"risk"`
}

// Sum returns the total of all weight fractions.
func (w HealthWeights) Sum() float64 {
	return w.Completion + w.Schedule + w.Blockers + w.Risk
}

// Validate checks the sum invariant and non-negativity.
func (w HealthWeights) Validate() error {
	for name, v := range map[string]float64{
		"completion": w.Completion,
		"schedule":   w.Schedule,
		"blockers":   w.Blockers,
		"risk":       w.Risk,
	} {
		if v < 0 {
			return fmt.Errorf("health weight %s is negative: %v", name, v)
		}
	}
	if math.Abs(w.Sum()-1.0) > weightTolerance {
		return fmt.Errorf("health weights must sum to 1.0 (±%.2f), got %.2f", weightTolerance, w.Sum())
	}
	return nil
}

// HealthAmplifiers scale how hard overdue, blocked and at-risk ratios
// pull the schedule, blocker and risk sub-scores down. Each lives in
// [100, 500].
type HealthAmplifiers struct {
	Schedule int `json:"schedule" yaml:"schedule"`
	Blockers int `json:"blockers" yaml:"blockers"`
	Risk     int `json:"risk" yaml:"risk"`
}

// Validate checks the amplifier range invariant.
func (a HealthAmplifiers) Validate() error {
	for name, v := range map[string]int{
		"schedule": a.Schedule,
		"blockers": a.Blockers,
		"risk":     a.Risk,
	} {
		if v < 100 || v > 500 {
			return fmt.Errorf("health amplifier %s must be in [100, 500], got %d", name, v)
		}
	}
	return nil
}

// HealthThresholds band the overall score: green at or above Good, amber
// at or above Warning, red below.
type HealthThresholds struct {
	Good    int `json:"good" yaml:"good"`
	Warning int `json:"warning" yaml:"warning"`
}

// Validate checks warning < good <= 100 and warning >= 30.
func (t HealthThresholds) Validate() error {
	if t.Warning >= t.Good {
		return fmt.Errorf("warning threshold (%d) must be below good threshold (%d)", t.Warning, t.Good)
	}
	if t.Good > 100 {
		return fmt.Errorf("good threshold must not exceed 100, got %d", t.Good)
	}
	if t.Warning < 30 {
		return fmt.Errorf("warning threshold must be at least 30, got %d", t.Warning)
	}
	return nil
}

// TimeframeMode selects which issues the health scorer sees.
type TimeframeMode string

const (
	// TimeframeAll scores every issue in the snapshot.
	TimeframeAll TimeframeMode = "all"
	// TimeframeIteration restricts scoring to the current iteration.
	TimeframeIteration TimeframeMode = "iteration"
	// TimeframeDays restricts scoring to recent activity plus open issues.
	TimeframeDays TimeframeMode = "days"
)

// Timeframe is the health scorer's issue-set restriction.
type Timeframe struct {
	Mode TimeframeMode `json:"mode" yaml:"mode"`
	Days int           `json:"days,omitempty" yaml:"days,omitempty"`
}

// Validate checks the mode and, for day-bounded timeframes, the range.
func (tf Timeframe) Validate() error {
	switch tf.Mode {
	case TimeframeAll, TimeframeIteration:
		return nil
	case TimeframeDays:
		if tf.Days < 7 || tf.Days > 365 {
			return fmt.Errorf("timeframe days must be in [7, 365], got %d", tf.Days)
		}
		return nil
	default:
		return fmt.Errorf("unknown timeframe mode: %q", tf.Mode)
	}
}

// VelocityMode selects between measured and operator-declared velocity.
type VelocityMode string

const (
	VelocityDynamic VelocityMode = "dynamic"
	VelocityStatic  VelocityMode = "static"
)

// VelocityMetric selects the unit velocity is measured in.
type VelocityMetric string

const (
	MetricPoints VelocityMetric = "points"
	MetricIssues VelocityMetric = "issues"
)

// VelocityConfig parameterizes the velocity engine.
type VelocityConfig struct {
	Mode                VelocityMode   `json:"mode" yaml:"mode"`
	Metric              VelocityMetric `json:"metric" yaml:"metric"`
	Lookback            int            `json:"lookback" yaml:"lookback"`
	MinIterations       int            `json:"min_iterations" yaml:"min_iterations"`
	StaticHoursPerPoint float64        `json:"static_hours_per_point" yaml:"static_hours_per_point"`
	StaticHoursPerIssue float64        `json:"static_hours_per_issue" yaml:"static_hours_per_issue"`
}

// Validate checks mode, metric and window sanity.
func (v VelocityConfig) Validate() error {
	if v.Mode != VelocityDynamic && v.Mode != VelocityStatic {
		return fmt.Errorf("unknown velocity mode: %q", v.Mode)
	}
	if v.Metric != MetricPoints && v.Metric != MetricIssues {
		return fmt.Errorf("unknown velocity metric: %q", v.Metric)
	}
	if v.Lookback < 1 {
		return fmt.Errorf("velocity lookback must be positive, got %d", v.Lookback)
	}
	if v.MinIterations < 1 {
		return fmt.Errorf("velocity min iterations must be positive, got %d", v.MinIterations)
	}
	return nil
}

// CapacitySettings convert estimates to hours for the capacity planner.
type CapacitySettings struct {
	HoursPerPoint      float64 `json:"hours_per_point" yaml:"hours_per_point"`
	HoursPerIssue      float64 `json:"hours_per_issue" yaml:"hours_per_issue"`
	WorkingDaysPerWeek int     `json:"working_days_per_week" yaml:"working_days_per_week"`
}

// Validate checks conversion sanity.
func (c CapacitySettings) Validate() error {
	if c.HoursPerPoint <= 0 {
		return fmt.Errorf("hours per point must be positive, got %v", c.HoursPerPoint)
	}
	if c.HoursPerIssue <= 0 {
		return fmt.Errorf("hours per issue must be positive, got %v", c.HoursPerIssue)
	}
	if c.WorkingDaysPerWeek < 1 || c.WorkingDaysPerWeek > 7 {
		return fmt.Errorf("working days per week must be in [1, 7], got %d", c.WorkingDaysPerWeek)
	}
	return nil
}

// Config is the full engine configuration.
type Config struct {
	Weights    HealthWeights    `json:"weights" yaml:"weights"`
	Amplifiers HealthAmplifiers `json:"amplifiers" yaml:"amplifiers"`
	Thresholds HealthThresholds `json:"thresholds" yaml:"thresholds"`
	Timeframe  Timeframe        `json:"timeframe" yaml:"timeframe"`
	Velocity   VelocityConfig   `json:"velocity" yaml:"velocity"`
	Capacity   CapacitySettings `json:"capacity" yaml:"capacity"`
}

// Validate checks every group; the first failing predicate is returned.
func (c Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if err := c.Amplifiers.Validate(); err != nil {
		return err
	}
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	if err := c.Timeframe.Validate(); err != nil {
		return err
	}
	if err := c.Velocity.Validate(); err != nil {
		return err
	}
	return c.Capacity.Validate()
}

// Default returns the engine defaults.
func Default() Config {
	return Config{
		Weights: HealthWeights{
			Completion: 0.30,
			Schedule:   0.25,
			Blockers:   0.25,
			Risk:       0.20,
		},
		Amplifiers: HealthAmplifiers{
			Schedule: 200,
			Blockers: 300,
			Risk:     200,
		},
		Thresholds: HealthThresholds{Good: 80, Warning: 60},
		Timeframe:  Timeframe{Mode: TimeframeIteration},
		Velocity: VelocityConfig{
			Mode:                VelocityDynamic,
			Metric:              MetricPoints,
			Lookback:            3,
			MinIterations:       2,
			StaticHoursPerPoint: 4,
			StaticHoursPerIssue: 6,
		},
		Capacity: CapacitySettings{
			HoursPerPoint:      4,
			HoursPerIssue:      6,
			WorkingDaysPerWeek: 5,
		},
	}
}
