package tracker

import (
	"regexp"
	"strconv"
	"strings"
)

// Priority is the urgency facet derived from an issue's labels.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var (
	storyPointsPattern = regexp.MustCompile(`(?i)^sp::(\d+)$`)
	sprintLabelPattern = regexp.MustCompile(`(?i)^sprint\s+\d+$`)
)

// Facets are the semantic fields extracted from an issue's free-form
// labels and its iteration reference. Absent facets are explicitly
// absent, never an error.
type Facets struct {
	Priority    Priority
	Blocker     bool
	StoryPoints *int
	Sprint      string
	Initiative  string
	Team        string
}

// HasPoints reports whether a story-point estimate was found.
func (f Facets) HasPoints() bool {
	return f.StoryPoints != nil
}

// Points returns the story-point estimate, zero when absent.
func (f Facets) Points() int {
	if f.StoryPoints == nil {
		return 0
	}
	return *f.StoryPoints
}

// Interpret extracts facets from labels and an optional iteration.
// Matching is case-insensitive and idempotent: duplicate labels yield the
// same bundle. The iteration name, when present, wins over any Sprint
// label; a numeric issue weight backs up a missing sp:: label.
func Interpret(labels []string, iteration *Iteration, weight *int) Facets {
	f := Facets{Priority: PriorityMedium}

	var sawLow bool
	for _, label := range labels {
		lower := strings.ToLower(label)

		if strings.Contains(lower, "block") {
			f.Blocker = true
		}
		if strings.Contains(lower, "critical") || strings.Contains(lower, "urgent") || strings.Contains(lower, "high") {
			f.Priority = PriorityHigh
		} else if strings.Contains(lower, "low") {
			sawLow = true
		}

		if f.StoryPoints == nil {
			if m := storyPointsPattern.FindStringSubmatch(label); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil {
					f.StoryPoints = &n
				}
			}
		}
		if f.Sprint == "" && sprintLabelPattern.MatchString(label) {
			f.Sprint = label
		}
		if f.Initiative == "" {
			if v, ok := scopedValue(lower, label, "initiative::"); ok {
				f.Initiative = v
			}
		}
		if f.Team == "" {
			if v, ok := scopedValue(lower, label, "team::"); ok {
				f.Team = v
			} else if v, ok := scopedValue(lower, label, "squad::"); ok {
				f.Team = v
			}
		}
	}

	// High takes precedence over low.
	if sawLow && f.Priority != PriorityHigh {
		f.Priority = PriorityLow
	}

	if iteration != nil && iteration.Name != "" {
		f.Sprint = iteration.Name
	}
	if f.StoryPoints == nil && weight != nil {
		w := *weight
		f.StoryPoints = &w
	}

	return f
}

// InterpretIssue is shorthand for Interpret over an issue's own fields.
func InterpretIssue(issue *Issue) Facets {
	return Interpret(issue.Labels, issue.Iteration, issue.Weight)
}

// scopedValue extracts the value of a scoped label like "team::backend".
// The prefix match is case-insensitive; the value keeps its original case.
func scopedValue(lower, original, prefix string) (string, bool) {
	if !strings.HasPrefix(lower, prefix) {
		return "", false
	}
	v := original[len(prefix):]
	if v == "" {
		return "", false
	}
	return v, true
}
