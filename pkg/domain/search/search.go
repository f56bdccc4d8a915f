// Package search provides text search and compound filtering over
// snapshot entities.
package search

import (
	"strconv"
	"strings"

	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
)

// Issues returns the issues whose searchable fields contain the query,
// case-insensitively. An empty or whitespace-only query is the identity.
func Issues(issues []tracker.Issue, query string) []tracker.Issue {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return issues
	}

	var matched []tracker.Issue
	for i := range issues {
		if issueMatches(&issues[i], q) {
			matched = append(matched, issues[i])
		}
	}
	return matched
}

// Epics searches epic titles and descriptions.
func Epics(epics []tracker.Epic, query string) []tracker.Epic {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return epics
	}
	var matched []tracker.Epic
	for _, e := range epics {
		if contains(q, e.Title, e.Description, strconv.Itoa(e.ID)) {
			matched = append(matched, e)
		}
	}
	return matched
}

// Milestones searches milestone titles and descriptions.
func Milestones(milestones []tracker.Milestone, query string) []tracker.Milestone {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return milestones
	}
	var matched []tracker.Milestone
	for _, m := range milestones {
		if contains(q, m.Title, m.Description, strconv.Itoa(m.ID)) {
			matched = append(matched, m)
		}
	}
	return matched
}

func issueMatches(is *tracker.Issue, q string) bool {
	fields := []string{
		is.Title,
		is.Description,
		strconv.Itoa(is.ID),
		strconv.Itoa(is.IID),
	}
	fields = append(fields, is.Labels...)
	for _, a := range is.Assignees {
		fields = append(fields, a.Name, a.Username)
	}
	if is.Author != nil {
		fields = append(fields, is.Author.Name, is.Author.Username)
	}
	if is.Epic != nil {
		fields = append(fields, is.Epic.Title)
	}
	if is.Milestone != nil {
		fields = append(fields, is.Milestone.Title)
	}
	return contains(q, fields...)
}

func contains(q string, fields ...string) bool {
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
