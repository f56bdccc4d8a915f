// Package export builds the engine's outward artifacts: CSV files and
// the three-part summary document.
package export

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/timeline"
	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
)

// ToCSV renders rows as RFC 4180 CSV with CRLF line endings. Fields
// containing comma, quote or newline are quoted with embedded quotes
// doubled.
func ToCSV(rows [][]string) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	w.UseCRLF = true
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("write csv: %w", err)
	}
	return sb.String(), nil
}

// ParseCSV parses CSV text back into rows.
func ParseCSV(text string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rows, nil
}

// issueHeader is the issue export's fixed column order.
var issueHeader = []string{
	"iid", "title", "state", "labels", "assignees", "sprint",
	"points", "due_date", "closed_at", "web_url",
}

// IssuesCSV renders issues with a header row.
func IssuesCSV(issues []tracker.Issue) (string, error) {
	rows := [][]string{issueHeader}
	for i := range issues {
		is := &issues[i]
		facets := tracker.InterpretIssue(is)

		points := ""
		if facets.HasPoints() {
			points = strconv.Itoa(facets.Points())
		}
		usernames := make([]string, 0, len(is.Assignees))
		for _, a := range is.Assignees {
			usernames = append(usernames, a.Username)
		}

		rows = append(rows, []string{
			strconv.Itoa(is.IID),
			is.Title,
			string(is.State),
			strings.Join(is.Labels, "|"),
			strings.Join(usernames, "|"),
			facets.Sprint,
			points,
			formatTime(is.DueDate),
			formatTime(is.ClosedAt),
			is.WebURL,
		})
	}
	return ToCSV(rows)
}

// milestoneHeader is the milestone export's fixed column order.
var milestoneHeader = []string{
	"title", "state", "due_date", "total", "closed", "progress_pct", "status",
}

// MilestonesCSV renders timeline entries with a header row.
func MilestonesCSV(entries []timeline.MilestoneEntry) (string, error) {
	rows := [][]string{milestoneHeader}
	for _, e := range entries {
		total, closed := 0, 0
		if e.Milestone.Stats != nil {
			total, closed = e.Milestone.Stats.Total, e.Milestone.Stats.Closed
		}
		rows = append(rows, []string{
			e.Milestone.Title,
			string(e.Milestone.State),
			formatTime(e.Milestone.DueDate),
			strconv.Itoa(total),
			strconv.Itoa(closed),
			strconv.FormatFloat(e.Progress, 'f', 1, 64),
			string(e.Status),
		})
	}
	return ToCSV(rows)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
