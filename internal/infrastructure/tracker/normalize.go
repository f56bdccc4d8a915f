package tracker

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
	"github.com/rs/zerolog"
)

// rawSnapshot is the lenient wire form of a snapshot file. Field names
// vary between tracker exports; normalization settles them.
type rawSnapshot struct {
	ProjectID  string         `json:"project_id"`
	TakenAt    *string        `json:"taken_at"`
	Issues     []rawIssue     `json:"issues"`
	Epics      []rawEpic      `json:"epics"`
	Milestones []rawMilestone `json:"milestones"`
	Iterations []rawIteration `json:"iterations"`
}

type rawIssue struct {
	ID          int                   `json:"id"`
	IID         int                   `json:"iid"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	State       string                `json:"state"`
	Labels      []string              `json:"labels"`
	Assignees   []tracker.User        `json:"assignees"`
	Author      *tracker.User         `json:"author"`
	Iteration   json.RawMessage       `json:"iteration"`
	Milestone   *tracker.MilestoneRef `json:"milestone"`
	Epic        *tracker.EpicRef      `json:"epic"`
	Weight      *int                  `json:"weight"`
	DueDate     *string               `json:"due_date"`
	EndDate     *string               `json:"end_date"`
	ClosedAt    *string               `json:"closed_at"`
	UpdatedAt   *string               `json:"updated_at"`
	WebURL      string                `json:"web_url"`
}

type rawEpic struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	State       string  `json:"state"`
	StartDate   *string `json:"start_date"`
	DueDate     *string `json:"due_date"`
	EndDate     *string `json:"end_date"`
	WebURL      string  `json:"web_url"`
}

type rawMilestone struct {
	ID          int                     `json:"id"`
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	State       string                  `json:"state"`
	DueDate     *string                 `json:"due_date"`
	EndDate     *string                 `json:"end_date"`
	Stats       *tracker.MilestoneStats `json:"stats"`
}

type rawIteration struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Title     string  `json:"title"`
	StartDate *string `json:"start_date"`
	DueDate   *string `json:"due_date"`
	EndDate   *string `json:"end_date"`
}

// LoadFile reads and normalizes a snapshot file.
func LoadFile(path string, log zerolog.Logger) (*tracker.Snapshot, error) {
	// #nosec G304 -- snapshot path is operator-supplied
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	return Normalize(data, log)
}

// Normalize decodes raw snapshot JSON into the engine's entity model.
// Malformed individual entities are skipped and logged, never fatal;
// the deadline field prefers due_date over end_date; iteration
// references may be a bare name or an object; closed issues without a
// closed-at timestamp are stamped with the snapshot time.
func Normalize(data []byte, log zerolog.Logger) (*tracker.Snapshot, error) {
	var raw rawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	snap := &tracker.Snapshot{ProjectID: raw.ProjectID, TakenAt: time.Now().UTC()}
	if t := parseDate(raw.TakenAt); t != nil {
		snap.TakenAt = *t
	}

	for _, ri := range raw.Issues {
		issue, ok := normalizeIssue(ri, snap.TakenAt, log)
		if !ok {
			continue
		}
		snap.Issues = append(snap.Issues, issue)
	}

	for _, rm := range raw.Milestones {
		if rm.Title == "" {
			log.Debug().Int("id", rm.ID).Msg("skipping milestone without title")
			continue
		}
		snap.Milestones = append(snap.Milestones, tracker.Milestone{
			ID:          rm.ID,
			Title:       rm.Title,
			Description: rm.Description,
			State:       mapState(rm.State),
			DueDate:     deadline(rm.DueDate, rm.EndDate),
			Stats:       rm.Stats,
		})
	}

	for _, ri := range raw.Iterations {
		name := ri.Name
		if name == "" {
			name = ri.Title
		}
		if name == "" {
			log.Debug().Int("id", ri.ID).Msg("skipping iteration without name")
			continue
		}
		snap.Iterations = append(snap.Iterations, tracker.Iteration{
			ID:        ri.ID,
			Name:      name,
			StartDate: parseDate(ri.StartDate),
			DueDate:   deadline(ri.DueDate, ri.EndDate),
		})
	}

	snap.Epics = normalizeEpics(raw.Epics, snap.Issues, log)
	return snap, nil
}

func normalizeIssue(ri rawIssue, takenAt time.Time, log zerolog.Logger) (tracker.Issue, bool) {
	if ri.IID == 0 || ri.Title == "" {
		log.Debug().Int("id", ri.ID).Msg("skipping issue without iid or title")
		return tracker.Issue{}, false
	}

	issue := tracker.Issue{
		ID:          ri.ID,
		IID:         ri.IID,
		Title:       ri.Title,
		Description: ri.Description,
		State:       mapState(ri.State),
		Labels:      ri.Labels,
		Assignees:   ri.Assignees,
		Author:      ri.Author,
		Milestone:   ri.Milestone,
		Epic:        ri.Epic,
		Weight:      ri.Weight,
		DueDate:     deadline(ri.DueDate, ri.EndDate),
		ClosedAt:    parseDate(ri.ClosedAt),
		UpdatedAt:   parseDate(ri.UpdatedAt),
		WebURL:      ri.WebURL,
	}
	issue.Iteration = normalizeIteration(ri.Iteration)

	if issue.State.IsClosed() && issue.ClosedAt == nil {
		issue.ClosedAt = &takenAt
	}
	return issue, true
}

// normalizeIteration accepts either a bare iteration name or an object.
func normalizeIteration(raw json.RawMessage) *tracker.Iteration {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var name string
	if json.Unmarshal(raw, &name) == nil {
		if name == "" {
			return nil
		}
		return &tracker.Iteration{Name: name}
	}

	var ri rawIteration
	if err := json.Unmarshal(raw, &ri); err != nil {
		return nil
	}
	n := ri.Name
	if n == "" {
		n = ri.Title
	}
	if n == "" {
		return nil
	}
	return &tracker.Iteration{
		ID:        ri.ID,
		Name:      n,
		StartDate: parseDate(ri.StartDate),
		DueDate:   deadline(ri.DueDate, ri.EndDate),
	}
}

// normalizeEpics merges declared epics with the ones referenced by
// issues and attaches each issue to its epic.
func normalizeEpics(declared []rawEpic, issues []tracker.Issue, log zerolog.Logger) []tracker.Epic {
	byID := map[int]*tracker.Epic{}
	var order []int

	for _, re := range declared {
		if re.Title == "" {
			log.Debug().Int("id", re.ID).Msg("skipping epic without title")
			continue
		}
		byID[re.ID] = &tracker.Epic{
			ID:          re.ID,
			Title:       re.Title,
			Description: re.Description,
			State:       mapState(re.State),
			StartDate:   parseDate(re.StartDate),
			DueDate:     parseDate(re.DueDate),
			EndDate:     parseDate(re.EndDate),
			WebURL:      re.WebURL,
		}
		order = append(order, re.ID)
	}

	for i := range issues {
		ref := issues[i].Epic
		if ref == nil {
			continue
		}
		e, ok := byID[ref.ID]
		if !ok {
			e = &tracker.Epic{ID: ref.ID, Title: ref.Title, State: tracker.StateOpen}
			byID[ref.ID] = e
			order = append(order, ref.ID)
		}
		e.Issues = append(e.Issues, issues[i])
	}

	epics := make([]tracker.Epic, 0, len(order))
	for _, id := range order {
		epics = append(epics, *byID[id])
	}
	return epics
}

// deadline prefers due_date, falling back to end_date.
func deadline(due, end *string) *time.Time {
	if t := parseDate(due); t != nil {
		return t
	}
	return parseDate(end)
}

// parseDate accepts RFC 3339 timestamps and bare dates.
func parseDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, *s); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", *s); err == nil {
		return &t
	}
	return nil
}
