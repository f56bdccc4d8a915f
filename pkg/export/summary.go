package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/analytics"
	"github.com/felixgeelhaar/pulse/pkg/domain/timeline"
	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
)

const (
	titleLimit = 50
	sectionCap = 5
	unassigned = "Unassigned"
)

// Risk is an operator-maintained risk-register entry included in the
// summary document.
type Risk struct {
	Title       string `json:"title" yaml:"title"`
	Probability int    `json:"probability" yaml:"probability"`
	Impact      int    `json:"impact" yaml:"impact"`
	Owner       string `json:"owner" yaml:"owner"`
}

// Score is the risk's rank, probability times impact.
func (r Risk) Score() int {
	return r.Probability * r.Impact
}

// SummaryInput carries everything the summary document draws from.
type SummaryInput struct {
	ProjectID  string
	Health     analytics.HealthReport
	Weights    WeightLine
	Milestones []timeline.MilestoneEntry
	Blockers   []tracker.Issue
	Risks      []Risk
	SnapshotAt time.Time
}

// WeightLine pairs the configured weights with the sub-scores they apply
// to, for display alongside the executive section.
type WeightLine struct {
	Completion float64
	Schedule   float64
	Blockers   float64
	Risk       float64
}

// BlockerLine is one blocker row of the risk/blocker section.
type BlockerLine struct {
	IID      int    `json:"iid"`
	Title    string `json:"title"`
	Assignee string `json:"assignee"`
}

// RiskLine is one risk row of the risk/blocker section.
type RiskLine struct {
	Title string `json:"title"`
	Score int    `json:"score"`
	Owner string `json:"owner"`
}

// Summary is the three-part summary document: executive figures, the
// milestone table and the risk/blocker table.
type Summary struct {
	ProjectID  string                    `json:"project_id"`
	SnapshotAt time.Time                 `json:"snapshot_at"`
	Health     analytics.HealthReport    `json:"health"`
	Weights    WeightLine                `json:"weights"`
	Milestones []timeline.MilestoneEntry `json:"milestones"`
	Blockers   []BlockerLine             `json:"blockers"`
	Risks      []RiskLine                `json:"risks"`
}

// BuildSummary assembles the summary document. Blocker and risk rows are
// capped at five each; titles longer than fifty runes are truncated with
// an ellipsis.
func BuildSummary(in SummaryInput) Summary {
	s := Summary{
		ProjectID:  in.ProjectID,
		SnapshotAt: in.SnapshotAt,
		Health:     in.Health,
		Weights:    in.Weights,
		Milestones: in.Milestones,
	}

	for i := range in.Blockers {
		if len(s.Blockers) == sectionCap {
			break
		}
		is := &in.Blockers[i]
		s.Blockers = append(s.Blockers, BlockerLine{
			IID:      is.IID,
			Title:    truncate(is.Title, titleLimit),
			Assignee: assigneeName(is),
		})
	}

	for _, r := range in.Risks {
		if len(s.Risks) == sectionCap {
			break
		}
		s.Risks = append(s.Risks, RiskLine{
			Title: truncate(r.Title, titleLimit),
			Score: r.Score(),
			Owner: ownerName(r.Owner),
		})
	}
	return s
}

// Render formats the summary as plain text, one section per part.
func (s Summary) Render() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Project %s (snapshot %s)\n", s.ProjectID, s.SnapshotAt.UTC().Format("2006-01-02"))
	fmt.Fprintf(&sb, "Health: %d/100 (%s)\n", s.Health.Overall, s.Health.Status)
	st := s.Health.Stats
	fmt.Fprintf(&sb, "Issues: %d total, %d open, %d closed (%d%% complete)\n",
		st.Total, st.Open, st.Closed, st.CompletionRate)
	fmt.Fprintf(&sb, "Blockers: %d, overdue: %d, at risk: %d\n", st.Blockers, st.Overdue, st.AtRisk)
	sub := s.Health.SubScores
	fmt.Fprintf(&sb, "Sub-scores: completion %d (w %.2f), schedule %d (w %.2f), blockers %d (w %.2f), risk %d (w %.2f)\n",
		sub.Completion, s.Weights.Completion,
		sub.Schedule, s.Weights.Schedule,
		sub.Blockers, s.Weights.Blockers,
		sub.Risk, s.Weights.Risk)

	sb.WriteString("\nMilestones\n")
	if len(s.Milestones) == 0 {
		sb.WriteString("  (none in window)\n")
	}
	for _, m := range s.Milestones {
		total, closed := 0, 0
		if m.Milestone.Stats != nil {
			total, closed = m.Milestone.Stats.Total, m.Milestone.Stats.Closed
		}
		fmt.Fprintf(&sb, "  %s: %.1f%% (%d/%d), due %s, %s\n",
			m.Milestone.Title, m.Progress, closed, total,
			formatTime(m.Milestone.DueDate), m.Status)
	}

	sb.WriteString("\nRisks & blockers\n")
	if len(s.Blockers) == 0 && len(s.Risks) == 0 {
		sb.WriteString("  (none)\n")
	}
	for _, b := range s.Blockers {
		fmt.Fprintf(&sb, "  blocker #%d %s: %s\n", b.IID, b.Title, b.Assignee)
	}
	for _, r := range s.Risks {
		fmt.Fprintf(&sb, "  risk %s: score %d, owner %s\n", r.Title, r.Score, r.Owner)
	}
	return sb.String()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}

func assigneeName(is *tracker.Issue) string {
	if len(is.Assignees) == 0 {
		return unassigned
	}
	if name := is.Assignees[0].Name; name != "" {
		return name
	}
	return is.Assignees[0].Username
}

func ownerName(owner string) string {
	if strings.TrimSpace(owner) == "" {
		return unassigned
	}
	return owner
}
