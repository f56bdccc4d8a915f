// Package tracker defines the snapshot entity model the analytics engine
// consumes: issues, epics, milestones and iterations as reported by the
// project tracker at a single point in time.
package tracker

import "time"

// State is the lifecycle state of an issue, epic or milestone.
type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// IsClosed reports whether the state counts as closed.
func (s State) IsClosed() bool {
	return s == StateClosed
}

// User identifies an assignee or author.
type User struct {
	Username  string `json:"username" yaml:"username"`
	Name      string `json:"name" yaml:"name"`
	AvatarURL string `json:"avatar_url,omitempty" yaml:"avatar_url,omitempty"`
}

// Iteration is a named, bounded time window (a sprint) against which
// issues are scheduled.
type Iteration struct {
	ID        int        `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	StartDate *time.Time `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty" yaml:"due_date,omitempty"`
}

// MilestoneRef is an issue's reference to its milestone.
type MilestoneRef struct {
	ID    int    `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// EpicRef is an issue's reference to its epic.
type EpicRef struct {
	ID    int    `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// Issue is a single tracker issue as seen in the snapshot.
type Issue struct {
	ID          int           `json:"id" yaml:"id"`
	IID         int           `json:"iid" yaml:"iid"`
	Title       string        `json:"title" yaml:"title"`
	Description string        `json:"description" yaml:"description"`
	State       State         `json:"state" yaml:"state"`
	Labels      []string      `json:"labels" yaml:"labels"`
	Assignees   []User        `json:"assignees,omitempty" yaml:"assignees,omitempty"`
	Author      *User         `json:"author,omitempty" yaml:"author,omitempty"`
	Iteration   *Iteration    `json:"iteration,omitempty" yaml:"iteration,omitempty"`
	Milestone   *MilestoneRef `json:"milestone,omitempty" yaml:"milestone,omitempty"`
	Epic        *EpicRef      `json:"epic,omitempty" yaml:"epic,omitempty"`
	Weight      *int          `json:"weight,omitempty" yaml:"weight,omitempty"`
	DueDate     *time.Time    `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	ClosedAt    *time.Time    `json:"closed_at,omitempty" yaml:"closed_at,omitempty"`
	UpdatedAt   *time.Time    `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	WebURL      string        `json:"web_url,omitempty" yaml:"web_url,omitempty"`
}

// IsClosed reports whether the issue is closed.
func (i *Issue) IsClosed() bool {
	return i.State.IsClosed()
}

// ClosedTime returns when the issue closed. Closed issues without a
// closed-at timestamp are treated as closed at the given snapshot time.
func (i *Issue) ClosedTime(snapshotAt time.Time) (time.Time, bool) {
	if !i.IsClosed() {
		return time.Time{}, false
	}
	if i.ClosedAt != nil {
		return *i.ClosedAt, true
	}
	return snapshotAt, true
}

// Epic groups issues under a larger body of work. Issues are attached by
// the snapshot adapter before the engine runs.
type Epic struct {
	ID          int        `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	State       State      `json:"state" yaml:"state"`
	StartDate   *time.Time `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	WebURL      string     `json:"web_url,omitempty" yaml:"web_url,omitempty"`
	Issues      []Issue    `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// Deadline returns the epic's effective deadline, preferring due date
// over end date.
func (e *Epic) Deadline() *time.Time {
	if e.DueDate != nil {
		return e.DueDate
	}
	return e.EndDate
}

// MilestoneStats is the tracker-reported issue rollup on a milestone.
type MilestoneStats struct {
	Total  int `json:"total" yaml:"total"`
	Closed int `json:"closed" yaml:"closed"`
}

// Milestone is a tracker milestone.
type Milestone struct {
	ID          int             `json:"id" yaml:"id"`
	Title       string          `json:"title" yaml:"title"`
	Description string          `json:"description" yaml:"description"`
	State       State           `json:"state" yaml:"state"`
	DueDate     *time.Time      `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	Stats       *MilestoneStats `json:"stats,omitempty" yaml:"stats,omitempty"`
}

// Progress returns the milestone's completion percentage, zero when the
// tracker reported no stats or an empty milestone.
func (m *Milestone) Progress() float64 {
	if m.Stats == nil || m.Stats.Total == 0 {
		return 0
	}
	return float64(m.Stats.Closed) / float64(m.Stats.Total) * 100
}

// Snapshot is the immutable, point-in-time set of tracker entities handed
// to the engine. TakenAt anchors every "now" comparison in a run.
type Snapshot struct {
	ProjectID  string      `json:"project_id" yaml:"project_id"`
	TakenAt    time.Time   `json:"taken_at" yaml:"taken_at"`
	Issues     []Issue     `json:"issues" yaml:"issues"`
	Epics      []Epic      `json:"epics,omitempty" yaml:"epics,omitempty"`
	Milestones []Milestone `json:"milestones,omitempty" yaml:"milestones,omitempty"`
	Iterations []Iteration `json:"iterations,omitempty" yaml:"iterations,omitempty"`
}

// OpenIssues returns the snapshot's open issues.
func (s *Snapshot) OpenIssues() []Issue {
	var open []Issue
	for _, is := range s.Issues {
		if !is.IsClosed() {
			open = append(open, is)
		}
	}
	return open
}

// CurrentIteration returns the iteration whose window contains the
// snapshot time, or nil when none does.
func (s *Snapshot) CurrentIteration() *Iteration {
	for i := range s.Iterations {
		it := &s.Iterations[i]
		if it.StartDate == nil || it.DueDate == nil {
			continue
		}
		if !s.TakenAt.Before(*it.StartDate) && !s.TakenAt.After(*it.DueDate) {
			return it
		}
	}
	return nil
}
