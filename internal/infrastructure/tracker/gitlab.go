// Package tracker adapts external tracker data into engine snapshots:
// a GitLab API fetcher and a normalizing JSON file loader.
package tracker

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
	"github.com/rs/zerolog"
	gitlab "gitlab.com/gitlab-org/api/client-go"
)

// GitLabFetcher pulls a project's issues, milestones and iterations and
// assembles them into a snapshot.
type GitLabFetcher struct {
	client *gitlab.Client
	log    zerolog.Logger
}

// NewGitLabFetcher builds a fetcher against the given instance. An empty
// baseURL targets gitlab.com.
func NewGitLabFetcher(baseURL, token string, log zerolog.Logger) (*GitLabFetcher, error) {
	var client *gitlab.Client
	var err error
	if baseURL == "" {
		client, err = gitlab.NewClient(token)
	} else {
		apiURL := strings.TrimSuffix(baseURL, "/") + "/api/v4"
		client, err = gitlab.NewClient(token, gitlab.WithBaseURL(apiURL))
	}
	if err != nil {
		return nil, fmt.Errorf("creating gitlab client: %w", err)
	}
	return &GitLabFetcher{client: client, log: log}, nil
}

// Fetch assembles a snapshot for the project. Epics are reconstructed
// from issue references and carry their attached issues.
func (f *GitLabFetcher) Fetch(ctx context.Context, projectID string) (*tracker.Snapshot, error) {
	takenAt := time.Now().UTC()

	issues, err := f.fetchIssues(ctx, projectID, takenAt)
	if err != nil {
		return nil, err
	}
	milestones, err := f.fetchMilestones(ctx, projectID)
	if err != nil {
		return nil, err
	}
	iterations, err := f.fetchIterations(ctx, projectID)
	if err != nil {
		return nil, err
	}

	snap := &tracker.Snapshot{
		ProjectID:  projectID,
		TakenAt:    takenAt,
		Issues:     issues,
		Epics:      attachEpics(issues),
		Milestones: milestones,
		Iterations: iterations,
	}
	f.log.Info().
		Str("project", projectID).
		Int("issues", len(snap.Issues)).
		Int("epics", len(snap.Epics)).
		Int("milestones", len(snap.Milestones)).
		Msg("snapshot fetched")
	return snap, nil
}

func (f *GitLabFetcher) fetchIssues(ctx context.Context, projectID string, takenAt time.Time) ([]tracker.Issue, error) {
	var issues []tracker.Issue
	opts := &gitlab.ListProjectIssuesOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100, Page: 1},
	}
	for {
		page, resp, err := f.client.Issues.ListProjectIssues(projectID, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("fetching issues from gitlab: %w", err)
		}
		for _, gi := range page {
			issue, ok := f.mapIssue(gi, takenAt)
			if !ok {
				continue
			}
			issues = append(issues, issue)
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return issues, nil
}

func (f *GitLabFetcher) mapIssue(gi *gitlab.Issue, takenAt time.Time) (tracker.Issue, bool) {
	if gi == nil || gi.IID == 0 || gi.Title == "" {
		f.log.Debug().Msg("skipping malformed issue from tracker")
		return tracker.Issue{}, false
	}

	issue := tracker.Issue{
		ID:          int(gi.ID),
		IID:         int(gi.IID),
		Title:       gi.Title,
		Description: gi.Description,
		State:       mapState(gi.State),
		Labels:      []string(gi.Labels),
		ClosedAt:    gi.ClosedAt,
		UpdatedAt:   gi.UpdatedAt,
		WebURL:      gi.WebURL,
	}
	if gi.Weight > 0 {
		w := int(gi.Weight)
		issue.Weight = &w
	}
	if gi.DueDate != nil {
		d := time.Time(*gi.DueDate)
		issue.DueDate = &d
	}
	for _, a := range gi.Assignees {
		if a == nil {
			continue
		}
		issue.Assignees = append(issue.Assignees, tracker.User{Username: a.Username, Name: a.Name})
	}
	if gi.Author != nil {
		issue.Author = &tracker.User{Username: gi.Author.Username, Name: gi.Author.Name}
	}
	if gi.Milestone != nil {
		issue.Milestone = &tracker.MilestoneRef{ID: int(gi.Milestone.ID), Title: gi.Milestone.Title}
	}
	if gi.Epic != nil {
		issue.Epic = &tracker.EpicRef{ID: int(gi.Epic.ID), Title: gi.Epic.Title}
	}
	if gi.Iteration != nil {
		it := tracker.Iteration{ID: int(gi.Iteration.ID), Name: gi.Iteration.Title}
		if gi.Iteration.StartDate != nil {
			d := time.Time(*gi.Iteration.StartDate)
			it.StartDate = &d
		}
		if gi.Iteration.DueDate != nil {
			d := time.Time(*gi.Iteration.DueDate)
			it.DueDate = &d
		}
		issue.Iteration = &it
	}

	// the engine needs a closed time for every closed issue
	if issue.State.IsClosed() && issue.ClosedAt == nil {
		issue.ClosedAt = &takenAt
	}
	return issue, true
}

func (f *GitLabFetcher) fetchMilestones(ctx context.Context, projectID string) ([]tracker.Milestone, error) {
	raw, _, err := f.client.Milestones.ListMilestones(projectID,
		&gitlab.ListMilestonesOptions{ListOptions: gitlab.ListOptions{PerPage: 100}},
		gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetching milestones from gitlab: %w", err)
	}

	var milestones []tracker.Milestone
	for _, gm := range raw {
		if gm == nil || gm.Title == "" {
			f.log.Debug().Msg("skipping malformed milestone from tracker")
			continue
		}
		m := tracker.Milestone{
			ID:          int(gm.ID),
			Title:       gm.Title,
			Description: gm.Description,
			State:       mapState(gm.State),
		}
		if gm.DueDate != nil {
			d := time.Time(*gm.DueDate)
			m.DueDate = &d
		}
		milestones = append(milestones, m)
	}
	return milestones, nil
}

func (f *GitLabFetcher) fetchIterations(ctx context.Context, projectID string) ([]tracker.Iteration, error) {
	raw, _, err := f.client.ProjectIterations.ListProjectIterations(projectID,
		&gitlab.ListProjectIterationsOptions{ListOptions: gitlab.ListOptions{PerPage: 100}},
		gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetching iterations from gitlab: %w", err)
	}

	var iterations []tracker.Iteration
	for _, gi := range raw {
		if gi == nil || gi.Title == "" {
			continue
		}
		it := tracker.Iteration{ID: int(gi.ID), Name: gi.Title}
		if gi.StartDate != nil {
			d := time.Time(*gi.StartDate)
			it.StartDate = &d
		}
		if gi.DueDate != nil {
			d := time.Time(*gi.DueDate)
			it.DueDate = &d
		}
		iterations = append(iterations, it)
	}
	return iterations, nil
}

// attachEpics reconstructs epics from issue references, attaching each
// issue to its epic. An epic closes when every attached issue is closed.
func attachEpics(issues []tracker.Issue) []tracker.Epic {
	byID := map[int]*tracker.Epic{}
	var order []int
	for i := range issues {
		ref := issues[i].Epic
		if ref == nil {
			continue
		}
		e, ok := byID[ref.ID]
		if !ok {
			e = &tracker.Epic{ID: ref.ID, Title: ref.Title}
			byID[ref.ID] = e
			order = append(order, ref.ID)
		}
		e.Issues = append(e.Issues, issues[i])
	}

	sort.Ints(order)
	epics := make([]tracker.Epic, 0, len(order))
	for _, id := range order {
		e := byID[id]
		e.State = tracker.StateClosed
		for i := range e.Issues {
			if !e.Issues[i].IsClosed() {
				e.State = tracker.StateOpen
				break
			}
		}
		epics = append(epics, *e)
	}
	return epics
}

func mapState(s string) tracker.State {
	if s == "closed" {
		return tracker.StateClosed
	}
	return tracker.StateOpen
}
