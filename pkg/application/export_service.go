package application

import (
	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
	"github.com/felixgeelhaar/pulse/pkg/export"
)

// ExportService renders snapshot analyses as CSV and summary artifacts.
type ExportService struct {
	analytics *AnalyticsService
	timeline  *TimelineService
	config    *ConfigService
}

func NewExportService(analytics *AnalyticsService, timeline *TimelineService, config *ConfigService) *ExportService {
	return &ExportService{analytics: analytics, timeline: timeline, config: config}
}

// IssuesCSV renders the snapshot's issues.
func (s *ExportService) IssuesCSV(snap *tracker.Snapshot) (string, error) {
	return export.IssuesCSV(snap.Issues)
}

// MilestonesCSV renders the milestone timeline.
func (s *ExportService) MilestonesCSV(snap *tracker.Snapshot, windowDays int) (string, error) {
	return export.MilestonesCSV(s.timeline.Milestones(snap, windowDays))
}

// Summary assembles the three-part summary document: executive health
// figures, milestone table and risk/blocker table.
func (s *ExportService) Summary(snap *tracker.Snapshot, risks []export.Risk) (export.Summary, error) {
	health, err := s.analytics.Health(snap)
	if err != nil {
		return export.Summary{}, err
	}
	cfg, err := s.config.Load()
	if err != nil {
		return export.Summary{}, err
	}

	var blockers []tracker.Issue
	for i := range snap.Issues {
		is := &snap.Issues[i]
		if !is.IsClosed() && tracker.IsBlocked(is) {
			blockers = append(blockers, *is)
		}
	}

	return export.BuildSummary(export.SummaryInput{
		ProjectID: snap.ProjectID,
		Health:    health,
		Weights: export.WeightLine{
			Completion: cfg.Weights.Completion,
			Schedule:   cfg.Weights.Schedule,
			Blockers:   cfg.Weights.Blockers,
			Risk:       cfg.Weights.Risk,
		},
		Milestones: s.timeline.Milestones(snap, 0),
		Blockers:   blockers,
		Risks:      risks,
		SnapshotAt: snap.TakenAt,
	}), nil
}
