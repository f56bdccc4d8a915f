package application

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/analytics"
	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
	"github.com/felixgeelhaar/pulse/pkg/storage"
)

// AnalyticsService runs the health and backlog analyses against a
// snapshot.
type AnalyticsService struct {
	store  *storage.FilesystemStore
	config *ConfigService
}

func NewAnalyticsService(store *storage.FilesystemStore, config *ConfigService) *AnalyticsService {
	return &AnalyticsService{store: store, config: config}
}

// Health scores the snapshot under the configured timeframe.
func (s *AnalyticsService) Health(snap *tracker.Snapshot) (analytics.HealthReport, error) {
	cfg, err := s.config.Load()
	if err != nil {
		return analytics.HealthReport{}, err
	}
	return analytics.Health(snap.Issues, cfg, snap.CurrentIteration(), snap.TakenAt), nil
}

// Backlog measures backlog refinement quality, appends today's
// measurement to the scope's rolling history and derives the trend.
func (s *AnalyticsService) Backlog(scope storage.Scope, snap *tracker.Snapshot) (analytics.BacklogReport, error) {
	report := analytics.BacklogHealth(snap.OpenIssues())

	history, err := s.store.LoadBacklogHistory(scope)
	if err != nil {
		return analytics.BacklogReport{}, fmt.Errorf("failed to load backlog history: %w", err)
	}

	history = analytics.RecordBacklogMeasurement(history, report.Score, time.Now())
	if err := s.store.SaveBacklogHistory(scope, history); err != nil {
		return analytics.BacklogReport{}, fmt.Errorf("failed to save backlog history: %w", err)
	}

	report.Trend = analytics.BacklogTrendOf(history)
	return report, nil
}
