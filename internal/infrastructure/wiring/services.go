package wiring

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/felixgeelhaar/pulse/pkg/application"
)

// AppServices exposes the application layer services wired together with a workspace.
type AppServices struct {
	Workspace *Workspace
	Config    *application.ConfigService
	Snapshot  *application.SnapshotService
	Analytics *application.AnalyticsService
	Velocity  *application.VelocityService
	Capacity  *application.CapacityService
	Epic      *application.EpicService
	Timeline  *application.TimelineService
	Search    *application.SearchService
	Export    *application.ExportService
	Team      *application.TeamService
	Comms     *application.CommsService
	Backup    *application.BackupService
}

// BuildAppServices constructs the service graph for a project root. A
// missing or masked tracker token is not fatal; it is surfaced as a
// non-nil second return while every offline service stays usable.
func BuildAppServices(root string, log zerolog.Logger) (*AppServices, error) {
	workspace := NewWorkspace(root)

	fetcher, err := LoadFetcher(workspace.Store, log)
	var loadErr error
	if err != nil {
		loadErr = fmt.Errorf("tracker credentials unavailable: %w", err)
	}

	// Create services in dependency order
	configSvc := application.NewConfigService(workspace.Store, workspace.Dispatcher)
	snapshotSvc := application.NewSnapshotService(workspace.Store, fetcher, workspace.Dispatcher)
	analyticsSvc := application.NewAnalyticsService(workspace.Store, configSvc)
	velocitySvc := application.NewVelocityService(workspace.Store, configSvc, workspace.Cache)
	velocitySvc.RegisterInvalidation(workspace.Dispatcher)
	timelineSvc := application.NewTimelineService()

	services := &AppServices{
		Workspace: workspace,
		Config:    configSvc,
		Snapshot:  snapshotSvc,
		Analytics: analyticsSvc,
		Velocity:  velocitySvc,
		Capacity:  application.NewCapacityService(workspace.Store, configSvc),
		Epic:      application.NewEpicService(velocitySvc),
		Timeline:  timelineSvc,
		Search:    application.NewSearchService(),
		Export:    application.NewExportService(analyticsSvc, timelineSvc, configSvc),
		Team:      application.NewTeamService(workspace.Store),
		Comms:     application.NewCommsService(workspace.Store),
		Backup:    application.NewBackupService(workspace.Store),
	}

	return services, loadErr
}
