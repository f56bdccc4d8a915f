package application

import (
	"fmt"

	"github.com/felixgeelhaar/pulse/pkg/domain/capacity"
	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
	"github.com/felixgeelhaar/pulse/pkg/storage"
)

// CapacityService plans sprint capacity against the scope's roster,
// absence calendar and overrides.
type CapacityService struct {
	store  *storage.FilesystemStore
	config *ConfigService
}

func NewCapacityService(store *storage.FilesystemStore, config *ConfigService) *CapacityService {
	return &CapacityService{store: store, config: config}
}

// Plan builds the capacity plan for the named sprint, defaulting to the
// snapshot's current iteration.
func (s *CapacityService) Plan(scope storage.Scope, snap *tracker.Snapshot, sprintName string) (capacity.Plan, error) {
	sprint, err := resolveSprint(snap, sprintName)
	if err != nil {
		return capacity.Plan{}, err
	}

	cfg, err := s.config.Load()
	if err != nil {
		return capacity.Plan{}, err
	}
	roster, err := s.store.LoadTeam(scope)
	if err != nil {
		return capacity.Plan{}, fmt.Errorf("failed to load team: %w", err)
	}
	if len(roster.Members) == 0 {
		return capacity.Plan{}, fmt.Errorf("no team configured for scope, add members first")
	}
	absences, err := s.store.LoadAbsences(scope)
	if err != nil {
		return capacity.Plan{}, fmt.Errorf("failed to load absences: %w", err)
	}
	overrides, err := s.store.LoadOverrides(scope)
	if err != nil {
		return capacity.Plan{}, fmt.Errorf("failed to load overrides: %w", err)
	}

	return capacity.BuildPlan(snap.Issues, sprint, roster, absences, overrides, cfg.Capacity), nil
}

func resolveSprint(snap *tracker.Snapshot, name string) (tracker.Iteration, error) {
	if name == "" {
		if current := snap.CurrentIteration(); current != nil {
			return *current, nil
		}
		return tracker.Iteration{}, fmt.Errorf("no current iteration in snapshot, name one explicitly")
	}
	for _, it := range snap.Iterations {
		if it.Name == name {
			return it, nil
		}
	}
	return tracker.Iteration{}, fmt.Errorf("iteration not found: %s", name)
}
