package application

import (
	"fmt"

	"github.com/felixgeelhaar/pulse/pkg/domain/events"
	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
	"github.com/felixgeelhaar/pulse/pkg/domain/velocity"
	"github.com/felixgeelhaar/pulse/pkg/storage"
)

// VelocityService runs the velocity engine with the scope's roster and
// absence calendar. Results flow through a shared cache that the event
// dispatcher flushes on configuration or snapshot changes.
type VelocityService struct {
	store  *storage.FilesystemStore
	config *ConfigService
	cache  *velocity.Cache
}

func NewVelocityService(store *storage.FilesystemStore, config *ConfigService, cache *velocity.Cache) *VelocityService {
	return &VelocityService{store: store, config: config, cache: cache}
}

// RegisterInvalidation flushes the velocity cache whenever configuration
// changes or the snapshot reloads.
func (s *VelocityService) RegisterInvalidation(dispatcher *events.Dispatcher) {
	dispatcher.Register("velocity-cache-flush", func(events.DomainEvent) error {
		s.cache.Flush()
		return nil
	}, events.TypeConfigChanged, events.TypeSnapshotReloaded)
}

// Engine builds a velocity engine for the scope from stored
// configuration, roster and absences.
func (s *VelocityService) Engine(scope storage.Scope) (*velocity.Engine, error) {
	cfg, err := s.config.Load()
	if err != nil {
		return nil, err
	}
	roster, err := s.store.LoadTeam(scope)
	if err != nil {
		return nil, fmt.Errorf("failed to load team: %w", err)
	}
	absences, err := s.store.LoadAbsences(scope)
	if err != nil {
		return nil, fmt.Errorf("failed to load absences: %w", err)
	}
	return velocity.NewEngine(cfg.Velocity, roster, absences, s.cache), nil
}

// Sprint measures recent sprint velocity over the snapshot.
func (s *VelocityService) Sprint(scope storage.Scope, snap *tracker.Snapshot) (velocity.SprintVelocity, error) {
	engine, err := s.Engine(scope)
	if err != nil {
		return velocity.SprintVelocity{}, err
	}
	return engine.Sprint(snap.Issues, snap.TakenAt), nil
}

// Member derives a member's individual completion rate.
func (s *VelocityService) Member(scope storage.Scope, snap *tracker.Snapshot, username string) (velocity.RateResult, error) {
	engine, err := s.Engine(scope)
	if err != nil {
		return velocity.RateResult{}, err
	}
	return engine.Member(snap.Issues, username), nil
}

// Rate resolves a member's rate through the fallback ladder: individual,
// team average, static conversion.
func (s *VelocityService) Rate(scope storage.Scope, snap *tracker.Snapshot, username string) (velocity.FallbackRate, error) {
	engine, err := s.Engine(scope)
	if err != nil {
		return velocity.FallbackRate{}, err
	}
	return engine.WithFallback(snap.Issues, username), nil
}
