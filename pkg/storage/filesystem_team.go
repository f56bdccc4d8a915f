package storage

import (
	"github.com/felixgeelhaar/pulse/pkg/domain/team"
)

// SaveTeam persists the roster under the scope's team key.
func (s *FilesystemStore) SaveTeam(scope Scope, cfg *team.Config) error {
	return s.putYAML(scope.Key(KeyTeam), cfg)
}

// LoadTeam reads the roster for the scope. A never-saved roster is
// empty, not an error.
func (s *FilesystemStore) LoadTeam(scope Scope) (*team.Config, error) {
	var cfg team.Config
	if _, err := s.getYAML(scope.Key(KeyTeam), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveAbsences persists the absence calendar for the scope.
func (s *FilesystemStore) SaveAbsences(scope Scope, absences []team.Absence) error {
	return s.putYAML(scope.Key(KeyAbsences), absences)
}

// LoadAbsences reads the absence calendar for the scope.
func (s *FilesystemStore) LoadAbsences(scope Scope) ([]team.Absence, error) {
	var absences []team.Absence
	if _, err := s.getYAML(scope.Key(KeyAbsences), &absences); err != nil {
		return nil, err
	}
	return absences, nil
}

// SaveOverrides persists per-sprint capacity overrides for the scope.
func (s *FilesystemStore) SaveOverrides(scope Scope, overrides []team.Override) error {
	return s.putYAML(scope.Key(KeyOverrides), overrides)
}

// LoadOverrides reads per-sprint capacity overrides for the scope.
func (s *FilesystemStore) LoadOverrides(scope Scope) ([]team.Override, error) {
	var overrides []team.Override
	if _, err := s.getYAML(scope.Key(KeyOverrides), &overrides); err != nil {
		return nil, err
	}
	return overrides, nil
}
