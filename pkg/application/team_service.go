package application

import (
	"fmt"

	"github.com/felixgeelhaar/pulse/pkg/domain/team"
	"github.com/felixgeelhaar/pulse/pkg/storage"
)

// TeamService manages the roster, absence calendar and capacity
// overrides for a scope.
type TeamService struct {
	store *storage.FilesystemStore
}

func NewTeamService(store *storage.FilesystemStore) *TeamService {
	return &TeamService{store: store}
}

// Roster reads the scope's roster.
func (s *TeamService) Roster(scope storage.Scope) (*team.Config, error) {
	return s.store.LoadTeam(scope)
}

// AddMember adds or updates a roster member.
func (s *TeamService) AddMember(scope storage.Scope, m team.Member) error {
	roster, err := s.store.LoadTeam(scope)
	if err != nil {
		return err
	}
	if err := roster.AddMember(m); err != nil {
		return err
	}
	return s.store.SaveTeam(scope, roster)
}

// RemoveMember removes a roster member by username.
func (s *TeamService) RemoveMember(scope storage.Scope, username string) error {
	roster, err := s.store.LoadTeam(scope)
	if err != nil {
		return err
	}
	if err := roster.RemoveMember(username); err != nil {
		return err
	}
	return s.store.SaveTeam(scope, roster)
}

// AddAbsence appends a planned absence for a roster member.
func (s *TeamService) AddAbsence(scope storage.Scope, a team.Absence) error {
	roster, err := s.store.LoadTeam(scope)
	if err != nil {
		return err
	}
	if roster.FindMember(a.Username) == nil {
		return fmt.Errorf("member not found: %s", a.Username)
	}
	if a.To.Before(a.From) {
		return fmt.Errorf("absence ends before it starts")
	}

	absences, err := s.store.LoadAbsences(scope)
	if err != nil {
		return err
	}
	return s.store.SaveAbsences(scope, append(absences, a))
}

// SetOverride replaces a member's capacity for one sprint.
func (s *TeamService) SetOverride(scope storage.Scope, ov team.Override) error {
	overrides, err := s.store.LoadOverrides(scope)
	if err != nil {
		return err
	}
	if existing := team.FindOverride(overrides, ov.SprintID, ov.Username); existing != nil {
		*existing = ov
	} else {
		overrides = append(overrides, ov)
	}
	return s.store.SaveOverrides(scope, overrides)
}
