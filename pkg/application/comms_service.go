package application

import (
	"fmt"

	"github.com/felixgeelhaar/pulse/pkg/domain/comms"
	"github.com/felixgeelhaar/pulse/pkg/storage"
)

// CommsService maintains the scope's stakeholder communication log.
type CommsService struct {
	store *storage.FilesystemStore
}

func NewCommsService(store *storage.FilesystemStore) *CommsService {
	return &CommsService{store: store}
}

// Import appends parsed records to the scope's communication log.
func (s *CommsService) Import(scope storage.Scope, records []comms.Record) error {
	if len(records) == 0 {
		return fmt.Errorf("no records to import")
	}
	if err := s.store.AppendRecords(scope, records); err != nil {
		return fmt.Errorf("failed to store records: %w", err)
	}
	return nil
}

// Records reads the scope's communication log.
func (s *CommsService) Records(scope storage.Scope) ([]comms.Record, error) {
	return s.store.LoadRecords(scope)
}

// LogDecision appends a decision to the scope's decision log.
func (s *CommsService) LogDecision(scope storage.Scope, d comms.Decision) error {
	decisions, err := s.store.LoadDecisions(scope)
	if err != nil {
		return err
	}
	return s.store.SaveDecisions(scope, append(decisions, d))
}

// Stakeholders reads the scope's stakeholder register.
func (s *CommsService) Stakeholders(scope storage.Scope) ([]comms.Stakeholder, error) {
	return s.store.LoadStakeholders(scope)
}
