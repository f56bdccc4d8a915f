package storage

import (
	"github.com/felixgeelhaar/pulse/pkg/domain/comms"
)

// SaveStakeholders persists the stakeholder register for the scope.
func (s *FilesystemStore) SaveStakeholders(scope Scope, stakeholders []comms.Stakeholder) error {
	return s.putYAML(scope.Key(KeyStakeholders), stakeholders)
}

// LoadStakeholders reads the stakeholder register for the scope.
func (s *FilesystemStore) LoadStakeholders(scope Scope) ([]comms.Stakeholder, error) {
	var stakeholders []comms.Stakeholder
	if _, err := s.getYAML(scope.Key(KeyStakeholders), &stakeholders); err != nil {
		return nil, err
	}
	return stakeholders, nil
}

// SaveDocuments persists document references for the scope.
func (s *FilesystemStore) SaveDocuments(scope Scope, docs []comms.Document) error {
	return s.putYAML(scope.Key(KeyDocuments), docs)
}

// LoadDocuments reads document references for the scope.
func (s *FilesystemStore) LoadDocuments(scope Scope) ([]comms.Document, error) {
	var docs []comms.Document
	if _, err := s.getYAML(scope.Key(KeyDocuments), &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// SaveDecisions persists the decision log for the scope.
func (s *FilesystemStore) SaveDecisions(scope Scope, decisions []comms.Decision) error {
	return s.putYAML(scope.Key(KeyDecisions), decisions)
}

// LoadDecisions reads the decision log for the scope.
func (s *FilesystemStore) LoadDecisions(scope Scope) ([]comms.Decision, error) {
	var decisions []comms.Decision
	if _, err := s.getYAML(scope.Key(KeyDecisions), &decisions); err != nil {
		return nil, err
	}
	return decisions, nil
}

// SaveRecords persists communication records for the scope.
func (s *FilesystemStore) SaveRecords(scope Scope, records []comms.Record) error {
	return s.putYAML(scope.Key(KeyRecords), records)
}

// LoadRecords reads communication records for the scope.
func (s *FilesystemStore) LoadRecords(scope Scope) ([]comms.Record, error) {
	var records []comms.Record
	if _, err := s.getYAML(scope.Key(KeyRecords), &records); err != nil {
		return nil, err
	}
	return records, nil
}

// AppendRecords adds records to the scope's communication log.
func (s *FilesystemStore) AppendRecords(scope Scope, records []comms.Record) error {
	existing, err := s.LoadRecords(scope)
	if err != nil {
		return err
	}
	return s.SaveRecords(scope, append(existing, records...))
}
