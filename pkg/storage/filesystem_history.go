package storage

import (
	"github.com/felixgeelhaar/pulse/pkg/domain/analytics"
)

// SaveBacklogHistory persists the rolling backlog measurement ring for
// the scope.
func (s *FilesystemStore) SaveBacklogHistory(scope Scope, history []analytics.BacklogMeasurement) error {
	return s.putYAML(scope.Key(KeyBacklogHistory), history)
}

// LoadBacklogHistory reads the backlog measurement ring for the scope.
func (s *FilesystemStore) LoadBacklogHistory(scope Scope) ([]analytics.BacklogMeasurement, error) {
	var history []analytics.BacklogMeasurement
	if _, err := s.getYAML(scope.Key(KeyBacklogHistory), &history); err != nil {
		return nil, err
	}
	return history, nil
}

// SavePreferences persists user preferences.
func (s *FilesystemStore) SavePreferences(prefs map[string]string) error {
	return s.putYAML(KeyPreferences, prefs)
}

// LoadPreferences reads user preferences.
func (s *FilesystemStore) LoadPreferences() (map[string]string, error) {
	prefs := map[string]string{}
	if _, err := s.getYAML(KeyPreferences, &prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

// SaveTokens persists tracker credentials keyed by host.
func (s *FilesystemStore) SaveTokens(tokens map[string]string) error {
	return s.putYAML(KeyTokens, tokens)
}

// LoadTokens reads tracker credentials keyed by host.
func (s *FilesystemStore) LoadTokens() (map[string]string, error) {
	tokens := map[string]string{}
	if _, err := s.getYAML(KeyTokens, &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}
