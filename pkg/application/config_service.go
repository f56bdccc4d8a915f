// Package application orchestrates the domain engine over the
// filesystem store: loading configuration and snapshots, running the
// analyses and persisting user artifacts.
package application

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/config"
	"github.com/felixgeelhaar/pulse/pkg/domain/events"
	"github.com/felixgeelhaar/pulse/pkg/storage"
)

// ConfigService loads, saves and resets the engine configuration.
// Invalid configurations never reach the store.
type ConfigService struct {
	store      *storage.FilesystemStore
	dispatcher *events.Dispatcher
}

func NewConfigService(store *storage.FilesystemStore, dispatcher *events.Dispatcher) *ConfigService {
	return &ConfigService{store: store, dispatcher: dispatcher}
}

// Load reads the configuration, with engine defaults for unsaved
// categories.
func (s *ConfigService) Load() (config.Config, error) {
	cfg, err := s.store.LoadConfig()
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// Save validates and persists the configuration, then publishes a
// configuration-changed event so cached aggregations recompute.
func (s *ConfigService) Save(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := s.store.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return s.publishChanged("config")
}

// Reset restores engine defaults.
func (s *ConfigService) Reset() error {
	if err := s.store.ResetConfig(); err != nil {
		return fmt.Errorf("failed to reset config: %w", err)
	}
	return s.publishChanged("config")
}

func (s *ConfigService) publishChanged(category string) error {
	if s.dispatcher == nil {
		return nil
	}
	return s.dispatcher.Dispatch(events.ConfigChanged{Category: category, At: time.Now()})
}
