package storage

import (
	"errors"
	"fmt"
	"os"

	"github.com/felixgeelhaar/pulse/pkg/domain/config"
	"gopkg.in/yaml.v3"
)

// healthCategory holds the health-scoring half of the configuration
// under the "health" key.
type healthCategory struct {
	Weights    config.HealthWeights    `yaml:"weights"`
	Amplifiers config.HealthAmplifiers `yaml:"amplifiers"`
	Thresholds config.HealthThresholds `yaml:"thresholds"`
	Timeframe  config.Timeframe        `yaml:"timeframe"`
}

// SaveConfig persists the configuration split across its category keys
// so backup and external readers can address each group independently.
// The caller validates before saving.
func (s *FilesystemStore) SaveConfig(cfg config.Config) error {
	health := healthCategory{
		Weights:    cfg.Weights,
		Amplifiers: cfg.Amplifiers,
		Thresholds: cfg.Thresholds,
		Timeframe:  cfg.Timeframe,
	}
	if err := s.putYAML(KeyHealth, health); err != nil {
		return err
	}
	if err := s.putYAML(KeyVelocity, cfg.Velocity); err != nil {
		return err
	}
	return s.putYAML(KeyCapacity, cfg.Capacity)
}

// LoadConfig reads the configuration, falling back to engine defaults
// for categories that were never saved.
func (s *FilesystemStore) LoadConfig() (config.Config, error) {
	cfg := config.Default()

	var health healthCategory
	found, err := s.getYAML(KeyHealth, &health)
	if err != nil {
		return config.Config{}, err
	}
	if found {
		cfg.Weights = health.Weights
		cfg.Amplifiers = health.Amplifiers
		cfg.Thresholds = health.Thresholds
		cfg.Timeframe = health.Timeframe
	}

	if _, err := s.getYAML(KeyVelocity, &cfg.Velocity); err != nil {
		return config.Config{}, err
	}
	if _, err := s.getYAML(KeyCapacity, &cfg.Capacity); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// ResetConfig removes all configuration categories, restoring defaults
// on the next load.
func (s *FilesystemStore) ResetConfig() error {
	for _, key := range []string{KeyHealth, KeyVelocity, KeyCapacity} {
		if err := s.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

func (s *FilesystemStore) putYAML(key string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return s.Put(key, data)
}

// getYAML reads and decodes a category. A missing key leaves out
// untouched and reports found = false.
func (s *FilesystemStore) getYAML(key string, out any) (bool, error) {
	data, err := s.Get(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}
