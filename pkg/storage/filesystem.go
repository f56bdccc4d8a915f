// Package storage persists engine configuration and user artifacts as
// files under the workspace's .pulse directory. Every artifact is
// addressed by a category key; categories may be stored globally or
// scoped to a project or pod.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
)

const PulseDir = ".pulse"
const SnapshotFile = "snapshot.json"

// Category base keys. Scoped variants append `_<projectID>` or
// `_pod_<podID>`.
const (
	KeyHealth         = "health"
	KeyVelocity       = "velocity"
	KeyCapacity       = "capacity"
	KeyTeam           = "team"
	KeyAbsences       = "absences"
	KeyOverrides      = "overrides"
	KeyStakeholders   = "stakeholders"
	KeyDocuments      = "documents"
	KeyDecisions      = "decisions"
	KeyRecords        = "records"
	KeyPreferences    = "preferences"
	KeyBacklogHistory = "backlog_history"
	KeyTokens         = "tokens"
)

var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// Scope selects the global, per-project or per-pod variant of a
// category key.
type Scope struct {
	ProjectID string
	PodID     string
}

// Global is the unscoped variant.
var Global = Scope{}

// Key returns the store key for a base category under this scope.
func (s Scope) Key(base string) string {
	switch {
	case s.PodID != "":
		return base + "_pod_" + s.PodID
	case s.ProjectID != "":
		return base + "_" + s.ProjectID
	default:
		return base
	}
}

type FilesystemStore struct {
	root        string
	retryConfig retry.Config
}

func NewFilesystemStore(root string) *FilesystemStore {
	return &FilesystemStore{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Root returns the workspace root directory.
func (s *FilesystemStore) Root() string {
	return s.root
}

func (s *FilesystemStore) Initialize() error {
	path := filepath.Join(s.root, PulseDir)
	// G301: Use 0700 for directories
	if err := os.MkdirAll(path, 0700); err != nil {
		return fmt.Errorf("failed to create .pulse directory: %w", err)
	}
	return nil
}

func (s *FilesystemStore) IsInitialized() bool {
	_, err := os.Stat(filepath.Join(s.root, PulseDir))
	return err == nil
}

// ResolvePath ensures the path is within the .pulse directory and prevents traversal.
func (s *FilesystemStore) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	baseDir := filepath.Join(s.root, PulseDir)
	fullPath := filepath.Join(baseDir, filename)
	cleanPath := filepath.Clean(fullPath)

	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}

	return cleanPath, nil
}

// Put stores a raw category value. Keys are lowercase words with
// underscores, matching the scoped addressing convention.
func (s *FilesystemStore) Put(key string, data []byte) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("invalid store key: %s", key)
	}
	if err := s.Initialize(); err != nil {
		return err
	}
	path, err := s.ResolvePath(key + ".yaml")
	if err != nil {
		return err
	}

	// G306: Use 0600 for files
	return os.WriteFile(path, data, 0600)
}

// Get reads a raw category value. Missing keys return os.ErrNotExist.
func (s *FilesystemStore) Get(key string) ([]byte, error) {
	retryer := retry.New[[]byte](s.retryConfig)

	return retryer.Do(context.Background(), func(ctx context.Context) ([]byte, error) {
		path, err := s.ResolvePath(key + ".yaml")
		if err != nil {
			return nil, err
		}

		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("key %s: %w", key, os.ErrNotExist)
			}
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		return data, nil
	})
}

// Delete removes a category value. Deleting a missing key is a no-op.
func (s *FilesystemStore) Delete(key string) error {
	path, err := s.ResolvePath(key + ".yaml")
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Keys lists all stored category keys, sorted.
func (s *FilesystemStore) Keys() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, PulseDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list store: %w", err)
	}

	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".yaml"))
	}
	sort.Strings(keys)
	return keys, nil
}

// KeysWithPrefix lists the base key and all its scoped variants. The
// base itself counts; variants are `<base>_<suffix>`.
func (s *FilesystemStore) KeysWithPrefix(base string) ([]string, error) {
	keys, err := s.Keys()
	if err != nil {
		return nil, err
	}

	var matched []string
	for _, k := range keys {
		if k == base || strings.HasPrefix(k, base+"_") {
			matched = append(matched, k)
		}
	}
	return matched, nil
}

// SaveSnapshot persists the latest fetched tracker snapshot.
func (s *FilesystemStore) SaveSnapshot(snap *tracker.Snapshot) error {
	if err := s.Initialize(); err != nil {
		return err
	}
	path, err := s.ResolvePath(SnapshotFile)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// LoadSnapshot reads the persisted tracker snapshot.
func (s *FilesystemStore) LoadSnapshot() (*tracker.Snapshot, error) {
	retryer := retry.New[*tracker.Snapshot](s.retryConfig)

	return retryer.Do(context.Background(), func(ctx context.Context) (*tracker.Snapshot, error) {
		path, err := s.ResolvePath(SnapshotFile)
		if err != nil {
			return nil, err
		}

		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read snapshot file: %w", err)
		}

		var snap tracker.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}
		return &snap, nil
	})
}

// SnapshotPath returns the on-disk location of the persisted snapshot.
func (s *FilesystemStore) SnapshotPath() string {
	return filepath.Join(s.root, PulseDir, SnapshotFile)
}
