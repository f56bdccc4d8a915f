package application

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/events"
	"github.com/felixgeelhaar/pulse/pkg/domain/tracker"
	"github.com/felixgeelhaar/pulse/pkg/storage"
)

// Fetcher produces a normalized snapshot from the upstream tracker.
type Fetcher interface {
	Fetch(ctx context.Context, projectID string) (*tracker.Snapshot, error)
}

// SnapshotService fetches, persists and reloads tracker snapshots. All
// analyses run against the persisted copy.
type SnapshotService struct {
	store      *storage.FilesystemStore
	fetcher    Fetcher
	dispatcher *events.Dispatcher
}

func NewSnapshotService(store *storage.FilesystemStore, fetcher Fetcher, dispatcher *events.Dispatcher) *SnapshotService {
	return &SnapshotService{store: store, fetcher: fetcher, dispatcher: dispatcher}
}

// Fetch pulls a fresh snapshot from the tracker, persists it and
// announces the reload.
func (s *SnapshotService) Fetch(ctx context.Context, projectID string) (*tracker.Snapshot, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("no tracker configured")
	}
	snap, err := s.fetcher.Fetch(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}
	if err := s.store.SaveSnapshot(snap); err != nil {
		return nil, err
	}
	return snap, s.announce(snap.ProjectID)
}

// Load reads the persisted snapshot.
func (s *SnapshotService) Load() (*tracker.Snapshot, error) {
	snap, err := s.store.LoadSnapshot()
	if err != nil {
		return nil, fmt.Errorf("no snapshot available, run fetch first: %w", err)
	}
	return snap, nil
}

// Reload re-reads the persisted snapshot and announces the reload. The
// file watcher calls this when the snapshot file changes on disk.
func (s *SnapshotService) Reload() (*tracker.Snapshot, error) {
	snap, err := s.Load()
	if err != nil {
		return nil, err
	}
	return snap, s.announce(snap.ProjectID)
}

func (s *SnapshotService) announce(projectID string) error {
	if s.dispatcher == nil {
		return nil
	}
	return s.dispatcher.Dispatch(events.SnapshotReloaded{ProjectID: projectID, At: time.Now()})
}
