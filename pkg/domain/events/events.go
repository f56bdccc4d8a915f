// Package events carries the engine's in-process notifications:
// configuration changes and snapshot reloads. The velocity cache
// subscribes to both.
package events

import "time"

// Event types.
const (
	TypeConfigChanged    = "config.changed"
	TypeSnapshotReloaded = "snapshot.reloaded"
)

// DomainEvent is the interface all engine events satisfy.
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// ConfigChanged is published by the configuration store after a
// successful save or reset.
type ConfigChanged struct {
	Category string
	At       time.Time
}

func (e ConfigChanged) EventType() string     { return TypeConfigChanged }
func (e ConfigChanged) OccurredAt() time.Time { return e.At }

// SnapshotReloaded is published when a new snapshot replaces the one the
// engine has been analyzing.
type SnapshotReloaded struct {
	ProjectID string
	At        time.Time
}

func (e SnapshotReloaded) EventType() string     { return TypeSnapshotReloaded }
func (e SnapshotReloaded) OccurredAt() time.Time { return e.At }
