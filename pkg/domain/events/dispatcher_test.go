package events_test

import (
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/events"
)

func TestDispatcher_Dispatch(t *testing.T) {
	d := events.NewDispatcher()

	var got []string
	d.Register("recorder", func(e events.DomainEvent) error {
		got = append(got, e.EventType())
		return nil
	}, events.TypeConfigChanged)

	if err := d.Dispatch(events.ConfigChanged{Category: "health", At: time.Now()}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if err := d.Dispatch(events.SnapshotReloaded{At: time.Now()}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	if len(got) != 1 || got[0] != events.TypeConfigChanged {
		t.Errorf("handler saw %v, want only config.changed", got)
	}
}

func TestDispatcher_Wildcard(t *testing.T) {
	d := events.NewDispatcher()

	count := 0
	d.Register("counter", func(events.DomainEvent) error {
		count++
		return nil
	}, "*")

	_ = d.Dispatch(events.ConfigChanged{At: time.Now()})
	_ = d.Dispatch(events.SnapshotReloaded{At: time.Now()})

	if count != 2 {
		t.Errorf("wildcard handler saw %d events, want 2", count)
	}
}

func TestDispatcher_HandlerError(t *testing.T) {
	d := events.NewDispatcher()
	boom := errors.New("boom")
	d.Register("failing", func(events.DomainEvent) error { return boom }, events.TypeConfigChanged)

	err := d.Dispatch(events.ConfigChanged{At: time.Now()})
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped handler error, got %v", err)
	}
}
