// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/regpulse/regpulse/schema"
)

// Payload is one snapshot as delivered by a source.
type Payload struct {
	Events    []schema.Event
	UpdatedAt time.Time // zero when the source does not report one
}

// SnapshotSource reads the full event set from the upstream feed.
// This allows the sync controller to be tested without a real feed.
type SnapshotSource interface {
	// Fetch returns the current snapshot. Implementations must honor ctx cancellation.
	Fetch(ctx context.Context) (Payload, error)

	// Describe returns a human-readable location, e.g. the feed URL or table name.
	Describe() string
}

// SyncObserver is notified about every completed sync attempt.
type SyncObserver interface {
	// ObserveSync receives the state after the attempt, how long the fetch took and
	// the error if it failed.
	ObserveSync(state schema.SyncState, took time.Duration, err error)

	// ObserveSkip is called when a sync was not started because one was in flight.
	ObserveSkip()
}
