// Package store holds the current event snapshot and filter selection.
package store

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/regpulse/regpulse/schema"
)

// Store publishes immutable snapshots. Readers never lock; writers are serialized so
// an events swap and its sync state change land in a single pointer store.
type Store struct {
	mu        sync.Mutex
	snap      atomic.Pointer[schema.Snapshot]
	selection atomic.Pointer[schema.Selection]
}

// New returns a store in the loading state with no events.
func New(source string) *Store {
	s := &Store{}
	s.snap.Store(&schema.Snapshot{
		Sync: schema.SyncState{Status: schema.StatusLoading, Source: source},
	})
	s.selection.Store(&schema.Selection{Product: schema.AllSelector, Quarter: schema.AllSelector})
	return s
}

// Snapshot returns the current snapshot. Callers must treat it as read-only.
func (s *Store) Snapshot() *schema.Snapshot {
	return s.snap.Load()
}

// Events returns the events of the current snapshot.
func (s *Store) Events() []schema.Event {
	return s.snap.Load().Events
}

// State returns the current sync state.
func (s *Store) State() schema.SyncState {
	return s.snap.Load().Sync
}

// Update applies fn to the current snapshot and publishes the result. The events
// slice handed to fn must not be modified in place.
func (s *Store) Update(fn func(schema.Snapshot) schema.Snapshot) schema.SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := fn(*s.snap.Load())
	next.Sync.Events = len(next.Events)
	s.snap.Store(&next)
	return next.Sync
}

// Replace publishes a new event set together with its sync state. The events are
// copied so later changes by the caller are not observed.
func (s *Store) Replace(events []schema.Event, state schema.SyncState) schema.SyncState {
	events = slices.Clone(events)
	return s.Update(func(schema.Snapshot) schema.Snapshot {
		return schema.Snapshot{Events: events, Sync: state}
	})
}

// SetRefreshing flips the refreshing flag without touching anything else.
func (s *Store) SetRefreshing(v bool) {
	s.Update(func(cur schema.Snapshot) schema.Snapshot {
		cur.Sync.Refreshing = v
		return cur
	})
}

// Selection returns the active filter scope.
func (s *Store) Selection() schema.Selection {
	return *s.selection.Load()
}

// Select sets the active filter scope. Empty values mean "All".
func (s *Store) Select(sel schema.Selection) schema.Selection {
	n := sel.Normalized()
	s.selection.Store(&n)
	return n
}
