package store

import (
	"sync"
	"testing"
	"time"

	"github.com/regpulse/regpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreIsLoading(t *testing.T) {
	s := New("https://example.test/feed.json")
	st := s.State()
	assert.Equal(t, schema.StatusLoading, st.Status)
	assert.Equal(t, "https://example.test/feed.json", st.Source)
	assert.False(t, st.HasData())
	assert.Empty(t, s.Events())
	assert.Equal(t, schema.Selection{Product: "All", Quarter: "All"}, s.Selection())
}

func TestReplaceCopiesEvents(t *testing.T) {
	s := New("")
	events := []schema.Event{{Product: "TD", Reg: 1}, {Product: "BOA", Reg: 2}}
	now := time.Now()
	st := s.Replace(events, schema.SyncState{Status: schema.StatusLive, UpdatedAt: now})

	assert.Equal(t, 2, st.Events)
	events[0].Reg = 99
	assert.Equal(t, 1, s.Events()[0].Reg)
	assert.Equal(t, schema.StatusLive, s.State().Status)
	assert.Equal(t, now, s.State().UpdatedAt)
}

func TestSnapshotsAreImmutable(t *testing.T) {
	s := New("")
	s.Replace([]schema.Event{{Product: "TD"}}, schema.SyncState{Status: schema.StatusLive})
	before := s.Snapshot()

	s.SetRefreshing(true)
	after := s.Snapshot()

	assert.False(t, before.Sync.Refreshing, "published snapshot must not change")
	assert.True(t, after.Sync.Refreshing)
	assert.Equal(t, before.Events, after.Events)
}

func TestSelect(t *testing.T) {
	s := New("")
	got := s.Select(schema.Selection{Product: "TD", Quarter: " "})
	assert.Equal(t, schema.Selection{Product: "TD", Quarter: "All"}, got)
	assert.Equal(t, got, s.Selection())
}

// TestConcurrentReaders checks that readers always observe events and state from the
// same publication.
func TestConcurrentReaders(t *testing.T) {
	s := New("")
	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= 200; i++ {
			events := make([]schema.Event, i)
			s.Replace(events, schema.SyncState{Status: schema.StatusLive})
		}
		close(stop)
	}()

	for {
		select {
		case <-stop:
			wg.Wait()
			require.Len(t, s.Events(), 200)
			return
		default:
			snap := s.Snapshot()
			assert.Equal(t, len(snap.Events), snap.Sync.Events)
		}
	}
}
