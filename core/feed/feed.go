// Package feed keeps the event store in sync with the upstream snapshot source.
//
// The controller is a four-state machine (loading, live, stale, error). A failed
// fetch never discards loaded events: live degrades to stale, and only a controller
// that never loaded anything reports error. At most one fetch runs at a time.
package feed

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/regpulse/regpulse/core/store"
	"github.com/regpulse/regpulse/internal/contract"
	"github.com/regpulse/regpulse/schema"
	"github.com/rs/zerolog"
)

// Controller fetches snapshots on a timer and on demand.
type Controller struct {
	src      contract.SnapshotSource
	st       *store.Store
	interval time.Duration
	logger   zerolog.Logger
	observer contract.SyncObserver
	clock    func() time.Time

	inFlight atomic.Bool
	alive    atomic.Bool
	life     context.Context
	stop     context.CancelFunc
	wg       sync.WaitGroup
}

// Option configures a Controller.
type Option func(*Controller)

// WithInterval sets the polling interval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithObserver registers a sync observer.
func WithObserver(o contract.SyncObserver) Option {
	return func(c *Controller) { c.observer = o }
}

// WithClock overrides the clock used to stamp snapshots without an updatedAt.
func WithClock(clock func() time.Time) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// New returns a live controller for the source and store.
func New(src contract.SnapshotSource, st *store.Store, opts ...Option) *Controller {
	c := &Controller{
		src:      src,
		st:       st,
		interval: schema.DefaultPollInterval,
		logger:   zerolog.Nop(),
		observer: nopObserver{},
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.life, c.stop = context.WithCancel(context.Background())
	c.alive.Store(true)
	return c
}

// Interval returns the polling interval.
func (c *Controller) Interval() time.Duration { return c.interval }

// Sync fetches one snapshot and applies the outcome to the store. It returns
// ErrInFlight without fetching when another sync is running, and the fetch error
// otherwise. Results arriving after Close or after ctx is done are discarded.
func (c *Controller) Sync(ctx context.Context) error {
	if !c.alive.Load() {
		return ErrClosed
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		c.observer.ObserveSkip()
		return ErrInFlight
	}
	defer c.inFlight.Store(false)
	return c.fetch(ctx)
}

// Refresh starts a sync in the background. It returns ErrInFlight when a sync is
// already running and ErrClosed after Close. The fetch outlives ctx cancellation
// but not Close.
func (c *Controller) Refresh(ctx context.Context) error {
	if !c.alive.Load() {
		return ErrClosed
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		c.observer.ObserveSkip()
		return ErrInFlight
	}
	fetchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	release := context.AfterFunc(c.life, cancel)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer release()
		defer cancel()
		defer c.inFlight.Store(false)
		if err := c.fetch(fetchCtx); err != nil {
			c.logger.Debug().Err(err).Msg("manual refresh failed")
		}
	}()
	return nil
}

// Run performs an initial sync and then one per interval until ctx is done or the
// controller is closed. Ticks that land while a sync is in flight are skipped.
func (c *Controller) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	release := context.AfterFunc(c.life, cancel)
	defer release()

	c.logger.Info().Str("source", c.src.Describe()).Dur("interval", c.interval).Msg("sync started")
	c.tick(ctx)

	var ticks sync.WaitGroup
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			ticks.Wait()
			c.logger.Info().Msg("sync stopped")
			return
		case <-ticker.C:
			if !c.alive.Load() {
				continue
			}
			ticks.Add(1)
			go func() {
				defer ticks.Done()
				c.tick(ctx)
			}()
		}
	}
}

// Wait blocks until background refreshes started by Refresh have finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close stops scheduling and discards the result of any fetch still running.
func (c *Controller) Close() {
	if c.alive.CompareAndSwap(true, false) {
		c.stop()
	}
}

func (c *Controller) tick(ctx context.Context) {
	err := c.Sync(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrInFlight):
		c.logger.Debug().Msg("tick skipped, sync in flight")
	case errors.Is(err, ErrClosed) || ctx.Err() != nil:
	default:
		c.logger.Warn().Err(err).Str("status", string(c.st.State().Status)).Msg("sync failed")
	}
}

// fetch runs one fetch and applies it. The caller holds the in-flight flag.
func (c *Controller) fetch(ctx context.Context) error {
	c.st.SetRefreshing(true)
	start := time.Now()
	payload, err := c.src.Fetch(ctx)
	took := time.Since(start)

	if !c.alive.Load() || ctx.Err() != nil {
		c.st.SetRefreshing(false)
		if !c.alive.Load() {
			return ErrClosed
		}
		return ctx.Err()
	}

	state := c.st.Update(func(cur schema.Snapshot) schema.Snapshot {
		return transition(cur, payload, err, c.clock)
	})
	c.observer.ObserveSync(state, took, err)
	if err != nil {
		return err
	}
	c.logger.Debug().Int("events", state.Events).Dur("took", took).Msg("sync applied")
	return nil
}

// transition computes the snapshot following a fetch outcome.
func transition(cur schema.Snapshot, payload contract.Payload, err error, clock func() time.Time) schema.Snapshot {
	if err == nil {
		updated := payload.UpdatedAt
		if updated.IsZero() {
			updated = clock()
		}
		return schema.Snapshot{
			Events: slices.Clone(payload.Events),
			Sync: schema.SyncState{
				Status:    schema.StatusLive,
				UpdatedAt: updated,
				Source:    cur.Sync.Source,
			},
		}
	}

	next := cur
	next.Sync.Refreshing = false
	next.Sync.Error = err.Error()
	if cur.Sync.Status == schema.StatusLive {
		next.Sync.Status = schema.StatusStale
	} else {
		next.Sync.Status = schema.StatusError
	}
	return next
}

type nopObserver struct{}

func (nopObserver) ObserveSync(schema.SyncState, time.Duration, error) {}
func (nopObserver) ObserveSkip()                                       {}
