// Package ingest orchestrates fetch-or-serve-from-cache for wildfire
// detection records: it pulls raw records from an opaque source, validates
// them, and exposes the last-known-good point collection together with
// loading and error state.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/patagoniaverde/firewatch/internal/cache"
	"github.com/patagoniaverde/firewatch/internal/domain"
	"github.com/patagoniaverde/firewatch/internal/observability"
)

// Sentinel errors classifying ingestion failures. Sources wrap ErrTransport
// for network/HTTP failures and ErrStructure for responses whose top-level
// shape is not a record collection.
var (
	ErrTransport      = errors.New("upstream fetch failed")
	ErrStructure      = errors.New("upstream response is not a record collection")
	ErrNoValidRecords = errors.New("every upstream record was rejected")
)

// Source returns a batch of untrusted raw records. The transport behind it is
// deliberately opaque; implementations live under internal/adapter.
type Source interface {
	FetchRecords(ctx context.Context) ([]domain.RawRecord, error)
}

// Snapshot is the observable coordinator state. Points is the last-known-good
// validated collection and survives transient failures. Generation increments
// on every points assignment so consumers can memoize derived values.
type Snapshot struct {
	Points     []domain.FirePoint
	Loading    bool
	Err        error
	Generation uint64
}

// Options configures a Coordinator beyond its collaborators.
type Options struct {
	TTL        time.Duration // cache freshness window; 0 means cache.DefaultTTL
	Confidence domain.ConfidenceMapping
	DevDelay   time.Duration // artificial latency for non-production builds
}

// Coordinator is the ingestion orchestrator. Loads are coalesced: only one
// fetch is in flight at a time and concurrent callers join it instead of
// issuing duplicates. Completions carry a monotonic request token; a stale
// completion never overwrites state committed by a newer request.
type Coordinator struct {
	source  Source
	store   *cache.Store
	opts    Options
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics

	mu         sync.Mutex
	points     []domain.FirePoint
	err        error
	loading    bool
	issued     uint64
	generation uint64
	inflight   *inflightLoad

	ready atomic.Bool
}

type inflightLoad struct {
	done chan struct{}
	err  error
}

// New creates a Coordinator. A nil clock falls back to real time.
func New(source Source, store *cache.Store, opts Options, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Coordinator {
	if opts.TTL <= 0 {
		opts.TTL = cache.DefaultTTL
	}
	if opts.Confidence == (domain.ConfidenceMapping{}) {
		opts.Confidence = domain.DefaultConfidenceMapping()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		source:  source,
		store:   store,
		opts:    opts,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// Load populates the point collection. With forceRefresh false a fresh cache
// entry is adopted without touching the source; otherwise the source is
// fetched, records validated, and the cache refreshed. The returned error is
// also retained in the snapshot.
func (c *Coordinator) Load(ctx context.Context, forceRefresh bool) error {
	if !forceRefresh {
		if c.store.Valid(c.opts.TTL) {
			c.metrics.CacheLookups.WithLabelValues("hit").Inc()
			entry, _ := c.store.Get()
			c.commit(0, entry.Points)
			return nil
		}
		c.metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	c.mu.Lock()
	if fl := c.inflight; fl != nil {
		// Join the fetch already in flight instead of issuing a duplicate.
		c.mu.Unlock()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-fl.done:
			return fl.err
		}
	}
	fl := &inflightLoad{done: make(chan struct{})}
	c.inflight = fl
	c.issued++
	token := c.issued
	c.loading = true
	c.err = nil
	c.mu.Unlock()

	err := c.ingest(ctx, token)

	c.mu.Lock()
	c.loading = false
	c.inflight = nil
	c.mu.Unlock()
	fl.err = err
	close(fl.done)
	return err
}

// Refresh always bypasses the cache and re-fetches. It is the user-facing
// retry affordance.
func (c *Coordinator) Refresh(ctx context.Context) error {
	return c.Load(ctx, true)
}

// Snapshot returns the current observable state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Points:     c.points,
		Loading:    c.loading,
		Err:        c.err,
		Generation: c.generation,
	}
}

// CheckReadiness returns nil once at least one successful ingestion has
// completed.
func (c *Coordinator) CheckReadiness(_ context.Context) error {
	if !c.ready.Load() {
		return errors.New("no point collection ingested yet")
	}
	return nil
}

func (c *Coordinator) ingest(ctx context.Context, token uint64) error {
	start := c.clock.Now()

	if c.opts.DevDelay > 0 {
		c.clock.Sleep(c.opts.DevDelay)
	}

	raws, err := c.source.FetchRecords(ctx)
	if err != nil {
		outcome := "transport_error"
		if errors.Is(err, ErrStructure) {
			outcome = "structure_error"
		}
		c.metrics.FetchesTotal.WithLabelValues(outcome).Inc()
		c.logger.Error("ingestion failed", "error", err, "outcome", outcome)
		c.fail(token, err)
		return err
	}

	points := domain.ValidateBatch(raws, c.opts.Confidence, c.logger)
	rejected := len(raws) - len(points)
	c.metrics.RecordsValidated.Add(float64(len(points)))
	c.metrics.RecordsRejected.Add(float64(rejected))
	if rejected > 0 {
		c.logger.Warn("dropped malformed records", "rejected", rejected, "accepted", len(points))
	}

	if len(points) == 0 && len(raws) > 0 {
		err := fmt.Errorf("%w (%d records)", ErrNoValidRecords, len(raws))
		c.metrics.FetchesTotal.WithLabelValues("no_valid_records").Inc()
		c.fail(token, err)
		return err
	}

	if !c.commit(token, points) {
		c.logger.Debug("discarding superseded ingestion result", "token", token)
		return nil
	}
	c.store.Set(points)

	c.metrics.FetchesTotal.WithLabelValues("success").Inc()
	c.metrics.IngestDuration.Observe(c.clock.Since(start).Seconds())
	c.metrics.PointsLoaded.Set(float64(len(points)))
	c.ready.Store(true)
	c.logger.Info("ingestion complete", "points", len(points), "rejected", rejected)
	return nil
}

// commit installs a new point collection. A token of 0 marks a cache
// adoption, which cannot be superseded. Returns false when a newer request
// was issued after this one started.
func (c *Coordinator) commit(token uint64, points []domain.FirePoint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token != 0 && token != c.issued {
		return false
	}
	if token == 0 && sameSlice(c.points, points) {
		// Re-adopting the cached points already held. Clear any stale
		// error but leave the generation alone so memoized consumers
		// keep their derived state.
		c.err = nil
		return true
	}
	c.points = points
	c.err = nil
	c.generation++
	return true
}

// sameSlice reports whether a and b share the same backing array and length.
func sameSlice(a, b []domain.FirePoint) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

// fail records a load failure, keeping the last-known-good points. A stale
// failure never clobbers the error state of a newer request.
func (c *Coordinator) fail(token uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.issued {
		return
	}
	c.err = err
}
