// Package app coordinates the ingestion, filtering, summary, and map layers
// behind a single read model. Derived values are memoized per ingestion
// generation and criteria so repeated reads never re-walk the collection, and
// criteria churn is debounced before it reaches the filter.
package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/patagoniaverde/firewatch/internal/adapter/maps"
	"github.com/patagoniaverde/firewatch/internal/domain"
	"github.com/patagoniaverde/firewatch/internal/filter"
	"github.com/patagoniaverde/firewatch/internal/ingest"
	"github.com/patagoniaverde/firewatch/internal/observability"
	"github.com/patagoniaverde/firewatch/internal/stats"
)

// DefaultDebounce is how long criteria changes settle before they apply.
const DefaultDebounce = 300 * time.Millisecond

// View is the composed read model served to clients.
type View struct {
	Points     []domain.FirePoint
	Summary    stats.Summary
	Trend      stats.Trend
	Criteria   domain.FilterCriteria
	Loading    bool
	Err        error
	Generation uint64
}

// Controller owns the active filter criteria and keeps the map surface in
// step with the filtered collection.
type Controller struct {
	coordinator *ingest.Coordinator
	engine      *filter.Engine
	adapter     *maps.Adapter
	loc         *time.Location
	debounce    time.Duration
	clock       clockwork.Clock
	logger      *slog.Logger
	metrics     *observability.Metrics

	mu       sync.Mutex
	criteria domain.FilterCriteria
	pending  *domain.FilterCriteria
	timer    clockwork.Timer

	memoValid    bool
	memoGen      uint64
	memoCriteria domain.FilterCriteria
	filtered     []domain.FirePoint
	summary      stats.Summary
	trend        stats.Trend

	selected *domain.FirePoint
}

// New wires a Controller. A nil adapter disables map synchronization; a zero
// debounce applies criteria immediately.
func New(coordinator *ingest.Coordinator, engine *filter.Engine, adapter *maps.Adapter, loc *time.Location, debounce time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Controller {
	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		coordinator: coordinator,
		engine:      engine,
		adapter:     adapter,
		loc:         loc,
		debounce:    debounce,
		clock:       clock,
		logger:      logger,
		metrics:     metrics,
	}
}

// Load ensures the collection is populated, honoring cache freshness, then
// refreshes the map surface.
func (c *Controller) Load(ctx context.Context) error {
	err := c.coordinator.Load(ctx, false)
	c.View()
	return err
}

// Refresh bypasses the cache and refetches, then refreshes the map surface.
func (c *Controller) Refresh(ctx context.Context) error {
	err := c.coordinator.Refresh(ctx)
	c.View()
	return err
}

// SetCriteria stages new filter criteria. Rapid successive calls collapse:
// only the value observed after the debounce window settles is applied.
func (c *Controller) SetCriteria(criteria domain.FilterCriteria) {
	if c.debounce <= 0 {
		c.mu.Lock()
		c.criteria = criteria
		c.mu.Unlock()
		c.View()
		return
	}

	c.mu.Lock()
	c.pending = &criteria
	if c.timer == nil {
		c.timer = c.clock.AfterFunc(c.debounce, c.flushCriteria)
	} else {
		c.timer.Reset(c.debounce)
	}
	c.mu.Unlock()
}

func (c *Controller) flushCriteria() {
	c.mu.Lock()
	if c.pending != nil {
		c.criteria = *c.pending
		c.pending = nil
	}
	c.mu.Unlock()
	c.View()
}

// Criteria returns the currently applied criteria. A staged value still
// inside its debounce window is not visible here.
func (c *Controller) Criteria() domain.FilterCriteria {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.criteria
}

// View composes the current read model. The filtered collection and its
// derived summary and trend are recomputed only when the ingestion generation
// or the applied criteria changed since the last call; a recompute also
// re-renders the map surface.
func (c *Controller) View() View {
	snap := c.coordinator.Snapshot()

	c.mu.Lock()
	recomputed := false
	if !c.memoValid || snap.Generation != c.memoGen || !c.criteria.Equal(c.memoCriteria) {
		start := c.clock.Now()
		c.filtered = c.engine.Apply(snap.Points, c.criteria)
		c.metrics.FilterDuration.Observe(c.clock.Since(start).Seconds())
		c.summary = stats.Summarize(c.filtered)
		c.trend = stats.AnalyzeTrend(c.filtered, c.loc)
		c.memoValid = true
		c.memoGen = snap.Generation
		c.memoCriteria = c.criteria
		recomputed = true
	}
	view := View{
		Points:     c.filtered,
		Summary:    c.summary,
		Trend:      c.trend,
		Criteria:   c.criteria,
		Loading:    snap.Loading,
		Err:        snap.Err,
		Generation: snap.Generation,
	}
	c.mu.Unlock()

	if recomputed && c.adapter != nil {
		c.adapter.Render(view.Points, c.selectPoint)
		c.adapter.FitToPoints(view.Points)
	}
	return view
}

// Query computes a one-off read model for ad hoc criteria. The applied
// criteria, the memo, and the map surface are left untouched.
func (c *Controller) Query(criteria domain.FilterCriteria) View {
	snap := c.coordinator.Snapshot()
	start := c.clock.Now()
	filtered := c.engine.Apply(snap.Points, criteria)
	c.metrics.FilterDuration.Observe(c.clock.Since(start).Seconds())
	return View{
		Points:     filtered,
		Summary:    stats.Summarize(filtered),
		Trend:      stats.AnalyzeTrend(filtered, c.loc),
		Criteria:   criteria,
		Loading:    snap.Loading,
		Err:        snap.Err,
		Generation: snap.Generation,
	}
}

func (c *Controller) selectPoint(p domain.FirePoint) {
	c.mu.Lock()
	c.selected = &p
	c.mu.Unlock()
	c.logger.Debug("point selected", "id", p.ID)
}

// Selected returns the most recently clicked point, if any.
func (c *Controller) Selected() (domain.FirePoint, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return domain.FirePoint{}, false
	}
	return *c.selected, true
}

// ClearSelection forgets the current selection.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	c.selected = nil
	c.mu.Unlock()
}
