// Package filter evaluates declarative filter criteria against a validated
// point collection. The engine is synchronous, side-effect-free, and safe to
// re-invoke on every criteria change.
package filter

import (
	"log/slog"
	"strings"
	"time"

	"github.com/patagoniaverde/firewatch/internal/domain"
)

// Engine applies FilterCriteria to point collections. Day-granular date
// bounds are resolved in loc, which must match the location used for
// temporal bucketing so "same day" means the same thing in both places.
type Engine struct {
	loc    *time.Location
	logger *slog.Logger
}

// NewEngine creates an Engine. A nil location means UTC.
func NewEngine(loc *time.Location, logger *slog.Logger) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{loc: loc, logger: logger}
}

// bounds holds the per-call precomputed state so no per-point work repeats
// parsing or set construction.
type bounds struct {
	start      *time.Time // inclusive start-of-day
	end        *time.Time // exclusive start of the day after EndDate
	confidence map[domain.Confidence]struct{}
	minBright  *float64
	maxBright  *float64
	satellite  string
}

// Apply returns the subset of points admitted by every active criteria
// dimension, preserving input order. Points are never mutated; the only
// allocation is the output slice. A point whose date cannot be parsed is
// excluded only while a date bound is active, and never aborts the pass.
func (e *Engine) Apply(points []domain.FirePoint, criteria domain.FilterCriteria) []domain.FirePoint {
	if len(points) == 0 {
		return []domain.FirePoint{}
	}

	b := e.resolveBounds(criteria)

	out := make([]domain.FirePoint, 0, len(points))
	for i := range points {
		if e.admits(points[i], b) {
			out = append(out, points[i])
		}
	}
	return out
}

func (e *Engine) resolveBounds(criteria domain.FilterCriteria) bounds {
	b := bounds{
		minBright: criteria.MinBrightness,
		maxBright: criteria.MaxBrightness,
		satellite: strings.TrimSpace(criteria.Satellite),
	}

	if criteria.StartDate != "" {
		if day, err := time.ParseInLocation("2006-01-02", criteria.StartDate, e.loc); err == nil {
			b.start = &day
		} else {
			e.logger.Warn("ignoring unparseable startDate", "value", criteria.StartDate)
		}
	}
	if criteria.EndDate != "" {
		if day, err := time.ParseInLocation("2006-01-02", criteria.EndDate, e.loc); err == nil {
			// Inclusive end of that calendar day.
			next := day.AddDate(0, 0, 1)
			b.end = &next
		} else {
			e.logger.Warn("ignoring unparseable endDate", "value", criteria.EndDate)
		}
	}

	if len(criteria.ConfidenceLevels) > 0 {
		b.confidence = make(map[domain.Confidence]struct{}, len(criteria.ConfidenceLevels))
		for _, c := range criteria.ConfidenceLevels {
			b.confidence[domain.Confidence(strings.ToLower(string(c)))] = struct{}{}
		}
	}

	return b
}

func (e *Engine) admits(p domain.FirePoint, b bounds) bool {
	if b.start != nil || b.end != nil {
		when, err := p.When(e.loc)
		if err != nil {
			// Fail closed on the date dimension only.
			return false
		}
		if b.start != nil && when.Before(*b.start) {
			return false
		}
		if b.end != nil && !when.Before(*b.end) {
			return false
		}
	}

	if b.confidence != nil {
		c := domain.Confidence(strings.ToLower(string(p.Confidence)))
		if _, ok := b.confidence[c]; !ok {
			return false
		}
	}

	if b.minBright != nil && p.Brightness < *b.minBright {
		return false
	}
	if b.maxBright != nil && p.Brightness > *b.maxBright {
		return false
	}

	if b.satellite != "" && p.Satellite != b.satellite {
		return false
	}

	return true
}
