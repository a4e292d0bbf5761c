// Command validate performs integrity checks on a fire-detection fixture:
// envelope structure, per-record validation outcomes, derived summary and
// trend consistency, and marker-encoding constraints. It exercises the same
// code paths as the live service, so a passing fixture is safe to serve from
// a mock upstream.
//
// Usage:
//
//	go run ./cmd/validate -fixture data/mock/fires_260315.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/patagoniaverde/firewatch/internal/adapter/maps"
	"github.com/patagoniaverde/firewatch/internal/domain"
	"github.com/patagoniaverde/firewatch/internal/stats"
)

var baseDate = time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	fixture := flag.String("fixture", "", "path to the fire-detection fixture")
	flag.Parse()

	if *fixture == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*fixture); code != 0 {
		os.Exit(code)
	}
}

func run(fixturePath string) int {
	// Fixed clock matching genmock so synthesized IDs line up.
	domain.SetClock(clockwork.NewFakeClockAt(baseDate.Add(6 * time.Hour)))
	defer domain.SetClock(nil)

	fmt.Println("=== Fire Detection Fixture Validation ===")
	fmt.Println()

	records, err := loadFixture(fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load fixture: %v\n", err)
		return 1
	}

	logger := slog.New(slog.DiscardHandler)
	points := domain.ValidateBatch(records, domain.DefaultConfidenceMapping(), logger)

	phases := []*phase{
		validateRecords(records, points),
		validateSummary(points),
		validateTrend(points),
		validateMarkers(points),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d raw, %d valid\n", len(records), len(points))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadFixture(path string) ([]domain.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Fires []domain.RawRecord `json:"fires"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	if envelope.Fires == nil {
		return nil, fmt.Errorf("fixture has no \"fires\" array")
	}
	return envelope.Fires, nil
}

// Phase 1: every raw record must survive validation. A fixture is curated
// input; rejects mean the generator and the validator have drifted.
func validateRecords(records []domain.RawRecord, points []domain.FirePoint) *phase {
	p := &phase{name: "Phase 1: Record Validity"}

	if len(points) != len(records) {
		p.errorf("expected %d valid points, got %d", len(records), len(points))
	}

	seen := map[string]int{}
	for i, pt := range points {
		if pt.ID == "" {
			p.errorf("point %d: empty ID", i)
		}
		if prev, dup := seen[pt.ID]; dup {
			p.errorf("point %d: duplicate ID %q (first at %d)", i, pt.ID, prev)
		}
		seen[pt.ID] = i

		if pt.Latitude < -90 || pt.Latitude > 90 {
			p.errorf("point %d: latitude %g out of range", i, pt.Latitude)
		}
		if pt.Longitude < -180 || pt.Longitude > 180 {
			p.errorf("point %d: longitude %g out of range", i, pt.Longitude)
		}
		if pt.Brightness < 0 {
			p.errorf("point %d: negative brightness %g", i, pt.Brightness)
		}
		if _, err := domain.ParseWhen(pt.Date, time.UTC); err != nil {
			p.errorf("point %d: unparseable date %q", i, pt.Date)
		}
		switch pt.Confidence {
		case domain.ConfidenceHigh, domain.ConfidenceMedium, domain.ConfidenceLow:
		default:
			p.errorf("point %d: confidence %q not in {high, medium, low}", i, pt.Confidence)
		}
	}
	return p
}

// Phase 2: the summary must partition the collection.
func validateSummary(points []domain.FirePoint) *phase {
	p := &phase{name: "Phase 2: Summary Consistency"}

	summary := stats.Summarize(points)
	if summary.Total != len(points) {
		p.errorf("total %d != point count %d", summary.Total, len(points))
	}
	if sum := summary.HighConfidence + summary.MediumConfidence + summary.LowConfidence; sum != summary.Total {
		p.errorf("confidence partition %d != total %d", sum, summary.Total)
	}
	if summary.Total > 0 && summary.AverageBrightness <= 0 {
		p.errorf("average brightness %g not positive", summary.AverageBrightness)
	}
	return p
}

// Phase 3: trend buckets must be chronological and account for every point.
func validateTrend(points []domain.FirePoint) *phase {
	p := &phase{name: "Phase 3: Trend Consistency"}

	trend := stats.AnalyzeTrend(points, time.UTC)

	if !sort.SliceIsSorted(trend.Buckets, func(i, j int) bool {
		return trend.Buckets[i].Day < trend.Buckets[j].Day
	}) {
		p.errorf("buckets are not in chronological order")
	}

	total := 0
	maxDaily := 0
	for _, b := range trend.Buckets {
		total += b.Total
		if b.Total > maxDaily {
			maxDaily = b.Total
		}
		if b.High+b.Medium+b.Low != b.Total {
			p.errorf("bucket %s: confidence partition %d != total %d", b.Day, b.High+b.Medium+b.Low, b.Total)
		}
	}
	if total != len(points) {
		p.errorf("bucket totals %d != point count %d", total, len(points))
	}
	if trend.MaxDaily != maxDaily {
		p.errorf("maxDaily %d != observed %d", trend.MaxDaily, maxDaily)
	}
	if len(trend.Buckets) > 0 && trend.PeakDay == "" {
		p.errorf("peak day empty with %d buckets", len(trend.Buckets))
	}
	return p
}

// Phase 4: marker encoding invariants.
func validateMarkers(points []domain.FirePoint) *phase {
	p := &phase{name: "Phase 4: Marker Encoding"}

	markers := maps.Project(points)
	if len(markers) != len(points) {
		p.errorf("marker count %d != point count %d", len(markers), len(points))
		return p
	}

	for i, m := range markers {
		if m.Radius < 5 || m.Radius > 15 {
			p.errorf("marker %d: radius %g outside [5, 15]", i, m.Radius)
		}
		expected := maps.MarkerColor(points[i].Confidence)
		if m.Color != expected {
			p.errorf("marker %d: color %q, expected %q for %s", i, m.Color, expected, points[i].Confidence)
		}
	}

	bounds, ok := maps.BoundsFor(points)
	if len(points) > 0 {
		if !ok {
			p.errorf("bounds missing for non-empty collection")
		}
		for i, pt := range points {
			if pt.Latitude < bounds.MinLat || pt.Latitude > bounds.MaxLat ||
				pt.Longitude < bounds.MinLng || pt.Longitude > bounds.MaxLng {
				p.errorf("point %d: outside computed bounds", i)
			}
		}
	}
	return p
}
