// Command genmock generates a deterministic fire-detection fixture in the
// upstream envelope format. It runs the records through the actual validation
// path so the printed stats match real ingestion behavior, which makes them
// safe to copy into test assertions.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/fires_260315.json -days 7 -per-day 12
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/patagoniaverde/firewatch/internal/domain"
	"github.com/patagoniaverde/firewatch/internal/stats"
)

// Patagonia Verde region, roughly Los Lagos and Aysén.
const (
	latMin = -45.5
	latMax = -40.5
	lngMin = -74.0
	lngMax = -71.0
)

var baseDate = time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

type envelope struct {
	Fires []domain.RawRecord `json:"fires"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the fixture")
	days := flag.Int("days", 7, "number of acquisition days")
	perDay := flag.Int("per-day", 12, "detections per day")
	seed := flag.Int64("seed", 260315, "rng seed")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	// Fixed clock so synthesized IDs are reproducible.
	domain.SetClock(clockwork.NewFakeClockAt(baseDate.Add(6 * time.Hour)))
	defer domain.SetClock(nil)

	rng := rand.New(rand.NewSource(*seed))
	records := generate(rng, *days, *perDay)

	if err := writeJSON(*out, envelope{Fires: records}); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote %d records: %s", len(records), *out)

	printStats(records)
	return nil
}

func generate(rng *rand.Rand, days, perDay int) []domain.RawRecord {
	satellites := []string{"VIIRS", "MODIS", "NOAA-20"}
	confidences := []any{"l", "n", "h", 15.0, 55.0, 92.0}

	records := make([]domain.RawRecord, 0, days*perDay)
	for d := 0; d < days; d++ {
		day := baseDate.AddDate(0, 0, d)
		// Activity ramps up over the window so trend output is non-trivial.
		count := perDay + d*2
		for i := 0; i < count; i++ {
			rec := domain.RawRecord{
				"latitude":   latMin + rng.Float64()*(latMax-latMin),
				"longitude":  lngMin + rng.Float64()*(lngMax-lngMin),
				"brightness": 300 + rng.Float64()*150,
				"acq_date":   day.Format("2006-01-02"),
				"acq_time":   fmt.Sprintf("%02d%02d", rng.Intn(24), rng.Intn(60)),
				"confidence": confidences[rng.Intn(len(confidences))],
				"satellite":  satellites[rng.Intn(len(satellites))],
			}
			if rng.Float64() < 0.7 {
				rec["frp"] = 5 + rng.Float64()*80
			}
			records = append(records, rec)
		}
	}
	return records
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(records []domain.RawRecord) {
	logger := slog.New(slog.DiscardHandler)
	points := domain.ValidateBatch(records, domain.DefaultConfidenceMapping(), logger)

	summary := stats.Summarize(points)
	trend := stats.AnalyzeTrend(points, time.UTC)

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Valid: %d of %d\n", len(points), len(records))
	fmt.Printf("By confidence: high=%d, medium=%d, low=%d\n",
		summary.HighConfidence, summary.MediumConfidence, summary.LowConfidence)
	fmt.Printf("Average brightness: %.2f\n", summary.AverageBrightness)
	fmt.Printf("Distinct satellites: %d\n", summary.DistinctSatellites)
	fmt.Printf("Trend: direction=%s, peak=%s, avgDaily=%.2f, maxDaily=%d, activity=%s\n",
		trend.Direction, trend.PeakDay, trend.AverageDaily, trend.MaxDaily, trend.ActivityLevel)
}
