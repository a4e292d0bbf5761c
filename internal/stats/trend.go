package stats

import (
	"sort"
	"time"

	"github.com/patagoniaverde/firewatch/internal/domain"
)

// Trend direction labels.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// Activity levels derived from average daily detections. The thresholds are
// part of the behavioral contract, not configuration: >10 critical, >5 high,
// >2 moderate, else low.
const (
	ActivityLow      = "low"
	ActivityModerate = "moderate"
	ActivityHigh     = "high"
	ActivityCritical = "critical"
)

// Bucket aggregates one calendar day of detections.
type Bucket struct {
	Day    string `json:"day"` // YYYY-MM-DD in the analyzer's location
	Total  int    `json:"total"`
	High   int    `json:"high"`
	Medium int    `json:"medium"`
	Low    int    `json:"low"`
}

// Trend is the full temporal analysis over one point collection.
type Trend struct {
	Buckets        []Bucket `json:"buckets"`
	Direction      string   `json:"direction"`
	PeakDay        string   `json:"peakDay,omitempty"`
	AverageDaily   float64  `json:"averageDaily"`
	MaxDaily       int      `json:"maxDaily"`
	RecentIncrease bool     `json:"recentIncrease"`
	ActivityLevel  string   `json:"activityLevel"`
}

// AnalyzeTrend buckets points by calendar day in loc (nil means UTC) and
// derives direction, peak, and activity classification. Points whose date
// cannot be parsed are skipped. Empty input yields the zero analysis with
// activity "low" and no error.
func AnalyzeTrend(points []domain.FirePoint, loc *time.Location) Trend {
	if loc == nil {
		loc = time.UTC
	}

	byDay := make(map[string]*Bucket)
	for _, p := range points {
		when, err := p.When(loc)
		if err != nil {
			continue
		}
		day := when.In(loc).Format("2006-01-02")
		b, ok := byDay[day]
		if !ok {
			b = &Bucket{Day: day}
			byDay[day] = b
		}
		b.Total++
		switch p.Confidence {
		case domain.ConfidenceHigh:
			b.High++
		case domain.ConfidenceLow:
			b.Low++
		default:
			b.Medium++
		}
	}

	t := Trend{
		Buckets:       make([]Bucket, 0, len(byDay)),
		Direction:     TrendStable,
		ActivityLevel: ActivityLow,
	}
	for _, b := range byDay {
		t.Buckets = append(t.Buckets, *b)
	}
	// The day labels sort chronologically because they are ISO dates.
	sort.Slice(t.Buckets, func(i, j int) bool { return t.Buckets[i].Day < t.Buckets[j].Day })

	if len(t.Buckets) == 0 {
		return t
	}

	var sum int
	for i, b := range t.Buckets {
		sum += b.Total
		if b.Total > t.MaxDaily {
			t.MaxDaily = b.Total
			t.PeakDay = t.Buckets[i].Day
		}
	}
	t.AverageDaily = float64(sum) / float64(len(t.Buckets))

	t.Direction = classifyDirection(t.Buckets)
	t.RecentIncrease = recentIncrease(t.Buckets)
	t.ActivityLevel = classifyActivity(t.AverageDaily)

	return t
}

// classifyDirection compares the mean of the newest 3 buckets against the
// mean of the oldest 3. On 4- and 5-day series the windows share buckets;
// that is intentional. Series of 3 days or fewer shrink the window so both
// sides do not collapse into the same mean.
func classifyDirection(buckets []Bucket) string {
	window := 3
	if len(buckets) < 4 {
		window = len(buckets) / 2
		if window < 1 {
			window = 1
		}
	}

	initial := meanTotal(buckets[:window])
	recent := meanTotal(buckets[len(buckets)-window:])

	switch {
	case recent >= initial*1.2:
		return TrendIncreasing
	case recent <= initial*0.8:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// recentIncrease flags the newest day exceeding 1.5x the day before it.
func recentIncrease(buckets []Bucket) bool {
	n := len(buckets)
	if n < 2 {
		return false
	}
	return float64(buckets[n-1].Total) > float64(buckets[n-2].Total)*1.5
}

func classifyActivity(averageDaily float64) string {
	switch {
	case averageDaily > 10:
		return ActivityCritical
	case averageDaily > 5:
		return ActivityHigh
	case averageDaily > 2:
		return ActivityModerate
	default:
		return ActivityLow
	}
}

func meanTotal(buckets []Bucket) float64 {
	if len(buckets) == 0 {
		return 0
	}
	var sum int
	for _, b := range buckets {
		sum += b.Total
	}
	return float64(sum) / float64(len(buckets))
}
