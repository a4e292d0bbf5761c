package stats

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/patagoniaverde/firewatch/internal/domain"
)

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0.0, s.AverageBrightness, "empty input must yield 0, not NaN")
	assert.Equal(t, 0, s.DistinctSatellites)
}

func TestSummarize_CountsAndAverage(t *testing.T) {
	points := []domain.FirePoint{
		{Brightness: 350, Confidence: domain.ConfidenceHigh, Satellite: "Terra"},
		{Brightness: 280, Confidence: domain.ConfidenceMedium, Satellite: "Aqua"},
		{Brightness: 320, Confidence: domain.ConfidenceLow, Satellite: "Terra"},
		{Brightness: 290, Confidence: domain.ConfidenceHigh, Satellite: ""},
	}

	s := Summarize(points)

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.HighConfidence)
	assert.Equal(t, 1, s.MediumConfidence)
	assert.Equal(t, 1, s.LowConfidence)
	assert.InDelta(t, 310.0, s.AverageBrightness, 1e-9)
	assert.Equal(t, 2, s.DistinctSatellites, "empty satellite labels do not count")
}

// The confidence tiers always partition the total.
func TestSummarize_ConfidencePartition(t *testing.T) {
	tiers := []domain.Confidence{domain.ConfidenceHigh, domain.ConfidenceMedium, domain.ConfidenceLow}

	for size := 0; size <= 30; size += 7 {
		points := make([]domain.FirePoint, size)
		for i := range points {
			points[i] = domain.FirePoint{
				Brightness: float64(280 + i),
				Confidence: tiers[i%len(tiers)],
				Satellite:  fmt.Sprintf("sat-%d", i%4),
			}
		}

		s := Summarize(points)
		assert.Equal(t, s.Total, s.HighConfidence+s.MediumConfidence+s.LowConfidence,
			"partition broken at size %d", size)
	}
}

func TestSummarize_SinglePoint(t *testing.T) {
	s := Summarize([]domain.FirePoint{
		{Brightness: 350, Confidence: domain.ConfidenceHigh, Satellite: "Terra"},
	})

	assert.Equal(t, 1, s.Total)
	assert.Equal(t, 1, s.HighConfidence)
	assert.Equal(t, 350.0, s.AverageBrightness)
}
