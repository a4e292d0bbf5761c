// Package stats derives scalar summaries and temporal trends from validated
// point collections. All functions are pure; callers re-invoke them whenever
// the filtered collection changes.
package stats

import "github.com/patagoniaverde/firewatch/internal/domain"

// Summary holds scalar aggregates over one point collection.
type Summary struct {
	Total              int     `json:"total"`
	HighConfidence     int     `json:"highConfidence"`
	MediumConfidence   int     `json:"mediumConfidence"`
	LowConfidence      int     `json:"lowConfidence"`
	AverageBrightness  float64 `json:"averageBrightness"`
	DistinctSatellites int     `json:"distinctSatellites"`
}

// Summarize computes the summary in one pass. The confidence counts always
// partition the total, because validation leaves every point with exactly one
// tier. An empty input yields zeroes, never NaN.
func Summarize(points []domain.FirePoint) Summary {
	s := Summary{Total: len(points)}

	var brightnessSum float64
	satellites := make(map[string]struct{})
	for _, p := range points {
		switch p.Confidence {
		case domain.ConfidenceHigh:
			s.HighConfidence++
		case domain.ConfidenceLow:
			s.LowConfidence++
		default:
			s.MediumConfidence++
		}
		brightnessSum += p.Brightness
		if p.Satellite != "" {
			satellites[p.Satellite] = struct{}{}
		}
	}

	if s.Total > 0 {
		s.AverageBrightness = brightnessSum / float64(s.Total)
	}
	s.DistinctSatellites = len(satellites)
	return s
}
