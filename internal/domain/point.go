package domain

import "time"

// Confidence is the categorical trust level assigned to a detection.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// UnknownSatellite is the sentinel for records whose source instrument is
// missing or malformed.
const UnknownSatellite = "unknown"

// RawRecord is an untrusted upstream record as decoded from JSON or a CSV row.
// Field names and value types are unverified until ValidatePoint runs.
type RawRecord map[string]any

// FirePoint is a validated wildfire detection. Constructed only by
// ValidatePoint and never mutated afterwards; downstream stages derive new
// values instead of writing through.
type FirePoint struct {
	ID         string     `json:"id"`
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	Brightness float64    `json:"brightness"` // brightness temperature, Kelvin
	Date       string     `json:"date"`       // ISO-8601 acquisition instant
	Confidence Confidence `json:"confidence"`
	Satellite  string     `json:"satellite"`

	// Unvalidated pass-through FIRMS metadata.
	FRP     *float64 `json:"frp,omitempty"`
	Scan    *float64 `json:"scan,omitempty"`
	Track   *float64 `json:"track,omitempty"`
	Version string   `json:"version,omitempty"`
}

// When parses the point's acquisition date. Accepted layouts, in order:
// RFC 3339, RFC 3339 without zone, and date-only (YYYY-MM-DD). Zone-less
// layouts are interpreted in loc (nil means UTC).
func (p FirePoint) When(loc *time.Location) (time.Time, error) {
	return ParseWhen(p.Date, loc)
}

// ParseWhen parses an ISO-8601-ish timestamp string the way upstream feeds
// actually write them.
func ParseWhen(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, loc); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", s, loc)
}

// FilterCriteria is the declarative multi-criteria filter a user selects.
// Every field is independently optional; a zero value means "no restriction
// on that dimension" and the zero criteria filters to the identity.
type FilterCriteria struct {
	StartDate        string       `json:"startDate,omitempty"` // inclusive, day granularity (YYYY-MM-DD)
	EndDate          string       `json:"endDate,omitempty"`   // inclusive, day granularity
	MinBrightness    *float64     `json:"minBrightness,omitempty"`
	MaxBrightness    *float64     `json:"maxBrightness,omitempty"`
	ConfidenceLevels []Confidence `json:"confidenceLevels,omitempty"`
	Satellite        string       `json:"satellite,omitempty"`
}

// IsZero reports whether no dimension is active.
func (c FilterCriteria) IsZero() bool {
	return c.StartDate == "" && c.EndDate == "" &&
		c.MinBrightness == nil && c.MaxBrightness == nil &&
		len(c.ConfidenceLevels) == 0 && c.Satellite == ""
}

// Equal reports whether two criteria select the same subset. Used as the
// memoization key for derived recomputation.
func (c FilterCriteria) Equal(o FilterCriteria) bool {
	if c.StartDate != o.StartDate || c.EndDate != o.EndDate || c.Satellite != o.Satellite {
		return false
	}
	if !equalFloatPtr(c.MinBrightness, o.MinBrightness) || !equalFloatPtr(c.MaxBrightness, o.MaxBrightness) {
		return false
	}
	if len(c.ConfidenceLevels) != len(o.ConfidenceLevels) {
		return false
	}
	for i := range c.ConfidenceLevels {
		if c.ConfidenceLevels[i] != o.ConfidenceLevels[i] {
			return false
		}
	}
	return true
}

func equalFloatPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
