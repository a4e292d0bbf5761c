package domain

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"
)

// ConfidenceMapping holds the cutoffs used to fold numeric MODIS confidence
// scores (0-100) into the three-tier enumeration. FIRMS documents no
// canonical thresholds, so both ends are configurable.
type ConfidenceMapping struct {
	HighMin float64 // scores >= HighMin map to high
	LowMax  float64 // scores <= LowMax map to low
}

// DefaultConfidenceMapping returns the operational defaults: >=80 high, <=30 low.
func DefaultConfidenceMapping() ConfidenceMapping {
	return ConfidenceMapping{HighMin: 80, LowMax: 30}
}

// Normalize folds any upstream confidence encoding into a tier. Unrecognized
// or missing input coerces to medium; nothing is ever rejected on confidence.
func (m ConfidenceMapping) Normalize(value any) Confidence {
	if score, ok := asFloat(value); ok {
		switch {
		case score >= m.HighMin:
			return ConfidenceHigh
		case score <= m.LowMax:
			return ConfidenceLow
		default:
			return ConfidenceMedium
		}
	}

	s, _ := value.(string)
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "h":
		return ConfidenceHigh
	case "low", "l":
		return ConfidenceLow
	case "medium", "nominal", "n":
		return ConfidenceMedium
	default:
		return ConfidenceMedium
	}
}

// ValidatePoint turns one untrusted raw record into a FirePoint.
// Returns false when the record is structurally unusable: not an object,
// coordinates missing or out of range, or brightness missing or negative.
// Everything else is coerced rather than rejected, because FIRMS feeds are
// noisy and a partial record must not abort the batch.
func ValidatePoint(raw RawRecord, index int, mapping ConfidenceMapping) (FirePoint, bool) {
	if raw == nil {
		return FirePoint{}, false
	}

	lat, ok := asFloat(raw["latitude"])
	if !ok || lat < -90 || lat > 90 {
		return FirePoint{}, false
	}
	lng, ok := asFloat(raw["longitude"])
	if !ok || lng < -180 || lng > 180 {
		return FirePoint{}, false
	}

	brightness, ok := asFloat(raw["brightness"])
	if !ok {
		// VIIRS CSV exports name the channel instead.
		brightness, ok = asFloat(raw["bright_ti4"])
	}
	if !ok || brightness < 0 {
		return FirePoint{}, false
	}

	p := FirePoint{
		ID:         synthesizeID(raw["id"], index),
		Latitude:   lat,
		Longitude:  lng,
		Brightness: brightness,
		Date:       acquisitionDate(raw),
		Confidence: mapping.Normalize(raw["confidence"]),
		Satellite:  satelliteLabel(raw["satellite"]),
		FRP:        optionalFloat(raw["frp"]),
		Scan:       optionalFloat(raw["scan"]),
		Track:      optionalFloat(raw["track"]),
	}
	if v, isStr := raw["version"].(string); isStr {
		p.Version = v
	}
	return p, true
}

// ValidateBatch runs ValidatePoint over a whole raw batch, dropping rejects.
// An all-malformed batch yields an empty, non-nil slice, never an error.
func ValidateBatch(raws []RawRecord, mapping ConfidenceMapping, logger *slog.Logger) []FirePoint {
	points := make([]FirePoint, 0, len(raws))
	for i, raw := range raws {
		p, ok := ValidatePoint(raw, i, mapping)
		if !ok {
			if logger != nil {
				logger.Debug("dropping malformed record", "index", i)
			}
			continue
		}
		points = append(points, p)
	}
	return points
}

// acquisitionDate resolves the record's instant: an explicit ISO "date",
// the CSV acq_date/acq_time pair, or the current time as a last resort.
func acquisitionDate(raw RawRecord) string {
	if d, ok := raw["date"].(string); ok && d != "" {
		return d
	}
	if d, ok := raw["acq_date"].(string); ok && d != "" {
		return combineAcqTime(d, raw["acq_time"])
	}
	return clock.Now().UTC().Format(time.RFC3339)
}

// combineAcqTime merges a YYYY-MM-DD date with an HHMM acquisition time into
// an RFC 3339 UTC instant. Three-digit times are zero-padded ("930" → "0930").
// An unusable time component leaves the bare date, which still parses at day
// granularity.
func combineAcqTime(date string, timeVal any) string {
	hhmm := ""
	switch v := timeVal.(type) {
	case string:
		hhmm = strings.TrimSpace(v)
	case float64:
		hhmm = strconv.Itoa(int(v))
	case int:
		hhmm = strconv.Itoa(v)
	}
	if len(hhmm) == 3 {
		hhmm = "0" + hhmm
	}
	if len(hhmm) != 4 {
		return date
	}

	hour, errH := strconv.Atoi(hhmm[:2])
	mins, errM := strconv.Atoi(hhmm[2:])
	if errH != nil || errM != nil || hour > 23 || mins > 59 {
		return date
	}
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, mins, 0, 0, time.UTC).Format(time.RFC3339)
}

// synthesizeID keeps an upstream string ID, or derives one from the batch
// index and the clock. The index keeps synthesized IDs unique within a pass.
func synthesizeID(value any, index int) string {
	if id, ok := value.(string); ok && id != "" {
		return id
	}
	return fmt.Sprintf("fire-%d-%d", index, clock.Now().UnixMilli())
}

func satelliteLabel(value any) string {
	s, ok := value.(string)
	if !ok {
		return UnknownSatellite
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return UnknownSatellite
	}
	return s
}

// asFloat coerces the value forms raw feeds actually use: JSON numbers,
// numeric strings, and json.Number. NaN and infinities are not finite numbers
// and fail the coercion.
func asFloat(value any) (float64, bool) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func optionalFloat(value any) *float64 {
	if value == nil {
		return nil
	}
	f, ok := asFloat(value)
	if !ok {
		return nil
	}
	return &f
}
