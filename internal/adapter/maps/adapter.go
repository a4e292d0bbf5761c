// Package maps projects the filtered point collection onto map markers with
// a deterministic visual encoding and wires marker clicks back into
// application state. The rendering surface sits behind a minimal interface so
// the core never depends on any concrete map library's API shape.
package maps

import (
	"log/slog"
	"sync"

	"github.com/patagoniaverde/firewatch/internal/domain"
)

// Marker colors keyed by confidence tier. Fixed; the encoding is part of the
// visual contract.
const (
	ColorHigh   = "#f03b20"
	ColorMedium = "#feb24c"
	ColorLow    = "#ffeda0"
)

// Marker radius scales with brightness and is clamped to a bounded visual
// range so a runaway value cannot blot out the map.
const (
	minRadius          = 5
	maxRadius          = 15
	brightnessPerPixel = 30

	// BoundsPadding is the fixed padding factor applied when fitting the
	// viewport around the marker set.
	BoundsPadding = 0.1
)

// Marker is one rendered detection.
type Marker struct {
	PointID   string  `json:"pointId"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Color     string  `json:"color"`
	Radius    float64 `json:"radius"`
}

// Bounds is the rectangle enclosing a marker set.
type Bounds struct {
	MinLat float64 `json:"minLat"`
	MinLng float64 `json:"minLng"`
	MaxLat float64 `json:"maxLat"`
	MaxLng float64 `json:"maxLng"`
}

// Surface is the external map-rendering collaborator. SetMarkers replaces
// the entire marker set; the surface reports clicks through the callback it
// was handed with that set.
type Surface interface {
	SetMarkers(markers []Marker, onClick func(pointID string))
	FitBounds(b Bounds, padding float64)
	ShowEmptyNotice(visible bool)
}

// Adapter keeps the surface synchronized with the current filtered
// collection.
type Adapter struct {
	surface Surface
	logger  *slog.Logger

	mu       sync.Mutex
	current  map[string]domain.FirePoint
	onSelect func(domain.FirePoint)
}

// NewAdapter creates an Adapter bound to one surface.
func NewAdapter(surface Surface, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{surface: surface, logger: logger}
}

// Render fully replaces the rendered marker set with the given collection.
// Clicks resolve against exactly this collection: markers from any previous
// render can no longer select anything.
func (a *Adapter) Render(points []domain.FirePoint, onSelect func(domain.FirePoint)) {
	current := make(map[string]domain.FirePoint, len(points))
	for _, p := range points {
		current[p.ID] = p
	}

	a.mu.Lock()
	a.current = current
	a.onSelect = onSelect
	a.mu.Unlock()

	a.surface.SetMarkers(Project(points), a.handleClick)
	a.surface.ShowEmptyNotice(len(points) == 0)
}

// FitToPoints adjusts the viewport to enclose the collection. An empty
// collection leaves the viewport exactly where it was.
func (a *Adapter) FitToPoints(points []domain.FirePoint) {
	b, ok := BoundsFor(points)
	if !ok {
		return
	}
	a.surface.FitBounds(b, BoundsPadding)
}

func (a *Adapter) handleClick(pointID string) {
	a.mu.Lock()
	p, ok := a.current[pointID]
	onSelect := a.onSelect
	a.mu.Unlock()

	if !ok {
		a.logger.Debug("ignoring click on stale marker", "point_id", pointID)
		return
	}
	if onSelect != nil {
		onSelect(p)
	}
}

// Project maps points to markers with the deterministic visual encoding.
func Project(points []domain.FirePoint) []Marker {
	markers := make([]Marker, len(points))
	for i, p := range points {
		markers[i] = Marker{
			PointID:   p.ID,
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
			Color:     MarkerColor(p.Confidence),
			Radius:    markerRadius(p.Brightness),
		}
	}
	return markers
}

// MarkerColor returns the fixed color for a confidence tier.
func MarkerColor(c domain.Confidence) string {
	switch c {
	case domain.ConfidenceHigh:
		return ColorHigh
	case domain.ConfidenceLow:
		return ColorLow
	default:
		return ColorMedium
	}
}

// markerRadius grows monotonically with brightness, clamped to the visual
// range.
func markerRadius(brightness float64) float64 {
	r := brightness / brightnessPerPixel
	if r < minRadius {
		return minRadius
	}
	if r > maxRadius {
		return maxRadius
	}
	return r
}

// BoundsFor computes the enclosing rectangle. Returns false for an empty
// collection.
func BoundsFor(points []domain.FirePoint) (Bounds, bool) {
	if len(points) == 0 {
		return Bounds{}, false
	}
	b := Bounds{
		MinLat: points[0].Latitude, MaxLat: points[0].Latitude,
		MinLng: points[0].Longitude, MaxLng: points[0].Longitude,
	}
	for _, p := range points[1:] {
		if p.Latitude < b.MinLat {
			b.MinLat = p.Latitude
		}
		if p.Latitude > b.MaxLat {
			b.MaxLat = p.Latitude
		}
		if p.Longitude < b.MinLng {
			b.MinLng = p.Longitude
		}
		if p.Longitude > b.MaxLng {
			b.MaxLng = p.Longitude
		}
	}
	return b, true
}
