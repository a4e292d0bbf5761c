package maps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patagoniaverde/firewatch/internal/domain"
)

func point(id string, lat, lng, brightness float64, conf domain.Confidence) domain.FirePoint {
	return domain.FirePoint{
		ID:         id,
		Latitude:   lat,
		Longitude:  lng,
		Brightness: brightness,
		Date:       "2026-03-15",
		Confidence: conf,
		Satellite:  "VIIRS",
	}
}

func TestProjectEncoding(t *testing.T) {
	points := []domain.FirePoint{
		point("a", -41.5, -72.9, 360, domain.ConfidenceHigh),
		point("b", -42.1, -73.2, 60, domain.ConfidenceMedium),
		point("c", -40.8, -71.5, 900, domain.ConfidenceLow),
	}

	markers := Project(points)
	require.Len(t, markers, 3)

	assert.Equal(t, ColorHigh, markers[0].Color)
	assert.Equal(t, ColorMedium, markers[1].Color)
	assert.Equal(t, ColorLow, markers[2].Color)

	assert.Equal(t, 12.0, markers[0].Radius, "360/30")
	assert.Equal(t, 5.0, markers[1].Radius, "clamped to minimum")
	assert.Equal(t, 15.0, markers[2].Radius, "clamped to maximum")

	assert.Equal(t, "a", markers[0].PointID)
	assert.Equal(t, -41.5, markers[0].Latitude)
	assert.Equal(t, -72.9, markers[0].Longitude)
}

func TestRenderReplacesMarkerSet(t *testing.T) {
	surface := NewStateSurface()
	adapter := NewAdapter(surface, nil)

	adapter.Render([]domain.FirePoint{
		point("a", -41.5, -72.9, 300, domain.ConfidenceHigh),
		point("b", -42.1, -73.2, 300, domain.ConfidenceLow),
	}, nil)
	require.Len(t, surface.Snapshot().Markers, 2)
	assert.False(t, surface.Snapshot().NoData)

	adapter.Render([]domain.FirePoint{
		point("c", -40.8, -71.5, 300, domain.ConfidenceMedium),
	}, nil)
	st := surface.Snapshot()
	require.Len(t, st.Markers, 1)
	assert.Equal(t, "c", st.Markers[0].PointID)
}

func TestRenderEmptyShowsNotice(t *testing.T) {
	surface := NewStateSurface()
	adapter := NewAdapter(surface, nil)

	adapter.Render(nil, nil)
	st := surface.Snapshot()
	assert.Empty(t, st.Markers)
	assert.True(t, st.NoData)

	adapter.Render([]domain.FirePoint{point("a", -41.5, -72.9, 300, domain.ConfidenceHigh)}, nil)
	assert.False(t, surface.Snapshot().NoData)
}

func TestClickSelectsCurrentPoint(t *testing.T) {
	surface := NewStateSurface()
	adapter := NewAdapter(surface, nil)

	var selected []string
	onSelect := func(p domain.FirePoint) { selected = append(selected, p.ID) }

	adapter.Render([]domain.FirePoint{
		point("a", -41.5, -72.9, 300, domain.ConfidenceHigh),
		point("b", -42.1, -73.2, 300, domain.ConfidenceLow),
	}, onSelect)

	surface.Click("b")
	require.Equal(t, []string{"b"}, selected)

	// Re-render without b; its marker can no longer select anything.
	adapter.Render([]domain.FirePoint{
		point("a", -41.5, -72.9, 300, domain.ConfidenceHigh),
	}, onSelect)
	surface.Click("b")
	assert.Equal(t, []string{"b"}, selected)

	surface.Click("a")
	assert.Equal(t, []string{"b", "a"}, selected)
}

func TestFitToPoints(t *testing.T) {
	surface := NewStateSurface()
	adapter := NewAdapter(surface, nil)

	adapter.FitToPoints([]domain.FirePoint{
		point("a", -41.5, -72.9, 300, domain.ConfidenceHigh),
		point("b", -43.2, -71.1, 300, domain.ConfidenceLow),
		point("c", -40.8, -73.8, 300, domain.ConfidenceMedium),
	})

	st := surface.Snapshot()
	require.NotNil(t, st.Bounds)
	assert.Equal(t, Bounds{MinLat: -43.2, MinLng: -73.8, MaxLat: -40.8, MaxLng: -71.1}, *st.Bounds)
	assert.Equal(t, BoundsPadding, st.Padding)
}

func TestFitToPointsEmptyLeavesViewport(t *testing.T) {
	surface := NewStateSurface()
	adapter := NewAdapter(surface, nil)

	adapter.FitToPoints(nil)
	assert.Nil(t, surface.Snapshot().Bounds)
}

func TestBoundsForSinglePoint(t *testing.T) {
	b, ok := BoundsFor([]domain.FirePoint{point("a", -41.5, -72.9, 300, domain.ConfidenceHigh)})
	require.True(t, ok)
	assert.Equal(t, Bounds{MinLat: -41.5, MinLng: -72.9, MaxLat: -41.5, MaxLng: -72.9}, b)
}
