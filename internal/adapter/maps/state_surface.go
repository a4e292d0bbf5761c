package maps

import "sync"

// StateSurface is a headless Surface that records the last render. Browser
// clients poll its state through the HTTP API and draw it with whatever map
// library they carry; the server side never holds a real canvas.
type StateSurface struct {
	mu      sync.Mutex
	markers []Marker
	bounds  *Bounds
	padding float64
	empty   bool
	onClick func(pointID string)
}

// NewStateSurface returns an empty surface.
func NewStateSurface() *StateSurface {
	return &StateSurface{}
}

// State is a point-in-time snapshot of the surface.
type State struct {
	Markers []Marker `json:"markers"`
	Bounds  *Bounds  `json:"bounds,omitempty"`
	Padding float64  `json:"padding,omitempty"`
	NoData  bool     `json:"noData"`
}

func (s *StateSurface) SetMarkers(markers []Marker, onClick func(pointID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = markers
	s.onClick = onClick
}

func (s *StateSurface) FitBounds(b Bounds, padding float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bounds = &b
	s.padding = padding
}

func (s *StateSurface) ShowEmptyNotice(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.empty = visible
}

// Click forwards a marker click to the handler registered with the current
// marker set. No-op when nothing has been rendered yet.
func (s *StateSurface) Click(pointID string) {
	s.mu.Lock()
	onClick := s.onClick
	s.mu.Unlock()
	if onClick != nil {
		onClick(pointID)
	}
}

// Snapshot returns a copy of the current state.
func (s *StateSurface) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Markers: make([]Marker, len(s.markers)),
		Padding: s.padding,
		NoData:  s.empty,
	}
	copy(st.Markers, s.markers)
	if s.bounds != nil {
		b := *s.bounds
		st.Bounds = &b
	}
	return st
}
