// Package http exposes the service over REST plus the usual health,
// readiness, and metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/patagoniaverde/firewatch/internal/adapter/maps"
	"github.com/patagoniaverde/firewatch/internal/app"
	"github.com/patagoniaverde/firewatch/internal/domain"
	"github.com/patagoniaverde/firewatch/internal/ingest"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the fire collection API along with health, readiness, and
// metrics routes.
type Server struct {
	httpServer *http.Server
	controller *app.Controller
	surface    *maps.StateSurface
	logger     *slog.Logger
}

// NewServer wires all routes. The surface is optional; without it the map
// state route responds 404.
func NewServer(addr string, controller *app.Controller, ready ReadinessChecker, surface *maps.StateSurface, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		controller: controller,
		surface:    surface,
		logger:     logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/fires", s.handleFires)
	mux.HandleFunc("GET /api/fires/stats", s.handleStats)
	mux.HandleFunc("GET /api/fires/trend", s.handleTrend)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	mux.HandleFunc("PUT /api/criteria", s.handleSetCriteria)
	mux.HandleFunc("GET /api/criteria", s.handleGetCriteria)
	if surface != nil {
		mux.HandleFunc("GET /api/map", s.handleMapState)
		mux.HandleFunc("POST /api/map/select/{id}", s.handleMapSelect)
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// handleFires serves the filtered collection. Without query parameters the
// applied criteria govern; criteria in the query string are evaluated ad hoc
// and do not change server state.
func (s *Server) handleFires(w http.ResponseWriter, r *http.Request) {
	view, err := s.resolveView(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"fires":      view.Points,
		"count":      len(view.Points),
		"loading":    view.Loading,
		"error":      errString(view.Err),
		"generation": view.Generation,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	view, err := s.resolveView(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, view.Summary)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	view, err := s.resolveView(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, view.Trend)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.Refresh(r.Context()); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, ingest.ErrStructure) || errors.Is(err, ingest.ErrNoValidRecords) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err)
		return
	}
	view := s.controller.View()
	writeJSON(w, http.StatusOK, map[string]any{
		"count":      view.Summary.Total,
		"generation": view.Generation,
	})
}

func (s *Server) handleSetCriteria(w http.ResponseWriter, r *http.Request) {
	var criteria domain.FilterCriteria
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid criteria body: %w", err))
		return
	}
	s.controller.SetCriteria(criteria)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleGetCriteria(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.controller.Criteria())
}

func (s *Server) handleMapState(w http.ResponseWriter, _ *http.Request) {
	s.controller.View()
	writeJSON(w, http.StatusOK, s.surface.Snapshot())
}

func (s *Server) handleMapSelect(w http.ResponseWriter, r *http.Request) {
	// Clear first so a click on an unknown marker cannot echo a previous
	// selection.
	s.controller.ClearSelection()
	s.surface.Click(r.PathValue("id"))
	selected, ok := s.controller.Selected()
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("no such marker"))
		return
	}
	writeJSON(w, http.StatusOK, selected)
}

func (s *Server) resolveView(r *http.Request) (app.View, error) {
	if len(r.URL.Query()) == 0 {
		return s.controller.View(), nil
	}
	criteria, err := criteriaFromQuery(r)
	if err != nil {
		return app.View{}, err
	}
	return s.controller.Query(criteria), nil
}

func criteriaFromQuery(r *http.Request) (domain.FilterCriteria, error) {
	q := r.URL.Query()
	criteria := domain.FilterCriteria{
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		Satellite: q.Get("satellite"),
	}
	for _, key := range []string{"minBrightness", "maxBrightness"} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.FilterCriteria{}, fmt.Errorf("invalid %s %q", key, raw)
		}
		if key == "minBrightness" {
			criteria.MinBrightness = &f
		} else {
			criteria.MaxBrightness = &f
		}
	}
	if raw := q.Get("confidence"); raw != "" {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				criteria.ConfidenceLevels = append(criteria.ConfidenceLevels, domain.Confidence(c))
			}
		}
	}
	return criteria, nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
