// Package httpapi exposes the unified dataset over HTTP for the dashboard
// UI, alongside health and metrics endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skysweep/meteoq/internal/domain"
	"github.com/skysweep/meteoq/internal/unified"
)

// Server wires the dataset service and its collaborators into HTTP routes.
type Server struct {
	httpServer *http.Server
	datasets   unified.DatasetFetcher
	catalog    *domain.Catalog
	geocoder   domain.Geocoder         // optional
	timezones  domain.TimezoneResolver // optional
	logger     *slog.Logger
}

// NewServer creates an HTTP server with dataset, catalog, health, and
// metrics routes.
func NewServer(addr string, datasets unified.DatasetFetcher, catalog *domain.Catalog, geocoder domain.Geocoder, timezones domain.TimezoneResolver, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:    addr,
			Handler: mux,
			// Dataset responses can take minutes for multi-year ranges.
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 5 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		datasets:  datasets,
		catalog:   catalog,
		geocoder:  geocoder,
		timezones: timezones,
		logger:    logger,
	}

	mux.HandleFunc("GET /api/unified", s.handleUnified)
	mux.HandleFunc("GET /api/variables", s.handleVariables)
	mux.HandleFunc("GET /api/timezone", s.handleTimezone)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

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

// handleUnified answers one acquisition request. The location comes either
// as location=lat,lon or, when a geocoder is configured, as free-form
// address= text.
func (s *Server) handleUnified(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	location := q.Get("location")
	if address := q.Get("address"); address != "" && location == "" {
		if s.geocoder == nil {
			writeError(w, http.StatusBadRequest, errors.New("address lookup is not configured; pass location=lat,lon"))
			return
		}
		result, err := s.geocoder.Geocode(r.Context(), address)
		if err != nil {
			writeError(w, http.StatusBadGateway, err)
			return
		}
		location = result.Point.String()
	}

	req := unified.Request{
		Variables: q.Get("variables"),
		Location:  location,
		Mode:      q.Get("mode"),
		StartDate: q.Get("start"),
		EndDate:   q.Get("end"),
	}

	ds, err := s.datasets.Fetch(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

func (s *Server) handleVariables(w http.ResponseWriter, _ *http.Request) {
	names := s.catalog.Names()
	vars := make([]domain.VariableDescriptor, 0, len(names))
	for _, n := range names {
		d, err := s.catalog.Lookup(n)
		if err != nil {
			continue
		}
		vars = append(vars, d)
	}

	type entry struct {
		Name     string `json:"name"`
		Category string `json:"category"`
		Cadence  string `json:"cadence"`
	}
	out := make([]entry, 0, len(vars))
	for _, d := range vars {
		out = append(out, entry{Name: d.Name, Category: string(d.Category), Cadence: string(d.Cadence)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"variables": out})
}

func (s *Server) handleTimezone(w http.ResponseWriter, r *http.Request) {
	if s.timezones == nil {
		writeError(w, http.StatusNotFound, errors.New("timezone resolution is not configured"))
		return
	}

	lat, lon, err := domain.ParseLocation(r.URL.Query().Get("location"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	tz, err := s.timezones.TimezoneAt(r.Context(), lat, lon)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"timezone": tz})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// statusFor maps the error taxonomy to HTTP statuses: caller mistakes are
// 400s, provider trouble is a gateway problem.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownVariable),
		errors.Is(err, domain.ErrInvalidLocation),
		errors.Is(err, domain.ErrInvalidMode),
		errors.Is(err, domain.ErrInvalidRange),
		errors.Is(err, domain.ErrEmptyRange):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, domain.ErrorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
