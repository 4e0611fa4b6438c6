package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/leadlens/leadlens/internal/store"
)

const (
	defaultReportLimit = 50
	maxReportLimit     = 200
)

// listReports returns persisted reports newest first.
func (s *Server) listReports(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		writeError(w, http.StatusServiceUnavailable, "report store not configured")
		return
	}
	limit := queryInt(r, "limit", defaultReportLimit)
	if limit > maxReportLimit {
		limit = maxReportLimit
	}
	offset := queryInt(r, "offset", 0)

	reports, err := s.reports.ListReports(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"reports": reports,
		"limit":   limit,
		"offset":  offset,
	})
}

// getReport returns one persisted report.
func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		writeError(w, http.StatusServiceUnavailable, "report store not configured")
		return
	}
	report, err := s.reports.GetReport(r.Context(), chi.URLParam(r, "report_id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// stats returns aggregates over the report history.
func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		writeError(w, http.StatusServiceUnavailable, "report store not configured")
		return
	}
	stats, err := s.reports.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to aggregate stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
