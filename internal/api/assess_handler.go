package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/leadlens/leadlens/internal/fetch"
	"github.com/leadlens/leadlens/internal/stream"
)

type assessRequest struct {
	URL string `json:"url"`
}

// assess runs one assessment and streams its frames as newline-delimited
// JSON. The URL is validated before any byte of the stream is written, so an
// invalid URL is still a plain 400.
func (s *Server) assess(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if r.Method == http.MethodPost {
		var req assessRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
			writeError(w, http.StatusBadRequest, "missing url")
			return
		}
		rawURL = req.URL
	}
	if rawURL == "" {
		writeError(w, http.StatusBadRequest, "missing url")
		return
	}
	if _, err := fetch.NormalizeURL(rawURL); err != nil {
		writeError(w, http.StatusBadRequest, "invalid url")
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	enc := stream.NewEncoder(w, flusher)

	if _, err := s.orch.Run(r.Context(), rawURL, enc); err != nil {
		// Run only errors before emitting frames; by now the URL has been
		// validated, so this is unexpected.
		s.logger.Error("assessment run failed before streaming", zap.Error(err))
	}
}
