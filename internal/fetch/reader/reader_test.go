package reader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadlens/leadlens/internal/assess"
)

func TestFetchReturnsPlainText(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.RequestURI, "https://example.se")
		assert.Equal(t, "text/plain", r.Header.Get("Accept"))
		assert.Equal(t, "leadlens-bot/0.1", r.Header.Get("User-Agent"))
		w.Write([]byte("# Example\n\nWe book more demos for your team.\n"))
	}))
	defer srv.Close()

	s, err := New(Config{BaseURL: srv.URL, UserAgent: "leadlens-bot/0.1"})
	require.NoError(t, err)
	assert.Equal(t, StrategyName, s.Name())

	payload, err := s.Fetch(context.Background(), "https://example.se", assess.ModeFull)
	require.NoError(t, err)
	assert.Equal(t, assess.PayloadPlainText, payload.Kind)
	assert.Equal(t, StrategyName, payload.Strategy)
	assert.Equal(t, http.StatusOK, payload.StatusCode)
	assert.Contains(t, string(payload.Body), "book more demos")
}

func TestFetchErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream unreachable", http.StatusBadGateway)
	}))
	defer srv.Close()

	s, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = s.Fetch(context.Background(), "https://example.se", assess.ModeQuick)
	assert.Error(t, err)
}

func TestFetchCanceledContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	s, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Fetch(ctx, "https://example.se", assess.ModeFull)
	assert.Error(t, err)
}

func TestNewRequiresBaseURL(t *testing.T) {
	t.Parallel()

	_, err := New(Config{})
	assert.Error(t, err)
}
