package markup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadlens/leadlens/internal/assess"
)

func TestFetchReturnsMarkup(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "leadlens-bot/0.1", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><head><title>Example</title></head><body></body></html>"))
	}))
	defer srv.Close()

	s := New(Config{UserAgent: "leadlens-bot/0.1"})
	assert.Equal(t, StrategyName, s.Name())

	payload, err := s.Fetch(context.Background(), srv.URL, assess.ModeFull)
	require.NoError(t, err)
	assert.Equal(t, assess.PayloadMarkup, payload.Kind)
	assert.Equal(t, StrategyName, payload.Strategy)
	assert.Equal(t, http.StatusOK, payload.StatusCode)
	assert.Contains(t, string(payload.Body), "<title>Example</title>")
	assert.Positive(t, payload.Duration)
}

func TestFetchQuickModeCapsBody(t *testing.T) {
	t.Parallel()

	big := "<html><body>" + strings.Repeat("x", 4096) + "</body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(big))
	}))
	defer srv.Close()

	s := New(Config{QuickBodyLimit: 1024})
	payload, err := s.Fetch(context.Background(), srv.URL, assess.ModeQuick)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(payload.Body), 1024)
}

func TestFetchServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := New(Config{})
	_, err := s.Fetch(context.Background(), srv.URL, assess.ModeFull)
	assert.Error(t, err)
}

func TestFetchCanceledContext(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	s := New(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Fetch(ctx, srv.URL, assess.ModeQuick)
	assert.Error(t, err)
}

func TestFetchUnreachableHost(t *testing.T) {
	t.Parallel()

	s := New(Config{})
	_, err := s.Fetch(context.Background(), "http://127.0.0.1:1", assess.ModeFull)
	assert.Error(t, err)
}
