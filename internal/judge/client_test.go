package judge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadlens/leadlens/internal/assess"
)

func TestClientEvaluate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, PhaseFull, req.Phase)

		json.NewEncoder(w).Encode(Response{
			Judgements: []Judgement{
				{CriterionID: "value_proposition", Score: 4, Status: "good"},
			},
			Insights: &Insights{SummaryText: "Solid page overall."},
		})
	}))
	defer srv.Close()

	c, err := NewClient(Config{Endpoint: srv.URL, APIKey: "secret"}, nil)
	require.NoError(t, err)

	resp, err := c.Evaluate(context.Background(), Request{URL: "https://example.se", Phase: PhaseFull})
	require.NoError(t, err)
	require.Len(t, resp.Judgements, 1)
	assert.Equal(t, "value_proposition", resp.Judgements[0].CriterionID)
	require.NotNil(t, resp.Insights)
	assert.Equal(t, "Solid page overall.", resp.Insights.SummaryText)
}

func TestClientErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := NewClient(Config{Endpoint: srv.URL}, nil)
	require.NoError(t, err)

	_, err = c.Evaluate(context.Background(), Request{Phase: PhaseQuick})
	assert.True(t, errors.Is(err, assess.ErrJudgeUnavailable))
}

func TestClientUndecodableBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c, err := NewClient(Config{Endpoint: srv.URL}, nil)
	require.NoError(t, err)

	_, err = c.Evaluate(context.Background(), Request{Phase: PhaseFull})
	assert.True(t, errors.Is(err, assess.ErrJudgeUnavailable))
}

func TestClientTimeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c, err := NewClient(Config{Endpoint: srv.URL, QuickTimeout: 50 * time.Millisecond}, nil)
	require.NoError(t, err)

	_, err = c.Evaluate(context.Background(), Request{Phase: PhaseQuick})
	assert.True(t, errors.Is(err, assess.ErrJudgeUnavailable))
}

func TestNewClientRequiresEndpoint(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{}, nil)
	assert.Error(t, err)
}
