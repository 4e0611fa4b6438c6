// Package metrics exposes Prometheus collectors for the assessment service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	assessRunsTotal            *prometheus.CounterVec
	fetchDurationSeconds       *prometheus.HistogramVec
	fetchCacheLookupsTotal     *prometheus.CounterVec
	streamFramesTotal          *prometheus.CounterVec
	judgeCallsTotal            *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		assessRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assess_runs_total",
				Help: "Total number of assessment runs, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fetch_duration_seconds",
				Help:    "Histogram of page retrieval latencies, labeled by strategy and result.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"strategy", "result"},
		)

		fetchCacheLookupsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fetch_cache_lookups_total",
				Help: "Total number of document cache lookups, labeled by result.",
			},
			[]string{"result"},
		)

		streamFramesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stream_frames_total",
				Help: "Total number of stream frames emitted, labeled by type.",
			},
			[]string{"type"},
		)

		judgeCallsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "judge_calls_total",
				Help: "Total number of judge invocations, labeled by phase and outcome.",
			},
			[]string{"phase", "outcome"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRun increments the assessment run counter for the given outcome.
func ObserveRun(outcome string) {
	Init()
	assessRunsTotal.WithLabelValues(outcome).Inc()
}

// ObserveFetch records one strategy attempt and its latency.
func ObserveFetch(strategy string, ok bool, duration time.Duration) {
	Init()
	result := "error"
	if ok {
		result = "ok"
	}
	fetchDurationSeconds.WithLabelValues(strategy, result).Observe(duration.Seconds())
}

// ObserveCacheLookup increments the cache lookup counter.
func ObserveCacheLookup(hit bool) {
	Init()
	result := "miss"
	if hit {
		result = "hit"
	}
	fetchCacheLookupsTotal.WithLabelValues(result).Inc()
}

// ObserveFrame increments the emitted frame counter for the given frame type.
func ObserveFrame(frameType string) {
	Init()
	streamFramesTotal.WithLabelValues(frameType).Inc()
}

// ObserveJudgeCall increments the judge call counter.
func ObserveJudgeCall(phase string, ok bool) {
	Init()
	outcome := "error"
	if ok {
		outcome = "ok"
	}
	judgeCallsTotal.WithLabelValues(phase, outcome).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
