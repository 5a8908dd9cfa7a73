package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ErlanBelekov/jobbee-api/internal/health"
)

var (
	// Candidate list metrics

	ApplyOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobbee",
		Name:      "apply_outcomes_total",
		Help:      "Job applications, by outcome.",
	}, []string{"outcome"})

	ResumeCleanupFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "jobbee",
		Name:      "resume_cleanup_failures_total",
		Help:      "Resume files that could not be deleted after their candidate entry was removed.",
	})

	// Janitor metrics

	JanitorRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobbee",
		Name:      "janitor_runs_total",
		Help:      "Janitor cycles, by result.",
	}, []string{"result"})

	JanitorClearedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "jobbee",
		Name:      "janitor_reset_tokens_cleared_total",
		Help:      "Expired password reset tokens cleared by the janitor.",
	})

	JanitorCycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "jobbee",
		Name:      "janitor_cycle_duration_seconds",
		Help:      "Time taken for one janitor cycle.",
		Buckets:   prometheus.DefBuckets,
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "jobbee",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobbee",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

// Apply outcome labels.
const (
	OutcomeApplied   = "applied"
	OutcomeDuplicate = "duplicate"
	OutcomeClosed    = "closed"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

func Register() {
	prometheus.MustRegister(
		ApplyOutcomes,
		ResumeCleanupFailures,
		JanitorRunsTotal,
		JanitorClearedTotal,
		JanitorCycleDuration,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// NewServer serves /metrics plus the liveness and readiness probes.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Readiness(r.Context()))
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, res health.HealthResult) {
	w.Header().Set("Content-Type", "application/json")
	if res.Status != "up" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(res)
}
