// Package metrics holds the Prometheus instruments for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles every instrument on one registry so tests can use
// isolated registries instead of the global default.
type Metrics struct {
	Registry *prometheus.Registry

	PipelineRuns     *prometheus.CounterVec
	PipelineDuration prometheus.Histogram
	Simulations      *prometheus.CounterVec
	CommentaryCache  *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

// New creates the instruments and registers them.
func New() *Metrics {
	m := &Metrics{Registry: prometheus.NewRegistry()}

	m.PipelineRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "capmatch_pipeline_runs_total",
		Help: "Pipeline executions by outcome.",
	}, []string{"outcome"})

	m.PipelineDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "capmatch_pipeline_duration_seconds",
		Help:    "Wall time of full pipeline runs.",
		Buckets: prometheus.DefBuckets,
	})

	m.Simulations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "capmatch_trade_simulations_total",
		Help: "Trade simulations by rule version and salary-match outcome.",
	}, []string{"rule", "salary_match"})

	m.CommentaryCache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "capmatch_commentary_cache_total",
		Help: "Commentary cache lookups by result.",
	}, []string{"result"})

	m.HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "capmatch_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})

	m.HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "capmatch_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	m.Registry.MustRegister(
		m.PipelineRuns, m.PipelineDuration, m.Simulations,
		m.CommentaryCache, m.HTTPRequests, m.HTTPDuration,
	)
	return m
}

// ObserveSimulation records one simulation.
func (m *Metrics) ObserveSimulation(rule string, salaryMatch bool) {
	outcome := "fail"
	if salaryMatch {
		outcome = "pass"
	}
	m.Simulations.WithLabelValues(rule, outcome).Inc()
}
