// Package metrics records client-side Prometheus metrics for backend calls,
// the circuit breaker, the response cache and session fetches.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for requests.
const (
	OutcomeSuccess    = "success"
	OutcomeUserError  = "user_error"
	OutcomeServer     = "server_error"
	OutcomeUnexpected = "unexpected"
	OutcomeTransport  = "transport"
	OutcomeRejected   = "rejected"
)

// Recorder is what the API client, cache and session store report to.
type Recorder interface {
	RecordRequest(endpoint, outcome string, latency time.Duration)
	RecordHTTPStatus(statusCode int)
	RecordRetry(endpoint string)
	RecordBreakerState(state string)
	RecordCache(hit bool)
	RecordSessionFetch(ok bool)
}

// Collector is the Prometheus Recorder.
type Collector struct {
	requests     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	httpStatus   *prometheus.CounterVec
	retries      *prometheus.CounterVec
	breaker      *prometheus.GaugeVec
	cache        *prometheus.CounterVec
	sessionFetch *prometheus.CounterVec
}

var breakerStates = []string{"closed", "open", "half-open"}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recyclify_api_requests_total",
			Help: "Backend requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recyclify_api_request_duration_seconds",
			Help:    "Backend request latency including retries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recyclify_api_http_status_total",
			Help: "Responses by HTTP status code.",
		}, []string{"status_code"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recyclify_api_retries_total",
			Help: "Retried backend requests by endpoint.",
		}, []string{"endpoint"}),
		breaker: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "recyclify_api_circuit_state",
			Help: "1 for the current circuit breaker state.",
		}, []string{"state"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recyclify_cache_lookups_total",
			Help: "Response cache lookups by result.",
		}, []string{"result"}),
		sessionFetch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recyclify_session_fetch_total",
			Help: "User detail fetches by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		c.requests,
		c.latency,
		c.httpStatus,
		c.retries,
		c.breaker,
		c.cache,
		c.sessionFetch,
	)
	c.RecordBreakerState("closed")

	return c
}

func (c *Collector) RecordRequest(endpoint, outcome string, latency time.Duration) {
	c.requests.WithLabelValues(endpoint, outcome).Inc()
	c.latency.WithLabelValues(endpoint).Observe(latency.Seconds())
}

func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

func (c *Collector) RecordRetry(endpoint string) {
	c.retries.WithLabelValues(endpoint).Inc()
}

// RecordBreakerState sets the gauge for state to 1 and the others to 0.
func (c *Collector) RecordBreakerState(state string) {
	for _, s := range breakerStates {
		v := 0.0
		if s == state {
			v = 1
		}
		c.breaker.WithLabelValues(s).Set(v)
	}
}

func (c *Collector) RecordCache(hit bool) {
	if hit {
		c.cache.WithLabelValues("hit").Inc()
		return
	}
	c.cache.WithLabelValues("miss").Inc()
}

func (c *Collector) RecordSessionFetch(ok bool) {
	if ok {
		c.sessionFetch.WithLabelValues("ok").Inc()
		return
	}
	c.sessionFetch.WithLabelValues("error").Inc()
}

// WriteSnapshot writes every metric in g to path in the text exposition
// format. A short-lived CLI has no scrape endpoint, so this is how its
// metrics leave the process.
func WriteSnapshot(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordRequest(string, string, time.Duration) {}
func (Nop) RecordHTTPStatus(int)                        {}
func (Nop) RecordRetry(string)                          {}
func (Nop) RecordBreakerState(string)                   {}
func (Nop) RecordCache(bool)                            {}
func (Nop) RecordSessionFetch(bool)                     {}
