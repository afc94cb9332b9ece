// package metrics exposes Prometheus collectors for the HTTP server, the job queue and the count pipeline
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wordcount"

// Path is where the registry is mounted.
const Path = "/metrics"

// Metrics owns a private registry so tests and multiple servers in one process do not collide.
//
// All methods are safe to call on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	jobs     *prometheus.CounterVec
	outcomes *prometheus.CounterVec
	words    prometheus.Counter
	handler  http.Handler
}

// New creates a [Metrics] with Go runtime and process collectors registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Queue jobs by lifecycle event (enqueued, finished, failed).",
		}, []string{"event"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "count_outcomes_total",
			Help:      "Fetch-and-count runs by outcome kind.",
		}, []string{"kind"}),
		words: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "words_counted_total",
			Help:      "Tokens counted across all persisted results.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.latency, m.jobs, m.outcomes, m.words,
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return m.handler
}

// ServeHTTP serves the registry, so a [Metrics] can be mounted as a router handler.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.Handler().ServeHTTP(w, r)
}

// Routes returns the path the registry is served on.
func (m *Metrics) Routes() []string { return []string{Path} }

// QueueDepth registers a gauge that calls depth on every scrape.
func (m *Metrics) QueueDepth(depth func() float64) {
	if m == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Jobs waiting on the queue.",
	}, depth))
}

func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) JobEvent(event string) {
	if m == nil {
		return
	}
	m.jobs.WithLabelValues(event).Inc()
}

func (m *Metrics) Outcome(kind string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(kind).Inc()
}

func (m *Metrics) WordsCounted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.words.Add(float64(n))
}
