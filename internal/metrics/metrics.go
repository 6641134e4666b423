package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Collector holds the viewer's metrics on a private registry.
type Collector struct {
	registry       *prometheus.Registry
	remoteTotal    *prometheus.CounterVec
	remoteDuration *prometheus.HistogramVec
	precision      *prometheus.HistogramVec
	renderedLines  *prometheus.CounterVec
	staleTotal     *prometheus.CounterVec
	sessions       prometheus.Gauge
}

// NewCollector initializes a new metrics registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	collector := &Collector{
		registry: registry,
		remoteTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "chimera_remote_requests_total", Help: "Requests to the planner/realizer service"},
			[]string{"operation", "status"},
		),
		remoteDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chimera_remote_request_duration_seconds",
				Help:    "Duration of requests to the planner/realizer service",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		precision: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chimera_average_precision",
				Help:    "Average precision of translated plan sets",
				Buckets: prometheus.LinearBuckets(0, 0.1, 11),
			},
			[]string{"kind"},
		),
		renderedLines: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "chimera_rendered_lines_total", Help: "Rendered lines by coverage"},
			[]string{"covered"},
		),
		staleTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "chimera_stale_responses_total", Help: "Responses discarded because a newer request superseded them"},
			[]string{"operation"},
		),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chimera_sessions",
			Help: "Live viewer sessions",
		}),
	}

	registry.MustRegister(
		collector.remoteTotal,
		collector.remoteDuration,
		collector.precision,
		collector.renderedLines,
		collector.staleTotal,
		collector.sessions,
	)
	return collector
}

// ObserveRemote records one call to the remote service.
func (c *Collector) ObserveRemote(operation, status string, duration time.Duration) {
	c.remoteTotal.WithLabelValues(operation, status).Inc()
	c.remoteDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveStale counts a response that arrived after a newer request.
func (c *Collector) ObserveStale(operation string) {
	c.staleTotal.WithLabelValues(operation).Inc()
}

// ObservePrecision records the ranked score and the shuffled baselines.
func (c *Collector) ObservePrecision(ranked float64, shuffled []float64) {
	c.precision.WithLabelValues("ranked").Observe(ranked)
	for _, s := range shuffled {
		c.precision.WithLabelValues("shuffled").Observe(s)
	}
}

// ObserveRelevance counts covered and struck lines.
func (c *Collector) ObserveRelevance(relevance []bool) {
	for _, r := range relevance {
		if r {
			c.renderedLines.WithLabelValues("true").Inc()
		} else {
			c.renderedLines.WithLabelValues("false").Inc()
		}
	}
}

func (c *Collector) SetSessions(n int) {
	c.sessions.Set(float64(n))
}

// Handler exposes the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
