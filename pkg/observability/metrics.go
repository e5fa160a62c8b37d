package observability

import (
	"net/http"
	"time"

	"github.com/TomerAberbach/website/application/ports"
	"github.com/TomerAberbach/website/application/queries/bus"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the site
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Graph build metrics
	GraphBuilds        *prometheus.CounterVec
	GraphBuildDuration prometheus.Histogram
	GraphPosts         prometheus.Gauge
	GraphVertices      prometheus.Gauge
	GraphEdges         prometheus.Gauge
	GraphExternals     prometheus.Gauge

	// Query metrics
	Queries       *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec

	// Render cache metrics
	RenderCacheHits   prometheus.Counter
	RenderCacheMisses prometheus.Counter
}

// NewCollector creates a metrics collector with its own registry
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		GraphBuilds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "graph_builds_total",
				Help:      "Total number of post graph builds",
			},
			[]string{"status"},
		),
		GraphBuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "graph_build_duration_seconds",
				Help:      "Post graph build duration in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		GraphPosts: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "graph_posts",
				Help:      "Number of posts in the current graph",
			},
		),
		GraphVertices: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "graph_vertices",
				Help:      "Number of vertices in the current graph",
			},
		),
		GraphEdges: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "graph_edges",
				Help:      "Number of edges in the current graph",
			},
		),
		GraphExternals: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "graph_external_vertices",
				Help:      "Number of external site vertices in the current graph",
			},
		),
		Queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Total number of dispatched queries",
			},
			[]string{"query", "result"},
		),
		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Query handling duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"query"},
		),
		RenderCacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "render_cache_hits_total",
				Help:      "Total number of render cache hits",
			},
		),
		RenderCacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "render_cache_misses_total",
				Help:      "Total number of render cache misses",
			},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.GraphBuilds,
		c.GraphBuildDuration,
		c.GraphPosts,
		c.GraphVertices,
		c.GraphEdges,
		c.GraphExternals,
		c.Queries,
		c.QueryDuration,
		c.RenderCacheHits,
		c.RenderCacheMisses,
	)

	return c
}

// RecordBuild implements ports.MetricsRecorder. Gauges only move on success
// since a failed build keeps the previous graph.
func (c *Collector) RecordBuild(stats ports.BuildStats, err error) {
	c.GraphBuildDuration.Observe(stats.Duration.Seconds())
	if err != nil {
		c.GraphBuilds.WithLabelValues("error").Inc()
		return
	}
	c.GraphBuilds.WithLabelValues("success").Inc()
	c.GraphPosts.Set(float64(stats.Posts))
	c.GraphVertices.Set(float64(stats.Vertices))
	c.GraphEdges.Set(float64(stats.Edges))
	c.GraphExternals.Set(float64(stats.ExternalVertices))
}

// RecordRenderCache implements ports.MetricsRecorder
func (c *Collector) RecordRenderCache(hit bool) {
	if hit {
		c.RenderCacheHits.Inc()
	} else {
		c.RenderCacheMisses.Inc()
	}
}

// Increment implements bus.Metrics
func (c *Collector) Increment(metric, label string) {
	switch metric {
	case "query_success":
		c.Queries.WithLabelValues(label, "success").Inc()
	case "query_errors":
		c.Queries.WithLabelValues(label, "error").Inc()
	}
}

// StartTimer implements bus.Metrics
func (c *Collector) StartTimer(metric, label string) bus.Timer {
	if metric != "query_duration" {
		return stopFunc(func() {})
	}
	start := time.Now()
	return stopFunc(func() {
		c.QueryDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	})
}

type stopFunc func()

func (f stopFunc) Stop() { f() }

// Handler serves the collector's registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

var (
	_ ports.MetricsRecorder = (*Collector)(nil)
	_ bus.Metrics           = (*Collector)(nil)
)
