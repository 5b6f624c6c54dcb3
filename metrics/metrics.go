// Package metrics exposes the portal's Prometheus counters and the server
// that publishes them.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector groups the counters updated by the resolution pipeline.
// A nil *Collector is valid and records nothing.
type Collector struct {
	resolutions *prometheus.CounterVec
	blobFetches *prometheus.CounterVec
	requests    *prometheus.CounterVec
}

// NewCollector registers the portal counters on reg.
func NewCollector(namespace string, reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "object_resolutions_total",
			Help:      "Subdomain to object id resolutions by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		blobFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blob_fetch_attempts_total",
			Help:      "Blob fetch attempts by source and outcome.",
		}, []string{"source", "outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests by route and status code.",
		}, []string{"route", "status"}),
	}

	for _, collector := range []prometheus.Collector{c.resolutions, c.blobFetches, c.requests} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ObserveResolution counts one strategy outcome.
func (c *Collector) ObserveResolution(strategy, outcome string) {
	if c == nil {
		return
	}
	c.resolutions.WithLabelValues(strategy, outcome).Inc()
}

// ObserveBlobFetch counts one fetch attempt against a blob source.
func (c *Collector) ObserveBlobFetch(source, outcome string) {
	if c == nil {
		return
	}
	c.blobFetches.WithLabelValues(source, outcome).Inc()
}

// ObserveRequest counts one finished API request.
func (c *Collector) ObserveRequest(route, status string) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(route, status).Inc()
}

// MetricsServer serves the Prometheus registry over HTTP.
type MetricsServer struct {
	registry  *prometheus.Registry
	collector *Collector
	srv       *http.Server
}

// New creates a metrics server listening on addr. The server is not started.
func New(namespace, addr string) (*MetricsServer, error) {
	registry := prometheus.NewRegistry()
	collector, err := NewCollector(namespace, registry)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &MetricsServer{
		registry:  registry,
		collector: collector,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Collector returns the counters backed by this server's registry.
func (m *MetricsServer) Collector() *Collector {
	return m.collector
}

// Handler returns the /metrics handler.
func (m *MetricsServer) Handler() http.Handler {
	return m.srv.Handler
}

func (m *MetricsServer) ListenAndServe() error {
	return m.srv.ListenAndServe()
}

func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
