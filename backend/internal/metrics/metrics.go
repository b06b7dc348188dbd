// Package metrics holds the Prometheus instruments of the query server.
// Instruments live on a private registry so tests can build as many
// collectors as they like.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "membergraph"

// Operation outcomes
const (
	StatusOK    = "ok"
	StatusError = "error"
	StatusNull  = "null"
)

// Collector records operation, store and neighborhood metrics. A nil
// *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	storeFetchesTotal *prometheus.CounterVec
	neighborhoodNodes prometheus.Histogram
}

// New creates a collector on a fresh registry
func New() *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total number of resolved root fields",
		},
		[]string{"type", "field", "status"},
	)

	c.operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Time spent resolving a root field",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"type", "field"},
	)

	c.storeFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_fetches_total",
			Help:      "Total number of entity store calls made by resolvers",
		},
		[]string{"op"},
	)

	c.neighborhoodNodes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "neighborhood_nodes",
			Help:      "Number of nodes in each materialized subscription neighborhood",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	c.registry.MustRegister(
		c.operationsTotal,
		c.operationDuration,
		c.storeFetchesTotal,
		c.neighborhoodNodes,
		collectors.NewGoCollector(),
	)
	return c
}

// ObserveOperation records one resolved root field
func (c *Collector) ObserveOperation(opType, field, status string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.operationsTotal.WithLabelValues(opType, field, status).Inc()
	c.operationDuration.WithLabelValues(opType, field).Observe(elapsed.Seconds())
}

// StoreFetch counts one store call
func (c *Collector) StoreFetch(op string) {
	if c == nil {
		return
	}
	c.storeFetchesTotal.WithLabelValues(op).Inc()
}

// ObserveNeighborhood records the size of a materialized tree
func (c *Collector) ObserveNeighborhood(nodes int) {
	if c == nil {
		return
	}
	c.neighborhoodNodes.Observe(float64(nodes))
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
