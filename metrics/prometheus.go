package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics implements the Metrics interface using Prometheus.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	// Pool metrics
	poolSize prometheus.Gauge
	tips     prometheus.Gauge

	// Lifecycle metrics
	blocksPut       prometheus.Counter
	blocksPersisted *prometheus.CounterVec
	blockRefs       prometheus.Counter
	blockUnrefs     prometheus.Counter

	// Store metrics
	storesRegistered prometheus.Gauge

	// Traversal metrics
	blocksYielded *prometheus.CounterVec
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance.
func NewPrometheusMetrics(namespace string) *PrometheusMetrics {
	registry := prometheus.NewRegistry()

	m := &PrometheusMetrics{
		registry: registry,

		poolSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pool_size",
				Help:      "Number of blocks resident in the in-memory pool",
			},
		),
		tips: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tips",
				Help:      "Number of known blocks without a successor",
			},
		),
		blocksPut: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "blocks_put_total",
				Help:      "Total number of blocks inserted into the pool",
			},
		),
		blocksPersisted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "blocks_persisted_total",
				Help:      "Total number of blocks moved into a durable store",
			},
			[]string{"store"},
		),
		blockRefs: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "block_refs_total",
				Help:      "Total number of block pin operations",
			},
		),
		blockUnrefs: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "block_unrefs_total",
				Help:      "Total number of block unpin operations",
			},
		),
		storesRegistered: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "stores_registered",
				Help:      "Number of registered backing stores",
			},
		),
		blocksYielded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "blocks_yielded_total",
				Help:      "Total number of blocks yielded by traversal iterators",
			},
			[]string{"traversal"},
		),
	}

	m.registerMetrics()
	return m
}

// registerMetrics registers all metrics with the registry.
func (m *PrometheusMetrics) registerMetrics() {
	m.registry.MustRegister(
		m.poolSize,
		m.tips,
		m.blocksPut,
		m.blocksPersisted,
		m.blockRefs,
		m.blockUnrefs,
		m.storesRegistered,
		m.blocksYielded,
	)
}

// Handler returns an HTTP handler exposing the metrics.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Pool metrics

func (m *PrometheusMetrics) SetPoolSize(size int) {
	m.poolSize.Set(float64(size))
}

func (m *PrometheusMetrics) SetTips(count int) {
	m.tips.Set(float64(count))
}

// Lifecycle metrics

func (m *PrometheusMetrics) IncBlocksPut(count int) {
	m.blocksPut.Add(float64(count))
}

func (m *PrometheusMetrics) IncBlocksPersisted(store string) {
	m.blocksPersisted.WithLabelValues(store).Inc()
}

func (m *PrometheusMetrics) IncBlockRefs() {
	m.blockRefs.Inc()
}

func (m *PrometheusMetrics) IncBlockUnrefs() {
	m.blockUnrefs.Inc()
}

// Store metrics

func (m *PrometheusMetrics) SetStoresRegistered(count int) {
	m.storesRegistered.Set(float64(count))
}

// Traversal metrics

func (m *PrometheusMetrics) IncBlocksYielded(traversal string) {
	m.blocksYielded.WithLabelValues(traversal).Inc()
}
