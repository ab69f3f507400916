package export

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures export metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "vgv").
	Namespace string

	// Subsystem is the metrics subsystem (default: "export").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for rasterization time.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures export metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the rasterization histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "vgv",
		Subsystem: "export",
		Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics collects export statistics. A nil *Metrics records nothing.
//
// Metrics collected:
//   - vgv_export_images_total: output images written, by exporter kind
//   - vgv_export_raster_seconds: time spent rasterizing one image
//   - vgv_export_queue_depth: pending raster jobs
//   - vgv_export_bytes_written_total: bytes handed to muxers and writers
//   - vgv_export_exports_total: finished exports by kind and status
type Metrics struct {
	images       *prometheus.CounterVec
	rasterTime   prometheus.Histogram
	queueDepth   prometheus.Gauge
	bytesWritten *prometheus.CounterVec
	exports      *prometheus.CounterVec
}

// NewMetrics creates and registers export metrics.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		images: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "images_total",
			Help:        "Total number of output images written",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		rasterTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "raster_seconds",
			Help:        "Time spent rasterizing one image in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "queue_depth",
			Help:        "Number of raster jobs waiting in the queue",
			ConstLabels: config.ConstLabels,
		}),

		bytesWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bytes_written_total",
			Help:        "Total bytes written to export outputs",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		exports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "exports_total",
			Help:        "Total number of finished exports",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "status"}),
	}
}

func (m *Metrics) observeRaster(d time.Duration) {
	if m == nil {
		return
	}
	m.rasterTime.Observe(d.Seconds())
}

func (m *Metrics) setQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

func (m *Metrics) addImages(kind string, n int) {
	if m == nil {
		return
	}
	m.images.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) addBytes(kind string, n int64) {
	if m == nil {
		return
	}
	m.bytesWritten.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) finish(kind string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.exports.WithLabelValues(kind, status).Inc()
}
