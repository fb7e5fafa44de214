package labelscan

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for label scans.
type Metrics struct {
	scans      *prometheus.CounterVec
	confidence prometheus.Histogram
	duration   *prometheus.HistogramVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers scan metrics against registerer, falling back to the
// default Prometheus registerer when nil.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = buildMetrics(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return buildMetrics(registerer)
}

func (m *Metrics) observe(engine, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.scans.WithLabelValues(engine, outcome).Inc()
	m.duration.WithLabelValues(engine).Observe(seconds)
}

func (m *Metrics) observeConfidence(c float64) {
	if m == nil {
		return
	}
	m.confidence.Observe(c)
}

func buildMetrics(registerer prometheus.Registerer) *Metrics {
	scans := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rxcatalog_label_scans_total",
		Help: "Label scans partitioned by OCR engine and outcome.",
	}, []string{"engine", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rxcatalog_label_scan_duration_seconds",
		Help:    "Time spent decoding and recognizing a label image.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"engine"})
	confidence := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "rxcatalog_label_scan_confidence",
		Help:    "Share of SKU fields recovered from each successful scan.",
		Buckets: []float64{0, 1.0 / 6, 2.0 / 6, 3.0 / 6, 4.0 / 6, 5.0 / 6, 1},
	})
	registerer.MustRegister(scans, duration, confidence)
	return &Metrics{scans: scans, confidence: confidence, duration: duration}
}
