package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docpipe"

// Metrics holds the pipeline collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	extractions       *prometheus.CounterVec
	extractionSeconds *prometheus.HistogramVec
	cacheLookups      *prometheus.CounterVec
	chunksEmitted     prometheus.Counter
	inflight          prometheus.Gauge
	rejected          prometheus.Counter
}

// New registers the collectors, plus process and Go runtime collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Extractions by format and outcome.",
		}, []string{"format", "outcome"}),
		extractionSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_seconds",
			Help:      "Time spent extracting text, by format.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"format"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Store lookups by layer and result.",
		}, []string{"layer", "result"}),
		chunksEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_emitted_total",
			Help:      "Chunks produced by process and reoptimize calls.",
		}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inflight_extractions",
			Help:      "Extractions currently holding an admission slot.",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_total",
			Help:      "Requests rejected because every extraction slot was busy.",
		}),
	}

	m.registry.MustRegister(
		m.extractions,
		m.extractionSeconds,
		m.cacheLookups,
		m.chunksEmitted,
		m.inflight,
		m.rejected,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveExtraction records one finished extraction.
func (m *Metrics) ObserveExtraction(format, outcome string, elapsed time.Duration) {
	m.extractions.WithLabelValues(format, outcome).Inc()
	m.extractionSeconds.WithLabelValues(format).Observe(elapsed.Seconds())
}

// ObserveLookup records one store layer lookup.
func (m *Metrics) ObserveLookup(layer, result string) {
	m.cacheLookups.WithLabelValues(layer, result).Inc()
}

func (m *Metrics) AddChunks(n int) {
	if n > 0 {
		m.chunksEmitted.Add(float64(n))
	}
}

func (m *Metrics) ExtractionStarted()  { m.inflight.Inc() }
func (m *Metrics) ExtractionFinished() { m.inflight.Dec() }
func (m *Metrics) Rejected()           { m.rejected.Inc() }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
