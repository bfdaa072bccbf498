package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	readingsIngested *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	latency          *prometheus.HistogramVec
	anomalies        *prometheus.CounterVec
	recommendations  *prometheus.CounterVec
}

// New registers the collectors on the default registry. Call it once per process.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the collectors on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		readingsIngested: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecotrack_readings_ingested_total",
				Help: "Total number of emission readings stored, by source",
			},
			[]string{"source"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecotrack_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ecotrack_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		anomalies: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecotrack_anomalies_flagged_total",
				Help: "Anomalies flagged by the detector, by severity",
			},
			[]string{"severity"},
		),
		recommendations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecotrack_recommendation_sets_total",
				Help: "Recommendation sets served, by source (external or fallback)",
			},
			[]string{"source"},
		),
	}
}

func (r *Recorder) RecordReadingIngested(source string) {
	if source == "" {
		source = "unknown"
	}
	r.readingsIngested.WithLabelValues(source).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) RecordAnomaly(severity string) {
	r.anomalies.WithLabelValues(severity).Inc()
}

func (r *Recorder) RecordRecommendationSource(source string) {
	r.recommendations.WithLabelValues(source).Inc()
}
