package blocks

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	PipelineRaw   = "raw"
	PipelineFiles = "files"
)

// Metrics of the transform pipelines. A nil *Metrics records nothing.
type Metrics struct {
	transforms     *prometheus.CounterVec
	misses         *prometheus.CounterVec
	ingestDuration prometheus.Summary
	ingestFailures prometheus.Counter
}

// NewMetrics sets up the collectors and registers them with reg, a nil reg
// skips registration
func NewMetrics(reg prometheus.Registerer) *Metrics {
	const prometheusLabelPipeline = "pipeline"
	const prometheusLabelBlockType = "block_type"

	m := &Metrics{
		transforms: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blocks_transform_total",
				Help: "number of transforms that produced a block",
			},
			[]string{prometheusLabelPipeline, prometheusLabelBlockType},
		),
		misses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blocks_transform_misses_total",
				Help: "number of inputs no transform matched",
			},
			[]string{prometheusLabelPipeline},
		),
		ingestDuration: prometheus.NewSummary(prometheus.SummaryOpts{
			Name:       "blocks_ingest_duration_seconds",
			Help:       "duration of file transforms including media ingestion",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}),
		ingestFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blocks_ingest_failures_total",
			Help: "number of failed file transforms",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.transforms,
			m.misses,
			m.ingestDuration,
			m.ingestFailures,
		)
	}
	return m
}

func (m *Metrics) transformed(pipeline string, blockType string) {
	if m == nil {
		return
	}
	m.transforms.WithLabelValues(pipeline, blockType).Inc()
}

func (m *Metrics) missed(pipeline string) {
	if m == nil {
		return
	}
	m.misses.WithLabelValues(pipeline).Inc()
}

func (m *Metrics) ingested(start time.Time, err error) {
	if m == nil {
		return
	}
	m.ingestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.ingestFailures.Inc()
	}
}
