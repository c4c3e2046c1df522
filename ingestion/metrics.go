package ingestion

import (
	"time"

	"github.com/poiesic/mediakg/core"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for the files counter.
const (
	outcomeIngested = "ingested"
	outcomeSkipped  = "skipped"
	outcomeFailed   = "failed"
)

// pipelineMetrics holds Prometheus collectors for the pipeline. A nil
// *pipelineMetrics records nothing.
type pipelineMetrics struct {
	files       *prometheus.CounterVec // by kind and outcome
	triples     prometheus.Counter
	features    prometheus.Counter
	duration    *prometheus.HistogramVec // by kind
	inFlight    prometheus.Gauge
	collaborate *prometheus.CounterVec // collaborator failures by step
}

// newMetrics creates the collectors and registers them with reg.
func newMetrics(reg prometheus.Registerer) (*pipelineMetrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &pipelineMetrics{
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mediakg",
			Subsystem: "ingest",
			Name:      "files_total",
			Help:      "Files processed by kind and outcome",
		}, []string{"kind", "outcome"}),

		triples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mediakg",
			Subsystem: "ingest",
			Name:      "triples_added_total",
			Help:      "Triples added to the graph",
		}),

		features: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mediakg",
			Subsystem: "ingest",
			Name:      "features_stored_total",
			Help:      "Feature vectors stored",
		}),

		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mediakg",
			Subsystem: "ingest",
			Name:      "file_duration_seconds",
			Help:      "Time to ingest one file",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"kind"}),

		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mediakg",
			Subsystem: "ingest",
			Name:      "in_flight",
			Help:      "Files currently being ingested",
		}),

		collaborate: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mediakg",
			Subsystem: "ingest",
			Name:      "collaborator_errors_total",
			Help:      "Collaborator failures by step",
		}, []string{"step"}),
	}

	for _, c := range []prometheus.Collector{m.files, m.triples, m.features, m.duration, m.inFlight, m.collaborate} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *pipelineMetrics) start() {
	if m == nil {
		return
	}
	m.inFlight.Inc()
}

func (m *pipelineMetrics) finish(kind core.Kind, outcome string, triples int, began time.Time) {
	if m == nil {
		return
	}
	m.inFlight.Dec()
	if kind == "" {
		kind = core.KindOther
	}
	m.files.WithLabelValues(string(kind), outcome).Inc()
	m.triples.Add(float64(triples))
	if outcome == outcomeIngested {
		m.duration.WithLabelValues(string(kind)).Observe(time.Since(began).Seconds())
	}
}

func (m *pipelineMetrics) featureStored() {
	if m == nil {
		return
	}
	m.features.Inc()
}

func (m *pipelineMetrics) collaboratorFailed(step string) {
	if m == nil {
		return
	}
	m.collaborate.WithLabelValues(step).Inc()
}
