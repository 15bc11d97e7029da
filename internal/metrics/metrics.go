// Package metrics records the outcome of a merge run as Prometheus metrics.
// Every run gets its own registry, which can be written out in the node
// exporter textfile format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/agentstation/ontomerge/pkg/diagnostics"
	"github.com/agentstation/ontomerge/pkg/errors"
	"github.com/agentstation/ontomerge/pkg/reconciler"
)

const namespace = "ontomerge"

// Recorder holds the metrics of one run.
type Recorder struct {
	registry *prometheus.Registry

	// Entity gauges
	entities *prometheus.GaugeVec // By origin (catalog/merged/source)
	classes  prometheus.Gauge
	sizes    prometheus.Histogram

	// Candidate counters
	candidates *prometheus.CounterVec // By outcome (admitted/rejected/referential/self_loop/filtered)

	// Issues
	diagnostics *prometheus.CounterVec // By code and severity

	duration prometheus.Gauge
}

// New creates a recorder with its metrics registered on a fresh registry.
func New() (*Recorder, error) {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		entities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entities",
			Help:      "Number of entities by origin",
		}, []string{"origin"}),

		classes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "equivalence_classes",
			Help:      "Number of equivalence classes found",
		}),

		sizes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "equivalence_class_size",
			Help:      "Members per equivalence class",
			Buckets:   []float64{2, 3, 4, 6, 8, 16, 32},
		}),

		candidates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_total",
			Help:      "Candidates seen by the match graph builder, by outcome",
		}, []string{"outcome"}),

		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Diagnostics raised during the run",
		}, []string{"code", "severity"}),

		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the run",
		}),
	}

	for _, c := range []prometheus.Collector{r.entities, r.classes, r.sizes, r.candidates, r.diagnostics, r.duration} {
		if err := r.registry.Register(c); err != nil {
			return nil, errors.WrapResource("register", "metric", namespace, err)
		}
	}
	return r, nil
}

// Record sets every metric from a finished run.
func (r *Recorder) Record(result *reconciler.Result) {
	stats := result.Metadata.Stats

	r.entities.WithLabelValues("catalog").Set(float64(stats.Entities))
	r.entities.WithLabelValues("merged").Set(float64(stats.Merged))
	r.entities.WithLabelValues("source").Set(float64(stats.PassedThrough))

	r.classes.Set(float64(stats.Classes))
	if result.Partition != nil {
		for _, size := range result.Partition.Sizes() {
			r.sizes.Observe(float64(size))
		}
	}

	r.candidates.WithLabelValues("admitted").Add(float64(stats.Graph.Admitted))
	r.candidates.WithLabelValues("rejected").Add(float64(stats.Graph.Rejected))
	r.candidates.WithLabelValues("referential").Add(float64(stats.Graph.Referential))
	r.candidates.WithLabelValues("self_loop").Add(float64(stats.Graph.SelfLoops))
	r.candidates.WithLabelValues("filtered").Add(float64(stats.Filtered))

	for _, d := range result.Diagnostics {
		r.diagnostics.WithLabelValues(string(d.Code), string(d.Severity)).Inc()
	}
	// Codes that did not fire still get a zero sample.
	for _, code := range diagnostics.Codes() {
		r.diagnostics.WithLabelValues(string(code), string(code.Severity()))
	}

	r.duration.Set(result.Metadata.Duration.Seconds())
}

// Registry returns the registry the metrics live on.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteFile writes the metrics in the textfile collector format.
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
