package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for centroid training
type Metrics struct {
	// Training metrics
	TrainingsTotal   *prometheus.CounterVec
	TrainingDuration prometheus.Histogram
	TrainingSamples  prometheus.Histogram
	Iterations       prometheus.Histogram

	// Distance evaluation metrics
	DistanceEvals prometheus.Counter
	PrunedEvals   prometheus.Counter

	// Cluster health metrics
	EmptyReseeds  prometheus.Counter
	CentroidCount *prometheus.GaugeVec
}

// NewMetrics creates and registers all metrics on the default registry
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates all metrics and registers them on reg. Tests pass
// a fresh registry so repeated construction does not collide.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TrainingsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "centroid_trainings_total",
				Help: "Total number of training runs by outcome",
			},
			[]string{"outcome"},
		),
		TrainingDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "centroid_training_duration_seconds",
				Help:    "Training duration in seconds",
				Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
			},
		),
		TrainingSamples: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "centroid_training_samples",
				Help:    "Number of sample vectors per training run",
				Buckets: prometheus.ExponentialBuckets(100, 10, 6),
			},
		),
		Iterations: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "centroid_training_iterations",
				Help:    "Lloyd iterations per training run",
				Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200, 500},
			},
		),
		DistanceEvals: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "centroid_distance_evaluations_total",
				Help: "Total distance function evaluations",
			},
		),
		PrunedEvals: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "centroid_pruned_evaluations_total",
				Help: "Distance evaluations skipped by triangle-inequality bounds",
			},
		),
		EmptyReseeds: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "centroid_empty_cluster_reseeds_total",
				Help: "Empty clusters reinitialized with random centers",
			},
		),
		CentroidCount: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "centroid_count",
				Help: "Trained centroids by index name",
			},
			[]string{"index"},
		),
	}
}

// RecordTraining records the outcome and duration of one training run
func (m *Metrics) RecordTraining(outcome string, duration time.Duration, samples int) {
	m.TrainingsTotal.WithLabelValues(outcome).Inc()
	m.TrainingDuration.Observe(duration.Seconds())
	m.TrainingSamples.Observe(float64(samples))
}

// RecordIterations records how many Lloyd iterations a run took
func (m *Metrics) RecordIterations(iterations int) {
	m.Iterations.Observe(float64(iterations))
}

// RecordEvals records distance evaluations performed and pruned
func (m *Metrics) RecordEvals(performed, pruned int64) {
	m.DistanceEvals.Add(float64(performed))
	m.PrunedEvals.Add(float64(pruned))
}

// RecordEmptyReseeds records empty-cluster reinitializations
func (m *Metrics) RecordEmptyReseeds(count int64) {
	m.EmptyReseeds.Add(float64(count))
}

// UpdateCentroidCount updates the centroid gauge for an index
func (m *Metrics) UpdateCentroidCount(index string, count int) {
	m.CentroidCount.WithLabelValues(index).Set(float64(count))
}
