// Package metrics exposes pipeline run statistics to Prometheus.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clintrovert/taskfeatures/internal/features"
	"github.com/clintrovert/taskfeatures/internal/pipeline"
	"github.com/clintrovert/taskfeatures/internal/store"
)

const namespace = "taskfeatures"

// Run outcomes
const (
	OutcomeSuccess          = "success"
	OutcomeMalformedTask    = "malformed_task"
	OutcomeStoreUnavailable = "store_unavailable"
	OutcomeError            = "error"
)

// Recorder implements pipeline.Recorder with Prometheus collectors
type Recorder struct {
	runs     *prometheus.CounterVec
	tasks    *prometheus.CounterVec
	duration prometheus.Histogram
}

var _ pipeline.Recorder = (*Recorder)(nil)

// NewRecorder creates the collectors and registers them with reg
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_total",
			Help:      "Tasks seen by successful runs, by stage.",
		}, []string{"stage"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of pipeline runs.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	for _, c := range []prometheus.Collector{r.runs, r.tasks, r.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ObserveRun implements pipeline.Recorder
func (r *Recorder) ObserveRun(stats pipeline.Stats, elapsed time.Duration, err error) {
	r.duration.Observe(elapsed.Seconds())
	r.runs.WithLabelValues(Outcome(err)).Inc()
	if err != nil {
		return
	}
	r.tasks.WithLabelValues("fetched").Add(float64(stats.Fetched))
	r.tasks.WithLabelValues("excluded").Add(float64(stats.Excluded))
	r.tasks.WithLabelValues("emitted").Add(float64(stats.Emitted))
}

// Outcome classifies a run error
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, features.ErrMalformedTask):
		return OutcomeMalformedTask
	case errors.Is(err, store.ErrStoreUnavailable):
		return OutcomeStoreUnavailable
	default:
		return OutcomeError
	}
}

// Handler serves the metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
