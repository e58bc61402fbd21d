// Package metrics exports refresh-cycle statistics in Prometheus format.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/srodi/appimpact/pkg/engine"
)

const namespace = "appimpact"

// Recorder implements engine.Observer on its own registry.
type Recorder struct {
	registry       *prometheus.Registry
	cycles         prometheus.Counter
	dropped        prometheus.Counter
	sampleFailures prometheus.Counter
	duration       prometheus.Histogram
	candidates     prometheus.Gauge
	appScore       *prometheus.GaugeVec
}

var _ engine.Observer = (*Recorder)(nil)

// NewRecorder registers every collector, plus the Go and process collectors,
// on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Published refresh cycles.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_dropped_total",
			Help:      "Refresh requests dropped because a cycle was already running.",
		}),
		sampleFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sample_failures_total",
			Help:      "Cycles whose usage sampling failed or timed out.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of one refresh cycle.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		candidates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "candidates",
			Help:      "Candidate apps seen in the last cycle.",
		}),
		appScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "app_score",
			Help:      "Impact score of each app in the latest published top list.",
		}, []string{"pid", "name"}),
	}
	r.registry.MustRegister(
		r.cycles, r.dropped, r.sampleFailures, r.duration, r.candidates, r.appScore,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveCycle records one published cycle. The per-app gauge only ever holds
// the latest top list.
func (r *Recorder) ObserveCycle(report engine.CycleReport) {
	r.cycles.Inc()
	if report.SampleErr != nil {
		r.sampleFailures.Inc()
	}
	r.duration.Observe(report.Duration.Seconds())
	r.candidates.Set(float64(report.Candidates))

	r.appScore.Reset()
	for _, app := range report.Apps {
		r.appScore.WithLabelValues(strconv.Itoa(app.PID), app.Name).Set(app.Score)
	}
}

// ObserveDropped counts a dropped refresh request.
func (r *Recorder) ObserveDropped() {
	r.dropped.Inc()
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
