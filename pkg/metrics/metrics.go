// Package metrics collects download statistics in Prometheus format.
//
// A run has no long-lived process to scrape, so the metrics are either written to a
// textfile for the node exporter or pushed to a Pushgateway.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Recorder records the outcome of every unit of work.
type Recorder struct {
	reg *prometheus.Registry

	units    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	lastRun  prometheus.Gauge
	runInfo  *prometheus.GaugeVec
}

// New returns a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		units: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gnssget_units_total",
				Help: "Total number of download units by product and outcome.",
			},
			[]string{"product", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gnssget_unit_duration_seconds",
				Help:    "Duration of a download unit in seconds.",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"product"},
		),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gnssget_last_run_timestamp_seconds",
			Help: "Unix time of the last finished run.",
		}),
		runInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gnssget_run_info",
			Help: "ID and archive of the last run.",
		}, []string{"run_id", "archive"}),
	}
	r.reg.MustRegister(r.units, r.duration, r.lastRun, r.runInfo)
	return r
}

// Observe records one unit of work.
func (r *Recorder) Observe(product, outcome string, d time.Duration) {
	r.units.WithLabelValues(product, outcome).Inc()
	r.duration.WithLabelValues(product).Observe(d.Seconds())
}

// Start records the run ID and the archive.
func (r *Recorder) Start(runID, archive string) {
	r.runInfo.Reset()
	r.runInfo.WithLabelValues(runID, archive).Set(1)
}

// Finish records the end of the run.
func (r *Recorder) Finish(t time.Time) {
	r.lastRun.Set(float64(t.Unix()))
}

// Registry returns the registry holding the metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// WriteTextfile writes the metrics for the node exporter's textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}

// Push pushes the metrics to the Pushgateway at url, grouped by job and instance.
func (r *Recorder) Push(url, job, instance string) error {
	p := push.New(url, job).Gatherer(r.reg)
	if instance != "" {
		p = p.Grouping("instance", instance)
	}
	return p.Push()
}
