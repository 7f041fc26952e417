// Package metrics records lint run statistics as Prometheus metrics and
// exports them in the node_exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/yacobolo/twigcs"
)

const namespace = "twigcs"

// Recorder collects metrics for one process on its own registry
type Recorder struct {
	registry *prometheus.Registry

	files      *prometheus.CounterVec
	violations *prometheus.CounterVec
	duration   prometheus.Histogram
	blocking   prometheus.Gauge
}

// NewRecorder creates a Recorder with a fresh registry
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,

		// Labels: status (ok, syntax_error)
		files: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Templates linted",
		}, []string{"status"}),

		// Labels: severity, rule
		violations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "violations_total",
			Help:      "Violations reported",
		}, []string{"severity", "rule"}),

		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a lint run",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),

		blocking: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_blocking",
			Help:      "1 when the last run had blocking violations",
		}),
	}
}

// Observe records one linted template. Safe for concurrent use, so it can
// be passed as twigcs.Options.Observer.
func (r *Recorder) Observe(res twigcs.FileResult) {
	status := "ok"
	if res.SyntaxError != nil {
		status = "syntax_error"
	}
	r.files.WithLabelValues(status).Inc()

	for _, v := range res.Reported() {
		r.violations.WithLabelValues(v.Severity.String(), v.RuleName).Inc()
	}
}

// ObserveRun records the outcome of a whole run
func (r *Recorder) ObserveRun(elapsed time.Duration, result *twigcs.LintResult) {
	r.duration.Observe(elapsed.Seconds())
	if result != nil && result.HasBlocking {
		r.blocking.Set(1)
	} else {
		r.blocking.Set(0)
	}
}

// WriteTextfile atomically writes every metric to path
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
