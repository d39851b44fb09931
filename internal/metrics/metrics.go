// Package metrics records a retry run as Prometheus metrics and writes them
// in the node_exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/marshall/retry/internal/launcher"
)

const namespace = "retry"

// Attempt results used as the "result" label.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultSignal  = "signal"
)

// Recorder collects the metrics of one run in its own registry.
type Recorder struct {
	registry *prometheus.Registry

	attemptsTotal   *prometheus.CounterVec
	attemptDuration prometheus.Histogram
	lastExitCode    prometheus.Gauge
	sleepTotal      prometheus.Counter
	runDuration     prometheus.Gauge
	runSucceeded    prometheus.Gauge
}

// New creates a recorder with all metrics registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		attemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "attempts_total",
				Help:      "Total number of attempts by result",
			},
			[]string{"result"},
		),
		attemptDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "attempt_duration_seconds",
				Help:      "Wall-clock duration of each attempt in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10), // 10ms to ~44min
			},
		),
		lastExitCode: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "attempt_exit_code",
				Help:      "Exit code of the most recent attempt, -1 when terminated by a signal",
			},
		),
		sleepTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sleep_seconds_total",
				Help:      "Total time spent sleeping between attempts in seconds",
			},
		),
		runDuration: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Total duration of the run in seconds",
			},
		),
		runSucceeded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "run_succeeded",
				Help:      "Whether the run stopped on its success condition (1) or exhausted its budget (0)",
			},
		),
	}

	r.registry.MustRegister(
		r.attemptsTotal,
		r.attemptDuration,
		r.lastExitCode,
		r.sleepTotal,
		r.runDuration,
		r.runSucceeded,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Attempt records one finished attempt.
func (r *Recorder) Attempt(status launcher.Status, took time.Duration) {
	switch {
	case status.Signaled():
		r.attemptsTotal.WithLabelValues(ResultSignal).Inc()
		r.lastExitCode.Set(-1)
	case status.Success():
		r.attemptsTotal.WithLabelValues(ResultSuccess).Inc()
		r.lastExitCode.Set(0)
	default:
		r.attemptsTotal.WithLabelValues(ResultFailure).Inc()
		r.lastExitCode.Set(float64(*status.ExitCode))
	}
	r.attemptDuration.Observe(took.Seconds())
}

// Sleep records a delay taken between attempts.
func (r *Recorder) Sleep(d time.Duration) {
	r.sleepTotal.Add(d.Seconds())
}

// Finish records the outcome of the run.
func (r *Recorder) Finish(succeeded bool, elapsed time.Duration) {
	r.runDuration.Set(elapsed.Seconds())
	if succeeded {
		r.runSucceeded.Set(1)
	} else {
		r.runSucceeded.Set(0)
	}
}

// WriteFile writes the registry to path in the textfile format.
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
