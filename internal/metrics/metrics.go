package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "progress_sync"

	// OutcomeFailed labels a sync run that returned an error.
	OutcomeFailed = "failed"
)

// Recorder records sync activity. The queue and the app depend on it.
type Recorder interface {
	// RecordSync records a finished run with its outcome (the sync action or OutcomeFailed).
	RecordSync(outcome string, duration time.Duration)
	// RecordRejected records a task the queue did not accept.
	RecordRejected(reason string)
}

// Collector implements Recorder on Prometheus metrics.
type Collector struct {
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
	rejected *prometheus.CounterVec
	lastRun  prometheus.Gauge
}

// NewCollector creates a collector and registers its metrics in reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "Number of finished sync runs by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Duration of sync runs.",
			Buckets:   prometheus.DefBuckets,
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_tasks_rejected_total",
			Help:      "Number of sync tasks rejected by the queue.",
		}, []string{"reason"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sync_last_run_timestamp_seconds",
			Help:      "Unix time of the last finished sync run.",
		}),
	}

	reg.MustRegister(c.runs, c.duration, c.rejected, c.lastRun)

	return c
}

// RecordSync records a finished run.
func (c *Collector) RecordSync(outcome string, duration time.Duration) {
	c.runs.WithLabelValues(outcome).Inc()
	c.duration.Observe(duration.Seconds())
	c.lastRun.SetToCurrentTime()
}

// RecordRejected records a rejected task.
func (c *Collector) RecordRejected(reason string) {
	c.rejected.WithLabelValues(reason).Inc()
}

// WriteFile writes the gathered metrics to path in the text exposition format.
// The file is replaced atomically.
func WriteFile(path string, gatherer prometheus.Gatherer) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("failed to create metrics directory: %w", err)
		}
	}

	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}

	return nil
}

// NopRecorder discards everything.
type NopRecorder struct{}

// RecordSync does nothing.
func (NopRecorder) RecordSync(string, time.Duration) {}

// RecordRejected does nothing.
func (NopRecorder) RecordRejected(string) {}
