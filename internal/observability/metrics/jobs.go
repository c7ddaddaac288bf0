package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	JobResultSuccess = "success"
	JobResultSkipped = "skipped"
	JobResultTimeout = "timeout"
	JobResultError   = "error"
)

// JobMetrics tracks background job runs such as the daily usage reset.
type JobMetrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	rows     *prometheus.CounterVec
}

func NewJobMetrics(cfg Config) (*JobMetrics, error) {
	return newJobMetrics(prometheus.DefaultRegisterer, cfg)
}

func newJobMetrics(registerer prometheus.Registerer, cfg Config) (*JobMetrics, error) {
	labels := constLabels(cfg)
	m := &JobMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "eragon_job_runs_total",
			Help:        "Background job runs by job and result.",
			ConstLabels: labels,
		}, []string{"job", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "eragon_job_duration_seconds",
			Help:        "Background job duration.",
			ConstLabels: labels,
			Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30},
		}, []string{"job"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "eragon_job_rows_affected_total",
			Help:        "Rows touched by background jobs.",
			ConstLabels: labels,
		}, []string{"job"}),
	}

	var err error
	if m.runs, err = registerOrReuse(registerer, m.runs); err != nil {
		return nil, err
	}
	if m.duration, err = registerOrReuse(registerer, m.duration); err != nil {
		return nil, err
	}
	if m.rows, err = registerOrReuse(registerer, m.rows); err != nil {
		return nil, err
	}
	return m, nil
}

// ObserveRun records one job execution. A nil receiver is a no-op.
func (m *JobMetrics) ObserveRun(job, result string, took time.Duration, rows int64) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(job, result).Inc()
	m.duration.WithLabelValues(job).Observe(took.Seconds())
	if rows > 0 {
		m.rows.WithLabelValues(job).Add(float64(rows))
	}
}

// ClassifyJobError maps a job error to a result label.
func ClassifyJobError(err error) string {
	switch {
	case err == nil:
		return JobResultSuccess
	case errors.Is(err, context.DeadlineExceeded):
		return JobResultTimeout
	default:
		return JobResultError
	}
}
