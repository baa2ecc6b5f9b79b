package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "localdrop"

// JobOutcome labels how one housekeeping firing ended.
type JobOutcome string

const (
	JobOK      JobOutcome = "ok"
	JobFailed  JobOutcome = "failed"
	JobSkipped JobOutcome = "skipped"
	// JobLocked means another worker held the job lock.
	JobLocked JobOutcome = "locked"
)

// CronJobMetrics tracks housekeeping firings per job. The zero value and a
// nil pointer record nothing.
type CronJobMetrics struct {
	runs     *prometheus.CounterVec
	rows     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	m := &CronJobMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "job",
			Name:      "runs_total",
			Help:      "Housekeeping job firings by outcome.",
		}, []string{"job", "outcome"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "job",
			Name:      "rows_affected_total",
			Help:      "Rows deleted or updated by successful firings.",
		}, []string{"job"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "job",
			Name:      "duration_seconds",
			Help:      "Wall time of job bodies that actually ran.",
			Buckets:   []float64{.05, .1, .5, 1, 5, 15, 60, 300},
		}, []string{"job"}),
	}
	reg.MustRegister(m.runs, m.rows, m.duration)
	return m
}

// Record counts one firing. rows only count for JobOK and elapsed is
// ignored when zero, as for firings that never reached the job body.
func (c *CronJobMetrics) Record(job string, outcome JobOutcome, rows int64, elapsed time.Duration) {
	if c == nil || c.runs == nil {
		return
	}
	if job == "" {
		job = "unknown"
	}
	c.runs.WithLabelValues(job, string(outcome)).Inc()
	if outcome == JobOK && rows > 0 {
		c.rows.WithLabelValues(job).Add(float64(rows))
	}
	if elapsed > 0 {
		c.duration.WithLabelValues(job).Observe(elapsed.Seconds())
	}
}
