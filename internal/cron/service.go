package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/localdrop-backend/pkg/logger"
	"github.com/angelmondragon/localdrop-backend/pkg/metrics"
)

const defaultInterval = time.Minute

// ServiceParams configure the cron service.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  *metrics.CronJobMetrics
	Interval time.Duration
	Location *time.Location
}

// Result is the outcome of one job firing.
type Result struct {
	Job      string
	Rows     int64
	Duration time.Duration
	Skipped  bool
	Locked   bool
	Err      error
}

// Service fires registered jobs when their schedules come due.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	metrics  *metrics.CronJobMetrics
	interval time.Duration
	loc      *time.Location
	now      func() time.Time
}

// NewService builds a cron service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	loc := params.Location
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		logg:     params.Logger,
		registry: registry,
		lock:     params.Lock,
		metrics:  params.Metrics,
		interval: interval,
		loc:      loc,
		now:      time.Now,
	}, nil
}

// Run checks schedules every interval until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	next := make(map[string]time.Time)
	start := s.now().In(s.loc)
	for _, entry := range s.registry.Entries() {
		next[entry.Job.Name()] = entry.Next(start)
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"job":      entry.Job.Name(),
			"schedule": entry.Spec,
			"next_run": next[entry.Job.Name()],
		}), "job scheduled")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "cron service context canceled")
			return ctx.Err()
		case <-ticker.C:
			if err := s.runDue(ctx, next); err != nil {
				s.logg.Error(ctx, "scheduled run had failures", err)
			}
		}
	}
}

// runDue fires every entry whose next firing has passed and advances it.
func (s *Service) runDue(ctx context.Context, next map[string]time.Time) error {
	now := s.now().In(s.loc)
	var errs error
	for _, entry := range s.registry.Entries() {
		name := entry.Job.Name()
		due, ok := next[name]
		if !ok {
			due = entry.Next(now)
			next[name] = due
			continue
		}
		if now.Before(due) {
			continue
		}
		result := s.fire(ctx, entry.Job)
		errs = multierr.Append(errs, result.Err)
		next[name] = entry.Next(now)
	}
	return errs
}

// RunNamed fires the named jobs once, or every job when names is empty.
// Failures do not stop later jobs; they are combined in the returned error.
func (s *Service) RunNamed(ctx context.Context, names ...string) ([]Result, error) {
	entries := s.registry.Entries()
	if len(names) > 0 {
		entries = entries[:0:0]
		for _, name := range names {
			entry, ok := s.registry.Lookup(name)
			if !ok {
				return nil, fmt.Errorf("unknown job %q", name)
			}
			entries = append(entries, entry)
		}
	}
	results := make([]Result, 0, len(entries))
	var errs error
	for _, entry := range entries {
		result := s.fire(ctx, entry.Job)
		results = append(results, result)
		errs = multierr.Append(errs, result.Err)
	}
	return results, errs
}

func (s *Service) fire(ctx context.Context, job Job) Result {
	name := job.Name()
	result := Result{Job: name}
	jobCtx := s.logg.WithField(ctx, "job", name)
	jobCtx = s.logg.WithField(jobCtx, "event", "cron.job")

	locked, err := s.lock.Acquire(jobCtx, name)
	if err != nil {
		result.Err = fmt.Errorf("%s: lock acquire: %w", name, err)
		s.logg.Error(jobCtx, "failed to acquire job lock", err)
		s.metrics.Record(name, metrics.JobFailed, 0, 0)
		return result
	}
	if !locked {
		result.Locked = true
		s.logg.Info(jobCtx, "another instance holds the job lock; skipping")
		s.metrics.Record(name, metrics.JobLocked, 0, 0)
		return result
	}
	defer func() {
		if relErr := s.lock.Release(jobCtx, name); relErr != nil {
			s.logg.Error(jobCtx, "failed to release job lock", relErr)
		}
	}()

	s.logg.Info(jobCtx, "job start")
	start := time.Now()
	rows, err := job.Run(jobCtx)
	result.Duration = time.Since(start)
	result.Rows = rows
	jobCtx = s.logg.WithFields(jobCtx, map[string]any{
		"duration_ms": result.Duration.Milliseconds(),
		"rows":        rows,
	})

	switch {
	case errors.Is(err, ErrSkipped):
		result.Skipped = true
		s.logg.Info(jobCtx, "job skipped")
		s.metrics.Record(name, metrics.JobSkipped, 0, result.Duration)
	case err != nil:
		result.Err = fmt.Errorf("%s: %w", name, err)
		s.logg.Error(jobCtx, "job failed", err)
		s.metrics.Record(name, metrics.JobFailed, rows, result.Duration)
	default:
		s.logg.Info(jobCtx, "job completed")
		s.metrics.Record(name, metrics.JobOK, rows, result.Duration)
	}
	return result
}
