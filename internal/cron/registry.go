package cron

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	robfig "github.com/robfig/cron/v3"
)

// ErrSkipped is returned by a job that decided not to act on this firing.
var ErrSkipped = errors.New("job skipped")

// Job is a housekeeping task. Run reports how many rows it touched.
type Job interface {
	Name() string
	Run(ctx context.Context) (int64, error)
}

// Entry pairs a job with its cron schedule.
type Entry struct {
	Job      Job
	Spec     string
	schedule robfig.Schedule
}

// Next returns the first firing strictly after t.
func (e Entry) Next(t time.Time) time.Time {
	return e.schedule.Next(t)
}

// Registry tracks scheduled jobs in registration order.
type Registry struct {
	entries []Entry
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds job under a standard five-field cron spec.
func (r *Registry) Register(job Job, spec string) error {
	if job == nil {
		return fmt.Errorf("job required")
	}
	if _, ok := r.Lookup(job.Name()); ok {
		return fmt.Errorf("job %q already registered", job.Name())
	}
	schedule, err := robfig.ParseStandard(strings.TrimSpace(spec))
	if err != nil {
		return fmt.Errorf("parse schedule for %s: %w", job.Name(), err)
	}
	r.entries = append(r.entries, Entry{Job: job, Spec: spec, schedule: schedule})
	return nil
}

// Entries returns a copy of the registered entries.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Lookup finds an entry by job name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	for _, entry := range r.entries {
		if entry.Job.Name() == name {
			return entry, true
		}
	}
	return Entry{}, false
}
