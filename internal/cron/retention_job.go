package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/localdrop-backend/pkg/logger"
)

const (
	JobDeliveredSweep  = "delivered-sweep"
	JobOutboxRetention = "outbox-retention"
	JobShopAccrual     = "shop-accrual"
)

// PurgeFunc deletes rows older than cutoff and reports how many went.
type PurgeFunc func(ctx context.Context, cutoff time.Time) (int64, error)

// RetentionJobParams describe a job that keeps a table trimmed to a window.
type RetentionJobParams struct {
	Name      string
	Logger    *logger.Logger
	Retention time.Duration
	Purge     PurgeFunc
}

// NewRetentionJob returns a Job deleting whatever Purge selects older than
// now minus Retention.
func NewRetentionJob(p RetentionJobParams) (Job, error) {
	switch {
	case p.Name == "":
		return nil, errors.New("retention job needs a name")
	case p.Logger == nil:
		return nil, fmt.Errorf("%s: logger required", p.Name)
	case p.Purge == nil:
		return nil, fmt.Errorf("%s: purge func required", p.Name)
	case p.Retention <= 0:
		return nil, fmt.Errorf("%s: retention must be positive, got %s", p.Name, p.Retention)
	}
	return &retentionJob{params: p, now: time.Now}, nil
}

type retentionJob struct {
	params RetentionJobParams
	now    func() time.Time
}

func (j *retentionJob) Name() string { return j.params.Name }

func (j *retentionJob) Run(ctx context.Context) (int64, error) {
	cutoff := j.now().UTC().Add(-j.params.Retention)
	n, err := j.params.Purge(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", j.params.Name, err)
	}
	j.params.Logger.Info(j.params.Logger.WithFields(ctx, map[string]any{
		"job":          j.params.Name,
		"cutoff":       cutoff.Format(time.RFC3339),
		"rows_deleted": n,
	}), "cron.retention_purged")
	return n, nil
}
