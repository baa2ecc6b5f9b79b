package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/localdrop-backend/pkg/logger"
)

const defaultAccrualHourGate = 12

// ShopAccrualJobParams configure the daily selling-day accrual.
type ShopAccrualJobParams struct {
	Logger     *logger.Logger
	Repository shopAccrualRepo
	HourGate   *int
	Location   *time.Location
}

type shopAccrualRepo interface {
	AccrueSellDays(ctx context.Context, now, dayStart time.Time) (int64, error)
}

// NewShopAccrualJob credits one selling day to every open shop once the local
// clock has reached HourGate. A shop is credited at most once per local day.
func NewShopAccrualJob(params ShopAccrualJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("shop repository required")
	}
	gate := defaultAccrualHourGate
	if params.HourGate != nil {
		gate = *params.HourGate
	}
	if gate < 0 || gate > 23 {
		return nil, fmt.Errorf("accrual hour gate must be between 0 and 23")
	}
	loc := params.Location
	if loc == nil {
		loc = time.Local
	}
	return &shopAccrualJob{
		logg:     params.Logger,
		repo:     params.Repository,
		hourGate: gate,
		loc:      loc,
		now:      time.Now,
	}, nil
}

type shopAccrualJob struct {
	logg     *logger.Logger
	repo     shopAccrualRepo
	hourGate int
	loc      *time.Location
	now      func() time.Time
}

func (j *shopAccrualJob) Name() string { return JobShopAccrual }

func (j *shopAccrualJob) Run(ctx context.Context) (int64, error) {
	now := j.now().In(j.loc)
	if now.Hour() < j.hourGate {
		j.logg.Info(j.logg.WithField(ctx, "hour_gate", j.hourGate), "before accrual hour; nothing to do")
		return 0, ErrSkipped
	}
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, j.loc)
	updated, err := j.repo.AccrueSellDays(ctx, now.UTC(), dayStart.UTC())
	if err != nil {
		return 0, fmt.Errorf("accrue sell days: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "shops_updated", updated), "selling days accrued")
	return updated, nil
}
