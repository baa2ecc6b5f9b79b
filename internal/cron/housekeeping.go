package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/localdrop-backend/pkg/config"
	"github.com/angelmondragon/localdrop-backend/pkg/logger"
)

// HousekeepingParams wire the standard jobs to their repositories.
type HousekeepingParams struct {
	Logger     *logger.Logger
	Config     config.HousekeepingConfig
	Deliveries interface {
		DeleteDeliveredBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}
	Shops  shopAccrualRepo
	Outbox interface {
		DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}
}

// NewHousekeepingRegistry registers the delivered sweep, the shop accrual and
// the outbox retention jobs on their configured schedules.
func NewHousekeepingRegistry(params HousekeepingParams) (*Registry, error) {
	loc, err := params.Config.Location()
	if err != nil {
		return nil, fmt.Errorf("housekeeping timezone: %w", err)
	}

	if params.Deliveries == nil || params.Outbox == nil {
		return nil, fmt.Errorf("housekeeping needs delivery and outbox repositories")
	}
	sweep, err := NewRetentionJob(RetentionJobParams{
		Name:      JobDeliveredSweep,
		Logger:    params.Logger,
		Retention: orDefault(params.Config.DeliveredRetention, 3*time.Hour),
		Purge:     params.Deliveries.DeleteDeliveredBefore,
	})
	if err != nil {
		return nil, err
	}
	gate := params.Config.AccrualHourGate
	accrual, err := NewShopAccrualJob(ShopAccrualJobParams{
		Logger:     params.Logger,
		Repository: params.Shops,
		HourGate:   &gate,
		Location:   loc,
	})
	if err != nil {
		return nil, err
	}
	retention, err := NewRetentionJob(RetentionJobParams{
		Name:      JobOutboxRetention,
		Logger:    params.Logger,
		Retention: orDefault(params.Config.OutboxRetention, 30*24*time.Hour),
		Purge:     params.Outbox.DeletePublishedBefore,
	})
	if err != nil {
		return nil, err
	}

	registry := NewRegistry()
	schedules := []struct {
		job  Job
		spec string
	}{
		{sweep, params.Config.SweepSchedule},
		{accrual, params.Config.AccrualSchedule},
		{retention, params.Config.OutboxSchedule},
	}
	for _, s := range schedules {
		if err := registry.Register(s.job, s.spec); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
