package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/localdrop-backend/internal/cron"
	"github.com/angelmondragon/localdrop-backend/internal/deliveries"
	"github.com/angelmondragon/localdrop-backend/internal/shops"
	"github.com/angelmondragon/localdrop-backend/pkg/config"
	"github.com/angelmondragon/localdrop-backend/pkg/db"
	"github.com/angelmondragon/localdrop-backend/pkg/logger"
	"github.com/angelmondragon/localdrop-backend/pkg/metrics"
	"github.com/angelmondragon/localdrop-backend/pkg/migrate"
	"github.com/angelmondragon/localdrop-backend/pkg/outbox"
	"github.com/angelmondragon/localdrop-backend/pkg/redis"
)

const (
	serviceName = "cron-worker"
	lockTTL     = 30 * time.Minute
)

func main() {
	_ = godotenv.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.New(logger.Options{ServiceName: serviceName}).Error(context.Background(), "cron worker exited", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	ctx = logg.WithField(ctx, "env", cfg.App.Env)

	loc, err := cfg.Housekeeping.Location()
	if err != nil {
		return err
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer dbClient.Close()
	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisClient.Close()
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron"), lockTTL)
	if err != nil {
		return err
	}

	conn := dbClient.DB()
	registry, err := cron.NewHousekeepingRegistry(cron.HousekeepingParams{
		Logger:     logg,
		Config:     cfg.Housekeeping,
		Deliveries: deliveries.NewRepository(conn),
		Shops:      shops.NewRepository(conn),
		Outbox:     outbox.NewRepository(conn),
	})
	if err != nil {
		return fmt.Errorf("register jobs: %w", err)
	}

	reg := metrics.NewWorkerRegistry()
	metricsSrv, err := metrics.Serve(cfg.Housekeeping.MetricsAddr, reg, func(err error) {
		logg.Error(ctx, "cron.metrics_server_failed", err)
	})
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}
	defer metricsSrv.Stop()

	scheduler, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(reg),
		Interval: cfg.Housekeeping.Interval,
		Location: loc,
	})
	if err != nil {
		return err
	}

	logg.Info(ctx, "cron.worker_started")
	err = scheduler.Run(ctx)
	logg.Info(ctx, "cron.worker_stopped")
	return err
}
