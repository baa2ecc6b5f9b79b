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

	"github.com/angelmondragon/localdrop-backend/pkg/config"
	"github.com/angelmondragon/localdrop-backend/pkg/db"
	"github.com/angelmondragon/localdrop-backend/pkg/logger"
	"github.com/angelmondragon/localdrop-backend/pkg/metrics"
	"github.com/angelmondragon/localdrop-backend/pkg/migrate"
	"github.com/angelmondragon/localdrop-backend/pkg/outbox"
	"github.com/angelmondragon/localdrop-backend/pkg/pubsub"
)

const serviceName = "outbox-publisher"

func main() {
	_ = godotenv.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.New(logger.Options{ServiceName: serviceName}).Error(context.Background(), "outbox publisher exited", err)
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

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer dbClient.Close()
	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	bus, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		return fmt.Errorf("pubsub: %w", err)
	}
	defer bus.Close()

	reg := metrics.NewWorkerRegistry()
	metricsSrv, err := metrics.Serve(cfg.Outbox.MetricsAddr, reg, func(err error) {
		logg.Error(ctx, "outbox.metrics_server_failed", err)
	})
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}
	defer metricsSrv.Stop()

	relay, err := outbox.NewRelay(outbox.RelayConfig{
		Topic:        bus.DomainTopic(),
		BatchSize:    cfg.Outbox.BatchSize,
		MaxAttempts:  cfg.Outbox.MaxAttempts,
		PollInterval: time.Duration(cfg.Outbox.PollIntervalMS) * time.Millisecond,
	}, outbox.NewRepository(dbClient.DB()), dbClient, bus, logg, metrics.NewOutboxMetrics(reg))
	if err != nil {
		return err
	}

	logg.Info(logg.WithField(ctx, "topic", bus.DomainTopic()), "outbox.relay_started")
	err = relay.Run(ctx)
	logg.Info(ctx, "outbox.relay_stopped")
	return err
}
