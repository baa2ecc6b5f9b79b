package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/localdrop-backend/internal/cron"
	"github.com/angelmondragon/localdrop-backend/internal/deliveries"
	"github.com/angelmondragon/localdrop-backend/internal/shops"
	"github.com/angelmondragon/localdrop-backend/pkg/config"
	"github.com/angelmondragon/localdrop-backend/pkg/db"
	"github.com/angelmondragon/localdrop-backend/pkg/logger"
	"github.com/angelmondragon/localdrop-backend/pkg/outbox"
	"github.com/angelmondragon/localdrop-backend/pkg/redis"
)

// housekeeping fires the scheduled jobs once and prints what they did.
func main() {
	jobs := flag.String("jobs", "", "comma separated job names; empty runs every job")
	useRedis := flag.Bool("redis-lock", true, "take the shared Redis job lock instead of an in-process one")
	list := flag.Bool("list", false, "print the registered jobs and their schedules")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "housekeeping"})
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "housekeeping",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	ctx := logg.WithField(context.Background(), "env", cfg.App.Env)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	conn := dbClient.DB()
	registry, err := cron.NewHousekeepingRegistry(cron.HousekeepingParams{
		Logger:     logg,
		Config:     cfg.Housekeeping,
		Deliveries: deliveries.NewRepository(conn),
		Shops:      shops.NewRepository(conn),
		Outbox:     outbox.NewRepository(conn),
	})
	if err != nil {
		logg.Error(ctx, "failed to register housekeeping jobs", err)
		os.Exit(1)
	}
	if *list {
		if err := writeSchedule(os.Stdout, registry.Entries()); err != nil {
			fmt.Fprintf(os.Stderr, "render schedule: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var lock cron.Lock = cron.NewLocalLock()
	if *useRedis {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		redisLock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron"), 0)
		if err != nil {
			logg.Error(ctx, "failed to create cron lock", err)
			os.Exit(1)
		}
		lock = redisLock
	}

	loc, _ := cfg.Housekeeping.Location()
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Location: loc,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cron service", err)
		os.Exit(1)
	}

	results, runErr := service.RunNamed(ctx, splitJobs(*jobs)...)
	if err := writeSummary(os.Stdout, results); err != nil {
		fmt.Fprintf(os.Stderr, "render summary: %v\n", err)
	}
	if runErr != nil {
		logg.Error(ctx, "housekeeping finished with errors", runErr)
		os.Exit(1)
	}
}

func splitJobs(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}
