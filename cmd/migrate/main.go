package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/localdrop-backend/pkg/config"
	"github.com/angelmondragon/localdrop-backend/pkg/db"
	"github.com/angelmondragon/localdrop-backend/pkg/logger"
	"github.com/angelmondragon/localdrop-backend/pkg/migrate"
)

const usage = `usage: migrate [flags] <command>

commands:
  up              apply pending migrations
  down            roll back the latest migration
  to <version>    move the schema to version (YYYYMMDDHHMMSS)
  status          list migrations and when they were applied
  create <name>   write an empty migration under -dir
  validate        check migration names and goose markers`

func main() {
	dir := flag.String("dir", "", "read migrations from this directory instead of the embedded set")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := runOffline(args, *dir); err != errNeedsDB {
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	_ = godotenv.Load()
	logg := logger.New(logger.Options{ServiceName: "migrate"})
	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env, "command": args[0]})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		logg.Error(ctx, "failed to unwrap sql handle", err)
		os.Exit(1)
	}
	runner, err := migrate.NewRunner(sqlDB, sourceFS(*dir))
	if err != nil {
		logg.Error(ctx, "failed to open migrations", err)
		os.Exit(1)
	}
	if err := runOnline(ctx, runner, args); err != nil {
		logg.Error(ctx, "migration command failed", err)
		os.Exit(1)
	}
}

var errNeedsDB = fmt.Errorf("command needs a database")

// runOffline handles the commands that only touch the filesystem.
func runOffline(args []string, dir string) error {
	switch args[0] {
	case "create":
		if len(args) < 2 {
			return fmt.Errorf("create needs a name")
		}
		if dir == "" {
			dir = migrate.SourceDir
		}
		path, err := migrate.CreateSQLMigration(dir, args[1])
		if err != nil {
			return err
		}
		fmt.Println("created", path)
		return nil
	case "validate":
		if err := migrate.Validate(sourceFS(dir)); err != nil {
			return err
		}
		fmt.Println("migrations ok")
		return nil
	default:
		return errNeedsDB
	}
}

func runOnline(ctx context.Context, runner *migrate.Runner, args []string) error {
	switch args[0] {
	case "up":
		applied, err := runner.Up(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("applied %d migration(s)\n", len(applied))
	case "down":
		version, err := runner.Down(ctx)
		if err != nil {
			return err
		}
		fmt.Println("rolled back", version)
	case "to":
		target, err := parseVersion(args)
		if err != nil {
			return err
		}
		moved, err := runner.To(ctx, target)
		if err != nil {
			return err
		}
		fmt.Printf("moved through %d migration(s) to %d\n", len(moved), target)
	case "status":
		statuses, err := runner.Status(ctx)
		if err != nil {
			return err
		}
		return writeStatus(os.Stdout, statuses)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}

func parseVersion(args []string) (int64, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("to needs a version")
	}
	raw := args[1]
	if len(raw) != 14 {
		return 0, fmt.Errorf("version %q must be YYYYMMDDHHMMSS", raw)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("version %q: %w", raw, err)
	}
	return v, nil
}

func sourceFS(dir string) fs.FS {
	if dir == "" {
		return migrate.Embedded()
	}
	return os.DirFS(dir)
}
