package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Teja2142/Hyrind-Backend/pkg/config"
	"github.com/Teja2142/Hyrind-Backend/pkg/db"
	"github.com/Teja2142/Hyrind-Backend/pkg/logger"
	"github.com/Teja2142/Hyrind-Backend/pkg/migrate"
)

type options struct {
	command string
	dir     string
	name    string
	version string
}

var errUsage = errors.New("usage")

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.command, "cmd", "up", "up|down|status|version|create|validate")
	flag.StringVar(&opts.dir, "dir", migrate.DefaultDir, "migrations directory; the default uses the embedded set")
	flag.StringVar(&opts.name, "name", "", "description for -cmd=create")
	flag.StringVar(&opts.version, "version", "", "target YYYYMMDDHHMMSS for -cmd=version")
	flag.Parse()
	return opts
}

func main() {
	_ = godotenv.Load()
	opts := parseFlags()

	logg := logger.New(logger.Options{ServiceName: "migrate"})
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logg, opts); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			flag.Usage()
			os.Exit(2)
		}
		logg.Error(logg.WithField(ctx, "cmd", opts.command), "migration command failed", err)
		os.Exit(1)
	}
}

func run(parent context.Context, logg *logger.Logger, opts options) error {
	fields := map[string]any{"cmd": opts.command, "dir": opts.dir}
	ctx := logg.WithFields(parent, fields)

	// create and validate only touch the filesystem.
	switch opts.command {
	case "create":
		if opts.name == "" {
			return fmt.Errorf("%w: -name is required for create", errUsage)
		}
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name)
		if err != nil {
			return err
		}
		logg.Info(logg.WithField(ctx, "path", path), "migration created")
		return nil
	case "validate":
		if err := migrate.ValidateDir(opts.dir); err != nil {
			return err
		}
		logg.Info(ctx, "migrations valid")
		return nil
	case "version":
		if opts.version == "" {
			return fmt.Errorf("%w: -version is required for version", errUsage)
		}
	case "up", "down", "status":
	default:
		return fmt.Errorf("%w: unknown -cmd %q", errUsage, opts.command)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := migrate.RequirePostgres(cfg.DB); err != nil {
		return err
	}
	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	fields["env"] = cfg.App.Env
	ctx = logg.WithFields(parent, fields)

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer client.Close()

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	if err := apply(ctx, sqlDB, opts); err != nil {
		return err
	}
	logg.Info(ctx, "migration command finished")
	return nil
}

func apply(ctx context.Context, sqlDB *sql.DB, opts options) error {
	if opts.command == "version" {
		return migrate.MigrateToVersion(ctx, sqlDB, opts.dir, opts.version)
	}
	return migrate.Run(ctx, sqlDB, opts.dir, opts.command)
}
