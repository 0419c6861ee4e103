package migrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/Teja2142/Hyrind-Backend/pkg/config"
	"github.com/Teja2142/Hyrind-Backend/pkg/db"
	"github.com/Teja2142/Hyrind-Backend/pkg/logger"
)

// ShouldAutoRun reports whether a binary should apply the embedded
// migrations on boot. Only dev environments with the flag set do so.
func ShouldAutoRun(cfg *config.Config) bool {
	return cfg != nil && cfg.App.IsDev() && cfg.FeatureFlags.AutoMigrate
}

// RequirePostgres rejects drivers the embedded SQL cannot target.
func RequirePostgres(cfg config.DBConfig) error {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver != "" && driver != db.DriverPostgres {
		return fmt.Errorf("migrations require the postgres driver, got %q", cfg.Driver)
	}
	return nil
}

// MaybeRunDev brings the schema up to date for local runs of the api and
// cron-worker binaries. It is a no-op outside dev.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !ShouldAutoRun(cfg) {
		return nil
	}
	if err := RequirePostgres(cfg.DB); err != nil {
		return err
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	if err := prepare(DefaultDir); err != nil {
		return err
	}

	before, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "schema_version": before})

	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("applying embedded migrations: %w", err)
	}

	after, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if after == before {
		logg.Info(ctx, "schema already current")
		return nil
	}
	logg.Info(logg.WithField(ctx, "schema_version_after", after), "schema migrated")
	return nil
}
