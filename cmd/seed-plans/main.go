package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/Teja2142/Hyrind-Backend/internal/plans"
	"github.com/Teja2142/Hyrind-Backend/pkg/config"
	"github.com/Teja2142/Hyrind-Backend/pkg/db"
	"github.com/Teja2142/Hyrind-Backend/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "seed-plans"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed-plans",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithField(context.Background(), "env", cfg.App.Env)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	svc, err := plans.NewService(plans.ServiceParams{
		Repo:   plans.NewRepository(dbClient.DB()),
		DB:     dbClient,
		Logger: logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create plan service", err)
		os.Exit(1)
	}

	created, existing, err := seedCatalog(ctx, svc, logg, defaultCatalog)
	if err != nil {
		logg.Error(ctx, "plan seeding failed", err)
		os.Exit(1)
	}
	logg.Info(logg.WithFields(ctx, map[string]any{
		"created":  created,
		"existing": existing,
	}), "plan seeding complete")
}
