package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Teja2142/Hyrind-Backend/api/routes"
	"github.com/Teja2142/Hyrind-Backend/internal/billing"
	"github.com/Teja2142/Hyrind-Backend/internal/notifications"
	"github.com/Teja2142/Hyrind-Backend/internal/plans"
	"github.com/Teja2142/Hyrind-Backend/internal/subscriptions"
	paymentwebhook "github.com/Teja2142/Hyrind-Backend/internal/webhooks/payment"
	"github.com/Teja2142/Hyrind-Backend/pkg/config"
	"github.com/Teja2142/Hyrind-Backend/pkg/db"
	"github.com/Teja2142/Hyrind-Backend/pkg/email"
	"github.com/Teja2142/Hyrind-Backend/pkg/logger"
	"github.com/Teja2142/Hyrind-Backend/pkg/metrics"
	"github.com/Teja2142/Hyrind-Backend/pkg/migrate"
	"github.com/Teja2142/Hyrind-Backend/pkg/redis"
)

const (
	webhookScope    = "payment-webhook"
	shutdownTimeout = 15 * time.Second
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	billingMetrics := metrics.NewBillingMetrics(prometheus.DefaultRegisterer)

	planRepo := plans.NewRepository(dbClient.DB())
	planService, err := plans.NewService(plans.ServiceParams{
		Repo:   planRepo,
		DB:     dbClient,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create plan service", err)
		os.Exit(1)
	}

	ledger := billing.NewRepository(dbClient.DB())
	billingService, err := billing.NewService(billing.ServiceParams{Repo: ledger})
	if err != nil {
		logg.Error(context.Background(), "failed to create billing service", err)
		os.Exit(1)
	}

	sender, err := email.New(cfg.Email, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create email sender", err)
		os.Exit(1)
	}
	mailer, err := notifications.NewMailer(notifications.Params{
		Sender:       sender,
		Logger:       logg,
		SupportEmail: cfg.Email.SupportEmail,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create mailer", err)
		os.Exit(1)
	}

	subscriptionService, err := subscriptions.NewService(subscriptions.ServiceParams{
		Repo:                    subscriptions.NewRepository(dbClient.DB()),
		Ledger:                  ledger,
		Plans:                   planRepo,
		DB:                      dbClient,
		Logger:                  logg,
		Metrics:                 billingMetrics,
		Notifier:                mailer,
		RequirePaymentSignature: cfg.Razorpay.RequirePaymentSignature,
		KeySecret:               cfg.Razorpay.KeySecret,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create subscription service", err)
		os.Exit(1)
	}

	guard, err := paymentwebhook.NewIdempotencyGuard(redisClient, cfg.Webhook.IdempotencyTTL, webhookScope)
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}
	webhookService, err := paymentwebhook.NewService(paymentwebhook.ServiceParams{
		Subscriptions: subscriptionService,
		Guard:         guard,
		Secret:        cfg.Razorpay.WebhookSecret,
		Logger:        logg,
		Metrics:       billingMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment webhook service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			planService,
			subscriptionService,
			billingService,
			webhookService,
			promhttp.Handler(),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}

	// pending notification sends finish before the process exits
	mailer.Wait()
	logg.Info(ctx, "api server stopped")
}
