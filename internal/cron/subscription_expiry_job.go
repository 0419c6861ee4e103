package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/Teja2142/Hyrind-Backend/pkg/db/models"
	"github.com/Teja2142/Hyrind-Backend/pkg/logger"
)

const (
	subscriptionExpiryJobName = "subscription-expiry"
	defaultExpiryGrace        = 3 * 24 * time.Hour
	defaultExpiryBatch        = 200
)

type expiringSubscriptions interface {
	ListOverdue(ctx context.Context, cutoff time.Time, limit int) ([]models.Subscription, error)
	Expire(ctx context.Context, id uuid.UUID) (bool, error)
}

type SubscriptionExpiryJobParams struct {
	Logger        *logger.Logger
	Subscriptions expiringSubscriptions
	// Grace is how long past next_billing_date an active record survives.
	Grace time.Duration
	Batch int
}

// NewSubscriptionExpiryJob builds the job that expires active subscriptions
// whose billing date lapsed. No renewal or charge is attempted.
func NewSubscriptionExpiryJob(params SubscriptionExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Subscriptions == nil {
		return nil, fmt.Errorf("subscription service required")
	}
	grace := params.Grace
	if grace < 0 {
		return nil, fmt.Errorf("grace must be non-negative")
	}
	if grace == 0 {
		grace = defaultExpiryGrace
	}
	batch := params.Batch
	if batch <= 0 {
		batch = defaultExpiryBatch
	}
	return &subscriptionExpiryJob{
		logg:  params.Logger,
		subs:  params.Subscriptions,
		grace: grace,
		batch: batch,
		now:   time.Now,
	}, nil
}

type subscriptionExpiryJob struct {
	logg  *logger.Logger
	subs  expiringSubscriptions
	grace time.Duration
	batch int
	now   func() time.Time
}

func (j *subscriptionExpiryJob) Name() string { return subscriptionExpiryJobName }

func (j *subscriptionExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.grace)
	overdue, err := j.subs.ListOverdue(ctx, cutoff, j.batch)
	if err != nil {
		return fmt.Errorf("list overdue subscriptions: %w", err)
	}

	var (
		runErr  error
		expired int
		skipped int
	)
	for _, sub := range overdue {
		ok, err := j.subs.Expire(ctx, sub.ID)
		if err != nil {
			runErr = multierr.Append(runErr, fmt.Errorf("expire %s: %w", sub.ID, err))
			continue
		}
		if ok {
			expired++
		} else {
			skipped++
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":   cutoff,
		"overdue":  len(overdue),
		"expired":  expired,
		"skipped":  skipped,
		"failures": len(multierr.Errors(runErr)),
	})
	j.logg.Info(logCtx, "subscription expiry complete")
	return runErr
}
