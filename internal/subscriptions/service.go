package subscriptions

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Teja2142/Hyrind-Backend/internal/billing"
	"github.com/Teja2142/Hyrind-Backend/pkg/db"
	"github.com/Teja2142/Hyrind-Backend/pkg/db/models"
	dbtypes "github.com/Teja2142/Hyrind-Backend/pkg/db/types"
	"github.com/Teja2142/Hyrind-Backend/pkg/enums"
	pkgerrors "github.com/Teja2142/Hyrind-Backend/pkg/errors"
	"github.com/Teja2142/Hyrind-Backend/pkg/logger"
	"github.com/Teja2142/Hyrind-Backend/pkg/metrics"
	"github.com/Teja2142/Hyrind-Backend/pkg/money"
	"github.com/Teja2142/Hyrind-Backend/pkg/razorpay"
)

// BillingPeriod is the fixed offset between activation and the next charge.
const BillingPeriod = 30

// Activation entry points.
const (
	SourceUser    = "user"
	SourceWebhook = "webhook"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type planLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Plan, error)
}

// Notifier is told about committed lifecycle changes. Implementations must not
// block the caller.
type Notifier interface {
	Activated(ctx context.Context, sub models.Subscription)
	Cancelled(ctx context.Context, sub models.Subscription)
}

// Service owns the subscription lifecycle.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreateInput) (*models.Subscription, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Subscription, error)
	Activate(ctx context.Context, input ActivateInput) (*ActivationResult, error)
	Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*CancelResult, error)
	RecordPaymentFailure(ctx context.Context, input PaymentFailure) (*models.Subscription, *models.BillingHistory, error)
	Summary(ctx context.Context, userID uuid.UUID) (*Summary, error)
	AdminList(ctx context.Context, filter AdminFilter) ([]models.Subscription, error)
	AdminUpdate(ctx context.Context, id uuid.UUID, input AdminUpdateInput) (*models.Subscription, error)
	ListOverdue(ctx context.Context, cutoff time.Time, limit int) ([]models.Subscription, error)
	Expire(ctx context.Context, id uuid.UUID) (bool, error)
}

type ServiceParams struct {
	Repo     Repository
	Ledger   billing.Repository
	Plans    planLookup
	DB       txRunner
	Logger   *logger.Logger
	Metrics  *metrics.BillingMetrics
	Notifier Notifier
	Now      func() time.Time

	// RequirePaymentSignature makes the user activation path verify the
	// gateway payment signature with KeySecret.
	RequirePaymentSignature bool
	KeySecret               string
}

type service struct {
	repo     Repository
	ledger   billing.Repository
	plans    planLookup
	tx       txRunner
	logg     *logger.Logger
	metrics  *metrics.BillingMetrics
	notifier Notifier
	now      func() time.Time

	requireSignature bool
	keySecret        string
}

// Actor is the authenticated caller.
type Actor struct {
	UserID uuid.UUID
	Email  string
	Admin  bool
}

func (a *Actor) owns(sub *models.Subscription) bool {
	if a == nil || a.Admin {
		return true
	}
	return a.UserID == sub.UserID
}

type CreateInput struct {
	PlanID uuid.UUID
	// Price defaults to the plan's catalog price when nil.
	Price *decimal.Decimal
}

// ActivateInput binds a gateway payment to a pending subscription. Actor is
// nil on the trusted webhook path.
type ActivateInput struct {
	SubscriptionID uuid.UUID
	PaymentID      string
	OrderID        string
	Signature      string
	Amount         decimal.Decimal
	Actor          *Actor
	Source         string
}

type ActivationResult struct {
	Subscription  *models.Subscription
	Billing       *models.BillingHistory
	AlreadyActive bool
}

type CancelResult struct {
	Subscription     *models.Subscription
	AlreadyCancelled bool
}

// PaymentFailure records an unsuccessful gateway charge.
type PaymentFailure struct {
	SubscriptionID uuid.UUID
	PaymentID      string
	OrderID        string
	Amount         decimal.Decimal
	GatewayStatus  string
}

// Summary is the dashboard projection over a user's subscriptions.
type Summary struct {
	TotalSubscriptions  int
	ActiveSubscriptions int
	MonthlyCost         decimal.Decimal
	NextBillingDate     *time.Time
	BaseSubscription    *models.Subscription
	Addons              []models.Subscription
}

type AdminFilter struct {
	UserID   string
	Status   string
	PlanType string
	Limit    int
}

// AdminUpdateInput carries operator overrides. Nil fields are left untouched.
type AdminUpdateInput struct {
	Price      *decimal.Decimal
	AdminNotes *string
	Status     *enums.SubscriptionStatus
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, errors.New("subscription repository required")
	case params.Ledger == nil:
		return nil, errors.New("billing repository required")
	case params.Plans == nil:
		return nil, errors.New("plan lookup required")
	case params.DB == nil:
		return nil, errors.New("transaction runner required")
	case params.Logger == nil:
		return nil, errors.New("logger required")
	}
	if params.RequirePaymentSignature && strings.TrimSpace(params.KeySecret) == "" {
		return nil, errors.New("razorpay key secret required when payment signatures are enforced")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:             params.Repo,
		ledger:           params.Ledger,
		plans:            params.Plans,
		tx:               params.DB,
		logg:             params.Logger,
		metrics:          params.Metrics,
		notifier:         params.Notifier,
		now:              now,
		requireSignature: params.RequirePaymentSignature,
		keySecret:        params.KeySecret,
	}, nil
}

// NextBillingDate returns the calendar date BillingPeriod days after now, in UTC.
func NextBillingDate(now time.Time) time.Time {
	d := now.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, BillingPeriod)
}

func (s *service) Create(ctx context.Context, actor Actor, input CreateInput) (*models.Subscription, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	if input.PlanID == uuid.Nil {
		return nil, pkgerrors.Field("plan", "plan is required")
	}

	plan, err := s.plans.FindByID(ctx, input.PlanID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load plan")
	}
	if plan == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
	}
	if !plan.IsActive {
		return nil, pkgerrors.Field("plan", "plan is not available")
	}

	price := plan.BasePrice
	if input.Price != nil {
		price = *input.Price
	}
	price, err = money.Positive("price", price)
	if err != nil {
		return nil, err
	}

	sub := &models.Subscription{
		UserID:    actor.UserID,
		UserEmail: strings.TrimSpace(actor.Email),
		PlanID:    plan.ID,
		Price:     price,
		Status:    enums.SubscriptionStatusPending,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		subs := s.repo.WithTx(tx)
		dup, err := subs.HasActive(ctx, actor.UserID, plan.ID, uuid.Nil)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check active subscriptions")
		}
		if dup {
			return duplicateActive(plan)
		}
		if err := subs.Create(ctx, sub); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create subscription")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sub.Plan = plan

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"subscription_id": sub.ID.String(),
		"plan_id":         plan.ID.String(),
		"price":           sub.Price.StringFixed(2),
	})
	s.logg.Info(logCtx, "subscription created")
	return sub, nil
}

func duplicateActive(plan *models.Plan) error {
	err := pkgerrors.New(pkgerrors.CodeConflict, "you already have an active subscription for this plan")
	if plan == nil {
		return err
	}
	return err.WithDetails(map[string]any{"plan_id": plan.ID.String(), "plan": plan.Name})
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	out, err := s.repo.List(ctx, ListQuery{UserID: userID, WithBilling: true})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list subscriptions")
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Subscription, error) {
	sub, err := s.repo.FindDetailed(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	if sub == nil || !actor.owns(sub) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
	}
	return sub, nil
}

// Activate runs the pending to active transition and its ledger append in one
// transaction. A second call against an active record returns AlreadyActive
// without writing anything.
func (s *service) Activate(ctx context.Context, input ActivateInput) (*ActivationResult, error) {
	source := input.Source
	if source == "" {
		source = SourceUser
	}
	result, err := s.activate(ctx, input, source)
	switch {
	case err != nil:
		s.metrics.IncActivation(source, metrics.OutcomeRejected)
		return nil, err
	case result.AlreadyActive:
		s.metrics.IncActivation(source, metrics.OutcomeAlreadyActive)
		s.logg.Info(s.logg.WithSubscriptionID(ctx, input.SubscriptionID.String()), "subscription already active")
		return result, nil
	}

	s.metrics.IncActivation(source, metrics.OutcomeActivated)
	s.metrics.IncTransition(enums.SubscriptionStatusActive.String())
	logCtx := s.logg.WithFields(s.logg.WithSubscriptionID(ctx, result.Subscription.ID.String()), map[string]any{
		"source":            source,
		"payment_id":        input.PaymentID,
		"next_billing_date": result.Subscription.NextBillingDate.Format("2006-01-02"),
	})
	s.logg.Info(logCtx, "subscription activated")
	if s.notifier != nil {
		s.notifier.Activated(ctx, *result.Subscription)
	}
	return result, nil
}

func (s *service) activate(ctx context.Context, input ActivateInput, source string) (*ActivationResult, error) {
	paymentID := strings.TrimSpace(input.PaymentID)
	orderID := strings.TrimSpace(input.OrderID)
	switch {
	case paymentID == "":
		return nil, pkgerrors.Field("razorpay_payment_id", "payment id is required")
	case orderID == "":
		return nil, pkgerrors.Field("razorpay_order_id", "order id is required")
	}
	amount, err := money.Positive("amount", input.Amount)
	if err != nil {
		return nil, err
	}
	if s.requireSignature && source == SourceUser {
		if err := razorpay.VerifyPayment(s.keySecret, orderID, paymentID, input.Signature); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidSignature, err, "payment signature verification failed")
		}
	}

	result := &ActivationResult{}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		subs := s.repo.WithTx(tx)
		sub, err := subs.FindByID(ctx, input.SubscriptionID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
		}
		if sub == nil || !input.Actor.owns(sub) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
		}

		switch sub.Status {
		case enums.SubscriptionStatusActive:
			result.Subscription = sub
			result.AlreadyActive = true
			return nil
		case enums.SubscriptionStatusPending:
		default:
			return transitionConflict(sub.Status, enums.SubscriptionStatusActive)
		}

		dup, err := subs.HasActive(ctx, sub.UserID, sub.PlanID, sub.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check active subscriptions")
		}
		if dup {
			return duplicateActive(sub.Plan)
		}

		now := s.now().UTC()
		next := NextBillingDate(now)
		rows, err := subs.MarkActive(ctx, sub.ID, Activation{PaymentID: paymentID, StartedAt: now, NextBillingDate: next})
		if err != nil {
			if db.IsUniqueViolation(err, "unique_active_subscription_per_plan") {
				return duplicateActive(sub.Plan)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "activate subscription")
		}
		if rows == 0 {
			// Lost the swap to a concurrent activation or cancel.
			current, err := subs.FindByID(ctx, sub.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload subscription")
			}
			if current != nil && current.Status == enums.SubscriptionStatusActive {
				result.Subscription = current
				result.AlreadyActive = true
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "subscription changed state during activation")
		}

		entry := &models.BillingHistory{
			SubscriptionID:    sub.ID,
			Amount:            amount,
			Status:            enums.BillingStatusSuccess,
			RazorpayPaymentID: &paymentID,
			RazorpayOrderID:   &orderID,
			Description:       "Subscription activated: " + planName(sub),
			Metadata:          dbtypes.JSONMap{"source": source},
			CreatedAt:         now,
		}
		if err := s.ledger.WithTx(tx).Append(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record billing entry")
		}

		sub.Status = enums.SubscriptionStatusActive
		sub.RazorpaySubscriptionID = &paymentID
		sub.StartedAt = &now
		sub.NextBillingDate = &next
		sub.UpdatedAt = now
		result.Subscription = sub
		result.Billing = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func planName(sub *models.Subscription) string {
	if sub.Plan == nil {
		return sub.PlanID.String()
	}
	return sub.Plan.Name
}

func transitionConflict(from, to enums.SubscriptionStatus) error {
	return pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot move subscription from %s to %s", from, to).
		WithDetails(map[string]any{"status": from.String()})
}

// Cancel ends an active subscription. Cancelling a cancelled record is a no-op.
func (s *service) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*CancelResult, error) {
	result := &CancelResult{}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		subs := s.repo.WithTx(tx)
		sub, err := subs.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
		}
		if sub == nil || !actor.owns(sub) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
		}
		if sub.Status == enums.SubscriptionStatusCancelled {
			result.Subscription = sub
			result.AlreadyCancelled = true
			return nil
		}
		if sub.Status != enums.SubscriptionStatusActive {
			return transitionConflict(sub.Status, enums.SubscriptionStatusCancelled)
		}

		now := s.now().UTC()
		rows, err := subs.Transition(ctx, sub.ID, enums.SubscriptionStatusActive, enums.SubscriptionStatusCancelled, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel subscription")
		}
		if rows == 0 {
			current, err := subs.FindByID(ctx, sub.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload subscription")
			}
			if current != nil && current.Status == enums.SubscriptionStatusCancelled {
				result.Subscription = current
				result.AlreadyCancelled = true
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "subscription changed state during cancellation")
		}
		sub.Status = enums.SubscriptionStatusCancelled
		sub.EndedAt = &now
		sub.UpdatedAt = now
		result.Subscription = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.AlreadyCancelled {
		return result, nil
	}

	s.metrics.IncTransition(enums.SubscriptionStatusCancelled.String())
	s.logg.Info(s.logg.WithSubscriptionID(ctx, id.String()), "subscription cancelled")
	if s.notifier != nil {
		s.notifier.Cancelled(ctx, *result.Subscription)
	}
	return result, nil
}

// RecordPaymentFailure appends a failed ledger entry and leaves the
// subscription status untouched.
func (s *service) RecordPaymentFailure(ctx context.Context, input PaymentFailure) (*models.Subscription, *models.BillingHistory, error) {
	amount, err := money.NonNegative("amount", input.Amount)
	if err != nil {
		return nil, nil, err
	}
	var (
		sub   *models.Subscription
		entry *models.BillingHistory
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		sub, err = s.repo.WithTx(tx).FindByID(ctx, input.SubscriptionID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
		}
		if sub == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
		}

		entry = &models.BillingHistory{
			SubscriptionID: sub.ID,
			Amount:         amount,
			Status:         enums.BillingStatusFailed,
			Description:    "Payment failed: " + planName(sub),
			Metadata: dbtypes.JSONMap{
				"source":         SourceWebhook,
				"gateway_status": input.GatewayStatus,
			},
			CreatedAt: s.now().UTC(),
		}
		if id := strings.TrimSpace(input.PaymentID); id != "" {
			entry.RazorpayPaymentID = &id
		}
		if id := strings.TrimSpace(input.OrderID); id != "" {
			entry.RazorpayOrderID = &id
		}
		if err := s.ledger.WithTx(tx).Append(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record billing entry")
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	logCtx := s.logg.WithFields(s.logg.WithSubscriptionID(ctx, sub.ID.String()), map[string]any{
		"payment_id":     input.PaymentID,
		"gateway_status": input.GatewayStatus,
	})
	s.logg.Warn(logCtx, "payment failure recorded")
	return sub, entry, nil
}

func (s *service) Summary(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	subs, err := s.repo.List(ctx, ListQuery{UserID: userID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list subscriptions")
	}
	return Summarize(subs), nil
}

// Summarize folds a user's subscriptions into the dashboard projection. Cost,
// billing date and the base/addon split only consider active records.
func Summarize(subs []models.Subscription) *Summary {
	out := &Summary{
		TotalSubscriptions: len(subs),
		MonthlyCost:        decimal.Zero,
		Addons:             []models.Subscription{},
	}
	for i := range subs {
		sub := subs[i]
		if sub.Status != enums.SubscriptionStatusActive {
			continue
		}
		out.ActiveSubscriptions++
		out.MonthlyCost = out.MonthlyCost.Add(sub.Price)
		if sub.NextBillingDate != nil && (out.NextBillingDate == nil || sub.NextBillingDate.Before(*out.NextBillingDate)) {
			next := *sub.NextBillingDate
			out.NextBillingDate = &next
		}
		if sub.Plan != nil && sub.Plan.PlanType == enums.PlanTypeBase {
			if out.BaseSubscription == nil {
				out.BaseSubscription = &sub
			}
			continue
		}
		out.Addons = append(out.Addons, sub)
	}
	return out
}

func (s *service) AdminList(ctx context.Context, filter AdminFilter) ([]models.Subscription, error) {
	query := ListQuery{Limit: filter.Limit}
	if raw := strings.TrimSpace(filter.UserID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, pkgerrors.Field("user_id", "must be a uuid")
		}
		query.UserID = id
	}
	if raw := strings.TrimSpace(filter.Status); raw != "" {
		status, err := enums.ParseSubscriptionStatus(raw)
		if err != nil {
			return nil, pkgerrors.Field("status", "must be one of pending, active, cancelled, expired")
		}
		query.Status = &status
	}
	if raw := strings.TrimSpace(filter.PlanType); raw != "" {
		planType, err := enums.ParsePlanType(raw)
		if err != nil {
			return nil, pkgerrors.Field("plan_type", "must be one of base, addon")
		}
		query.PlanType = &planType
	}
	out, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list subscriptions")
	}
	return out, nil
}

// AdminUpdate applies operator overrides. Status may only move an active
// record into a terminal state; activation always goes through Activate.
func (s *service) AdminUpdate(ctx context.Context, id uuid.UUID, input AdminUpdateInput) (*models.Subscription, error) {
	var price *decimal.Decimal
	if input.Price != nil {
		p, err := money.Positive("price", *input.Price)
		if err != nil {
			return nil, err
		}
		price = &p
	}
	if input.Status != nil && !input.Status.IsTerminal() {
		return nil, pkgerrors.Field("status", "only cancelled or expired can be set directly")
	}

	var transitioned *enums.SubscriptionStatus
	var updated *models.Subscription
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		subs := s.repo.WithTx(tx)
		sub, err := subs.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
		}
		if sub == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
		}

		fields := map[string]any{}
		if price != nil {
			fields["price"] = *price
		}
		if input.AdminNotes != nil {
			fields["admin_notes"] = strings.TrimSpace(*input.AdminNotes)
		}
		if err := subs.UpdateFields(ctx, sub.ID, fields); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update subscription")
		}

		if input.Status != nil && *input.Status != sub.Status {
			if !sub.Status.CanTransitionTo(*input.Status) {
				return transitionConflict(sub.Status, *input.Status)
			}
			rows, err := subs.Transition(ctx, sub.ID, sub.Status, *input.Status, s.now().UTC())
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update subscription status")
			}
			if rows == 0 {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "subscription changed state during update")
			}
			transitioned = input.Status
		}

		updated, err = subs.FindDetailed(ctx, sub.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload subscription")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if transitioned != nil {
		s.metrics.IncTransition(transitioned.String())
	}
	s.logg.Info(s.logg.WithSubscriptionID(ctx, id.String()), "subscription updated by admin")
	return updated, nil
}

func (s *service) ListOverdue(ctx context.Context, cutoff time.Time, limit int) ([]models.Subscription, error) {
	out, err := s.repo.ListOverdue(ctx, cutoff.UTC(), limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list overdue subscriptions")
	}
	return out, nil
}

// Expire moves an active record to expired. It reports false when the record
// was no longer active.
func (s *service) Expire(ctx context.Context, id uuid.UUID) (bool, error) {
	rows, err := s.repo.Transition(ctx, id, enums.SubscriptionStatusActive, enums.SubscriptionStatusExpired, s.now().UTC())
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire subscription")
	}
	if rows == 0 {
		return false, nil
	}
	s.metrics.IncTransition(enums.SubscriptionStatusExpired.String())
	s.logg.Info(s.logg.WithSubscriptionID(ctx, id.String()), "subscription expired")
	return true, nil
}
