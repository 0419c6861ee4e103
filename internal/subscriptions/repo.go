package subscriptions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Teja2142/Hyrind-Backend/pkg/db/models"
	"github.com/Teja2142/Hyrind-Backend/pkg/enums"
)

// Repository persists subscription records. Status changes go through the
// compare-and-swap helpers so concurrent writers never both win.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, sub *models.Subscription) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error)
	FindDetailed(ctx context.Context, id uuid.UUID) (*models.Subscription, error)
	List(ctx context.Context, query ListQuery) ([]models.Subscription, error)
	HasActive(ctx context.Context, userID, planID, excludeID uuid.UUID) (bool, error)
	MarkActive(ctx context.Context, id uuid.UUID, activation Activation) (int64, error)
	Transition(ctx context.Context, id uuid.UUID, from, to enums.SubscriptionStatus, endedAt time.Time) (int64, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	ListOverdue(ctx context.Context, cutoff time.Time, limit int) ([]models.Subscription, error)
}

// ListQuery filters subscription listings. Zero values are ignored.
type ListQuery struct {
	UserID      uuid.UUID
	Status      *enums.SubscriptionStatus
	PlanType    *enums.PlanType
	WithBilling bool
	Limit       int
}

// Activation carries the columns written by the pending to active swap.
type Activation struct {
	PaymentID       string
	StartedAt       time.Time
	NextBillingDate time.Time
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).Omit("Plan", "BillingHistory").Create(sub).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	return r.first(r.db.WithContext(ctx).Preload("Plan").Where("id = ?", id))
}

// FindDetailed loads the record with its plan and ledger, newest entry first.
func (r *repository) FindDetailed(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	return r.first(r.db.WithContext(ctx).
		Preload("Plan").
		Preload("BillingHistory", orderLedger).
		Where("id = ?", id))
}

func (r *repository) first(q *gorm.DB) (*models.Subscription, error) {
	var sub models.Subscription
	if err := q.First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func orderLedger(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.Subscription, error) {
	q := r.db.WithContext(ctx).Model(&models.Subscription{}).Preload("Plan")
	if query.WithBilling {
		q = q.Preload("BillingHistory", orderLedger)
	}
	if query.UserID != uuid.Nil {
		q = q.Where("user_subscriptions.user_id = ?", query.UserID)
	}
	if query.Status != nil {
		q = q.Where("user_subscriptions.status = ?", *query.Status)
	}
	if query.PlanType != nil {
		q = q.Joins("JOIN subscription_plans ON subscription_plans.id = user_subscriptions.plan_id").
			Where("subscription_plans.plan_type = ?", *query.PlanType)
	}
	if query.Limit > 0 {
		q = q.Limit(query.Limit)
	}

	var out []models.Subscription
	if err := q.Order("user_subscriptions.created_at DESC").Order("user_subscriptions.id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) HasActive(ctx context.Context, userID, planID, excludeID uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("user_id = ? AND plan_id = ? AND status = ?", userID, planID, enums.SubscriptionStatusActive)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkActive flips a pending record to active. It returns zero rows when the
// record was no longer pending.
func (r *repository) MarkActive(ctx context.Context, id uuid.UUID, activation Activation) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("id = ? AND status = ?", id, enums.SubscriptionStatusPending).
		Updates(map[string]any{
			"status":                   enums.SubscriptionStatusActive,
			"razorpay_subscription_id": activation.PaymentID,
			"started_at":               activation.StartedAt,
			"next_billing_date":        activation.NextBillingDate,
			"updated_at":               activation.StartedAt,
		})
	return res.RowsAffected, res.Error
}

// Transition moves a record out of from into a terminal status.
func (r *repository) Transition(ctx context.Context, id uuid.UUID, from, to enums.SubscriptionStatus, endedAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":     to,
			"ended_at":   endedAt,
			"updated_at": endedAt,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Subscription{}).Where("id = ?", id).Updates(fields).Error
}

// ListOverdue returns active records whose next billing date is before cutoff.
func (r *repository) ListOverdue(ctx context.Context, cutoff time.Time, limit int) ([]models.Subscription, error) {
	q := r.db.WithContext(ctx).
		Preload("Plan").
		Where("status = ? AND next_billing_date IS NOT NULL AND next_billing_date < ?", enums.SubscriptionStatusActive, cutoff).
		Order("next_billing_date ASC").
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []models.Subscription
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
