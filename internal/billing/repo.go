package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Teja2142/Hyrind-Backend/pkg/db/models"
	"github.com/Teja2142/Hyrind-Backend/pkg/enums"
	"github.com/Teja2142/Hyrind-Backend/pkg/pagination"
)

// Repository reads and appends billing history. There is deliberately no
// update or delete: entries are immutable once written.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Append(ctx context.Context, entry *models.BillingHistory) error
	ListForUser(ctx context.Context, userID uuid.UUID, query ListQuery) ([]models.BillingHistory, error)
	FindForUser(ctx context.Context, id, userID uuid.UUID) (*models.BillingHistory, error)
}

// ListQuery filters a user's history. From is inclusive, To is exclusive. A
// zero Limit returns every matching row.
type ListQuery struct {
	Status *enums.BillingStatus
	From   *time.Time
	To     *time.Time
	Cursor *pagination.Cursor
	Limit  int
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

func (r *repository) Append(ctx context.Context, entry *models.BillingHistory) error {
	return r.db.WithContext(ctx).Omit("Subscription").Create(entry).Error
}

func (r *repository) userScope(ctx context.Context, userID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.BillingHistory{}).
		Joins("JOIN user_subscriptions ON user_subscriptions.id = billing_history.subscription_id").
		Where("user_subscriptions.user_id = ?", userID)
}

func (r *repository) ListForUser(ctx context.Context, userID uuid.UUID, query ListQuery) ([]models.BillingHistory, error) {
	q := r.userScope(ctx, userID).Preload("Subscription.Plan")
	if query.Status != nil {
		q = q.Where("billing_history.status = ?", *query.Status)
	}
	if query.From != nil {
		q = q.Where("billing_history.created_at >= ?", query.From.UTC())
	}
	if query.To != nil {
		q = q.Where("billing_history.created_at < ?", query.To.UTC())
	}
	if query.Cursor != nil {
		at := query.Cursor.CreatedAt.UTC()
		q = q.Where("(billing_history.created_at < ? OR (billing_history.created_at = ? AND billing_history.id < ?))", at, at, query.Cursor.ID)
	}
	if query.Limit > 0 {
		q = q.Limit(query.Limit)
	}

	var out []models.BillingHistory
	if err := q.Order("billing_history.created_at DESC").Order("billing_history.id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) FindForUser(ctx context.Context, id, userID uuid.UUID) (*models.BillingHistory, error) {
	var entry models.BillingHistory
	err := r.userScope(ctx, userID).
		Preload("Subscription.Plan").
		Where("billing_history.id = ?", id).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}
