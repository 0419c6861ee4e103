package plans

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Teja2142/Hyrind-Backend/pkg/db/models"
	"github.com/Teja2142/Hyrind-Backend/pkg/enums"
)

// Repository persists catalog plans.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, query ListQuery) ([]models.Plan, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Plan, error)
	FindByName(ctx context.Context, name string) (*models.Plan, error)
	Create(ctx context.Context, plan *models.Plan) error
	Update(ctx context.Context, plan *models.Plan) error
	DemoteOtherBasePlans(ctx context.Context, keepID uuid.UUID) (int64, error)
}

// ListQuery filters catalog queries.
type ListQuery struct {
	Type          *enums.PlanType
	MandatoryOnly bool
	IncludeAll    bool
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

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.Plan, error) {
	q := r.db.WithContext(ctx).Model(&models.Plan{})
	if !query.IncludeAll {
		q = q.Where("is_active = ?", true)
	}
	if query.Type != nil {
		q = q.Where("plan_type = ?", *query.Type)
	}
	if query.MandatoryOnly {
		q = q.Where("is_mandatory = ?", true)
	}

	var out []models.Plan
	if err := q.Order("plan_type ASC").Order("base_price ASC").Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (r *repository) FindByName(ctx context.Context, name string) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (r *repository) Create(ctx context.Context, plan *models.Plan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *repository) Update(ctx context.Context, plan *models.Plan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}

// DemoteOtherBasePlans clears the mandatory flag on every base plan but keepID.
func (r *repository) DemoteOtherBasePlans(ctx context.Context, keepID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Plan{}).
		Where("plan_type = ? AND is_mandatory = ? AND id <> ?", enums.PlanTypeBase, true, keepID).
		Update("is_mandatory", false)
	return res.RowsAffected, res.Error
}
