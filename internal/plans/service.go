package plans

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Teja2142/Hyrind-Backend/pkg/db"
	"github.com/Teja2142/Hyrind-Backend/pkg/db/models"
	"github.com/Teja2142/Hyrind-Backend/pkg/enums"
	pkgerrors "github.com/Teja2142/Hyrind-Backend/pkg/errors"
	"github.com/Teja2142/Hyrind-Backend/pkg/logger"
	"github.com/Teja2142/Hyrind-Backend/pkg/money"
)

// TxRunner runs fn inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the plan catalog to buyers and operators.
type Service interface {
	List(ctx context.Context, planType string) ([]models.Plan, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Plan, error)
	BasePlan(ctx context.Context) (*models.Plan, error)
	Addons(ctx context.Context) ([]models.Plan, error)
	Create(ctx context.Context, input CreateInput) (*models.Plan, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Plan, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*models.Plan, error)
	Ensure(ctx context.Context, input CreateInput) (*models.Plan, bool, error)
}

type ServiceParams struct {
	Repo   Repository
	DB     TxRunner
	Logger *logger.Logger
}

type service struct {
	repo Repository
	tx   TxRunner
	logg *logger.Logger
}

// CreateInput describes a new catalog plan.
type CreateInput struct {
	Name        string
	Type        enums.PlanType
	Description string
	Price       decimal.Decimal
	Mandatory   bool
	Features    []string
}

// UpdateInput carries optional plan edits. Nil fields are left untouched.
type UpdateInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Mandatory   *bool
	Active      *bool
	Features    []string
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, errors.New("plan repository required")
	}
	if params.DB == nil {
		return nil, errors.New("transaction runner required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	return &service{repo: params.Repo, tx: params.DB, logg: params.Logger}, nil
}

func (s *service) List(ctx context.Context, planType string) ([]models.Plan, error) {
	query := ListQuery{}
	if raw := strings.TrimSpace(planType); raw != "" {
		parsed, err := enums.ParsePlanType(raw)
		if err != nil {
			return nil, pkgerrors.Field("type", "must be one of base, addon")
		}
		query.Type = &parsed
	}
	out, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list plans")
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load plan")
	}
	if plan == nil || !plan.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
	}
	return plan, nil
}

// BasePlan returns the single active mandatory base plan.
func (s *service) BasePlan(ctx context.Context) (*models.Plan, error) {
	base := enums.PlanTypeBase
	candidates, err := s.repo.List(ctx, ListQuery{Type: &base, MandatoryOnly: true})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load base plan")
	}
	switch len(candidates) {
	case 0:
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "base subscription plan not configured")
	case 1:
		return &candidates[0], nil
	default:
		ids := make([]string, 0, len(candidates))
		for _, c := range candidates {
			ids = append(ids, c.ID.String())
		}
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "multiple base plans configured").
			WithDetails(map[string]any{"plan_ids": ids})
	}
}

func (s *service) Addons(ctx context.Context) ([]models.Plan, error) {
	addon := enums.PlanTypeAddon
	out, err := s.repo.List(ctx, ListQuery{Type: &addon})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addons")
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Plan, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	plan := &models.Plan{
		Name:         strings.TrimSpace(input.Name),
		PlanType:     input.Type,
		Description:  strings.TrimSpace(input.Description),
		BasePrice:    input.Price.Round(2),
		IsMandatory:  input.Mandatory,
		IsActive:     true,
		BillingCycle: enums.BillingCycleMonthly,
		Features:     normalizeFeatures(input.Features),
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindByName(ctx, plan.Name)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check plan name")
		}
		if existing != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "plan name already exists")
		}
		if err := repo.Create(ctx, plan); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "plan name already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create plan")
		}
		return s.keepSingleBase(ctx, repo, plan)
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"plan_id": plan.ID.String(), "plan_type": plan.PlanType}), "plan.created")
	return plan, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Plan, error) {
	var updated *models.Plan
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		plan, err := repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load plan")
		}
		if plan == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return pkgerrors.Field("name", "name is required")
			}
			plan.Name = name
		}
		if input.Description != nil {
			plan.Description = strings.TrimSpace(*input.Description)
		}
		if input.Price != nil {
			price, err := money.NonNegative("base_price", *input.Price)
			if err != nil {
				return err
			}
			plan.BasePrice = price
		}
		if input.Mandatory != nil {
			plan.IsMandatory = *input.Mandatory
		}
		if input.Active != nil {
			plan.IsActive = *input.Active
		}
		if input.Features != nil {
			plan.Features = normalizeFeatures(input.Features)
		}

		if err := repo.Update(ctx, plan); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "plan name already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update plan")
		}
		if err := s.keepSingleBase(ctx, repo, plan); err != nil {
			return err
		}
		updated = plan
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithField(ctx, "plan_id", id.String()), "plan.updated")
	return updated, nil
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) (*models.Plan, error) {
	inactive := false
	return s.Update(ctx, id, UpdateInput{Active: &inactive})
}

// Ensure returns the plan with input.Name, creating it when missing.
func (s *service) Ensure(ctx context.Context, input CreateInput) (*models.Plan, bool, error) {
	existing, err := s.repo.FindByName(ctx, strings.TrimSpace(input.Name))
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find plan")
	}
	if existing != nil {
		return existing, false, nil
	}
	plan, err := s.Create(ctx, input)
	if err != nil {
		return nil, false, err
	}
	return plan, true, nil
}

// keepSingleBase demotes every other mandatory base plan when plan becomes the
// active mandatory base.
func (s *service) keepSingleBase(ctx context.Context, repo Repository, plan *models.Plan) error {
	if plan.PlanType != enums.PlanTypeBase || !plan.IsMandatory || !plan.IsActive {
		return nil
	}
	demoted, err := repo.DemoteOtherBasePlans(ctx, plan.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "demote base plans")
	}
	if demoted > 0 {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"plan_id": plan.ID.String(), "demoted": demoted}), "plan.base_demoted")
	}
	return nil
}

func validateCreate(input CreateInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.Field("name", "name is required")
	}
	if !input.Type.IsValid() {
		return pkgerrors.Field("plan_type", "must be one of base, addon")
	}
	_, err := money.NonNegative("base_price", input.Price)
	return err
}

func normalizeFeatures(in []string) pq.StringArray {
	out := pq.StringArray{}
	seen := map[string]struct{}{}
	for _, f := range in {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
