package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Teja2142/Hyrind-Backend/pkg/enums"
)

// Plan is a purchasable offering in the catalog. Plans are deactivated, never
// deleted, so historical subscriptions keep their reference.
type Plan struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Name         string             `gorm:"column:name;not null;uniqueIndex"`
	PlanType     enums.PlanType     `gorm:"column:plan_type;not null"`
	Description  string             `gorm:"column:description;not null;default:''"`
	BasePrice    decimal.Decimal    `gorm:"column:base_price;type:numeric(10,2);not null"`
	IsMandatory  bool               `gorm:"column:is_mandatory;not null;default:false"`
	IsActive     bool               `gorm:"column:is_active;not null;default:true"`
	BillingCycle enums.BillingCycle `gorm:"column:billing_cycle;not null;default:'monthly'"`
	Features     pq.StringArray     `gorm:"column:features;type:text[];not null"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (Plan) TableName() string { return "subscription_plans" }

func (p *Plan) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Features == nil {
		p.Features = pq.StringArray{}
	}
	if p.BillingCycle == "" {
		p.BillingCycle = enums.BillingCycleMonthly
	}
	return nil
}
