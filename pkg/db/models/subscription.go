package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Teja2142/Hyrind-Backend/pkg/enums"
)

// Subscription is one user's enrollment in a plan. Price is a snapshot taken at
// creation and may be overridden by an operator; it never follows Plan.BasePrice.
type Subscription struct {
	ID     uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	// UserEmail is copied from the access token so notifications can be sent
	// without a round trip to the identity service.
	UserEmail string `gorm:"column:user_email;not null;default:''"`
	PlanID    uuid.UUID `gorm:"column:plan_id;type:uuid;not null;index"`
	Plan      *Plan     `gorm:"foreignKey:PlanID"`

	Price  decimal.Decimal          `gorm:"column:price;type:numeric(10,2);not null"`
	Status enums.SubscriptionStatus `gorm:"column:status;not null;default:'pending'"`

	// RazorpaySubscriptionID holds the gateway payment id bound at activation.
	RazorpaySubscriptionID *string    `gorm:"column:razorpay_subscription_id"`
	StartedAt              *time.Time `gorm:"column:started_at"`
	NextBillingDate        *time.Time `gorm:"column:next_billing_date;type:date"`
	EndedAt                *time.Time `gorm:"column:ended_at"`
	AdminNotes             string     `gorm:"column:admin_notes;not null;default:''"`

	BillingHistory []BillingHistory `gorm:"foreignKey:SubscriptionID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Subscription) TableName() string { return "user_subscriptions" }

func (s *Subscription) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = enums.SubscriptionStatusPending
	}
	return nil
}
