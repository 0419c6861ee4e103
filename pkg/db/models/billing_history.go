package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbtypes "github.com/Teja2142/Hyrind-Backend/pkg/db/types"
	"github.com/Teja2142/Hyrind-Backend/pkg/enums"
)

// BillingHistory is an append-only ledger entry. Rows are inserted and never
// updated or deleted.
type BillingHistory struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	SubscriptionID    uuid.UUID           `gorm:"column:subscription_id;type:uuid;not null;index"`
	Subscription      *Subscription       `gorm:"foreignKey:SubscriptionID"`
	Amount            decimal.Decimal     `gorm:"column:amount;type:numeric(10,2);not null"`
	Status            enums.BillingStatus `gorm:"column:status;not null"`
	RazorpayPaymentID *string             `gorm:"column:razorpay_payment_id"`
	RazorpayOrderID   *string             `gorm:"column:razorpay_order_id"`
	Description       string              `gorm:"column:description;not null;default:''"`
	Metadata          dbtypes.JSONMap     `gorm:"column:metadata;type:jsonb;not null"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime;<-:create"`
}

func (BillingHistory) TableName() string { return "billing_history" }

func (b *BillingHistory) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Metadata == nil {
		b.Metadata = dbtypes.JSONMap{}
	}
	return nil
}
