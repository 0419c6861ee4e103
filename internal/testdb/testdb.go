// Package testdb opens an in-memory sqlite database carrying the billing
// schema. Only tests import it.
package testdb

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Teja2142/Hyrind-Backend/pkg/db"
	"github.com/Teja2142/Hyrind-Backend/pkg/db/models"
	"github.com/Teja2142/Hyrind-Backend/pkg/enums"
)

var schema = []string{
	`CREATE TABLE subscription_plans (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		plan_type TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		base_price NUMERIC NOT NULL,
		is_mandatory BOOLEAN NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		billing_cycle TEXT NOT NULL DEFAULT 'monthly',
		features TEXT NOT NULL DEFAULT '{}',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE user_subscriptions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		user_email TEXT NOT NULL DEFAULT '',
		plan_id TEXT NOT NULL REFERENCES subscription_plans(id),
		price NUMERIC NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending', 'active', 'cancelled', 'expired')),
		razorpay_subscription_id TEXT,
		started_at DATETIME,
		next_billing_date DATE,
		ended_at DATETIME,
		admin_notes TEXT NOT NULL DEFAULT '',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE UNIQUE INDEX unique_active_subscription_per_plan
		ON user_subscriptions (user_id, plan_id) WHERE status = 'active'`,
	`CREATE TABLE billing_history (
		id TEXT PRIMARY KEY,
		subscription_id TEXT NOT NULL REFERENCES user_subscriptions(id),
		amount NUMERIC NOT NULL,
		status TEXT NOT NULL,
		razorpay_payment_id TEXT,
		razorpay_order_id TEXT,
		description TEXT NOT NULL DEFAULT '',
		metadata TEXT NOT NULL DEFAULT '{}',
		created_at DATETIME
	)`,
}

// Open returns a fresh database private to the calling test. A single pooled
// connection serializes concurrent transactions.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return conn
}

// Client wraps Open in the db.Client used by services.
func Client(t testing.TB) (*db.Client, *gorm.DB) {
	t.Helper()
	conn := Open(t)
	return db.NewFromConn(conn), conn
}

// PlanSpec describes a catalog row to seed.
type PlanSpec struct {
	Name      string
	Type      enums.PlanType
	Price     string
	Mandatory bool
	Inactive  bool
	Features  []string
}

// SeedPlan inserts a plan and returns it.
func SeedPlan(t testing.TB, conn *gorm.DB, spec PlanSpec) models.Plan {
	t.Helper()
	plan := models.Plan{
		Name:        spec.Name,
		PlanType:    spec.Type,
		BasePrice:   decimal.RequireFromString(spec.Price),
		IsMandatory: spec.Mandatory,
		IsActive:    true,
		Features:    pq.StringArray(spec.Features),
	}
	if err := conn.Create(&plan).Error; err != nil {
		t.Fatalf("seed plan %s: %v", spec.Name, err)
	}
	if spec.Inactive {
		if err := conn.Model(&plan).Update("is_active", false).Error; err != nil {
			t.Fatalf("deactivate plan %s: %v", spec.Name, err)
		}
		plan.IsActive = false
	}
	return plan
}
