// Package views renders domain models as the JSON shapes served by the API.
// Money is always a two decimal string and billing dates are plain dates.
package views

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Teja2142/Hyrind-Backend/internal/billing"
	subsvc "github.com/Teja2142/Hyrind-Backend/internal/subscriptions"
	"github.com/Teja2142/Hyrind-Backend/pkg/db/models"
)

const dateLayout = "2006-01-02"

type Plan struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	PlanType     string    `json:"plan_type"`
	Description  string    `json:"description"`
	BasePrice    string    `json:"base_price"`
	IsMandatory  bool      `json:"is_mandatory"`
	IsActive     bool      `json:"is_active"`
	BillingCycle string    `json:"billing_cycle"`
	Features     []string  `json:"features"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Subscription struct {
	ID                     uuid.UUID        `json:"id"`
	UserID                 uuid.UUID        `json:"user_id"`
	PlanID                 uuid.UUID        `json:"plan_id"`
	Plan                   *Plan            `json:"plan,omitempty"`
	PlanName               string           `json:"plan_name"`
	PlanType               string           `json:"plan_type"`
	Price                  string           `json:"price"`
	Status                 string           `json:"status"`
	RazorpaySubscriptionID *string          `json:"razorpay_subscription_id"`
	StartedAt              *time.Time       `json:"started_at"`
	NextBillingDate        *string          `json:"next_billing_date"`
	EndedAt                *time.Time       `json:"ended_at"`
	AdminNotes             string           `json:"admin_notes,omitempty"`
	BillingHistory         []BillingHistory `json:"billing_history,omitempty"`
	CreatedAt              time.Time        `json:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
}

type BillingHistory struct {
	ID                uuid.UUID      `json:"id"`
	SubscriptionID    uuid.UUID      `json:"subscription_id"`
	Amount            string         `json:"amount"`
	Status            string         `json:"status"`
	RazorpayPaymentID *string        `json:"razorpay_payment_id"`
	RazorpayOrderID   *string        `json:"razorpay_order_id"`
	Description       string         `json:"description"`
	Metadata          map[string]any `json:"metadata"`
	CreatedAt         time.Time      `json:"created_at"`
}

type Summary struct {
	TotalSubscriptions  int            `json:"total_subscriptions"`
	ActiveSubscriptions int            `json:"active_subscriptions"`
	MonthlyCost         string         `json:"monthly_cost"`
	NextBillingDate     *string        `json:"next_billing_date"`
	BaseSubscription    *Subscription  `json:"base_subscription"`
	Addons              []Subscription `json:"addons"`
}

type StatusBreakdown struct {
	Count int    `json:"count"`
	Total string `json:"total"`
}

type Statistics struct {
	LifetimeTotal          string                     `json:"lifetime_total"`
	YearTotal              string                     `json:"year_total"`
	MonthTotal             string                     `json:"month_total"`
	TotalTransactions      int                        `json:"total_transactions"`
	SuccessfulTransactions int                        `json:"successful_transactions"`
	SuccessRate            string                     `json:"success_rate"`
	ByStatus               map[string]StatusBreakdown `json:"by_status"`
}

func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func date(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(dateLayout)
	return &s
}

func NewPlan(p *models.Plan) *Plan {
	if p == nil {
		return nil
	}
	features := []string(p.Features)
	if features == nil {
		features = []string{}
	}
	return &Plan{
		ID:           p.ID,
		Name:         p.Name,
		PlanType:     string(p.PlanType),
		Description:  p.Description,
		BasePrice:    Money(p.BasePrice),
		IsMandatory:  p.IsMandatory,
		IsActive:     p.IsActive,
		BillingCycle: string(p.BillingCycle),
		Features:     features,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func NewPlans(plans []models.Plan) []Plan {
	out := make([]Plan, 0, len(plans))
	for i := range plans {
		out = append(out, *NewPlan(&plans[i]))
	}
	return out
}

func NewSubscription(s *models.Subscription) *Subscription {
	if s == nil {
		return nil
	}
	out := &Subscription{
		ID:                     s.ID,
		UserID:                 s.UserID,
		PlanID:                 s.PlanID,
		Plan:                   NewPlan(s.Plan),
		Price:                  Money(s.Price),
		Status:                 string(s.Status),
		RazorpaySubscriptionID: s.RazorpaySubscriptionID,
		StartedAt:              s.StartedAt,
		NextBillingDate:        date(s.NextBillingDate),
		EndedAt:                s.EndedAt,
		AdminNotes:             s.AdminNotes,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
	}
	if s.Plan != nil {
		out.PlanName = s.Plan.Name
		out.PlanType = string(s.Plan.PlanType)
	}
	if len(s.BillingHistory) > 0 {
		out.BillingHistory = NewBillingHistories(s.BillingHistory)
	}
	return out
}

func NewSubscriptions(subs []models.Subscription) []Subscription {
	out := make([]Subscription, 0, len(subs))
	for i := range subs {
		out = append(out, *NewSubscription(&subs[i]))
	}
	return out
}

func NewBillingHistory(b *models.BillingHistory) *BillingHistory {
	if b == nil {
		return nil
	}
	metadata := map[string]any(b.Metadata)
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &BillingHistory{
		ID:                b.ID,
		SubscriptionID:    b.SubscriptionID,
		Amount:            Money(b.Amount),
		Status:            string(b.Status),
		RazorpayPaymentID: b.RazorpayPaymentID,
		RazorpayOrderID:   b.RazorpayOrderID,
		Description:       b.Description,
		Metadata:          metadata,
		CreatedAt:         b.CreatedAt,
	}
}

func NewBillingHistories(entries []models.BillingHistory) []BillingHistory {
	out := make([]BillingHistory, 0, len(entries))
	for i := range entries {
		out = append(out, *NewBillingHistory(&entries[i]))
	}
	return out
}

func NewSummary(s *subsvc.Summary) *Summary {
	if s == nil {
		return nil
	}
	return &Summary{
		TotalSubscriptions:  s.TotalSubscriptions,
		ActiveSubscriptions: s.ActiveSubscriptions,
		MonthlyCost:         Money(s.MonthlyCost),
		NextBillingDate:     date(s.NextBillingDate),
		BaseSubscription:    NewSubscription(s.BaseSubscription),
		Addons:              NewSubscriptions(s.Addons),
	}
}

func NewStatistics(s *billing.Statistics) *Statistics {
	if s == nil {
		return nil
	}
	byStatus := make(map[string]StatusBreakdown, len(s.ByStatus))
	for status, breakdown := range s.ByStatus {
		byStatus[string(status)] = StatusBreakdown{Count: breakdown.Count, Total: Money(breakdown.Total)}
	}
	return &Statistics{
		LifetimeTotal:          Money(s.LifetimeTotal),
		YearTotal:              Money(s.YearTotal),
		MonthTotal:             Money(s.MonthTotal),
		TotalTransactions:      s.TotalTransactions,
		SuccessfulTransactions: s.SuccessfulTransactions,
		SuccessRate:            Money(s.SuccessRate),
		ByStatus:               byStatus,
	}
}
