package billing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Teja2142/Hyrind-Backend/pkg/db/models"
	"github.com/Teja2142/Hyrind-Backend/pkg/enums"
	pkgerrors "github.com/Teja2142/Hyrind-Backend/pkg/errors"
	"github.com/Teja2142/Hyrind-Backend/pkg/pagination"
)

const dateLayout = "2006-01-02"

// Service exposes read-only projections over the billing ledger.
type Service interface {
	History(ctx context.Context, userID uuid.UUID, filter HistoryFilter) (pagination.Page[models.BillingHistory], error)
	Entry(ctx context.Context, userID, id uuid.UUID) (*models.BillingHistory, error)
	Statistics(ctx context.Context, userID uuid.UUID) (*Statistics, error)
}

type ServiceParams struct {
	Repo Repository
	Now  func() time.Time
}

type service struct {
	repo Repository
	now  func() time.Time
}

// HistoryFilter carries the raw query parameters of a history request.
type HistoryFilter struct {
	Status    string
	StartDate string
	EndDate   string
	Cursor    string
	Limit     int
}

// StatusBreakdown groups entries sharing a status.
type StatusBreakdown struct {
	Count int
	Total decimal.Decimal
}

// Statistics aggregates a user's ledger. Totals only include successful entries.
type Statistics struct {
	LifetimeTotal          decimal.Decimal
	YearTotal              decimal.Decimal
	MonthTotal             decimal.Decimal
	TotalTransactions      int
	SuccessfulTransactions int
	SuccessRate            decimal.Decimal
	ByStatus               map[enums.BillingStatus]StatusBreakdown
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, errors.New("billing repository required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, now: now}, nil
}

func (s *service) History(ctx context.Context, userID uuid.UUID, filter HistoryFilter) (pagination.Page[models.BillingHistory], error) {
	var empty pagination.Page[models.BillingHistory]
	if userID == uuid.Nil {
		return empty, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}

	query, err := filter.toQuery()
	if err != nil {
		return empty, err
	}
	limit := pagination.NormalizeLimit(filter.Limit)
	query.Limit = pagination.LimitWithBuffer(limit)

	rows, err := s.repo.ListForUser(ctx, userID, query)
	if err != nil {
		return empty, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list billing history")
	}
	return pagination.Trim(rows, limit, func(e models.BillingHistory) pagination.Cursor {
		return pagination.Cursor{CreatedAt: e.CreatedAt, ID: e.ID}
	}), nil
}

func (s *service) Entry(ctx context.Context, userID, id uuid.UUID) (*models.BillingHistory, error) {
	entry, err := s.repo.FindForUser(ctx, id, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load billing entry")
	}
	if entry == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "billing record not found")
	}
	return entry, nil
}

func (s *service) Statistics(ctx context.Context, userID uuid.UUID) (*Statistics, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	entries, err := s.repo.ListForUser(ctx, userID, ListQuery{})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load billing history")
	}
	return Aggregate(entries, s.now().UTC()), nil
}

// Aggregate folds ledger entries into Statistics relative to now.
func Aggregate(entries []models.BillingHistory, now time.Time) *Statistics {
	stats := &Statistics{
		LifetimeTotal: decimal.Zero,
		YearTotal:     decimal.Zero,
		MonthTotal:    decimal.Zero,
		SuccessRate:   decimal.Zero,
		ByStatus:      map[enums.BillingStatus]StatusBreakdown{},
	}
	for _, status := range enums.BillingStatuses() {
		stats.ByStatus[status] = StatusBreakdown{Total: decimal.Zero}
	}

	for _, e := range entries {
		stats.TotalTransactions++
		bucket := stats.ByStatus[e.Status]
		bucket.Count++
		bucket.Total = bucket.Total.Add(e.Amount)
		stats.ByStatus[e.Status] = bucket

		if e.Status != enums.BillingStatusSuccess {
			continue
		}
		stats.SuccessfulTransactions++
		stats.LifetimeTotal = stats.LifetimeTotal.Add(e.Amount)
		at := e.CreatedAt.UTC()
		if at.Year() == now.Year() {
			stats.YearTotal = stats.YearTotal.Add(e.Amount)
			if at.Month() == now.Month() {
				stats.MonthTotal = stats.MonthTotal.Add(e.Amount)
			}
		}
	}

	if stats.TotalTransactions > 0 {
		stats.SuccessRate = decimal.NewFromInt(int64(stats.SuccessfulTransactions)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(stats.TotalTransactions))).
			Round(2)
	}
	return stats
}

func (f HistoryFilter) toQuery() (ListQuery, error) {
	var q ListQuery
	if raw := strings.TrimSpace(f.Status); raw != "" {
		status, err := enums.ParseBillingStatus(raw)
		if err != nil {
			return q, pkgerrors.Field("status", "must be one of pending, success, failed, refunded")
		}
		q.Status = &status
	}
	if raw := strings.TrimSpace(f.StartDate); raw != "" {
		start, err := time.Parse(dateLayout, raw)
		if err != nil {
			return q, pkgerrors.Field("start_date", "must be YYYY-MM-DD")
		}
		q.From = &start
	}
	if raw := strings.TrimSpace(f.EndDate); raw != "" {
		end, err := time.Parse(dateLayout, raw)
		if err != nil {
			return q, pkgerrors.Field("end_date", "must be YYYY-MM-DD")
		}
		// end_date is inclusive of the whole day.
		next := end.AddDate(0, 0, 1)
		q.To = &next
	}
	if q.From != nil && q.To != nil && !q.From.Before(*q.To) {
		return q, pkgerrors.Field("end_date", "must not be before start_date")
	}
	if raw := strings.TrimSpace(f.Cursor); raw != "" {
		cursor, err := pagination.ParseCursor(raw)
		if err != nil {
			return q, pkgerrors.Field("cursor", "invalid cursor")
		}
		q.Cursor = cursor
	}
	return q, nil
}
