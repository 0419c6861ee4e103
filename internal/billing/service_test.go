package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Teja2142/Hyrind-Backend/internal/testdb"
	"github.com/Teja2142/Hyrind-Backend/pkg/db/models"
	"github.com/Teja2142/Hyrind-Backend/pkg/enums"
	pkgerrors "github.com/Teja2142/Hyrind-Backend/pkg/errors"
)

var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func seedSubscription(t *testing.T, conn *gorm.DB, userID uuid.UUID, plan models.Plan) models.Subscription {
	t.Helper()
	sub := models.Subscription{UserID: userID, PlanID: plan.ID, Price: plan.BasePrice, Status: enums.SubscriptionStatusActive}
	require.NoError(t, conn.Create(&sub).Error)
	return sub
}

func appendEntry(t *testing.T, repo Repository, subID uuid.UUID, amount string, status enums.BillingStatus, at time.Time) models.BillingHistory {
	t.Helper()
	entry := models.BillingHistory{
		SubscriptionID: subID,
		Amount:         decimal.RequireFromString(amount),
		Status:         status,
		Description:    "test entry",
		CreatedAt:      at,
	}
	require.NoError(t, repo.Append(context.Background(), &entry))
	return entry
}

func newService(t *testing.T) (Service, Repository, *gorm.DB) {
	t.Helper()
	conn := testdb.Open(t)
	repo := NewRepository(conn)
	svc, err := NewService(ServiceParams{Repo: repo, Now: func() time.Time { return fixedNow }})
	require.NoError(t, err)
	return svc, repo, conn
}

func TestHistoryScopesToUserAndOrdersNewestFirst(t *testing.T) {
	svc, repo, conn := newService(t)
	plan := testdb.SeedPlan(t, conn, testdb.PlanSpec{Name: "Base", Type: enums.PlanTypeBase, Price: "400.00", Mandatory: true})

	alice, bob := uuid.New(), uuid.New()
	aliceSub := seedSubscription(t, conn, alice, plan)
	bobSub := seedSubscription(t, conn, bob, plan)

	older := appendEntry(t, repo, aliceSub.ID, "400.00", enums.BillingStatusSuccess, fixedNow.Add(-48*time.Hour))
	newer := appendEntry(t, repo, aliceSub.ID, "400.00", enums.BillingStatusFailed, fixedNow.Add(-time.Hour))
	appendEntry(t, repo, bobSub.ID, "400.00", enums.BillingStatusSuccess, fixedNow)

	page, err := svc.History(context.Background(), alice, HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, newer.ID, page.Items[0].ID)
	require.Equal(t, older.ID, page.Items[1].ID)
	require.NotNil(t, page.Items[0].Subscription)
	require.NotNil(t, page.Items[0].Subscription.Plan)
	require.Equal(t, "Base", page.Items[0].Subscription.Plan.Name)
	require.Empty(t, page.NextCursor)
}

func TestHistoryFilters(t *testing.T) {
	svc, repo, conn := newService(t)
	plan := testdb.SeedPlan(t, conn, testdb.PlanSpec{Name: "Base", Type: enums.PlanTypeBase, Price: "400.00"})
	user := uuid.New()
	sub := seedSubscription(t, conn, user, plan)

	appendEntry(t, repo, sub.ID, "400.00", enums.BillingStatusSuccess, time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC))
	lastDay := appendEntry(t, repo, sub.ID, "400.00", enums.BillingStatusFailed, time.Date(2026, 2, 28, 23, 0, 0, 0, time.UTC))
	appendEntry(t, repo, sub.ID, "400.00", enums.BillingStatusSuccess, time.Date(2026, 3, 1, 0, 30, 0, 0, time.UTC))

	ctx := context.Background()

	failed, err := svc.History(ctx, user, HistoryFilter{Status: "failed"})
	require.NoError(t, err)
	require.Len(t, failed.Items, 1)
	require.Equal(t, lastDay.ID, failed.Items[0].ID)

	february, err := svc.History(ctx, user, HistoryFilter{StartDate: "2026-02-01", EndDate: "2026-02-28"})
	require.NoError(t, err)
	require.Len(t, february.Items, 1, "end date includes the whole day")
	require.Equal(t, lastDay.ID, february.Items[0].ID)

	_, err = svc.History(ctx, user, HistoryFilter{Status: "bogus"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.History(ctx, user, HistoryFilter{StartDate: "02/01/2026"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.History(ctx, user, HistoryFilter{StartDate: "2026-03-01", EndDate: "2026-02-01"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestHistoryCursorPagination(t *testing.T) {
	svc, repo, conn := newService(t)
	plan := testdb.SeedPlan(t, conn, testdb.PlanSpec{Name: "Base", Type: enums.PlanTypeBase, Price: "10.00"})
	user := uuid.New()
	sub := seedSubscription(t, conn, user, plan)
	for i := 0; i < 5; i++ {
		appendEntry(t, repo, sub.ID, "10.00", enums.BillingStatusSuccess, fixedNow.Add(-time.Duration(i)*time.Hour))
	}

	ctx := context.Background()
	seen := map[uuid.UUID]bool{}
	cursor := ""
	pages := 0
	for {
		page, err := svc.History(ctx, user, HistoryFilter{Limit: 2, Cursor: cursor})
		require.NoError(t, err)
		for _, item := range page.Items {
			require.False(t, seen[item.ID], "entry returned twice")
			seen[item.ID] = true
		}
		pages++
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	require.Len(t, seen, 5)
	require.Equal(t, 3, pages)
}

func TestEntryIsScopedToOwner(t *testing.T) {
	svc, repo, conn := newService(t)
	plan := testdb.SeedPlan(t, conn, testdb.PlanSpec{Name: "Base", Type: enums.PlanTypeBase, Price: "400.00"})
	owner := uuid.New()
	sub := seedSubscription(t, conn, owner, plan)
	entry := appendEntry(t, repo, sub.ID, "400.00", enums.BillingStatusSuccess, fixedNow)

	got, err := svc.Entry(context.Background(), owner, entry.ID)
	require.NoError(t, err)
	require.Equal(t, entry.ID, got.ID)

	_, err = svc.Entry(context.Background(), uuid.New(), entry.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestStatistics(t *testing.T) {
	svc, repo, conn := newService(t)
	plan := testdb.SeedPlan(t, conn, testdb.PlanSpec{Name: "Base", Type: enums.PlanTypeBase, Price: "400.00"})
	user := uuid.New()
	sub := seedSubscription(t, conn, user, plan)

	appendEntry(t, repo, sub.ID, "400.00", enums.BillingStatusSuccess, time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC))
	appendEntry(t, repo, sub.ID, "400.00", enums.BillingStatusSuccess, time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC))
	appendEntry(t, repo, sub.ID, "150.00", enums.BillingStatusSuccess, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	appendEntry(t, repo, sub.ID, "400.00", enums.BillingStatusFailed, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC))
	appendEntry(t, repo, sub.ID, "400.00", enums.BillingStatusFailed, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC))
	appendEntry(t, repo, sub.ID, "400.00", enums.BillingStatusPending, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))

	stats, err := svc.Statistics(context.Background(), user)
	require.NoError(t, err)
	require.True(t, stats.LifetimeTotal.Equal(decimal.RequireFromString("950")), stats.LifetimeTotal.String())
	require.True(t, stats.YearTotal.Equal(decimal.RequireFromString("550")), stats.YearTotal.String())
	require.True(t, stats.MonthTotal.Equal(decimal.RequireFromString("150")), stats.MonthTotal.String())
	require.Equal(t, 6, stats.TotalTransactions)
	require.Equal(t, 3, stats.SuccessfulTransactions)
	require.True(t, stats.SuccessRate.Equal(decimal.RequireFromString("50")), stats.SuccessRate.String())
	require.Equal(t, 2, stats.ByStatus[enums.BillingStatusFailed].Count)
	require.True(t, stats.ByStatus[enums.BillingStatusFailed].Total.Equal(decimal.RequireFromString("800")))
	require.Equal(t, 0, stats.ByStatus[enums.BillingStatusRefunded].Count)
}

func TestStatisticsEmptyLedger(t *testing.T) {
	svc, _, _ := newService(t)
	stats, err := svc.Statistics(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Zero(t, stats.TotalTransactions)
	require.True(t, stats.SuccessRate.IsZero())
	require.True(t, stats.LifetimeTotal.IsZero())
}

func TestAggregateRoundsSuccessRate(t *testing.T) {
	entries := []models.BillingHistory{
		{Amount: decimal.NewFromInt(1), Status: enums.BillingStatusSuccess, CreatedAt: fixedNow},
		{Amount: decimal.NewFromInt(1), Status: enums.BillingStatusFailed, CreatedAt: fixedNow},
		{Amount: decimal.NewFromInt(1), Status: enums.BillingStatusFailed, CreatedAt: fixedNow},
	}
	stats := Aggregate(entries, fixedNow)
	require.Equal(t, "33.33", stats.SuccessRate.StringFixed(2))
}
