package subscriptions

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Teja2142/Hyrind-Backend/internal/billing"
	"github.com/Teja2142/Hyrind-Backend/internal/plans"
	"github.com/Teja2142/Hyrind-Backend/internal/testdb"
	"github.com/Teja2142/Hyrind-Backend/pkg/db/models"
	"github.com/Teja2142/Hyrind-Backend/pkg/enums"
	pkgerrors "github.com/Teja2142/Hyrind-Backend/pkg/errors"
	"github.com/Teja2142/Hyrind-Backend/pkg/logger"
	"github.com/Teja2142/Hyrind-Backend/pkg/razorpay"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type recordingNotifier struct {
	mu        sync.Mutex
	activated []uuid.UUID
	cancelled []uuid.UUID
}

func (n *recordingNotifier) Activated(_ context.Context, sub models.Subscription) {
	n.mu.Lock()
	n.activated = append(n.activated, sub.ID)
	n.mu.Unlock()
}

func (n *recordingNotifier) Cancelled(_ context.Context, sub models.Subscription) {
	n.mu.Lock()
	n.cancelled = append(n.cancelled, sub.ID)
	n.mu.Unlock()
}

type fixture struct {
	svc      Service
	conn     *gorm.DB
	clock    *clock
	notifier *recordingNotifier
	base     models.Plan
	addon    models.Plan
}

type fixtureOption func(*ServiceParams)

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	client, conn := testdb.Client(t)
	f := &fixture{
		conn:     conn,
		clock:    &clock{now: time.Date(2026, 1, 20, 10, 30, 0, 0, time.UTC)},
		notifier: &recordingNotifier{},
	}
	f.base = testdb.SeedPlan(t, conn, testdb.PlanSpec{Name: "Profile Marketing Services Fee", Type: enums.PlanTypeBase, Price: "400.00", Mandatory: true})
	f.addon = testdb.SeedPlan(t, conn, testdb.PlanSpec{Name: "Premium Job Matching", Type: enums.PlanTypeAddon, Price: "250.00"})

	params := ServiceParams{
		Repo:     NewRepository(conn),
		Ledger:   billing.NewRepository(conn),
		Plans:    plans.NewRepository(conn),
		DB:       client,
		Logger:   logger.Nop(),
		Notifier: f.notifier,
		Now:      f.clock.Now,
	}
	for _, opt := range opts {
		opt(&params)
	}
	svc, err := NewService(params)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) create(t *testing.T, user Actor, plan models.Plan, price string) *models.Subscription {
	t.Helper()
	p := decimal.RequireFromString(price)
	sub, err := f.svc.Create(context.Background(), user, CreateInput{PlanID: plan.ID, Price: &p})
	require.NoError(t, err)
	return sub
}

func (f *fixture) activate(user *Actor, id uuid.UUID, source string) (*ActivationResult, error) {
	return f.svc.Activate(context.Background(), ActivateInput{
		SubscriptionID: id,
		PaymentID:      "pay_X",
		OrderID:        "order_X",
		Amount:         decimal.RequireFromString("400.00"),
		Actor:          user,
		Source:         source,
	})
}

func (f *fixture) successEntries(t *testing.T, subID uuid.UUID) []models.BillingHistory {
	t.Helper()
	var out []models.BillingHistory
	require.NoError(t, f.conn.Where("subscription_id = ? AND status = ?", subID, enums.BillingStatusSuccess).Find(&out).Error)
	return out
}

func (f *fixture) reload(t *testing.T, id uuid.UUID) models.Subscription {
	t.Helper()
	var sub models.Subscription
	require.NoError(t, f.conn.Where("id = ?", id).First(&sub).Error)
	return sub
}

func newUser() Actor {
	return Actor{UserID: uuid.New(), Email: "candidate@example.com"}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)

	client, conn := testdb.Client(t)
	_, err = NewService(ServiceParams{
		Repo:                    NewRepository(conn),
		Ledger:                  billing.NewRepository(conn),
		Plans:                   plans.NewRepository(conn),
		DB:                      client,
		Logger:                  logger.Nop(),
		RequirePaymentSignature: true,
	})
	require.Error(t, err, "signature enforcement needs a key secret")
}

func TestNextBillingDate(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	cases := []struct {
		name string
		at   time.Time
		want time.Time
	}{
		{"crosses short month", time.Date(2026, 1, 20, 10, 0, 0, 0, time.UTC), time.Date(2026, 2, 19, 0, 0, 0, 0, time.UTC)},
		{"february", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)},
		{"year boundary", time.Date(2025, 12, 15, 23, 59, 0, 0, time.UTC), time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC)},
		{"leap year", time.Date(2028, 2, 1, 8, 0, 0, 0, time.UTC), time.Date(2028, 3, 2, 0, 0, 0, 0, time.UTC)},
		{"uses utc date", time.Date(2026, 1, 21, 2, 0, 0, 0, ist), time.Date(2026, 2, 19, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.True(t, NextBillingDate(tc.at).Equal(tc.want), "got %s", NextBillingDate(tc.at))
		})
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := newUser()

	negative := decimal.RequireFromString("-5.00")
	_, err := f.svc.Create(ctx, user, CreateInput{PlanID: f.base.ID, Price: &negative})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	zero := decimal.Zero
	_, err = f.svc.Create(ctx, user, CreateInput{PlanID: f.base.ID, Price: &zero})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	for _, raw := range []string{"0.004", "10.005", "100000000.00"} {
		price := decimal.RequireFromString(raw)
		_, err = f.svc.Create(ctx, user, CreateInput{PlanID: f.base.ID, Price: &price})
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "price %s got %v", raw, err)
	}
	var stored int64
	require.NoError(t, f.conn.Model(&models.Subscription{}).Where("user_id = ?", user.UserID).Count(&stored).Error)
	require.Zero(t, stored, "rejected prices must not create records")

	_, err = f.svc.Create(ctx, user, CreateInput{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Create(ctx, user, CreateInput{PlanID: uuid.New()})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	retired := testdb.SeedPlan(t, f.conn, testdb.PlanSpec{Name: "Retired", Type: enums.PlanTypeAddon, Price: "10.00", Inactive: true})
	_, err = f.svc.Create(ctx, user, CreateInput{PlanID: retired.ID})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Create(ctx, Actor{}, CreateInput{PlanID: f.base.ID})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestCreateSnapshotsPrice(t *testing.T) {
	f := newFixture(t)
	user := newUser()

	sub, err := f.svc.Create(context.Background(), user, CreateInput{PlanID: f.addon.ID})
	require.NoError(t, err)
	require.True(t, sub.Price.Equal(decimal.RequireFromString("250.00")))

	require.NoError(t, f.conn.Model(&models.Plan{}).Where("id = ?", f.addon.ID).Update("base_price", "300.00").Error)
	stored := f.reload(t, sub.ID)
	require.True(t, stored.Price.Equal(decimal.RequireFromString("250.00")), "price must not follow the catalog")
}

func TestEndToEndActivation(t *testing.T) {
	f := newFixture(t)
	user := newUser()

	sub := f.create(t, user, f.base, "400.00")
	require.Equal(t, enums.SubscriptionStatusPending, sub.Status)
	require.Nil(t, sub.StartedAt)
	require.Nil(t, sub.NextBillingDate)

	result, err := f.activate(&user, sub.ID, SourceUser)
	require.NoError(t, err)
	require.False(t, result.AlreadyActive)
	require.Equal(t, enums.SubscriptionStatusActive, result.Subscription.Status)
	require.NotNil(t, result.Billing)
	require.True(t, result.Billing.Amount.Equal(decimal.RequireFromString("400.00")))
	require.Equal(t, enums.BillingStatusSuccess, result.Billing.Status)
	require.Equal(t, "Subscription activated: Profile Marketing Services Fee", result.Billing.Description)

	stored := f.reload(t, sub.ID)
	require.Equal(t, enums.SubscriptionStatusActive, stored.Status)
	require.NotNil(t, stored.StartedAt)
	require.True(t, stored.StartedAt.Equal(f.clock.Now()))
	require.NotNil(t, stored.NextBillingDate)
	require.Equal(t, "2026-02-19", stored.NextBillingDate.UTC().Format("2006-01-02"))
	require.NotNil(t, stored.RazorpaySubscriptionID)
	require.Equal(t, "pay_X", *stored.RazorpaySubscriptionID)

	entries := f.successEntries(t, sub.ID)
	require.Len(t, entries, 1)
	require.Equal(t, "order_X", *entries[0].RazorpayOrderID)
	require.Equal(t, SourceUser, entries[0].Metadata["source"])

	require.Equal(t, []uuid.UUID{sub.ID}, f.notifier.activated)
}

func TestActivateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	user := newUser()
	sub := f.create(t, user, f.base, "400.00")

	first, err := f.activate(&user, sub.ID, SourceUser)
	require.NoError(t, err)
	require.False(t, first.AlreadyActive)

	f.clock.Set(f.clock.Now().Add(72 * time.Hour))
	second, err := f.activate(&user, sub.ID, SourceUser)
	require.NoError(t, err)
	require.True(t, second.AlreadyActive)
	require.Nil(t, second.Billing)

	require.Len(t, f.successEntries(t, sub.ID), 1)
	stored := f.reload(t, sub.ID)
	require.Equal(t, "2026-02-19", stored.NextBillingDate.UTC().Format("2006-01-02"), "next billing date must not move")
	require.Len(t, f.notifier.activated, 1)
}

func TestConcurrentActivationAppendsOneEntry(t *testing.T) {
	f := newFixture(t)
	user := newUser()
	sub := f.create(t, user, f.base, "400.00")

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []*ActivationResult
		errs    []error
	)
	run := func(actor *Actor, source string) {
		defer wg.Done()
		res, err := f.activate(actor, sub.ID, source)
		mu.Lock()
		defer mu.Unlock()
		results = append(results, res)
		errs = append(errs, err)
	}
	wg.Add(2)
	go run(&user, SourceUser)
	go run(nil, SourceWebhook)
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	already := 0
	for _, res := range results {
		if res.AlreadyActive {
			already++
		}
	}
	require.Equal(t, 1, already, "exactly one caller should take the idempotent branch")
	require.Len(t, f.successEntries(t, sub.ID), 1)
}

// interleavingRepo lets another writer move the row inside the window between
// the status read and the compare-and-swap, which is where a concurrent
// activation or cancellation lands.
type interleavingRepo struct {
	Repository
	status enums.SubscriptionStatus
}

func (r *interleavingRepo) WithTx(tx *gorm.DB) Repository {
	return &interleavingRepo{Repository: r.Repository.WithTx(tx), status: r.status}
}

func (r *interleavingRepo) interleave(ctx context.Context, id uuid.UUID) error {
	return r.Repository.UpdateFields(ctx, id, map[string]any{"status": r.status})
}

func (r *interleavingRepo) MarkActive(ctx context.Context, id uuid.UUID, activation Activation) (int64, error) {
	if err := r.interleave(ctx, id); err != nil {
		return 0, err
	}
	return r.Repository.MarkActive(ctx, id, activation)
}

func (r *interleavingRepo) Transition(ctx context.Context, id uuid.UUID, from, to enums.SubscriptionStatus, endedAt time.Time) (int64, error) {
	if err := r.interleave(ctx, id); err != nil {
		return 0, err
	}
	return r.Repository.Transition(ctx, id, from, to, endedAt)
}

func interleaveWith(status enums.SubscriptionStatus) fixtureOption {
	return func(p *ServiceParams) {
		p.Repo = &interleavingRepo{Repository: p.Repo, status: status}
	}
}

func TestActivationLosingSwapToActivationIsAlreadyActive(t *testing.T) {
	f := newFixture(t, interleaveWith(enums.SubscriptionStatusActive))
	user := newUser()
	sub := f.create(t, user, f.base, "400.00")

	result, err := f.activate(&user, sub.ID, SourceUser)
	require.NoError(t, err)
	require.True(t, result.AlreadyActive)
	require.Nil(t, result.Billing)
	require.Equal(t, enums.SubscriptionStatusActive, result.Subscription.Status)

	require.Empty(t, f.successEntries(t, sub.ID), "the losing caller must not append a ledger entry")
	require.Empty(t, f.notifier.activated)
}

func TestActivationLosingSwapToCancelIsStateConflict(t *testing.T) {
	f := newFixture(t, interleaveWith(enums.SubscriptionStatusCancelled))
	user := newUser()
	sub := f.create(t, user, f.base, "400.00")

	_, err := f.activate(&user, sub.ID, SourceUser)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "got %v", err)

	require.Equal(t, enums.SubscriptionStatusPending, f.reload(t, sub.ID).Status, "the transaction must roll back")
	require.Empty(t, f.successEntries(t, sub.ID))
	require.Empty(t, f.notifier.activated)
}

func TestCancelLosingSwap(t *testing.T) {
	tests := []struct {
		name          string
		concurrent    enums.SubscriptionStatus
		wantCode      pkgerrors.Code
		wantCancelled bool
	}{
		{name: "to cancel", concurrent: enums.SubscriptionStatusCancelled, wantCancelled: true},
		{name: "to expiry", concurrent: enums.SubscriptionStatusExpired, wantCode: pkgerrors.CodeStateConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, interleaveWith(tt.concurrent))
			user := newUser()
			sub := f.create(t, user, f.base, "400.00")
			require.NoError(t, f.conn.Model(&models.Subscription{}).Where("id = ?", sub.ID).
				Update("status", enums.SubscriptionStatusActive).Error)

			result, err := f.svc.Cancel(context.Background(), user, sub.ID)
			if tt.wantCode != "" {
				require.True(t, pkgerrors.IsCode(err, tt.wantCode), "got %v", err)
				require.Equal(t, enums.SubscriptionStatusActive, f.reload(t, sub.ID).Status)
				return
			}
			require.NoError(t, err)
			require.True(t, result.AlreadyCancelled)
			require.Empty(t, f.notifier.cancelled)
		})
	}
}

func TestActivateRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := newUser()

	_, err := f.activate(&user, uuid.New(), SourceUser)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	sub := f.create(t, user, f.base, "400.00")
	stranger := newUser()
	_, err = f.activate(&stranger, sub.ID, SourceUser)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "other users cannot see the record")

	for _, input := range []ActivateInput{
		{SubscriptionID: sub.ID, OrderID: "order_X", Amount: decimal.NewFromInt(400), Actor: &user},
		{SubscriptionID: sub.ID, PaymentID: "pay_X", Amount: decimal.NewFromInt(400), Actor: &user},
		{SubscriptionID: sub.ID, PaymentID: "pay_X", OrderID: "order_X", Amount: decimal.Zero, Actor: &user},
		{SubscriptionID: sub.ID, PaymentID: "pay_X", OrderID: "order_X", Amount: decimal.NewFromInt(-1), Actor: &user},
		{SubscriptionID: sub.ID, PaymentID: "pay_X", OrderID: "order_X", Amount: decimal.RequireFromString("0.001"), Actor: &user},
		{SubscriptionID: sub.ID, PaymentID: "pay_X", OrderID: "order_X", Amount: decimal.RequireFromString("400.005"), Actor: &user},
		{SubscriptionID: sub.ID, PaymentID: "pay_X", OrderID: "order_X", Amount: decimal.RequireFromString("100000000"), Actor: &user},
	} {
		_, err := f.svc.Activate(ctx, input)
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "input %+v got %v", input, err)
	}
	require.Equal(t, enums.SubscriptionStatusPending, f.reload(t, sub.ID).Status)
	require.Empty(t, f.successEntries(t, sub.ID), "rejected amounts must not reach the ledger")

	_, err = f.activate(&user, sub.ID, SourceUser)
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, user, sub.ID)
	require.NoError(t, err)

	_, err = f.activate(&user, sub.ID, SourceUser)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "got %v", err)
	require.Len(t, f.successEntries(t, sub.ID), 1)
}

func TestStatusNeverMovesBackward(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := newUser()
	sub := f.create(t, user, f.base, "400.00")

	_, err := f.svc.Cancel(ctx, user, sub.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "pending cannot be cancelled")

	_, err = f.activate(&user, sub.ID, SourceUser)
	require.NoError(t, err)

	pending := enums.SubscriptionStatusPending
	_, err = f.svc.AdminUpdate(ctx, sub.ID, AdminUpdateInput{Status: &pending})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	first, err := f.svc.Cancel(ctx, user, sub.ID)
	require.NoError(t, err)
	require.False(t, first.AlreadyCancelled)
	require.Equal(t, enums.SubscriptionStatusCancelled, first.Subscription.Status)
	require.NotNil(t, first.Subscription.EndedAt)

	second, err := f.svc.Cancel(ctx, user, sub.ID)
	require.NoError(t, err)
	require.True(t, second.AlreadyCancelled)

	expired := enums.SubscriptionStatusExpired
	_, err = f.svc.AdminUpdate(ctx, sub.ID, AdminUpdateInput{Status: &expired})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	ok, err := f.svc.Expire(ctx, sub.ID)
	require.NoError(t, err)
	require.False(t, ok)

	require.Equal(t, enums.SubscriptionStatusCancelled, f.reload(t, sub.ID).Status)
	require.Len(t, f.notifier.cancelled, 1)
}

func TestCancelExpiredIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := newUser()
	sub := f.create(t, user, f.base, "400.00")
	_, err := f.activate(&user, sub.ID, SourceUser)
	require.NoError(t, err)

	ok, err := f.svc.Expire(ctx, sub.ID)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.svc.Cancel(ctx, user, sub.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestDuplicateActiveEnrollment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := newUser()

	first := f.create(t, user, f.base, "400.00")
	second := f.create(t, user, f.base, "400.00")

	_, err := f.activate(&user, first.ID, SourceUser)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, user, CreateInput{PlanID: f.base.ID})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	_, err = f.activate(&user, second.ID, SourceUser)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
	require.Equal(t, enums.SubscriptionStatusPending, f.reload(t, second.ID).Status)

	other := newUser()
	f.create(t, other, f.base, "400.00")
}

func TestSummary(t *testing.T) {
	f := newFixture(t)
	user := newUser()
	next := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	later := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)

	seed := func(owner uuid.UUID, plan models.Plan, price string, status enums.SubscriptionStatus, billing *time.Time) {
		sub := models.Subscription{
			UserID:          owner,
			PlanID:          plan.ID,
			Price:           decimal.RequireFromString(price),
			Status:          status,
			NextBillingDate: billing,
		}
		require.NoError(t, f.conn.Omit("Plan", "BillingHistory").Create(&sub).Error)
	}
	seed(user.UserID, f.base, "400.00", enums.SubscriptionStatusActive, &next)
	seed(user.UserID, f.addon, "250.00", enums.SubscriptionStatusActive, &later)
	seed(user.UserID, f.addon, "250.00", enums.SubscriptionStatusCancelled, nil)
	seed(uuid.New(), f.base, "999.00", enums.SubscriptionStatusActive, &next)

	summary, err := f.svc.Summary(context.Background(), user.UserID)
	require.NoError(t, err)
	require.Equal(t, 3, summary.TotalSubscriptions)
	require.Equal(t, 2, summary.ActiveSubscriptions)
	require.Equal(t, "650.00", summary.MonthlyCost.StringFixed(2))
	require.NotNil(t, summary.NextBillingDate)
	require.Equal(t, "2026-01-20", summary.NextBillingDate.Format("2006-01-02"))
	require.NotNil(t, summary.BaseSubscription)
	require.Equal(t, f.base.ID, summary.BaseSubscription.PlanID)
	require.Len(t, summary.Addons, 1)
	require.Equal(t, f.addon.ID, summary.Addons[0].PlanID)
}

func TestSummarizeScenario(t *testing.T) {
	next := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	base := &models.Plan{PlanType: enums.PlanTypeBase}
	addon := &models.Plan{PlanType: enums.PlanTypeAddon}
	summary := Summarize([]models.Subscription{
		{Plan: base, Price: decimal.RequireFromString("400.00"), Status: enums.SubscriptionStatusActive, NextBillingDate: &next},
		{Plan: addon, Price: decimal.RequireFromString("250.00"), Status: enums.SubscriptionStatusActive, NextBillingDate: &next},
	})
	require.Equal(t, 2, summary.TotalSubscriptions)
	require.Equal(t, 2, summary.ActiveSubscriptions)
	require.Equal(t, "650.00", summary.MonthlyCost.StringFixed(2))
	require.True(t, summary.NextBillingDate.Equal(next))

	empty := Summarize(nil)
	require.Zero(t, empty.TotalSubscriptions)
	require.Nil(t, empty.NextBillingDate)
	require.Nil(t, empty.BaseSubscription)
	require.NotNil(t, empty.Addons)
}

func TestLedgerIsNeverRewritten(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := newUser()
	sub := f.create(t, user, f.base, "400.00")

	activated, err := f.activate(&user, sub.ID, SourceUser)
	require.NoError(t, err)
	original := f.successEntries(t, sub.ID)[0]

	_, _, err = f.svc.RecordPaymentFailure(ctx, PaymentFailure{SubscriptionID: sub.ID, PaymentID: "pay_retry", Amount: decimal.NewFromInt(400), GatewayStatus: "failed"})
	require.NoError(t, err)
	_, err = f.activate(&user, sub.ID, SourceUser)
	require.NoError(t, err)
	price := decimal.RequireFromString("350.00")
	_, err = f.svc.AdminUpdate(ctx, sub.ID, AdminUpdateInput{Price: &price})
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, user, sub.ID)
	require.NoError(t, err)

	after := f.successEntries(t, sub.ID)
	require.Len(t, after, 1)
	require.Equal(t, original.ID, after[0].ID)
	require.True(t, original.Amount.Equal(after[0].Amount))
	require.True(t, original.CreatedAt.Equal(after[0].CreatedAt))
	require.Equal(t, activated.Billing.ID, after[0].ID)

	var all []models.BillingHistory
	require.NoError(t, f.conn.Where("subscription_id = ?", sub.ID).Find(&all).Error)
	require.Len(t, all, 2)
	stats := billing.Aggregate(all, f.clock.Now())
	require.Equal(t, "400.00", stats.LifetimeTotal.StringFixed(2))
}

func TestRecordPaymentFailureKeepsStatus(t *testing.T) {
	f := newFixture(t)
	user := newUser()
	sub := f.create(t, user, f.base, "400.00")

	got, entry, err := f.svc.RecordPaymentFailure(context.Background(), PaymentFailure{
		SubscriptionID: sub.ID,
		PaymentID:      "pay_F",
		OrderID:        "order_F",
		Amount:         decimal.RequireFromString("400.00"),
		GatewayStatus:  "failed",
	})
	require.NoError(t, err)
	require.Equal(t, enums.SubscriptionStatusPending, got.Status)
	require.Equal(t, enums.BillingStatusFailed, entry.Status)
	require.Equal(t, "pay_F", *entry.RazorpayPaymentID)
	require.Equal(t, enums.SubscriptionStatusPending, f.reload(t, sub.ID).Status)
	require.Empty(t, f.successEntries(t, sub.ID))

	_, _, err = f.svc.RecordPaymentFailure(context.Background(), PaymentFailure{SubscriptionID: uuid.New()})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, _, err = f.svc.RecordPaymentFailure(context.Background(), PaymentFailure{
		SubscriptionID: sub.ID,
		Amount:         decimal.RequireFromString("0.005"),
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestPaymentSignatureEnforcement(t *testing.T) {
	const secret = "key_secret"
	f := newFixture(t, func(p *ServiceParams) {
		p.RequirePaymentSignature = true
		p.KeySecret = secret
	})
	ctx := context.Background()
	user := newUser()
	sub := f.create(t, user, f.base, "400.00")

	input := ActivateInput{
		SubscriptionID: sub.ID,
		PaymentID:      "pay_S",
		OrderID:        "order_S",
		Amount:         decimal.NewFromInt(400),
		Actor:          &user,
		Signature:      "deadbeef",
	}
	_, err := f.svc.Activate(ctx, input)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidSignature), "got %v", err)

	input.Signature = razorpay.Sign(secret, razorpay.PaymentSignaturePayload("order_S", "pay_S"))
	res, err := f.svc.Activate(ctx, input)
	require.NoError(t, err)
	require.False(t, res.AlreadyActive)

	webhookSub := f.create(t, user, f.addon, "250.00")
	_, err = f.svc.Activate(ctx, ActivateInput{
		SubscriptionID: webhookSub.ID,
		PaymentID:      "pay_W",
		OrderID:        "order_W",
		Amount:         decimal.NewFromInt(250),
		Source:         SourceWebhook,
	})
	require.NoError(t, err, "webhook deliveries are authenticated by the body signature")
}

func TestGetAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := newUser()
	sub := f.create(t, user, f.base, "400.00")
	_, err := f.activate(&user, sub.ID, SourceUser)
	require.NoError(t, err)
	f.create(t, newUser(), f.addon, "250.00")

	got, err := f.svc.Get(ctx, user, sub.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Plan)
	require.Len(t, got.BillingHistory, 1)

	_, err = f.svc.Get(ctx, newUser(), sub.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	admin := Actor{UserID: uuid.New(), Admin: true}
	_, err = f.svc.Get(ctx, admin, sub.ID)
	require.NoError(t, err)

	mine, err := f.svc.List(ctx, user.UserID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Len(t, mine[0].BillingHistory, 1)
}

func TestAdminListAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, bob := newUser(), newUser()
	aliceBase := f.create(t, alice, f.base, "400.00")
	f.create(t, alice, f.addon, "250.00")
	f.create(t, bob, f.addon, "250.00")
	_, err := f.activate(&alice, aliceBase.ID, SourceUser)
	require.NoError(t, err)

	all, err := f.svc.AdminList(ctx, AdminFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	addons, err := f.svc.AdminList(ctx, AdminFilter{PlanType: "addon"})
	require.NoError(t, err)
	require.Len(t, addons, 2)

	aliceActive, err := f.svc.AdminList(ctx, AdminFilter{UserID: alice.UserID.String(), Status: "active"})
	require.NoError(t, err)
	require.Len(t, aliceActive, 1)

	_, err = f.svc.AdminList(ctx, AdminFilter{Status: "paused"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = f.svc.AdminList(ctx, AdminFilter{UserID: "nope"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	price := decimal.RequireFromString("300.00")
	notes := "  loyalty discount "
	expired := enums.SubscriptionStatusExpired
	updated, err := f.svc.AdminUpdate(ctx, aliceBase.ID, AdminUpdateInput{Price: &price, AdminNotes: &notes, Status: &expired})
	require.NoError(t, err)
	require.Equal(t, "300.00", updated.Price.StringFixed(2))
	require.Equal(t, "loyalty discount", updated.AdminNotes)
	require.Equal(t, enums.SubscriptionStatusExpired, updated.Status)
	require.NotNil(t, updated.EndedAt)

	for _, raw := range []string{"0", "0.001", "100000000"} {
		bad := decimal.RequireFromString(raw)
		_, err = f.svc.AdminUpdate(ctx, aliceBase.ID, AdminUpdateInput{Price: &bad})
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "price %s got %v", raw, err)
	}
	_, err = f.svc.AdminUpdate(ctx, uuid.New(), AdminUpdateInput{AdminNotes: &notes})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListOverdue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := newUser()
	sub := f.create(t, user, f.base, "400.00")
	_, err := f.activate(&user, sub.ID, SourceUser)
	require.NoError(t, err)

	none, err := f.svc.ListOverdue(ctx, time.Date(2026, 2, 19, 0, 0, 0, 0, time.UTC), 10)
	require.NoError(t, err)
	require.Empty(t, none)

	due, err := f.svc.ListOverdue(ctx, time.Date(2026, 2, 22, 0, 0, 0, 0, time.UTC), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, sub.ID, due[0].ID)
}
