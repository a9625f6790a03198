package report

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/lymq17/Antipatrones/internal/domain/pricing"
	"github.com/lymq17/Antipatrones/internal/domain/user"
)

// --- Mock implementations ---

type mockUserRepo struct {
	users []user.User
	err   error
}

func (m *mockUserRepo) List(_ context.Context) ([]user.User, error) {
	return m.users, m.err
}

type failingPricer struct {
	Pricer
	failID int64
}

func (p *failingPricer) Quote(u user.User, order pricing.Order, classes []pricing.Class) (*pricing.Quote, error) {
	if u.ID == p.failID {
		return nil, errors.New("pricing failed")
	}
	return p.Pricer.Quote(u, order, classes)
}

type mockPresenter struct {
	quotes []pricing.Quote
	calls  int
	err    error
}

func (m *mockPresenter) Present(_ context.Context, quotes []pricing.Quote) error {
	m.calls++
	m.quotes = quotes
	return m.err
}

// --- Helpers ---

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func testContext(t *testing.T) context.Context {
	return zctx.Base(context.Background(), zaptest.NewLogger(t))
}

func newEngine(t *testing.T) *pricing.Engine {
	t.Helper()
	e, err := pricing.NewEngine(pricing.DefaultConfig())
	require.NoError(t, err)
	return e
}

func sampleOrder() pricing.Order {
	return pricing.Order{Total: d("123.45"), WeightKg: d("12"), DistanceKm: d("900")}
}

func newTestService(t *testing.T, repo user.Repository, pricer Pricer, p Presenter, opts ...Option) *Service {
	t.Helper()
	svc, err := NewService(repo, pricer, p, opts...)
	require.NoError(t, err)
	return svc
}

// --- Tests ---

func TestRun(t *testing.T) {
	repo := &mockUserRepo{users: []user.User{
		{ID: 1, Name: "Ana", Tier: user.TierGold},
		{ID: 2, Name: "Luis", Tier: user.TierSilver},
		{ID: 3, Name: "Marta", Tier: user.Tier("bronze")},
	}}
	presenter := &mockPresenter{}
	svc := newTestService(t, repo, newEngine(t), presenter)

	summary, err := svc.Run(testContext(t), sampleOrder(), pricing.Classes)
	require.NoError(t, err)

	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 3, summary.Users)
	// 18.5175 + 8.6415 + 0
	assert.True(t, d("27.159").Equal(summary.DiscountTotal), "got %s", summary.DiscountTotal)

	require.Equal(t, 1, presenter.calls)
	require.Len(t, presenter.quotes, 3)
	assert.True(t, d("18.5175").Equal(presenter.quotes[0].Discount))
	assert.True(t, d("8.6415").Equal(presenter.quotes[1].Discount))
	assert.True(t, presenter.quotes[2].Discount.IsZero())
	for _, q := range presenter.quotes {
		require.Len(t, q.Shipping, 2)
		assert.True(t, d("11").Equal(q.Shipping[0].Cost))
		assert.True(t, d("13").Equal(q.Shipping[1].Cost))
	}
}

func TestRun_PreservesOrderWithWorkers(t *testing.T) {
	tiers := []user.Tier{user.TierGold, user.TierSilver, "bronze"}
	users := make([]user.User, 200)
	for i := range users {
		users[i] = user.User{ID: int64(i + 1), Name: "user", Tier: tiers[i%len(tiers)]}
	}

	sequential := &mockPresenter{}
	_, err := newTestService(t, &mockUserRepo{users: users}, newEngine(t), sequential).
		Run(testContext(t), sampleOrder(), pricing.Classes)
	require.NoError(t, err)

	parallel := &mockPresenter{}
	_, err = newTestService(t, &mockUserRepo{users: users}, newEngine(t), parallel, WithWorkers(8)).
		Run(testContext(t), sampleOrder(), pricing.Classes)
	require.NoError(t, err)

	require.Len(t, parallel.quotes, len(users))
	for i := range users {
		assert.Equal(t, users[i], parallel.quotes[i].User)
		assert.True(t, sequential.quotes[i].Discount.Equal(parallel.quotes[i].Discount))
	}
}

func TestRun_NoUsers(t *testing.T) {
	presenter := &mockPresenter{}
	svc := newTestService(t, &mockUserRepo{users: []user.User{}}, newEngine(t), presenter)

	summary, err := svc.Run(testContext(t), sampleOrder(), pricing.Classes)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Users)
	assert.True(t, summary.DiscountTotal.IsZero())
	assert.Equal(t, 1, presenter.calls)
	assert.Empty(t, presenter.quotes)
}

func TestRun_ListError(t *testing.T) {
	presenter := &mockPresenter{}
	svc := newTestService(t, &mockUserRepo{err: errors.New("disk on fire")}, newEngine(t), presenter)

	_, err := svc.Run(testContext(t), sampleOrder(), pricing.Classes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list users")
	assert.Zero(t, presenter.calls)
}

func TestRun_QuoteError(t *testing.T) {
	repo := &mockUserRepo{users: []user.User{{ID: 1}, {ID: 2}, {ID: 3}}}
	presenter := &mockPresenter{}
	svc := newTestService(t, repo, &failingPricer{Pricer: newEngine(t), failID: 2}, presenter, WithWorkers(2))

	_, err := svc.Run(testContext(t), sampleOrder(), pricing.Classes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quote user 2")
	assert.Zero(t, presenter.calls)
}

func TestRun_InvalidOrder(t *testing.T) {
	repo := &mockUserRepo{users: []user.User{{ID: 1, Tier: user.TierGold}}}
	svc := newTestService(t, repo, newEngine(t), &mockPresenter{})

	order := sampleOrder()
	order.WeightKg = d("-1")

	_, err := svc.Run(testContext(t), order, pricing.Classes)

	var ioErr *pricing.InvalidOrderError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "weight", ioErr.Field)
}

func TestRun_PresentError(t *testing.T) {
	repo := &mockUserRepo{users: []user.User{{ID: 1}}}
	svc := newTestService(t, repo, newEngine(t), &mockPresenter{err: errors.New("closed pipe")})

	_, err := svc.Run(testContext(t), sampleOrder(), pricing.Classes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "present")
}

func TestRun_CanceledContext(t *testing.T) {
	repo := &mockUserRepo{users: []user.User{{ID: 1}, {ID: 2}}}
	presenter := &mockPresenter{}
	svc := newTestService(t, repo, newEngine(t), presenter)

	ctx, cancel := context.WithCancel(testContext(t))
	cancel()

	_, err := svc.Run(ctx, sampleOrder(), pricing.Classes)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, presenter.calls)
}

func TestRun_UniqueRunIDs(t *testing.T) {
	svc := newTestService(t, &mockUserRepo{}, newEngine(t), &mockPresenter{})

	first, err := svc.Run(testContext(t), sampleOrder(), pricing.Classes)
	require.NoError(t, err)
	second, err := svc.Run(testContext(t), sampleOrder(), pricing.Classes)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
}
