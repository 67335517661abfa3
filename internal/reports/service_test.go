package reports

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/strata-books/strata-books/internal/accounts"
	"github.com/strata-books/strata-books/internal/shared"
)

type stubRepo struct {
	rows  []AccountBalance
	calls int
}

func (r *stubRepo) ActivityAsOf(ctx context.Context, asOf time.Time) ([]AccountBalance, error) {
	r.calls++
	return r.rows, nil
}

func (r *stubRepo) ActivityInRange(ctx context.Context, start, end time.Time) ([]AccountBalance, error) {
	r.calls++
	return r.rows, nil
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestBalanceReportCached(t *testing.T) {
	repo := &stubRepo{rows: []AccountBalance{
		{Name: "Cash", Type: accounts.AccountTypeAsset, Opening: decimal.RequireFromString("100")},
	}}
	svc := NewService(repo, newTestCache(t))
	ctx := context.Background()
	asOf := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	first, err := svc.Balance(ctx, asOf)
	require.NoError(t, err)
	require.Equal(t, "100", first.Groups[0].Total.String())
	require.Equal(t, 1, repo.calls)

	second, err := svc.Balance(ctx, asOf)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, repo.calls, "second read must hit the cache")
}

func TestBalanceReportDefaultsToToday(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, newTestCache(t))
	svc.WithNow(func() time.Time { return time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC) })

	report, err := svc.Balance(context.Background(), time.Time{})
	require.NoError(t, err)
	require.Equal(t, "2026-04-02", report.AsOf)
}

func TestInvalidateCacheForcesRebuild(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, newTestCache(t))
	ctx := context.Background()
	asOf := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Balance(ctx, asOf)
	require.NoError(t, err)
	require.NoError(t, svc.InvalidateCache(ctx))
	_, err = svc.Balance(ctx, asOf)
	require.NoError(t, err)
	require.Equal(t, 2, repo.calls)
}

func TestProfitLossValidatesWindow(t *testing.T) {
	svc := NewService(&stubRepo{}, nil)
	ctx := context.Background()
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.ProfitLoss(ctx, start, start.AddDate(0, 0, -1))
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.ProfitLoss(ctx, time.Time{}, start)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestProfitLossWithoutCacheClient(t *testing.T) {
	repo := &stubRepo{rows: []AccountBalance{
		{Name: "Rent", Type: accounts.AccountTypeIncome, Inflow: decimal.RequireFromString("800")},
		{Name: "Repairs", Type: accounts.AccountTypeExpense, Inflow: decimal.RequireFromString("300")},
	}}
	svc := NewService(repo, nil)
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)

	pl, err := svc.ProfitLoss(context.Background(), start, end)
	require.NoError(t, err)
	require.Equal(t, "500", pl.NetProfitLoss.String())
}
