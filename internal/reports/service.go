package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/strata-books/strata-books/internal/shared"
)

const cachePrefix = "reports:"

// Service builds ledger reports. Reports are pure functions of the ledger
// state and the requested window; concurrent identical requests collapse via
// singleflight and results are cached with a short TTL.
type Service struct {
	repo  Repository
	cache *Cache
	group singleflight.Group
	now   func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Balance builds the balance report as of the given date. A zero date means
// today.
func (s *Service) Balance(ctx context.Context, asOf time.Time) (BalanceReport, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	key := fmt.Sprintf("%sbalance:%s", cachePrefix, asOf.Format("2006-01-02"))
	var report BalanceReport
	err := s.fetch(ctx, key, &report, func(ctx context.Context) (any, error) {
		rows, err := s.repo.ActivityAsOf(ctx, asOf)
		if err != nil {
			return nil, err
		}
		return BuildBalanceReport(asOf, rows), nil
	})
	return report, err
}

// ProfitLoss builds the profit & loss report for the window.
func (s *Service) ProfitLoss(ctx context.Context, start, end time.Time) (ProfitAndLoss, error) {
	if start.IsZero() || end.IsZero() {
		return ProfitAndLoss{}, fmt.Errorf("reports: start and end dates required: %w", shared.ErrValidation)
	}
	if end.Before(start) {
		return ProfitAndLoss{}, fmt.Errorf("reports: end date before start date: %w", shared.ErrValidation)
	}
	key := fmt.Sprintf("%spl:%s:%s", cachePrefix, start.Format("2006-01-02"), end.Format("2006-01-02"))
	var report ProfitAndLoss
	err := s.fetch(ctx, key, &report, func(ctx context.Context) (any, error) {
		rows, err := s.repo.ActivityInRange(ctx, start, end)
		if err != nil {
			return nil, err
		}
		return BuildProfitAndLoss(start, end, rows), nil
	})
	return report, err
}

// InvalidateCache drops all cached reports. Wired as the ledger's
// post-commit hook.
func (s *Service) InvalidateCache(ctx context.Context) error {
	return s.cache.Invalidate(ctx, cachePrefix)
}

func (s *Service) fetch(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	resultChan := s.group.DoChan(key, func() (any, error) {
		var raw json.RawMessage
		if err := s.cache.FetchJSON(ctx, key, &raw, loader); err != nil {
			return nil, err
		}
		return raw, nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.(json.RawMessage), dest)
	}
}
