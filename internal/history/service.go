package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Service wraps balance history rules.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Snapshot records the balance of every account for the date. A zero date
// snapshots for today.
func (s *Service) Snapshot(ctx context.Context, date time.Time) (int, error) {
	if date.IsZero() {
		date = s.now()
	}
	y, m, d := date.Date()
	date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	count, err := s.repo.SnapshotAll(ctx, date)
	if err != nil {
		return 0, err
	}
	if s.logger != nil {
		s.logger.Info("balance snapshot recorded",
			slog.String("date", date.Format("2006-01-02")),
			slog.Int("accounts", count))
	}
	return count, nil
}

// List returns snapshots for an account, optionally bounded by a date range.
func (s *Service) List(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]Snapshot, error) {
	return s.repo.List(ctx, accountID, start, end)
}
