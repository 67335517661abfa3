package history

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	snapshotDate time.Time
	count        int
}

func (r *stubRepo) SnapshotAll(ctx context.Context, date time.Time) (int, error) {
	r.snapshotDate = date
	return r.count, nil
}

func (r *stubRepo) List(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]Snapshot, error) {
	return nil, nil
}

func TestSnapshotDefaultsToToday(t *testing.T) {
	repo := &stubRepo{count: 4}
	svc := NewService(repo, nil)
	svc.WithNow(func() time.Time {
		return time.Date(2026, time.April, 2, 23, 30, 0, 0, time.UTC)
	})

	count, err := svc.Snapshot(context.Background(), time.Time{})
	require.NoError(t, err)
	require.Equal(t, 4, count)
	require.Equal(t, time.Date(2026, time.April, 2, 0, 0, 0, 0, time.UTC), repo.snapshotDate)
}

func TestSnapshotTruncatesExplicitDate(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, nil)

	_, err := svc.Snapshot(context.Background(), time.Date(2026, time.January, 15, 13, 45, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC), repo.snapshotDate)
}

func TestSnapshotKeepsLocalCalendarDate(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, nil)
	nzdt := time.FixedZone("NZDT", 13*3600)
	svc.WithNow(func() time.Time {
		return time.Date(2026, time.April, 3, 0, 30, 0, 0, nzdt)
	})

	_, err := svc.Snapshot(context.Background(), time.Time{})
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, time.April, 3, 0, 0, 0, 0, time.UTC), repo.snapshotDate)
}
