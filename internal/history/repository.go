package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository encapsulates DB operations for balance history.
type Repository interface {
	SnapshotAll(ctx context.Context, date time.Time) (int, error)
	List(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]Snapshot, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns a pgx-backed history repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

// SnapshotAll records every account's current balance for the date. Re-runs
// for the same date replace the previous snapshot.
func (r *repository) SnapshotAll(ctx context.Context, date time.Time) (int, error) {
	cmd, err := r.db.Exec(ctx, `INSERT INTO balance_history (account_id, balance_date, balance)
SELECT id, $1, current_balance FROM accounts
ON CONFLICT (account_id, balance_date) DO UPDATE SET balance = EXCLUDED.balance, created_at = NOW()`, date)
	if err != nil {
		return 0, err
	}
	return int(cmd.RowsAffected()), nil
}

func (r *repository) List(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]Snapshot, error) {
	rows, err := r.db.Query(ctx, `SELECT id, account_id, balance_date, balance::text, created_at
FROM balance_history
WHERE account_id = $1
AND ($2::date IS NULL OR balance_date >= $2)
AND ($3::date IS NULL OR balance_date <= $3)
ORDER BY balance_date`, accountID, nullDate(start), nullDate(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Snapshot
	for rows.Next() {
		var s Snapshot
		var balance string
		if err := rows.Scan(&s.ID, &s.AccountID, &s.Date, &balance, &s.CreatedAt); err != nil {
			return nil, err
		}
		if s.Balance, err = decimal.NewFromString(balance); err != nil {
			return nil, fmt.Errorf("history: parse balance %q: %w", balance, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func nullDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
