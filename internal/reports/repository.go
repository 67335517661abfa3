package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository reads aggregated ledger activity for reporting.
type Repository interface {
	ActivityAsOf(ctx context.Context, asOf time.Time) ([]AccountBalance, error)
	ActivityInRange(ctx context.Context, start, end time.Time) ([]AccountBalance, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns a pgx-backed reports repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const activityQuery = `SELECT a.id, a.name, a.type, a.opening_balance::text,
COALESCE(SUM(t.amount) FILTER (WHERE t.account_id = a.id), 0)::text,
COALESCE(SUM(t.amount) FILTER (WHERE t.contra_account_id = a.id), 0)::text
FROM accounts a
LEFT JOIN transactions t
ON (t.account_id = a.id OR t.contra_account_id = a.id)
AND NOT t.is_void AND t.transaction_date >= $1 AND t.transaction_date <= $2
GROUP BY a.id, a.name, a.type, a.opening_balance
ORDER BY a.type, a.name`

// earliestDate is far enough back to cover any ledger.
var earliestDate = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

func (r *repository) ActivityAsOf(ctx context.Context, asOf time.Time) ([]AccountBalance, error) {
	return r.activity(ctx, earliestDate, asOf)
}

func (r *repository) ActivityInRange(ctx context.Context, start, end time.Time) ([]AccountBalance, error) {
	return r.activity(ctx, start, end)
}

func (r *repository) activity(ctx context.Context, start, end time.Time) ([]AccountBalance, error) {
	rows, err := r.db.Query(ctx, activityQuery, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AccountBalance
	for rows.Next() {
		var row AccountBalance
		var opening, inflow, outflow string
		if err := rows.Scan(&row.ID, &row.Name, &row.Type, &opening, &inflow, &outflow); err != nil {
			return nil, err
		}
		if row.Opening, err = parseNumeric(opening); err != nil {
			return nil, err
		}
		if row.Inflow, err = parseNumeric(inflow); err != nil {
			return nil, err
		}
		if row.Outflow, err = parseNumeric(outflow); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func parseNumeric(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("reports: parse numeric %q: %w", s, err)
	}
	return d, nil
}
