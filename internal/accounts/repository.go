package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/strata-books/strata-books/internal/shared"
)

// Repository encapsulates DB operations for accounts.
type Repository interface {
	Insert(ctx context.Context, account Account) (Account, error)
	Get(ctx context.Context, id uuid.UUID) (Account, error)
	Update(ctx context.Context, id uuid.UUID, name, description, actor string) (Account, error)
	List(ctx context.Context, filter ListFilter, page shared.Pagination) ([]Account, int, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns a pgx-backed account repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const accountColumns = `id, name, type, description, opening_balance::text, current_balance::text, created_at, updated_at, created_by, updated_by`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	var opening, current string
	err := row.Scan(&a.ID, &a.Name, &a.Type, &a.Description, &opening, &current, &a.CreatedAt, &a.UpdatedAt, &a.CreatedBy, &a.UpdatedBy)
	if err != nil {
		return Account{}, err
	}
	if a.OpeningBalance, err = parseNumeric(opening); err != nil {
		return Account{}, err
	}
	if a.CurrentBalance, err = parseNumeric(current); err != nil {
		return Account{}, err
	}
	return a, nil
}

func (r *repository) Insert(ctx context.Context, account Account) (Account, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO accounts (name, type, description, opening_balance, current_balance, created_by, updated_by)
VALUES ($1, $2, $3, $4::numeric, $4::numeric, $5, $5)
RETURNING `+accountColumns, account.Name, account.Type, account.Description, account.OpeningBalance.String(), account.CreatedBy)
	return scanAccount(row)
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, fmt.Errorf("accounts: %s: %w", id, shared.ErrNotFound)
		}
		return Account{}, err
	}
	return account, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, name, description, actor string) (Account, error) {
	row := r.db.QueryRow(ctx, `UPDATE accounts
SET name = COALESCE(NULLIF($2, ''), name), description = $3, updated_by = $4, updated_at = NOW()
WHERE id = $1
RETURNING `+accountColumns, id, name, description, actor)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, fmt.Errorf("accounts: %s: %w", id, shared.ErrNotFound)
		}
		return Account{}, err
	}
	return account, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter, page shared.Pagination) ([]Account, int, error) {
	where := ` WHERE ($1 = '' OR type = $1) AND ($2 = '' OR name ILIKE '%' || $2 || '%')`
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`+where, string(filter.Type), filter.Name).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts`+where+` ORDER BY type, name LIMIT $3 OFFSET $4`,
		string(filter.Type), filter.Name, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, account)
	}
	return accounts, total, rows.Err()
}

func parseNumeric(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("accounts: parse numeric %q: %w", s, err)
	}
	return d, nil
}
