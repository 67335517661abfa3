package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/strata-books/strata-books/internal/accounts"
	"github.com/strata-books/strata-books/internal/platform/db"
	"github.com/strata-books/strata-books/internal/shared"
)

// Repository encapsulates DB operations for the transaction ledger.
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (Transaction, error)
	List(ctx context.Context, filter ListFilter, page shared.Pagination) ([]Transaction, int, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the writes available within a posting transaction.
// All three effects of a posting (row insert plus two balance updates)
// happen through one TxRepository so they commit or roll back together.
type TxRepository interface {
	GetAccountForUpdate(ctx context.Context, id uuid.UUID) (accounts.Account, error)
	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal, actor string) error
	InsertTransaction(ctx context.Context, in PostingInput, actor string) (Transaction, error)
	HasDuplicate(ctx context.Context, in PostingInput) (bool, error)
	GetTransactionForUpdate(ctx context.Context, id uuid.UUID) (Transaction, error)
	MarkVoid(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns a pgx-backed ledger repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const txnColumns = `t.id, t.account_id, a.name, t.contra_account_id, c.name, t.transaction_date, t.amount::text, t.description, t.reference_number, t.is_void, t.created_at, t.created_by`

const txnJoin = ` FROM transactions t
JOIN accounts a ON a.id = t.account_id
JOIN accounts c ON c.id = t.contra_account_id`

func scanTransaction(row pgx.Row) (Transaction, error) {
	var t Transaction
	var amount string
	err := row.Scan(&t.ID, &t.AccountID, &t.AccountName, &t.ContraAccountID, &t.ContraAccountName,
		&t.Date, &amount, &t.Description, &t.ReferenceNumber, &t.IsVoid, &t.CreatedAt, &t.CreatedBy)
	if err != nil {
		return Transaction{}, err
	}
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return Transaction{}, fmt.Errorf("ledger: parse amount %q: %w", amount, err)
	}
	return t, nil
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Transaction, error) {
	row := r.db.QueryRow(ctx, `SELECT `+txnColumns+txnJoin+` WHERE t.id = $1`, id)
	txn, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, fmt.Errorf("ledger: transaction %s: %w", id, shared.ErrNotFound)
		}
		return Transaction{}, err
	}
	return txn, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter, page shared.Pagination) ([]Transaction, int, error) {
	where := ` WHERE ($1::uuid IS NULL OR t.account_id = $1 OR t.contra_account_id = $1)
AND ($2::date IS NULL OR t.transaction_date >= $2)
AND ($3::date IS NULL OR t.transaction_date <= $3)
AND ($4::boolean IS NULL OR t.is_void = $4)`
	args := []any{
		nullUUID(filter.AccountID),
		nullDate(filter.StartDate),
		nullDate(filter.EndDate),
		filter.IsVoid,
	}
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+txnJoin+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	args = append(args, page.PerPage, page.Offset())
	rows, err := r.db.Query(ctx, `SELECT `+txnColumns+txnJoin+where+` ORDER BY t.transaction_date DESC, t.created_at DESC LIMIT $5 OFFSET $6`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var txns []Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		txns = append(txns, txn)
	}
	return txns, total, rows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetAccountForUpdate(ctx context.Context, id uuid.UUID) (accounts.Account, error) {
	var a accounts.Account
	var opening, current string
	err := r.tx.QueryRow(ctx, `SELECT id, name, type, description, opening_balance::text, current_balance::text, created_at, updated_at, created_by, updated_by
FROM accounts WHERE id = $1 FOR UPDATE`, id).
		Scan(&a.ID, &a.Name, &a.Type, &a.Description, &opening, &current, &a.CreatedAt, &a.UpdatedAt, &a.CreatedBy, &a.UpdatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return accounts.Account{}, fmt.Errorf("ledger: account %s: %w", id, shared.ErrNotFound)
		}
		return accounts.Account{}, err
	}
	if a.OpeningBalance, err = decimal.NewFromString(opening); err != nil {
		return accounts.Account{}, fmt.Errorf("ledger: parse opening balance %q: %w", opening, err)
	}
	if a.CurrentBalance, err = decimal.NewFromString(current); err != nil {
		return accounts.Account{}, fmt.Errorf("ledger: parse current balance %q: %w", current, err)
	}
	return a, nil
}

func (r *txRepository) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal, actor string) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE accounts SET current_balance = $2::numeric, updated_by = $3, updated_at = NOW() WHERE id = $1`,
		id, balance.String(), actor)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("ledger: account %s: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (r *txRepository) InsertTransaction(ctx context.Context, in PostingInput, actor string) (Transaction, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO transactions (account_id, contra_account_id, transaction_date, amount, description, reference_number, created_by)
VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
RETURNING id, created_at`, in.AccountID, in.ContraAccountID, in.Date, in.Amount.String(), in.Description, in.ReferenceNumber, actor)
	txn := Transaction{
		AccountID:       in.AccountID,
		ContraAccountID: in.ContraAccountID,
		Date:            in.Date,
		Amount:          in.Amount,
		Description:     in.Description,
		ReferenceNumber: in.ReferenceNumber,
		CreatedBy:       actor,
	}
	if err := row.Scan(&txn.ID, &txn.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23514" {
			return Transaction{}, fmt.Errorf("ledger: constraint %s: %w", pgErr.ConstraintName, shared.ErrValidation)
		}
		return Transaction{}, err
	}
	return txn, nil
}

func (r *txRepository) HasDuplicate(ctx context.Context, in PostingInput) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (
SELECT 1 FROM transactions
WHERE account_id = $1 AND contra_account_id = $2 AND amount = $3::numeric
AND transaction_date = $4 AND description = $5 AND NOT is_void)`,
		in.AccountID, in.ContraAccountID, in.Amount.String(), in.Date, in.Description).Scan(&exists)
	return exists, err
}

func (r *txRepository) GetTransactionForUpdate(ctx context.Context, id uuid.UUID) (Transaction, error) {
	row := r.tx.QueryRow(ctx, `SELECT id, account_id, contra_account_id, transaction_date, amount::text, description, reference_number, is_void, created_at, created_by
FROM transactions WHERE id = $1 FOR UPDATE`, id)
	var t Transaction
	var amount string
	err := row.Scan(&t.ID, &t.AccountID, &t.ContraAccountID, &t.Date, &amount, &t.Description, &t.ReferenceNumber, &t.IsVoid, &t.CreatedAt, &t.CreatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, fmt.Errorf("ledger: transaction %s: %w", id, shared.ErrNotFound)
		}
		return Transaction{}, err
	}
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return Transaction{}, fmt.Errorf("ledger: parse amount %q: %w", amount, err)
	}
	return t, nil
}

func (r *txRepository) MarkVoid(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE transactions SET is_void = TRUE WHERE id = $1 AND NOT is_void`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("ledger: transaction %s: %w", id, shared.ErrAlreadyVoid)
	}
	return nil
}

// Helpers
func nullUUID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}

func nullDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
