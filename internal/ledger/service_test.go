package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/strata-books/strata-books/internal/accounts"
	"github.com/strata-books/strata-books/internal/shared"
)

type memoryRepo struct {
	accounts map[uuid.UUID]*accounts.Account
	txns     map[uuid.UUID]*Transaction
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		accounts: make(map[uuid.UUID]*accounts.Account),
		txns:     make(map[uuid.UUID]*Transaction),
	}
}

func (r *memoryRepo) addAccount(name string, typ accounts.AccountType, opening string) uuid.UUID {
	id := uuid.New()
	balance := decimal.RequireFromString(opening)
	r.accounts[id] = &accounts.Account{
		ID: id, Name: name, Type: typ,
		OpeningBalance: balance, CurrentBalance: balance,
	}
	return id
}

func (r *memoryRepo) balance(id uuid.UUID) decimal.Decimal {
	return r.accounts[id].CurrentBalance
}

func (r *memoryRepo) totalBalance() decimal.Decimal {
	sum := decimal.Zero
	for _, a := range r.accounts {
		sum = sum.Add(a.CurrentBalance)
	}
	return sum
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) Get(ctx context.Context, id uuid.UUID) (Transaction, error) {
	if t, ok := r.txns[id]; ok {
		return *t, nil
	}
	return Transaction{}, fmt.Errorf("ledger: transaction %s: %w", id, shared.ErrNotFound)
}

func (r *memoryRepo) List(ctx context.Context, filter ListFilter, page shared.Pagination) ([]Transaction, int, error) {
	var out []Transaction
	for _, t := range r.txns {
		if filter.AccountID != uuid.Nil && t.AccountID != filter.AccountID && t.ContraAccountID != filter.AccountID {
			continue
		}
		if filter.IsVoid != nil && t.IsVoid != *filter.IsVoid {
			continue
		}
		out = append(out, *t)
	}
	return out, len(out), nil
}

type memoryTx struct {
	repo *memoryRepo
}

func (tx *memoryTx) GetAccountForUpdate(ctx context.Context, id uuid.UUID) (accounts.Account, error) {
	if a, ok := tx.repo.accounts[id]; ok {
		return *a, nil
	}
	return accounts.Account{}, fmt.Errorf("ledger: account %s: %w", id, shared.ErrNotFound)
}

func (tx *memoryTx) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal, actor string) error {
	a, ok := tx.repo.accounts[id]
	if !ok {
		return fmt.Errorf("ledger: account %s: %w", id, shared.ErrNotFound)
	}
	a.CurrentBalance = balance
	a.UpdatedBy = actor
	return nil
}

func (tx *memoryTx) InsertTransaction(ctx context.Context, in PostingInput, actor string) (Transaction, error) {
	txn := Transaction{
		ID:              uuid.New(),
		AccountID:       in.AccountID,
		ContraAccountID: in.ContraAccountID,
		Date:            in.Date,
		Amount:          in.Amount,
		Description:     in.Description,
		ReferenceNumber: in.ReferenceNumber,
		CreatedAt:       time.Now(),
		CreatedBy:       actor,
	}
	tx.repo.txns[txn.ID] = &txn
	return txn, nil
}

func (tx *memoryTx) HasDuplicate(ctx context.Context, in PostingInput) (bool, error) {
	for _, t := range tx.repo.txns {
		if t.IsVoid {
			continue
		}
		if t.AccountID == in.AccountID && t.ContraAccountID == in.ContraAccountID &&
			t.Amount.Equal(in.Amount) && t.Date.Equal(in.Date) && t.Description == in.Description {
			return true, nil
		}
	}
	return false, nil
}

func (tx *memoryTx) GetTransactionForUpdate(ctx context.Context, id uuid.UUID) (Transaction, error) {
	if t, ok := tx.repo.txns[id]; ok {
		return *t, nil
	}
	return Transaction{}, fmt.Errorf("ledger: transaction %s: %w", id, shared.ErrNotFound)
}

func (tx *memoryTx) MarkVoid(ctx context.Context, id uuid.UUID) error {
	t, ok := tx.repo.txns[id]
	if !ok || t.IsVoid {
		return fmt.Errorf("ledger: transaction %s: %w", id, shared.ErrAlreadyVoid)
	}
	t.IsVoid = true
	return nil
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestPostMovesBalances(t *testing.T) {
	repo := newMemoryRepo()
	asset := repo.addAccount("Operating Cash", accounts.AccountTypeAsset, "1000")
	expense := repo.addAccount("Repairs", accounts.AccountTypeExpense, "0")
	svc := NewService(repo, nil, nil)

	result, err := svc.Post(context.Background(), PostingInput{
		AccountID:       expense,
		ContraAccountID: asset,
		Date:            day("2026-03-01"),
		Amount:          decimal.RequireFromString("150"),
		Description:     "Elevator repair",
	})
	require.NoError(t, err)
	require.Equal(t, "850", repo.balance(asset).String())
	require.Equal(t, "150", repo.balance(expense).String())
	require.Equal(t, "150", result.AccountBalance.String())
	require.Equal(t, "850", result.ContraAccountBalance.String())
	require.Empty(t, result.DuplicateWarning)
	require.Equal(t, "Operating Cash", result.Transaction.ContraAccountName)
}

func TestPostInsufficientFunds(t *testing.T) {
	repo := newMemoryRepo()
	asset := repo.addAccount("Operating Cash", accounts.AccountTypeAsset, "1000")
	expense := repo.addAccount("Repairs", accounts.AccountTypeExpense, "0")
	svc := NewService(repo, nil, nil)

	_, err := svc.Post(context.Background(), PostingInput{
		AccountID:       asset,
		ContraAccountID: expense,
		Date:            day("2026-03-01"),
		Amount:          decimal.RequireFromString("1500"),
	})
	require.ErrorIs(t, err, shared.ErrInsufficientFunds)
	require.Equal(t, "1000", repo.balance(asset).String())
	require.Equal(t, "0", repo.balance(expense).String())
	require.Empty(t, repo.txns)
}

func TestPostSameAccountRejected(t *testing.T) {
	repo := newMemoryRepo()
	asset := repo.addAccount("Operating Cash", accounts.AccountTypeAsset, "1000")
	svc := NewService(repo, nil, nil)

	for _, amount := range []string{"1", "100", "0.01"} {
		_, err := svc.Post(context.Background(), PostingInput{
			AccountID:       asset,
			ContraAccountID: asset,
			Date:            day("2026-03-01"),
			Amount:          decimal.RequireFromString(amount),
		})
		require.ErrorIs(t, err, shared.ErrValidation)
	}
}

func TestPostNonPositiveAmountRejected(t *testing.T) {
	repo := newMemoryRepo()
	asset := repo.addAccount("Operating Cash", accounts.AccountTypeAsset, "1000")
	expense := repo.addAccount("Repairs", accounts.AccountTypeExpense, "0")
	svc := NewService(repo, nil, nil)

	for _, amount := range []string{"0", "-1", "-250.75"} {
		_, err := svc.Post(context.Background(), PostingInput{
			AccountID:       expense,
			ContraAccountID: asset,
			Date:            day("2026-03-01"),
			Amount:          decimal.RequireFromString(amount),
		})
		require.ErrorIs(t, err, shared.ErrValidation)
	}
	require.Empty(t, repo.txns)
}

func TestPostConservesTotalBalance(t *testing.T) {
	repo := newMemoryRepo()
	asset := repo.addAccount("Operating Cash", accounts.AccountTypeAsset, "5000")
	liability := repo.addAccount("Deposits Held", accounts.AccountTypeLiability, "2000")
	income := repo.addAccount("Rent", accounts.AccountTypeIncome, "0")
	expense := repo.addAccount("Utilities", accounts.AccountTypeExpense, "0")
	svc := NewService(repo, nil, nil)

	before := repo.totalBalance()
	postings := []struct {
		to, from uuid.UUID
		amount   string
	}{
		{expense, asset, "320.50"},
		{income, liability, "75"},
		{asset, income, "40"},
		{liability, asset, "10.25"},
	}
	for i, p := range postings {
		_, err := svc.Post(context.Background(), PostingInput{
			AccountID:       p.to,
			ContraAccountID: p.from,
			Date:            day("2026-03-02"),
			Amount:          decimal.RequireFromString(p.amount),
			Description:     fmt.Sprintf("posting %d", i),
		})
		require.NoError(t, err)
	}
	require.True(t, before.Equal(repo.totalBalance()), "total balance must be conserved")
}

func TestVoidRestoresBalances(t *testing.T) {
	repo := newMemoryRepo()
	asset := repo.addAccount("Operating Cash", accounts.AccountTypeAsset, "1000")
	expense := repo.addAccount("Repairs", accounts.AccountTypeExpense, "0")
	svc := NewService(repo, nil, nil)

	result, err := svc.Post(context.Background(), PostingInput{
		AccountID:       expense,
		ContraAccountID: asset,
		Date:            day("2026-03-01"),
		Amount:          decimal.RequireFromString("150"),
	})
	require.NoError(t, err)

	voided, err := svc.Void(context.Background(), result.Transaction.ID)
	require.NoError(t, err)
	require.True(t, voided.Transaction.IsVoid)
	require.Equal(t, "1000", repo.balance(asset).String())
	require.Equal(t, "0", repo.balance(expense).String())

	_, err = svc.Void(context.Background(), result.Transaction.ID)
	require.ErrorIs(t, err, shared.ErrAlreadyVoid)
}

func TestVoidUnknownTransaction(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	_, err := svc.Void(context.Background(), uuid.New())
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPostDuplicateWarning(t *testing.T) {
	repo := newMemoryRepo()
	asset := repo.addAccount("Operating Cash", accounts.AccountTypeAsset, "1000")
	expense := repo.addAccount("Repairs", accounts.AccountTypeExpense, "0")
	svc := NewService(repo, nil, nil)

	in := PostingInput{
		AccountID:       expense,
		ContraAccountID: asset,
		Date:            day("2026-03-01"),
		Amount:          decimal.RequireFromString("150"),
		Description:     "Elevator repair",
	}
	first, err := svc.Post(context.Background(), in)
	require.NoError(t, err)
	require.Empty(t, first.DuplicateWarning)

	second, err := svc.Post(context.Background(), in)
	require.NoError(t, err, "duplicate is advisory, not a hard reject")
	require.Equal(t, DuplicateWarningMessage, second.DuplicateWarning)
	require.Equal(t, "700", repo.balance(asset).String())
	require.Equal(t, "300", repo.balance(expense).String())
}

func TestPostUnknownAccount(t *testing.T) {
	repo := newMemoryRepo()
	asset := repo.addAccount("Operating Cash", accounts.AccountTypeAsset, "1000")
	svc := NewService(repo, nil, nil)

	_, err := svc.Post(context.Background(), PostingInput{
		AccountID:       uuid.New(),
		ContraAccountID: asset,
		Date:            day("2026-03-01"),
		Amount:          decimal.RequireFromString("10"),
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.Equal(t, "1000", repo.balance(asset).String())
}

type recordingAudit struct {
	logs []shared.AuditLog
}

func (a *recordingAudit) Record(ctx context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func TestPostRecordsAuditTrail(t *testing.T) {
	repo := newMemoryRepo()
	asset := repo.addAccount("Operating Cash", accounts.AccountTypeAsset, "1000")
	expense := repo.addAccount("Repairs", accounts.AccountTypeExpense, "0")
	audit := &recordingAudit{}
	svc := NewService(repo, audit, nil)
	svc.WithNow(func() time.Time { return day("2026-03-05") })

	ctx := shared.ContextWithActor(context.Background(), "manager@strata")
	_, err := svc.Post(ctx, PostingInput{
		AccountID:       expense,
		ContraAccountID: asset,
		Date:            day("2026-03-01"),
		Amount:          decimal.RequireFromString("25"),
	})
	require.NoError(t, err)
	require.Len(t, audit.logs, 1)
	require.Equal(t, "transaction.post", audit.logs[0].Action)
	require.Equal(t, "manager@strata", audit.logs[0].Actor)
	require.Equal(t, "manager@strata", repo.accounts[asset].UpdatedBy)
}

type countingCache struct {
	invalidations int
}

func (c *countingCache) InvalidateCache(ctx context.Context) error {
	c.invalidations++
	return nil
}

func TestPostAndVoidDropReportCache(t *testing.T) {
	repo := newMemoryRepo()
	asset := repo.addAccount("Operating Cash", accounts.AccountTypeAsset, "1000")
	expense := repo.addAccount("Repairs", accounts.AccountTypeExpense, "0")
	cache := &countingCache{}
	svc := NewService(repo, nil, nil)
	svc.WithCache(cache)

	result, err := svc.Post(context.Background(), PostingInput{
		AccountID:       expense,
		ContraAccountID: asset,
		Date:            day("2026-03-01"),
		Amount:          decimal.RequireFromString("40"),
	})
	require.NoError(t, err)
	require.Equal(t, 1, cache.invalidations)

	_, err = svc.Void(context.Background(), result.Transaction.ID)
	require.NoError(t, err)
	require.Equal(t, 2, cache.invalidations)
}

func TestRejectedPostLeavesCacheAlone(t *testing.T) {
	repo := newMemoryRepo()
	asset := repo.addAccount("Operating Cash", accounts.AccountTypeAsset, "1000")
	cache := &countingCache{}
	svc := NewService(repo, nil, nil)
	svc.WithCache(cache)

	_, err := svc.Post(context.Background(), PostingInput{
		AccountID:       asset,
		ContraAccountID: asset,
		Date:            day("2026-03-01"),
		Amount:          decimal.RequireFromString("40"),
	})
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Zero(t, cache.invalidations)
}
