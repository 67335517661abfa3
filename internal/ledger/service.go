package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/strata-books/strata-books/internal/accounts"
	"github.com/strata-books/strata-books/internal/shared"
)

// AuditPort records audit trail entries for ledger mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// MetricsPort counts posting outcomes.
type MetricsPort interface {
	CountPosting(outcome string)
}

// CachePort drops cached reports after a committed mutation.
type CachePort interface {
	InvalidateCache(ctx context.Context) error
}

// DuplicateWarningMessage is the advisory surfaced when an identical posting
// already exists.
const DuplicateWarningMessage = "an identical posting already exists for this date"

// Service implements posting and voiding with balance maintenance. Every
// operation runs as one database transaction; the row locks on both account
// rows serialize concurrent balance updates.
type Service struct {
	repo    Repository
	audit   AuditPort
	metrics MetricsPort
	cache   CachePort
	now     func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, audit AuditPort, metrics MetricsPort) *Service {
	return &Service{repo: repo, audit: audit, metrics: metrics, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// WithCache installs a cache to invalidate after committed mutations.
func (s *Service) WithCache(cache CachePort) {
	s.cache = cache
}

// Post records a transaction and applies its effect to both balances. The
// primary account gains the amount, the contra account loses it. The contra
// account must not go below zero.
func (s *Service) Post(ctx context.Context, in PostingInput) (PostResult, error) {
	if err := in.Validate(); err != nil {
		s.countPosting("rejected")
		return PostResult{}, err
	}
	actor := shared.ActorFromContext(ctx)
	var result PostResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		account, contra, err := lockPair(ctx, tx, in.AccountID, in.ContraAccountID)
		if err != nil {
			return err
		}
		newContra := contra.CurrentBalance.Sub(in.Amount)
		if newContra.IsNegative() {
			return fmt.Errorf("ledger: %s has %s, cannot debit %s: %w",
				contra.Name, contra.CurrentBalance, in.Amount, shared.ErrInsufficientFunds)
		}
		duplicate, err := tx.HasDuplicate(ctx, in)
		if err != nil {
			return err
		}
		txn, err := tx.InsertTransaction(ctx, in, actor)
		if err != nil {
			return err
		}
		newAccount := account.CurrentBalance.Add(in.Amount)
		if err := tx.UpdateBalance(ctx, account.ID, newAccount, actor); err != nil {
			return err
		}
		if err := tx.UpdateBalance(ctx, contra.ID, newContra, actor); err != nil {
			return err
		}
		txn.AccountName = account.Name
		txn.ContraAccountName = contra.Name
		result = PostResult{
			Transaction:          txn,
			AccountBalance:       newAccount,
			ContraAccountBalance: newContra,
		}
		if duplicate {
			result.DuplicateWarning = DuplicateWarningMessage
		}
		return nil
	})
	if err != nil {
		s.countPosting("failed")
		return PostResult{}, err
	}
	s.countPosting("success")
	s.dropCache(ctx)
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Actor:    actor,
			Action:   "transaction.post",
			Entity:   "transaction",
			EntityID: result.Transaction.ID.String(),
			Meta: map[string]any{
				"account_id":        in.AccountID.String(),
				"contra_account_id": in.ContraAccountID.String(),
				"amount":            in.Amount.String(),
				"duplicate":         result.DuplicateWarning != "",
			},
			At: s.now(),
		})
	}
	return result, nil
}

// Void marks a transaction void and reverses its balance effect. A void of a
// void fails; nothing is ever deleted.
func (s *Service) Void(ctx context.Context, id uuid.UUID) (VoidResult, error) {
	actor := shared.ActorFromContext(ctx)
	var result VoidResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		txn, err := tx.GetTransactionForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if txn.IsVoid {
			return fmt.Errorf("ledger: transaction %s: %w", id, shared.ErrAlreadyVoid)
		}
		account, contra, err := lockPair(ctx, tx, txn.AccountID, txn.ContraAccountID)
		if err != nil {
			return err
		}
		if err := tx.MarkVoid(ctx, txn.ID); err != nil {
			return err
		}
		newAccount := account.CurrentBalance.Sub(txn.Amount)
		newContra := contra.CurrentBalance.Add(txn.Amount)
		if err := tx.UpdateBalance(ctx, account.ID, newAccount, actor); err != nil {
			return err
		}
		if err := tx.UpdateBalance(ctx, contra.ID, newContra, actor); err != nil {
			return err
		}
		txn.IsVoid = true
		txn.AccountName = account.Name
		txn.ContraAccountName = contra.Name
		result = VoidResult{
			Transaction:          txn,
			AccountBalance:       newAccount,
			ContraAccountBalance: newContra,
		}
		return nil
	})
	if err != nil {
		return VoidResult{}, err
	}
	s.dropCache(ctx)
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Actor:    actor,
			Action:   "transaction.void",
			Entity:   "transaction",
			EntityID: id.String(),
			At:       s.now(),
		})
	}
	return result, nil
}

// Get fetches a transaction by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Transaction, error) {
	return s.repo.Get(ctx, id)
}

// List returns transactions matching the filter plus pagination metadata.
func (s *Service) List(ctx context.Context, filter ListFilter, page, perPage int) ([]Transaction, shared.Pagination, error) {
	pg := shared.NewPagination(page, perPage, 0)
	txns, total, err := s.repo.List(ctx, filter, pg)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return txns, shared.NewPagination(page, perPage, total), nil
}

func (s *Service) countPosting(outcome string) {
	if s.metrics != nil {
		s.metrics.CountPosting(outcome)
	}
}

func (s *Service) dropCache(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateCache(ctx)
	}
}

// lockPair locks both account rows in a deterministic order so that two
// opposite postings between the same accounts cannot deadlock.
func lockPair(ctx context.Context, tx TxRepository, accountID, contraID uuid.UUID) (accounts.Account, accounts.Account, error) {
	first, second := accountID, contraID
	if strings.Compare(first.String(), second.String()) > 0 {
		first, second = second, first
	}
	a, err := tx.GetAccountForUpdate(ctx, first)
	if err != nil {
		return accounts.Account{}, accounts.Account{}, err
	}
	b, err := tx.GetAccountForUpdate(ctx, second)
	if err != nil {
		return accounts.Account{}, accounts.Account{}, err
	}
	if a.ID == accountID {
		return a, b, nil
	}
	return b, a, nil
}
