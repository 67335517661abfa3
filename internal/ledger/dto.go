package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/strata-books/strata-books/internal/shared"
)

// PostingInput groups fields required to record a transaction. The contra
// account is the source of funds ("From"); the primary account receives.
type PostingInput struct {
	AccountID       uuid.UUID
	ContraAccountID uuid.UUID
	Date            time.Time
	Amount          decimal.Decimal
	Description     string
	ReferenceNumber string
}

// Validate rejects malformed postings before any write.
func (in PostingInput) Validate() error {
	if in.AccountID == uuid.Nil || in.ContraAccountID == uuid.Nil {
		return fmt.Errorf("ledger: both accounts required: %w", shared.ErrValidation)
	}
	if in.AccountID == in.ContraAccountID {
		return fmt.Errorf("ledger: account and contra account must differ: %w", shared.ErrValidation)
	}
	if !in.Amount.IsPositive() {
		return fmt.Errorf("ledger: amount must be positive: %w", shared.ErrValidation)
	}
	if in.Date.IsZero() {
		return fmt.Errorf("ledger: transaction date required: %w", shared.ErrValidation)
	}
	if len(in.Description) > 500 {
		return fmt.Errorf("ledger: description too long: %w", shared.ErrValidation)
	}
	if len(in.ReferenceNumber) > 100 {
		return fmt.Errorf("ledger: reference number too long: %w", shared.ErrValidation)
	}
	return nil
}

// PostResult carries the persisted transaction, the updated balances, and
// the advisory duplicate warning.
type PostResult struct {
	Transaction          Transaction
	AccountBalance       decimal.Decimal
	ContraAccountBalance decimal.Decimal
	// DuplicateWarning is set when an identical non-void posting already
	// existed. The posting still succeeds; the caller decides whether to
	// surface it for confirmation.
	DuplicateWarning string
}

// VoidResult carries the voided transaction and the restored balances.
type VoidResult struct {
	Transaction          Transaction
	AccountBalance       decimal.Decimal
	ContraAccountBalance decimal.Decimal
}
