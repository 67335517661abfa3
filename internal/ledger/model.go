package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is a single posting moving an amount from the contra account
// into the primary account. Rows are append-only: after creation only the
// void flag may change.
type Transaction struct {
	ID                uuid.UUID
	AccountID         uuid.UUID
	AccountName       string
	ContraAccountID   uuid.UUID
	ContraAccountName string
	Date              time.Time
	Amount            decimal.Decimal
	Description       string
	ReferenceNumber   string
	IsVoid            bool
	CreatedAt         time.Time
	CreatedBy         string
}

// ListFilter narrows transaction listings. AccountID matches either side of
// the posting.
type ListFilter struct {
	AccountID uuid.UUID
	StartDate time.Time
	EndDate   time.Time
	IsVoid    *bool
}
