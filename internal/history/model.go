package history

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Snapshot records an account's balance at a date. Snapshots are written by
// the nightly job and never mutated.
type Snapshot struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Date      time.Time
	Balance   decimal.Decimal
	CreatedAt time.Time
}
