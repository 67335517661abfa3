package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType enumerates the closed set of account categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeIncome    AccountType = "INCOME"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// Valid reports whether the type is part of the enumeration.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// Account models a bookkeeping account with its running balance.
// CurrentBalance always equals OpeningBalance plus the net effect of all
// non-void transactions referencing the account on either side.
type Account struct {
	ID             uuid.UUID
	Name           string
	Type           AccountType
	Description    string
	OpeningBalance decimal.Decimal
	CurrentBalance decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
	CreatedBy      string
	UpdatedBy      string
}

// ListFilter narrows account listings.
type ListFilter struct {
	Type AccountType
	Name string
}
