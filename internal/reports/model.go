package reports

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/strata-books/strata-books/internal/accounts"
)

// AccountBalance models an account with its aggregated ledger activity.
// Inflow sums non-void amounts where the account is the primary party,
// Outflow where it is the contra party.
type AccountBalance struct {
	ID      uuid.UUID            `json:"id"`
	Name    string               `json:"name"`
	Type    accounts.AccountType `json:"type"`
	Opening decimal.Decimal      `json:"opening_balance"`
	Inflow  decimal.Decimal      `json:"inflow"`
	Outflow decimal.Decimal      `json:"outflow"`
}

// Closing computes the closing balance for the account.
func (a AccountBalance) Closing() decimal.Decimal {
	return a.Opening.Add(a.Inflow).Sub(a.Outflow)
}

// BalanceLine is one account row within a balance report group.
type BalanceLine struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// BalanceGroup aggregates the accounts of one type.
type BalanceGroup struct {
	Type     accounts.AccountType `json:"type"`
	Accounts []BalanceLine        `json:"accounts"`
	Total    decimal.Decimal      `json:"total"`
}

// BalanceReport is the structured balance report: per-account closing
// balances grouped by type plus net worth (assets minus liabilities).
type BalanceReport struct {
	AsOf     string          `json:"report_date"`
	Groups   []BalanceGroup  `json:"groups"`
	NetWorth decimal.Decimal `json:"net_worth"`
}

var groupOrder = []accounts.AccountType{
	accounts.AccountTypeAsset,
	accounts.AccountTypeLiability,
	accounts.AccountTypeIncome,
	accounts.AccountTypeExpense,
}

// BuildBalanceReport aggregates account activity into the balance report.
// Every type appears as a group even when it has no accounts.
func BuildBalanceReport(asOf time.Time, rows []AccountBalance) BalanceReport {
	groups := make(map[accounts.AccountType]*BalanceGroup, len(groupOrder))
	for _, typ := range groupOrder {
		groups[typ] = &BalanceGroup{Type: typ, Total: decimal.Zero}
	}
	for _, row := range rows {
		grp, ok := groups[row.Type]
		if !ok {
			continue
		}
		balance := row.Closing()
		grp.Accounts = append(grp.Accounts, BalanceLine{ID: row.ID, Name: row.Name, Balance: balance})
		grp.Total = grp.Total.Add(balance)
	}
	report := BalanceReport{AsOf: asOf.Format("2006-01-02")}
	for _, typ := range groupOrder {
		grp := groups[typ]
		sort.Slice(grp.Accounts, func(i, j int) bool { return grp.Accounts[i].Name < grp.Accounts[j].Name })
		report.Groups = append(report.Groups, *grp)
	}
	report.NetWorth = groups[accounts.AccountTypeAsset].Total.Sub(groups[accounts.AccountTypeLiability].Total)
	return report
}

// ProfitAndLoss sums income against expenses within a window.
type ProfitAndLoss struct {
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetProfitLoss decimal.Decimal `json:"net_profit_loss"`
}

// BuildProfitAndLoss sums amounts directed into INCOME accounts against
// amounts directed into EXPENSE accounts for the window the rows cover.
func BuildProfitAndLoss(start, end time.Time, rows []AccountBalance) ProfitAndLoss {
	income := decimal.Zero
	expenses := decimal.Zero
	for _, row := range rows {
		switch row.Type {
		case accounts.AccountTypeIncome:
			income = income.Add(row.Inflow)
		case accounts.AccountTypeExpense:
			expenses = expenses.Add(row.Inflow)
		}
	}
	return ProfitAndLoss{
		StartDate:     start.Format("2006-01-02"),
		EndDate:       end.Format("2006-01-02"),
		TotalIncome:   income,
		TotalExpenses: expenses,
		NetProfitLoss: income.Sub(expenses),
	}
}
