package reports

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/strata-books/strata-books/internal/accounts"
)

func TestWriteBalanceCSV(t *testing.T) {
	report := BuildBalanceReport(time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC), []AccountBalance{
		{Name: "Operating Cash", Type: accounts.AccountTypeAsset, Opening: decimal.RequireFromString("1000")},
		{Name: "Reserve Fund", Type: accounts.AccountTypeAsset, Opening: decimal.RequireFromString("9999999999999999.99")},
		{Name: "Owner Arrears", Type: accounts.AccountTypeLiability, Opening: decimal.RequireFromString("450.50")},
	})

	var buf strings.Builder
	require.NoError(t, NewExporter(language.English).WriteBalanceCSV(&buf, report))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Equal(t, []string{
		`report_date,2026-03-31`,
		`type,account,balance`,
		`ASSET,Operating Cash,"1,000.00"`,
		`ASSET,Reserve Fund,"9,999,999,999,999,999.99"`,
		`ASSET,TOTAL,"10,000,000,000,000,999.99"`,
		`LIABILITY,Owner Arrears,450.50`,
		`LIABILITY,TOTAL,450.50`,
		`INCOME,TOTAL,0.00`,
		`EXPENSE,TOTAL,0.00`,
		`,NET WORTH,"10,000,000,000,000,549.49"`,
	}, lines)
}

func TestWriteBalanceCSVNegativeAmounts(t *testing.T) {
	report := BuildBalanceReport(time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC), []AccountBalance{
		{Name: "Operating Cash", Type: accounts.AccountTypeAsset, Opening: decimal.RequireFromString("-0.50")},
	})

	var buf strings.Builder
	require.NoError(t, NewExporter(language.English).WriteBalanceCSV(&buf, report))

	out := buf.String()
	require.Contains(t, out, "ASSET,Operating Cash,-0.50")
	require.Contains(t, out, ",NET WORTH,-0.50")
}
