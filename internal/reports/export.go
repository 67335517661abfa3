package reports

import (
	"encoding/csv"
	"io"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Exporter writes reports as CSV statements with locale-aware amount
// formatting.
type Exporter struct {
	printer *message.Printer
}

// NewExporter constructs an Exporter for the given locale tag.
func NewExporter(tag language.Tag) *Exporter {
	return &Exporter{printer: message.NewPrinter(tag)}
}

// WriteBalanceCSV renders the balance report as a CSV statement.
func (e *Exporter) WriteBalanceCSV(w io.Writer, report BalanceReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"report_date", report.AsOf}); err != nil {
		return err
	}
	if err := cw.Write([]string{"type", "account", "balance"}); err != nil {
		return err
	}
	for _, group := range report.Groups {
		for _, line := range group.Accounts {
			if err := cw.Write([]string{string(group.Type), line.Name, e.amount(line.Balance)}); err != nil {
				return err
			}
		}
		if err := cw.Write([]string{string(group.Type), "TOTAL", e.amount(group.Total)}); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{"", "NET WORTH", e.amount(report.NetWorth)}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// amount renders a monetary value with locale grouping. The integer and cent
// parts are formatted separately so amounts stay exact at any numeric(18,2)
// magnitude, which a float64 round trip cannot guarantee.
func (e *Exporter) amount(d decimal.Decimal) string {
	d = d.Round(2)
	units := d.Abs().Truncate(0)
	cents := d.Abs().Sub(units).Shift(2).IntPart()
	out := e.printer.Sprintf("%d.%02d", units.IntPart(), cents)
	if d.IsNegative() {
		return "-" + out
	}
	return out
}
