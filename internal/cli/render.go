package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/Rhymond/go-money"
	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"github.com/simaogato/pemetrics-backend/internal/adapter/rest"
	"github.com/simaogato/pemetrics-backend/internal/domain"
	"github.com/simaogato/pemetrics-backend/internal/usecase/dashboard"
	"github.com/simaogato/pemetrics-backend/internal/usecase/export"
	"github.com/simaogato/pemetrics-backend/internal/usecase/metrics"
)

// Output formats accepted by --format
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

// amountFormatter renders decimal amounts in a currency's display format
type amountFormatter struct {
	cur money.Currency
}

func newAmountFormatter(code string) (amountFormatter, error) {
	cur := money.GetCurrency(code)
	if cur == nil {
		return amountFormatter{}, fmt.Errorf("unknown currency %q", code)
	}
	return amountFormatter{cur: *cur}, nil
}

// Format rounds to the currency's minor unit
func (f amountFormatter) Format(d decimal.Decimal) string {
	minor := d.Shift(int32(f.cur.Fraction)).Round(0)
	return f.cur.Formatter().Format(minor.IntPart())
}

// render writes the report in the requested format
func render(w io.Writer, report *dashboard.Report, format string, amounts amountFormatter) error {
	switch format {
	case FormatTable:
		renderTable(w, report, amounts)
		return nil
	case FormatCSV:
		return export.WriteCSV(w, report.Records)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rest.NewReportResponse(report))
	}
	return fmt.Errorf("unknown format %q: expected table, csv or json", format)
}

func renderTable(w io.Writer, report *dashboard.Report, amounts amountFormatter) {
	fmt.Fprintf(w, "As of %s\n\n", report.AsOf.Format(domain.DateLayout))

	summary := tablewriter.NewWriter(w)
	summary.SetHeader([]string{"Scope", "Count", "Cost", "Fair Value", "MOIC", "ROI", "DPI", "TVPI", "IRR"})
	summary.Append(summaryRow("Portfolio", report.Portfolio, amounts))
	for _, fund := range report.Funds {
		summary.Append(summaryRow(fund.Fund, fund.PortfolioMetrics, amounts))
	}
	summary.Render()

	if len(report.TopByMOIC) > 0 {
		fmt.Fprintln(w)
		top := tablewriter.NewWriter(w)
		top.SetHeader([]string{"Investment", "Fund", "Date", "Status", "Cost", "Fair Value", "MOIC", "Ann. ROI"})
		for _, m := range report.TopByMOIC {
			top.Append(recordRow(m, amounts))
		}
		top.Render()
	}

	if report.Normalization != nil && len(report.Normalization.Rejected) > 0 {
		fmt.Fprintf(w, "\n%d row(s) rejected:\n", len(report.Normalization.Rejected))
		for _, reason := range report.Normalization.Errors() {
			fmt.Fprintf(w, "  %s\n", reason)
		}
	}
}

func summaryRow(scope string, p metrics.PortfolioMetrics, amounts amountFormatter) []string {
	irr := p.IRR.Format(4)
	if !p.IRR.Defined {
		irr = p.IRRStatus
	}
	return []string{
		scope,
		strconv.Itoa(p.Count),
		amounts.Format(p.TotalCost),
		amounts.Format(p.TotalFairValue),
		p.MOIC.Format(2),
		p.ROI.Format(4),
		p.DPI.Format(2),
		p.TVPI.Format(2),
		irr,
	}
}

func recordRow(m metrics.RecordMetrics, amounts amountFormatter) []string {
	return []string{
		m.Record.Name,
		m.Record.Fund,
		m.Record.Date.Format(domain.DateLayout),
		string(m.Record.Status),
		amounts.Format(m.Record.Cost),
		amounts.Format(m.Record.FairValue),
		m.MOIC.Format(2),
		m.AnnualizedROI.Format(4),
	}
}
