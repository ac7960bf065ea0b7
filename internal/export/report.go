package export

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/etflens/etflens/internal/domain"
	"github.com/etflens/etflens/internal/portfolio"
)

// Sheet names of an exported report, in output order.
const (
	SheetSummary    = "Summary"
	SheetPositions  = "Positions"
	SheetAllocation = "Allocation"
	SheetDividends  = "Dividends"
)

// Table is one sheet of a report. Cells hold strings, float64 or nil.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Report is the tabular rendering of a user's portfolio.
type Report struct {
	UserID  string
	AsOf    time.Time
	Summary domain.PortfolioSummary
	Skipped int
	Tables  []Table
}

// BuildReport renders the portfolio views of one user into sheet tables.
func BuildReport(
	summary portfolio.SummaryResult,
	positions portfolio.PositionsResult,
	sectors, regions portfolio.AllocationResult,
	calendar portfolio.CalendarResult,
	asOf time.Time,
) Report {
	skipped := summary.Diagnostics.Count() + positions.Diagnostics.Count() +
		sectors.Diagnostics.Count() + regions.Diagnostics.Count() + calendar.Diagnostics.Count()

	return Report{
		UserID:  summary.UserID,
		AsOf:    asOf,
		Summary: summary.Summary,
		Skipped: skipped,
		Tables: []Table{
			summaryTable(summary, asOf),
			positionsTable(positions.Positions),
			allocationTable(sectors, regions),
			dividendsTable(calendar.Items),
		},
	}
}

// ReportFromOverview builds a report from a single consistent overview.
func ReportFromOverview(ov portfolio.Overview) Report {
	return BuildReport(ov.Summary, ov.Positions, ov.Sectors, ov.Regions, ov.Calendar, ov.AsOf)
}

// Table returns the table with the given sheet name.
func (r Report) Table(name string) (Table, bool) {
	return lo.Find(r.Tables, func(t Table) bool { return t.Name == name })
}

func summaryTable(s portfolio.SummaryResult, asOf time.Time) Table {
	sum := s.Summary
	rows := [][]any{
		{"User", s.UserID},
		{"As of", asOf.UTC().Format("2006-01-02 15:04")},
		{"Total invested", toFloat(sum.TotalInvested)},
		{"Total value", toFloat(sum.TotalValue)},
		{"Total profit", toFloat(sum.TotalProfit)},
		{"Profit rate", toFloat(sum.ProfitRate)},
		{"Unrealized profit", toFloat(sum.UnrealizedProfit)},
		{"Monthly dividend", toFloat(sum.MonthlyDividend)},
		{"Skipped records", float64(s.Diagnostics.Count())},
	}
	if len(s.StaleTickers) > 0 {
		rows = append(rows, []any{"Stale prices", joinTickers(s.StaleTickers)})
	}
	return Table{Name: SheetSummary, Header: []string{"Metric", "Value"}, Rows: rows}
}

func positionsTable(positions []domain.PositionWithETF) Table {
	return Table{
		Name: SheetPositions,
		Header: []string{
			"Ticker", "Name", "Shares", "Avg price", "Invested",
			"Price", "Value", "Profit", "Profit rate", "Dividend yield",
		},
		Rows: lo.Map(positions, func(p domain.PositionWithETF, _ int) []any {
			return []any{
				p.Ticker, p.Name,
				toFloat(p.Shares), toFloat(p.AvgPrice), toFloat(p.TotalInvested),
				toFloat(p.CurrentPrice), toFloat(p.CurrentValue),
				toFloat(p.Profit), toFloat(p.ProfitRate),
				optFloat(p.DividendYield.ToPointer()),
			}
		}),
	}
}

func allocationTable(allocations ...portfolio.AllocationResult) Table {
	var rows [][]any
	for _, a := range allocations {
		for _, share := range a.Allocation.Shares() {
			rows = append(rows, []any{string(a.Dimension), share.Category, toFloat(share.Fraction)})
		}
	}
	return Table{Name: SheetAllocation, Header: []string{"Dimension", "Category", "Fraction"}, Rows: rows}
}

func dividendsTable(items []domain.DividendCalendarItem) Table {
	return Table{
		Name:   SheetDividends,
		Header: []string{"Ex-dividend date", "Payment date", "Ticker", "Name", "Per share", "Frequency", "Dividend yield"},
		Rows: lo.Map(items, func(item domain.DividendCalendarItem, _ int) []any {
			return []any{
				item.ExDividendDate.String(), item.PaymentDate.String(),
				item.Ticker, item.Name,
				toFloat(item.DividendPerShare), string(item.Frequency),
				optFloat(item.DividendYield.ToPointer()),
			}
		}),
	}
}

func joinTickers(tickers []string) string {
	return lo.Reduce(tickers, func(acc, t string, i int) string {
		if i == 0 {
			return t
		}
		return acc + ", " + t
	}, "")
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func optFloat(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	f, _ := d.Float64()
	return f
}
