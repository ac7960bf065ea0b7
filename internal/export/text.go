package export

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/etflens/etflens/internal/domain"
	"github.com/etflens/etflens/internal/portfolio"
)

// FormatMoney renders an amount in the currency's minor units with its symbol.
func FormatMoney(amount decimal.Decimal, currency string) string {
	// money.New never returns a nil currency, unknown codes get a plain format
	cur := money.New(0, strings.ToUpper(currency)).Currency()
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// FormatPercent renders a fraction as a percentage with two decimals.
func FormatPercent(fraction decimal.Decimal) string {
	return fraction.Shift(2).StringFixed(2) + "%"
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// WriteSummary prints a summary as aligned text.
func WriteSummary(w io.Writer, s portfolio.SummaryResult, currency string) error {
	tw := newTable(w)
	sum := s.Summary
	fmt.Fprintf(tw, "User\t%s\n", s.UserID)
	fmt.Fprintf(tw, "Total invested\t%s\n", FormatMoney(sum.TotalInvested, currency))
	fmt.Fprintf(tw, "Total value\t%s\n", FormatMoney(sum.TotalValue, currency))
	fmt.Fprintf(tw, "Total profit\t%s\n", FormatMoney(sum.TotalProfit, currency))
	fmt.Fprintf(tw, "Profit rate\t%s\n", FormatPercent(sum.ProfitRate))
	fmt.Fprintf(tw, "Monthly dividend\t%s\n", FormatMoney(sum.MonthlyDividend, currency))
	if n := s.Diagnostics.Count(); n > 0 {
		fmt.Fprintf(tw, "Skipped records\t%d\n", n)
	}
	if len(s.StaleTickers) > 0 {
		fmt.Fprintf(tw, "Stale prices\t%s\n", strings.Join(s.StaleTickers, ", "))
	}
	return tw.Flush()
}

// WriteAllocation prints an allocation as aligned text.
func WriteAllocation(w io.Writer, a portfolio.AllocationResult) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "%s\tShare\n", strings.ToUpper(string(a.Dimension)))
	for _, share := range a.Allocation.Shares() {
		fmt.Fprintf(tw, "%s\t%s\n", share.Category, FormatPercent(share.Fraction))
	}
	return tw.Flush()
}

// WriteCalendar prints a dividend calendar as aligned text.
func WriteCalendar(w io.Writer, c portfolio.CalendarResult, currency string) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "EX-DATE\tPAYMENT\tTICKER\tPER SHARE\tFREQUENCY")
	for _, item := range c.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			item.ExDividendDate, item.PaymentDate, item.Ticker,
			FormatMoney(item.DividendPerShare, currency), item.Frequency)
	}
	return tw.Flush()
}

// WriteRanking prints a ranking as aligned text.
func WriteRanking(w io.Writer, ranking []domain.ETFRanking) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "#\tTICKER\tNAME\tRETURN\tYIELD")
	for i, r := range ranking {
		yield := "-"
		if y, ok := r.DividendYield.Get(); ok {
			yield = FormatPercent(y)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, r.Ticker, r.Name, FormatPercent(r.ReturnValue), yield)
	}
	return tw.Flush()
}
