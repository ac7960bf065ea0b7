package engine

import (
	"slices"

	"github.com/samber/lo"
	"github.com/samber/mo"

	"github.com/etflens/etflens/internal/domain"
)

// CalendarFilter narrows a dividend calendar. Absent options do not filter.
type CalendarFilter struct {
	// Held keeps only dividends of funds held with a positive share count.
	// A present but empty set of positions yields an empty calendar.
	Held mo.Option[[]domain.Position]
	// From and To bound the ex-dividend date, both inclusive.
	From mo.Option[domain.Date]
	To   mo.Option[domain.Date]
}

// BuildDividendCalendar joins dividends to their funds and orders them by
// ex-dividend date. Records sharing a date keep their input order.
func BuildDividendCalendar(dividends []domain.Dividend, catalog Catalog, filter CalendarFilter) ([]domain.DividendCalendarItem, Diagnostics) {
	var diag Diagnostics

	heldETFs, filterHeld := filter.Held.Get()
	held := lo.SliceToMap(lo.Filter(heldETFs, func(p domain.Position, _ int) bool {
		return p.Shares.IsPositive()
	}), func(p domain.Position) (int64, struct{}) {
		return p.ETFID, struct{}{}
	})

	items := make([]domain.DividendCalendarItem, 0, len(dividends))
	for _, d := range dividends {
		if filterHeld {
			if _, ok := held[d.ETFID]; !ok {
				continue
			}
		}
		if from, ok := filter.From.Get(); ok && d.ExDividendDate.Before(from) {
			continue
		}
		if to, ok := filter.To.Get(); ok && d.ExDividendDate.After(to) {
			continue
		}

		if err := validateDividend(d); err != nil {
			diag.skip(domain.RecordDividend, d.ID, d.ETFID, err)
			continue
		}
		etf, ok := catalog.Lookup(d.ETFID)
		if !ok {
			diag.skip(domain.RecordDividend, d.ID, d.ETFID, &domain.MissingReferenceError{Kind: domain.RecordDividend, RecordID: d.ID, ETFID: d.ETFID})
			continue
		}

		items = append(items, domain.DividendCalendarItem{
			ID:               d.ID,
			ETFID:            d.ETFID,
			Ticker:           etf.Ticker,
			Name:             etf.Name,
			ExDividendDate:   d.ExDividendDate,
			PaymentDate:      d.PaymentDate,
			DividendPerShare: d.DividendPerShare,
			Frequency:        d.Frequency,
			DividendYield:    etf.DividendYield,
		})
	}

	slices.SortStableFunc(items, func(a, b domain.DividendCalendarItem) int {
		return a.ExDividendDate.Compare(b.ExDividendDate)
	})

	return items, diag
}
