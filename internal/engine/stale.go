package engine

import (
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/etflens/etflens/internal/domain"
)

// StalePrices lists, sorted, the tickers whose price was last refreshed before
// asOf minus maxAge. Funds with no refresh time are treated as stale.
func StalePrices(catalog Catalog, asOf time.Time, maxAge time.Duration) []string {
	cutoff := asOf.Add(-maxAge)
	stale := lo.FilterMap(lo.Values(catalog.byID), func(e domain.ETF, _ int) (string, bool) {
		return e.Ticker, e.UpdatedAt.IsZero() || e.UpdatedAt.Before(cutoff)
	})
	slices.Sort(stale)
	return stale
}
