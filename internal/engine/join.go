package engine

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"github.com/etflens/etflens/internal/domain"
)

// JoinPositions enriches each valid position with its fund's current state and
// per-position profit, ordered by ticker then position id.
func JoinPositions(positions []domain.Position, catalog Catalog) ([]domain.PositionWithETF, Diagnostics) {
	resolved, diag := resolvePositions(positions, catalog)

	joined := lo.Map(resolved, func(vp valuedPosition, _ int) domain.PositionWithETF {
		profit := vp.value.Sub(vp.position.TotalInvested)
		return domain.PositionWithETF{
			Position:      vp.position,
			Ticker:        vp.etf.Ticker,
			Name:          vp.etf.Name,
			CurrentPrice:  vp.etf.CurrentPrice,
			DividendYield: vp.etf.DividendYield,
			CurrentValue:  vp.value,
			Profit:        profit,
			ProfitRate:    domain.SafeDiv(profit, vp.position.TotalInvested),
		}
	})

	slices.SortFunc(joined, func(a, b domain.PositionWithETF) int {
		return cmp.Or(cmp.Compare(a.Ticker, b.Ticker), cmp.Compare(a.ID, b.ID))
	})

	return joined, diag
}
