package engine

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/etflens/etflens/internal/domain"
)

// ComputeAllocation breaks down portfolio value by the sector or region of each
// held fund. Fractions sum to one; a portfolio worth nothing yields an empty
// allocation. Categories whose positions are all worth zero are omitted.
func ComputeAllocation(positions []domain.Position, catalog Catalog, dim domain.Dimension) (domain.Allocation, Diagnostics, error) {
	if _, err := domain.ParseDimension(string(dim)); err != nil {
		return domain.Allocation{}, Diagnostics{}, err
	}

	resolved, diag := resolvePositions(positions, catalog)

	categorized := lo.Filter(resolved, func(vp valuedPosition, _ int) bool {
		category, _ := vp.etf.Category(dim)
		if category == "" {
			diag.skip(domain.RecordPosition, vp.position.ID, vp.position.ETFID, &domain.InvalidInputError{
				Kind:     domain.RecordPosition,
				RecordID: vp.position.ID,
				Field:    "etf." + string(dim),
				Reason:   "empty " + string(dim) + " for " + vp.etf.Ticker,
			})
			return false
		}
		return true
	})

	byCategory := make(map[string]decimal.Decimal)
	for _, vp := range categorized {
		category, _ := vp.etf.Category(dim)
		byCategory[category] = byCategory[category].Add(vp.value)
	}

	totalValue := lo.Reduce(lo.Values(byCategory), func(acc decimal.Decimal, v decimal.Decimal, _ int) decimal.Decimal {
		return acc.Add(v)
	}, decimal.Zero)
	if totalValue.IsZero() {
		return domain.Allocation{}, diag, nil
	}

	fractions := lo.MapValues(lo.PickBy(byCategory, func(_ string, v decimal.Decimal) bool {
		return v.IsPositive()
	}), func(v decimal.Decimal, _ string) decimal.Decimal {
		return v.Div(totalValue)
	})

	return domain.NewAllocation(fractions), diag, nil
}
