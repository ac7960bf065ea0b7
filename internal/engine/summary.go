package engine

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/etflens/etflens/internal/domain"
)

// ComputeSummary aggregates the positions of one user against the catalog.
// Orphaned or malformed positions are left out of every total and reported in
// the returned Diagnostics.
func ComputeSummary(positions []domain.Position, catalog Catalog) (domain.PortfolioSummary, Diagnostics) {
	resolved, diag := resolvePositions(positions, catalog)

	totalInvested := lo.Reduce(resolved, func(acc decimal.Decimal, vp valuedPosition, _ int) decimal.Decimal {
		return acc.Add(vp.position.TotalInvested)
	}, decimal.Zero)

	totalValue := lo.Reduce(resolved, func(acc decimal.Decimal, vp valuedPosition, _ int) decimal.Decimal {
		return acc.Add(vp.value)
	}, decimal.Zero)

	// shares × price × yield, summed before the single division by 12
	annualDividend := lo.Reduce(resolved, func(acc decimal.Decimal, vp valuedPosition, _ int) decimal.Decimal {
		return acc.Add(vp.value.Mul(vp.etf.YieldOrZero()))
	}, decimal.Zero)

	totalProfit := totalValue.Sub(totalInvested)

	profitRate := decimal.Zero
	if totalInvested.IsPositive() {
		profitRate = totalProfit.Div(totalInvested)
	}

	return domain.PortfolioSummary{
		TotalInvested:    totalInvested,
		TotalValue:       totalValue,
		TotalProfit:      totalProfit,
		ProfitRate:       profitRate,
		UnrealizedProfit: totalProfit,
		MonthlyDividend:  domain.MonthlyFromAnnual(annualDividend),
	}, diag
}
