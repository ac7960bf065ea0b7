package export

import (
	"time"

	"github.com/samber/mo"
	"github.com/shopspring/decimal"

	"github.com/etflens/etflens/internal/domain"
	"github.com/etflens/etflens/internal/engine"
	"github.com/etflens/etflens/internal/portfolio"
)

var testAsOf = time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// testOverview is built by the real service over in-memory sources so every
// result carries real diagnostics.
func testOverview() portfolio.Overview {
	catalog := engine.NewCatalog([]domain.ETF{
		{ID: 1, Ticker: "SCHD", Name: "Schwab US Dividend", CurrentPrice: d("120"), DividendYield: mo.Some(d("0.03")), Sector: "Dividend", Region: "US"},
		{ID: 2, Ticker: "VXUS", Name: "Vanguard Total Intl", CurrentPrice: d("50"), Sector: "Blend", Region: "Global"},
	})
	positions := []domain.Position{
		{ID: 1, UserID: "default", ETFID: 1, Shares: d("10"), AvgPrice: d("100"), TotalInvested: d("1000")},
		{ID: 2, UserID: "default", ETFID: 2, Shares: d("8"), AvgPrice: d("50"), TotalInvested: d("400")},
		{ID: 3, UserID: "default", ETFID: 999, Shares: d("1"), AvgPrice: d("1"), TotalInvested: d("1")},
	}
	dividends := []domain.Dividend{
		{ID: 1, ETFID: 1, ExDividendDate: domain.MustParseDate("2025-03-01"), PaymentDate: domain.MustParseDate("2025-03-15"), DividendPerShare: d("0.3"), Frequency: domain.FrequencyQuarterly},
	}

	summary, sumDiag := engine.ComputeSummary(positions, catalog)
	joined, joinDiag := engine.JoinPositions(positions, catalog)
	sectors, secDiag, _ := engine.ComputeAllocation(positions, catalog, domain.DimensionSector)
	regions, regDiag, _ := engine.ComputeAllocation(positions, catalog, domain.DimensionRegion)
	items, calDiag := engine.BuildDividendCalendar(dividends, catalog, engine.CalendarFilter{Held: mo.Some(positions)})

	return portfolio.Overview{
		UserID:    "default",
		AsOf:      testAsOf,
		Summary:   portfolio.SummaryResult{UserID: "default", Summary: summary, Diagnostics: sumDiag, StaleTickers: []string{"VXUS"}},
		Positions: portfolio.PositionsResult{UserID: "default", Positions: joined, Diagnostics: joinDiag},
		Sectors:   portfolio.AllocationResult{UserID: "default", Dimension: domain.DimensionSector, Allocation: sectors, Diagnostics: secDiag},
		Regions:   portfolio.AllocationResult{UserID: "default", Dimension: domain.DimensionRegion, Allocation: regions, Diagnostics: regDiag},
		Calendar:  portfolio.CalendarResult{UserID: "default", Items: items, Diagnostics: calDiag},
	}
}
