package domain

import (
	"time"

	"github.com/samber/mo"
	"github.com/shopspring/decimal"
)

// Holding is a named constituent of an ETF basket. Weight is a fraction of the fund.
type Holding struct {
	Name   string          `json:"name"`
	Weight decimal.Decimal `json:"weight"`
}

// Returns holds the trailing returns of a fund as fractions.
type Returns struct {
	Day   decimal.Decimal `json:"return_1d"`
	Week  decimal.Decimal `json:"return_1w"`
	Month decimal.Decimal `json:"return_1m"`
	Year  decimal.Decimal `json:"return_1y"`
}

// ETF is a fund in the catalog. Ticker is unique and stable; ID is the storage key
// that positions and dividends refer to.
type ETF struct {
	ID            int64                      `json:"id"`
	Ticker        string                     `json:"ticker"`
	Name          string                     `json:"name"`
	CurrentPrice  decimal.Decimal            `json:"current_price"`
	PreviousPrice decimal.Decimal            `json:"previous_price"`
	DividendYield mo.Option[decimal.Decimal] `json:"dividend_yield"`
	ExpenseRatio  decimal.Decimal            `json:"expense_ratio"`
	AUM           decimal.Decimal            `json:"aum"`
	Volume        int64                      `json:"volume"`
	Sector        string                     `json:"sector"`
	Region        string                     `json:"region"`
	Returns
	InvestmentStrategy mo.Option[string]    `json:"investment_strategy"`
	TopHoldings        mo.Option[[]Holding] `json:"top_holdings"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

// Return selects the trailing return for the given horizon.
func (e ETF) Return(h ReturnHorizon) (decimal.Decimal, bool) {
	switch h {
	case Horizon1D:
		return e.Returns.Day, true
	case Horizon1W:
		return e.Returns.Week, true
	case Horizon1M:
		return e.Returns.Month, true
	case Horizon1Y:
		return e.Returns.Year, true
	}
	return decimal.Zero, false
}

// Category returns the sector or region of the fund.
func (e ETF) Category(dim Dimension) (string, bool) {
	switch dim {
	case DimensionSector:
		return e.Sector, true
	case DimensionRegion:
		return e.Region, true
	}
	return "", false
}

// DailyChange is the price move since the previous close as a fraction.
// Zero when the previous price is unknown.
func (e ETF) DailyChange() decimal.Decimal {
	return SafeDiv(e.CurrentPrice.Sub(e.PreviousPrice), e.PreviousPrice)
}

// YieldOrZero returns the dividend yield, treating an unknown yield as zero income.
func (e ETF) YieldOrZero() decimal.Decimal {
	return e.DividendYield.OrElse(decimal.Zero)
}
