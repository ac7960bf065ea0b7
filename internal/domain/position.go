package domain

import (
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
)

// Position is one user's holding of one ETF with its accumulated cost basis.
type Position struct {
	ID            int64           `json:"id"`
	UserID        string          `json:"user_id"`
	ETFID         int64           `json:"etf_id"`
	Shares        decimal.Decimal `json:"shares"`
	AvgPrice      decimal.Decimal `json:"avg_price"`
	TotalInvested decimal.Decimal `json:"total_invested"`
}

// PositionWithETF is a position enriched with the current state of its fund.
// It is always derived from the records it joins and never stored.
type PositionWithETF struct {
	Position
	Ticker        string                     `json:"ticker"`
	Name          string                     `json:"name"`
	CurrentPrice  decimal.Decimal            `json:"current_price"`
	DividendYield mo.Option[decimal.Decimal] `json:"dividend_yield"`
	CurrentValue  decimal.Decimal            `json:"current_value"`
	Profit        decimal.Decimal            `json:"profit"`
	ProfitRate    decimal.Decimal            `json:"profit_rate"`
}
