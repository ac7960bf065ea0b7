package domain

import (
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
)

// Frequency is a descriptive payout cadence label. It does not drive scheduling.
type Frequency string

const (
	FrequencyMonthly    Frequency = "monthly"
	FrequencyQuarterly  Frequency = "quarterly"
	FrequencySemiannual Frequency = "semiannual"
	FrequencyAnnual     Frequency = "annual"
)

// Dividend is a scheduled or paid distribution of one ETF.
type Dividend struct {
	ID               int64           `json:"id"`
	ETFID            int64           `json:"etf_id"`
	ExDividendDate   Date            `json:"ex_dividend_date"`
	PaymentDate      Date            `json:"payment_date"`
	DividendPerShare decimal.Decimal `json:"dividend_per_share"`
	Frequency        Frequency       `json:"frequency"`
}

// DividendCalendarItem is a dividend joined with its fund for display.
type DividendCalendarItem struct {
	ID               int64                      `json:"id"`
	ETFID            int64                      `json:"etf_id"`
	Ticker           string                     `json:"ticker"`
	Name             string                     `json:"name"`
	ExDividendDate   Date                       `json:"ex_dividend_date"`
	PaymentDate      Date                       `json:"payment_date"`
	DividendPerShare decimal.Decimal            `json:"dividend_per_share"`
	Frequency        Frequency                  `json:"frequency"`
	DividendYield    mo.Option[decimal.Decimal] `json:"dividend_yield"`
}
