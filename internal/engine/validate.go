package engine

import (
	"github.com/shopspring/decimal"

	"github.com/etflens/etflens/internal/domain"
)

func validatePosition(p domain.Position) error {
	checks := []struct {
		field string
		value decimal.Decimal
	}{
		{"shares", p.Shares},
		{"avg_price", p.AvgPrice},
		{"total_invested", p.TotalInvested},
	}
	for _, c := range checks {
		if c.value.IsNegative() {
			return &domain.InvalidInputError{Kind: domain.RecordPosition, RecordID: p.ID, Field: c.field, Reason: "negative value " + c.value.String()}
		}
	}
	return nil
}

// validatePricedETF checks the fields used to value a position in e.
func validatePricedETF(positionID int64, e domain.ETF) error {
	if e.CurrentPrice.IsNegative() {
		return &domain.InvalidInputError{Kind: domain.RecordPosition, RecordID: positionID, Field: "etf.current_price", Reason: "negative price " + e.CurrentPrice.String() + " for " + e.Ticker}
	}
	if y, ok := e.DividendYield.Get(); ok && y.IsNegative() {
		return &domain.InvalidInputError{Kind: domain.RecordPosition, RecordID: positionID, Field: "etf.dividend_yield", Reason: "negative yield " + y.String() + " for " + e.Ticker}
	}
	return nil
}

func validateDividend(d domain.Dividend) error {
	invalid := func(field, reason string) error {
		return &domain.InvalidInputError{Kind: domain.RecordDividend, RecordID: d.ID, Field: field, Reason: reason}
	}
	switch {
	case d.ExDividendDate.IsZero():
		return invalid("ex_dividend_date", "missing")
	case d.PaymentDate.IsZero():
		return invalid("payment_date", "missing")
	case d.PaymentDate.Before(d.ExDividendDate):
		return invalid("payment_date", d.PaymentDate.String()+" is before ex-dividend date "+d.ExDividendDate.String())
	case d.DividendPerShare.IsNegative():
		return invalid("dividend_per_share", "negative value "+d.DividendPerShare.String())
	}
	return nil
}
