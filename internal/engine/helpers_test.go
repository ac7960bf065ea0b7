package engine

import (
	"testing"

	"github.com/samber/mo"
	"github.com/shopspring/decimal"

	"github.com/etflens/etflens/internal/domain"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func testETF(t *testing.T, id int64, ticker, price, yield, sector, region string) domain.ETF {
	t.Helper()
	e := domain.ETF{
		ID:           id,
		Ticker:       ticker,
		Name:         ticker + " Fund",
		CurrentPrice: dec(t, price),
		Sector:       sector,
		Region:       region,
	}
	if yield != "" {
		e.DividendYield = mo.Some(dec(t, yield))
	}
	return e
}

func testPosition(t *testing.T, id, etfID int64, shares, avgPrice string) domain.Position {
	t.Helper()
	s, p := dec(t, shares), dec(t, avgPrice)
	return domain.Position{
		ID:            id,
		UserID:        "default",
		ETFID:         etfID,
		Shares:        s,
		AvgPrice:      p,
		TotalInvested: s.Mul(p),
	}
}

func testDividend(t *testing.T, id, etfID int64, exDate, payDate, amount string) domain.Dividend {
	t.Helper()
	return domain.Dividend{
		ID:               id,
		ETFID:            etfID,
		ExDividendDate:   domain.MustParseDate(exDate),
		PaymentDate:      domain.MustParseDate(payDate),
		DividendPerShare: dec(t, amount),
		Frequency:        domain.FrequencyMonthly,
	}
}
