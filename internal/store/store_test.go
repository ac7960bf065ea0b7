package store

import (
	"testing"

	"github.com/samber/mo"
	"github.com/shopspring/decimal"

	"github.com/etflens/etflens/internal/domain"
)

func TestOptionalDecimal(t *testing.T) {
	if optionalDecimal(decimal.NullDecimal{}).IsPresent() {
		t.Error("NULL yield should be absent")
	}

	zero := optionalDecimal(decimal.NullDecimal{Decimal: decimal.Zero, Valid: true})
	if v, ok := zero.Get(); !ok || !v.IsZero() {
		t.Errorf("known zero yield = %v, %v, want present 0", v, ok)
	}

	back := nullDecimal(mo.Some(decimal.RequireFromString("0.038")))
	if !back.Valid || !back.Decimal.Equal(decimal.RequireFromString("0.038")) {
		t.Errorf("nullDecimal = %+v", back)
	}
	if nullDecimal(mo.None[decimal.Decimal]()).Valid {
		t.Error("absent yield should encode as NULL")
	}
}

func TestHoldingsRoundTrip(t *testing.T) {
	none, err := decodeHoldings(nil)
	if err != nil || none.IsPresent() {
		t.Errorf("decodeHoldings(nil) = %v, %v, want absent", none, err)
	}

	raw, err := encodeHoldings(mo.Some([]domain.Holding{
		{Name: "Apple Inc.", Weight: decimal.RequireFromString("0.085")},
		{Name: "Microsoft Corp.", Weight: decimal.RequireFromString("0.072")},
	}))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := decodeHoldings(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	holdings, ok := got.Get()
	if !ok || len(holdings) != 2 || holdings[0].Name != "Apple Inc." {
		t.Errorf("holdings = %+v", holdings)
	}

	if raw, _ := encodeHoldings(mo.None[[]domain.Holding]()); raw != nil {
		t.Errorf("absent holdings encoded as %s, want NULL", raw)
	}

	if _, err := decodeHoldings([]byte(`{"not":"a list"}`)); err == nil {
		t.Error("expected error for malformed holdings")
	}
}
