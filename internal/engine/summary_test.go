package engine

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/etflens/etflens/internal/domain"
)

func TestComputeSummarySinglePosition(t *testing.T) {
	catalog := NewCatalog([]domain.ETF{testETF(t, 1, "A", "120", "", "Income", "US")})
	positions := []domain.Position{testPosition(t, 1, 1, "10", "100")}

	s, diag := ComputeSummary(positions, catalog)

	if diag.Count() != 0 {
		t.Fatalf("unexpected skipped records: %v", diag.Skipped)
	}
	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"total_invested", s.TotalInvested, "1000"},
		{"total_value", s.TotalValue, "1200"},
		{"total_profit", s.TotalProfit, "200"},
		{"profit_rate", s.ProfitRate, "0.2"},
		{"unrealized_profit", s.UnrealizedProfit, "200"},
		{"monthly_dividend", s.MonthlyDividend, "0"},
	}
	for _, c := range checks {
		if !c.got.Equal(dec(t, c.want)) {
			t.Errorf("%s = %s, want %s", c.name, c.got, c.want)
		}
	}
}

func TestComputeSummaryMonthlyDividend(t *testing.T) {
	catalog := NewCatalog([]domain.ETF{
		testETF(t, 1, "JEPQ", "58000", "0.102", "Income", "US"),
		testETF(t, 2, "ZERO", "1000", "0", "Growth", "US"),
		testETF(t, 3, "UNKN", "500", "", "Growth", "US"),
	})
	positions := []domain.Position{
		testPosition(t, 1, 1, "10", "50000"),
		testPosition(t, 2, 2, "5", "1000"),
		testPosition(t, 3, 3, "4", "500"),
	}

	s, _ := ComputeSummary(positions, catalog)

	// 10 × 0.102 × 58000 / 12 = 4930
	if !s.MonthlyDividend.Equal(dec(t, "4930")) {
		t.Errorf("monthly_dividend = %s, want 4930", s.MonthlyDividend)
	}
}

func TestComputeSummaryMissingReference(t *testing.T) {
	catalog := NewCatalog([]domain.ETF{testETF(t, 1, "A", "120", "", "Income", "US")})
	positions := []domain.Position{
		testPosition(t, 1, 1, "10", "100"),
		testPosition(t, 2, 999, "3", "50"),
	}

	s, diag := ComputeSummary(positions, catalog)

	if diag.Count() != 1 {
		t.Fatalf("skipped = %d, want 1", diag.Count())
	}
	if got := diag.IDs(domain.RecordPosition); !slices.Equal(got, []int64{2}) {
		t.Errorf("skipped ids = %v, want [2]", got)
	}
	if !errors.Is(diag.Skipped[0].Err, domain.ErrMissingReference) {
		t.Errorf("skip error = %v, want ErrMissingReference", diag.Skipped[0].Err)
	}
	var mre *domain.MissingReferenceError
	if !errors.As(diag.Err(), &mre) || mre.ETFID != 999 {
		t.Errorf("Err() = %v, want MissingReferenceError for etf 999", diag.Err())
	}
	if !s.TotalInvested.Equal(dec(t, "1000")) || !s.TotalValue.Equal(dec(t, "1200")) {
		t.Errorf("totals = %s/%s, want 1000/1200 from the valid position only", s.TotalInvested, s.TotalValue)
	}
}

func TestComputeSummaryInvalidInput(t *testing.T) {
	bad := testETF(t, 2, "BAD", "-5", "", "Income", "US")
	catalog := NewCatalog([]domain.ETF{testETF(t, 1, "A", "120", "", "Income", "US"), bad})

	negative := testPosition(t, 2, 1, "1", "100")
	negative.Shares = dec(t, "-1")
	positions := []domain.Position{
		testPosition(t, 1, 1, "10", "100"),
		negative,
		testPosition(t, 3, 2, "1", "5"),
	}

	s, diag := ComputeSummary(positions, catalog)

	if got := diag.IDs(domain.RecordPosition); !slices.Equal(got, []int64{2, 3}) {
		t.Fatalf("skipped ids = %v, want [2 3]", got)
	}
	for _, sk := range diag.Skipped {
		if !errors.Is(sk.Err, domain.ErrInvalidInput) {
			t.Errorf("skip %d error = %v, want ErrInvalidInput", sk.ID, sk.Err)
		}
	}
	if !s.TotalValue.Equal(dec(t, "1200")) {
		t.Errorf("total_value = %s, want 1200", s.TotalValue)
	}
}

func TestComputeSummaryEmptyAndZeroInvested(t *testing.T) {
	catalog := NewCatalog([]domain.ETF{testETF(t, 1, "A", "120", "0.05", "Income", "US")})

	tests := []struct {
		name      string
		positions []domain.Position
	}{
		{"no positions", nil},
		{"gifted shares", []domain.Position{{ID: 1, ETFID: 1, Shares: dec(t, "3")}}},
		{"zero shares", []domain.Position{testPosition(t, 1, 1, "0", "0")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, diag := ComputeSummary(tt.positions, catalog)
			if diag.Count() != 0 {
				t.Fatalf("unexpected skipped: %v", diag.Skipped)
			}
			if !s.ProfitRate.IsZero() {
				t.Errorf("profit_rate = %s, want 0 when nothing invested", s.ProfitRate)
			}
			if !s.TotalValue.Sub(s.TotalInvested).Equal(s.TotalProfit) {
				t.Errorf("value - invested != profit")
			}
		})
	}
}

func TestComputeSummaryProfitIdentity(t *testing.T) {
	catalog := NewCatalog([]domain.ETF{
		testETF(t, 1, "A", "58000.33", "0.102", "Income", "US"),
		testETF(t, 2, "B", "21000.1", "0.114", "Technology", "US"),
		testETF(t, 3, "C", "0.0001", "", "Income", "Global"),
	})
	positions := []domain.Position{
		testPosition(t, 1, 1, "10.5", "82000.123"),
		testPosition(t, 2, 2, "15", "60000"),
		testPosition(t, 3, 3, "0.333", "20500.7"),
	}

	s, _ := ComputeSummary(positions, catalog)

	if !s.TotalValue.Sub(s.TotalInvested).Equal(s.TotalProfit) {
		t.Errorf("total_value - total_invested = %s, total_profit = %s", s.TotalValue.Sub(s.TotalInvested), s.TotalProfit)
	}
	if !s.UnrealizedProfit.Equal(s.TotalProfit) {
		t.Errorf("unrealized_profit = %s, want total_profit %s", s.UnrealizedProfit, s.TotalProfit)
	}
}

func TestComputeSummaryIdempotent(t *testing.T) {
	catalog := NewCatalog([]domain.ETF{
		testETF(t, 1, "A", "120", "0.05", "Income", "US"),
		testETF(t, 2, "B", "80", "0.03", "Growth", "Global"),
	})
	positions := []domain.Position{
		testPosition(t, 1, 1, "10", "100"),
		testPosition(t, 2, 2, "7", "90"),
		testPosition(t, 3, 404, "1", "1"),
	}

	encode := func() string {
		s, diag := ComputeSummary(positions, catalog)
		data, err := json.Marshal(struct {
			Summary     domain.PortfolioSummary `json:"summary"`
			Diagnostics Diagnostics             `json:"diagnostics"`
		}{s, diag})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return string(data)
	}

	if first, second := encode(), encode(); first != second {
		t.Errorf("outputs differ:\n%s\n%s", first, second)
	}
}
