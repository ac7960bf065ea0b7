package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/samber/mo"

	"github.com/etflens/etflens/internal/domain"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{"1234.56", "USD", "$1,234.56"},
		{"1234.565", "USD", "$1,234.57"},
		{"0", "USD", "$0.00"},
		{"-15.5", "usd", "-$15.50"},
	}

	for _, tt := range tests {
		t.Run(tt.amount+tt.currency, func(t *testing.T) {
			if got := FormatMoney(d(tt.amount), tt.currency); got != tt.want {
				t.Errorf("FormatMoney = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatMoneyZeroFractionCurrency(t *testing.T) {
	got := FormatMoney(d("1200000.4"), "KRW")
	if !strings.Contains(got, "1,200,000") || strings.Contains(got, ".") {
		t.Errorf("FormatMoney = %q, want whole won", got)
	}
}

func TestFormatPercent(t *testing.T) {
	tests := map[string]string{
		"0.2":     "20.00%",
		"0.03125": "3.13%",
		"0":       "0.00%",
		"-0.05":   "-5.00%",
	}
	for in, want := range tests {
		if got := FormatPercent(d(in)); got != want {
			t.Errorf("FormatPercent(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSummary(&buf, testOverview().Summary, "USD"); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"$1,400.00", "$1,600.00", "14.29%", "Skipped records", "VXUS"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteAllocationAndCalendar(t *testing.T) {
	ov := testOverview()
	var buf bytes.Buffer

	if err := WriteAllocation(&buf, ov.Sectors); err != nil {
		t.Fatalf("WriteAllocation: %v", err)
	}
	if err := WriteCalendar(&buf, ov.Calendar, "USD"); err != nil {
		t.Fatalf("WriteCalendar: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"Dividend", "75.00%", "2025-03-01", "SCHD", "$0.30"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteRanking(t *testing.T) {
	var buf bytes.Buffer
	ranking := []domain.ETFRanking{
		{Ticker: "JEPQ", Name: "JPMorgan Nasdaq Premium", ReturnValue: d("0.12"), DividendYield: mo.Some(d("0.095"))},
		{Ticker: "VXUS", Name: "Vanguard Total Intl", ReturnValue: d("-0.01")},
	}
	if err := WriteRanking(&buf, ranking); err != nil {
		t.Fatalf("WriteRanking: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	if !strings.Contains(lines[1], "12.00%") || !strings.Contains(lines[1], "9.50%") {
		t.Errorf("first line = %q", lines[1])
	}
	if !strings.HasSuffix(strings.TrimSpace(lines[2]), "-") {
		t.Errorf("missing yield should render as '-': %q", lines[2])
	}
}
