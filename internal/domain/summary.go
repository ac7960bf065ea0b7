package domain

import (
	"bytes"
	"cmp"
	"encoding/json"
	"slices"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
)

// PortfolioSummary aggregates all valid positions of one user.
type PortfolioSummary struct {
	TotalInvested    decimal.Decimal `json:"total_invested"`
	TotalValue       decimal.Decimal `json:"total_value"`
	TotalProfit      decimal.Decimal `json:"total_profit"`
	ProfitRate       decimal.Decimal `json:"profit_rate"`
	UnrealizedProfit decimal.Decimal `json:"unrealized_profit"`
	MonthlyDividend  decimal.Decimal `json:"monthly_dividend"`
}

// ETFRanking is a display projection of a fund ordered by one return horizon.
type ETFRanking struct {
	Ticker        string                     `json:"ticker"`
	Name          string                     `json:"name"`
	ReturnValue   decimal.Decimal            `json:"return_value"`
	DividendYield mo.Option[decimal.Decimal] `json:"dividend_yield"`
}

// AllocationShare is the fraction of portfolio value held in one category.
type AllocationShare struct {
	Category string          `json:"category"`
	Fraction decimal.Decimal `json:"fraction"`
}

// Allocation maps categories to value fractions. Entries are kept sorted by
// category so iteration and encoding are deterministic.
type Allocation struct {
	shares []AllocationShare
}

// SectorAllocation and RegionAllocation are allocations along a fixed dimension.
type (
	SectorAllocation = Allocation
	RegionAllocation = Allocation
)

// NewAllocation builds an allocation from a category→fraction map.
func NewAllocation(fractions map[string]decimal.Decimal) Allocation {
	shares := lo.MapToSlice(fractions, func(category string, f decimal.Decimal) AllocationShare {
		return AllocationShare{Category: category, Fraction: f}
	})
	slices.SortFunc(shares, func(a, b AllocationShare) int {
		return cmp.Compare(a.Category, b.Category)
	})
	return Allocation{shares: shares}
}

// Get returns the fraction for a category.
func (a Allocation) Get(category string) (decimal.Decimal, bool) {
	i, ok := slices.BinarySearchFunc(a.shares, category, func(s AllocationShare, c string) int {
		return cmp.Compare(s.Category, c)
	})
	if !ok {
		return decimal.Zero, false
	}
	return a.shares[i].Fraction, true
}

// Categories returns the sorted category names.
func (a Allocation) Categories() []string {
	return lo.Map(a.shares, func(s AllocationShare, _ int) string { return s.Category })
}

// Shares returns a copy of the sorted entries.
func (a Allocation) Shares() []AllocationShare { return slices.Clone(a.shares) }

func (a Allocation) Len() int { return len(a.shares) }

// Total sums all fractions. It is 1 (within rounding) for any non-empty allocation.
func (a Allocation) Total() decimal.Decimal {
	return lo.Reduce(a.shares, func(acc decimal.Decimal, s AllocationShare, _ int) decimal.Decimal {
		return acc.Add(s.Fraction)
	}, decimal.Zero)
}

// MarshalJSON encodes the allocation as a JSON object in category order.
func (a Allocation) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range a.shares {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(s.Category)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.Fraction)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (a *Allocation) UnmarshalJSON(b []byte) error {
	var m map[string]decimal.Decimal
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*a = NewAllocation(m)
	return nil
}
