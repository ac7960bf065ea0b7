// Package seed loads the sample catalog and a demo portfolio into the store.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"

	"github.com/etflens/etflens/internal/domain"
)

//go:embed catalog.json
var catalogJSON []byte

// DefaultUser owns the demo positions.
const DefaultUser = "default"

// sampleETF mirrors catalog.json. Yields, fees, returns and weights are percents.
type sampleETF struct {
	Ticker             string          `json:"ticker"`
	Name               string          `json:"name"`
	CurrentPrice       float64         `json:"current_price"`
	PreviousPrice      float64         `json:"previous_price"`
	DividendYield      *float64        `json:"dividend_yield"`
	ExpenseRatio       float64         `json:"expense_ratio"`
	AUM                float64         `json:"aum"`
	Volume             int64           `json:"volume"`
	Sector             string          `json:"sector"`
	Region             string          `json:"region"`
	Return1D           float64         `json:"return_1d"`
	Return1W           float64         `json:"return_1w"`
	Return1M           float64         `json:"return_1m"`
	Return1Y           float64         `json:"return_1y"`
	InvestmentStrategy *string         `json:"investment_strategy"`
	TopHoldings        []sampleHolding `json:"top_holdings"`
}

type sampleHolding struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// samplePositions are held in the first catalog funds, in catalog order.
var samplePositions = []struct {
	shares, avgPrice, invested int64
}{
	{10, 82000, 820000},
	{15, 60000, 900000},
	{50, 20500, 1025000},
	{8, 128000, 1024000},
	{20, 44000, 880000},
}

// dividendOffsets are the ex-dividend dates generated per held fund, in days
// from today. The i-th fund is shifted by a further 7·i days.
var dividendOffsets = []int{10, 40, 70}

const paymentLagDays = 14

var monthlyThreshold = decimal.RequireFromString("0.05")

// Catalog parses the embedded sample catalog.
func Catalog() ([]domain.ETF, error) {
	var samples []sampleETF
	if err := json.Unmarshal(catalogJSON, &samples); err != nil {
		return nil, fmt.Errorf("parsing sample catalog: %w", err)
	}

	etfs := make([]domain.ETF, 0, len(samples))
	for _, s := range samples {
		e, err := s.toETF()
		if err != nil {
			return nil, fmt.Errorf("sample %s: %w", s.Ticker, err)
		}
		etfs = append(etfs, e)
	}
	return etfs, nil
}

func (s sampleETF) toETF() (domain.ETF, error) {
	var errs []error
	money := func(field string, f float64) decimal.Decimal {
		d, err := domain.DecimalFromFloat(field, f)
		errs = append(errs, err)
		return d
	}
	pct := func(field string, f float64) decimal.Decimal {
		d, err := domain.FractionFromPercent(field, f)
		errs = append(errs, err)
		return d
	}

	e := domain.ETF{
		Ticker:        s.Ticker,
		Name:          s.Name,
		CurrentPrice:  money("current_price", s.CurrentPrice),
		PreviousPrice: money("previous_price", s.PreviousPrice),
		ExpenseRatio:  pct("expense_ratio", s.ExpenseRatio),
		AUM:           money("aum", s.AUM),
		Volume:        s.Volume,
		Sector:        s.Sector,
		Region:        s.Region,
		Returns: domain.Returns{
			Day:   pct("return_1d", s.Return1D),
			Week:  pct("return_1w", s.Return1W),
			Month: pct("return_1m", s.Return1M),
			Year:  pct("return_1y", s.Return1Y),
		},
		InvestmentStrategy: mo.PointerToOption(s.InvestmentStrategy),
	}
	if s.DividendYield != nil {
		e.DividendYield = mo.Some(pct("dividend_yield", *s.DividendYield))
	}
	if len(s.TopHoldings) > 0 {
		e.TopHoldings = mo.Some(lo.Map(s.TopHoldings, func(h sampleHolding, _ int) domain.Holding {
			return domain.Holding{Name: h.Name, Weight: pct("weight", h.Weight)}
		}))
	}

	if err, ok := lo.Find(errs, func(err error) bool { return err != nil }); ok {
		return domain.ETF{}, err
	}
	return e, nil
}

// Positions builds the demo positions for userID. held must carry stored ids.
func Positions(userID string, held []domain.ETF) []domain.Position {
	n := min(len(held), len(samplePositions))
	return lo.Map(held[:n], func(e domain.ETF, i int) domain.Position {
		p := samplePositions[i]
		return domain.Position{
			UserID:        userID,
			ETFID:         e.ID,
			Shares:        decimal.NewFromInt(p.shares),
			AvgPrice:      decimal.NewFromInt(p.avgPrice),
			TotalInvested: decimal.NewFromInt(p.invested),
		}
	})
}

// Dividends schedules upcoming payouts for each held fund. The amount per share
// is one twelfth of the annual yield on the current price.
func Dividends(held []domain.ETF, today domain.Date) []domain.Dividend {
	var out []domain.Dividend
	for i, e := range held {
		yield := e.YieldOrZero()
		perShare := domain.MonthlyFromAnnual(e.CurrentPrice.Mul(yield)).Round(4)
		frequency := lo.Ternary(yield.GreaterThan(monthlyThreshold), domain.FrequencyMonthly, domain.FrequencyQuarterly)

		for _, offset := range dividendOffsets {
			ex := today.AddDays(offset + 7*i)
			out = append(out, domain.Dividend{
				ETFID:            e.ID,
				ExDividendDate:   ex,
				PaymentDate:      ex.AddDays(paymentLagDays),
				DividendPerShare: perShare,
				Frequency:        frequency,
			})
		}
	}
	return out
}

// ETFStore reads and writes the catalog.
type ETFStore interface {
	ListETFs(ctx context.Context) ([]domain.ETF, error)
	UpsertETF(ctx context.Context, e domain.ETF) (int64, error)
}

// PositionWriter stores positions.
type PositionWriter interface {
	UpsertPosition(ctx context.Context, p domain.Position) (int64, error)
}

// DividendWriter stores dividend events.
type DividendWriter interface {
	InsertDividend(ctx context.Context, d domain.Dividend) (int64, error)
}

// Options controls Seed.
type Options struct {
	UserID string
	Today  domain.Date
	// Force seeds even when the catalog already has funds.
	Force bool
}

// Result counts the records written.
type Result struct {
	ETFs      int  `json:"etfs"`
	Positions int  `json:"positions"`
	Dividends int  `json:"dividends"`
	Skipped   bool `json:"skipped"`
}

// Seed writes the sample catalog, the demo positions and their upcoming dividends.
// It does nothing when the catalog is already populated unless opts.Force is set.
func Seed(ctx context.Context, etfs ETFStore, positions PositionWriter, dividends DividendWriter, opts Options) (Result, error) {
	if opts.UserID == "" {
		opts.UserID = DefaultUser
	}
	if opts.Today.IsZero() {
		opts.Today = domain.Today()
	}

	existing, err := etfs.ListETFs(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("checking catalog: %w", err)
	}
	if len(existing) > 0 && !opts.Force {
		slog.Info("sample data already present", "etfs", len(existing))
		return Result{Skipped: true}, nil
	}

	catalog, err := Catalog()
	if err != nil {
		return Result{}, err
	}

	var res Result
	for i := range catalog {
		id, err := etfs.UpsertETF(ctx, catalog[i])
		if err != nil {
			return res, fmt.Errorf("storing etf %s: %w", catalog[i].Ticker, err)
		}
		catalog[i].ID = id
		res.ETFs++
	}

	held := catalog[:min(len(catalog), len(samplePositions))]
	for _, p := range Positions(opts.UserID, held) {
		if _, err := positions.UpsertPosition(ctx, p); err != nil {
			return res, fmt.Errorf("storing position for etf %d: %w", p.ETFID, err)
		}
		res.Positions++
	}

	for _, d := range Dividends(held, opts.Today) {
		if _, err := dividends.InsertDividend(ctx, d); err != nil {
			return res, fmt.Errorf("storing dividend for etf %d: %w", d.ETFID, err)
		}
		res.Dividends++
	}

	slog.Info("sample data seeded", "user", opts.UserID, "etfs", res.ETFs, "positions", res.Positions, "dividends", res.Dividends)
	return res, nil
}
