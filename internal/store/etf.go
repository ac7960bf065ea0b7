package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"

	"github.com/etflens/etflens/internal/domain"
)

// ETFRepository defines persistent storage for the ETF catalog.
type ETFRepository interface {
	ListETFs(ctx context.Context) ([]domain.ETF, error)
	GetETFByTicker(ctx context.Context, ticker string) (domain.ETF, error)
	UpsertETF(ctx context.Context, etf domain.ETF) (int64, error)
}

// PgETFRepository implements ETFRepository with PostgreSQL.
type PgETFRepository struct {
	pool *pgxpool.Pool
}

// NewPgETFRepository creates a new PostgreSQL ETF repository.
func NewPgETFRepository(pool *pgxpool.Pool) *PgETFRepository {
	return &PgETFRepository{pool: pool}
}

const etfColumns = `id, ticker, name, current_price, previous_price, dividend_yield,
	expense_ratio, aum, volume, sector, region,
	return_1d, return_1w, return_1m, return_1y,
	investment_strategy, top_holdings, created_at, updated_at`

func scanETF(row pgx.Row) (domain.ETF, error) {
	var (
		e        domain.ETF
		yield    decimal.NullDecimal
		strategy *string
		holdings []byte
	)
	err := row.Scan(&e.ID, &e.Ticker, &e.Name, &e.CurrentPrice, &e.PreviousPrice, &yield,
		&e.ExpenseRatio, &e.AUM, &e.Volume, &e.Sector, &e.Region,
		&e.Returns.Day, &e.Returns.Week, &e.Returns.Month, &e.Returns.Year,
		&strategy, &holdings, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return domain.ETF{}, err
	}

	e.DividendYield = optionalDecimal(yield)
	e.InvestmentStrategy = mo.PointerToOption(strategy)
	if e.TopHoldings, err = decodeHoldings(holdings); err != nil {
		return domain.ETF{}, fmt.Errorf("etf %s: %w", e.Ticker, err)
	}
	return e, nil
}

func (r *PgETFRepository) ListETFs(ctx context.Context) ([]domain.ETF, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+etfColumns+` FROM etfs ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("listing etfs: %w", err)
	}
	defer rows.Close()

	var etfs []domain.ETF
	for rows.Next() {
		e, err := scanETF(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning etf: %w", err)
		}
		etfs = append(etfs, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating etfs: %w", err)
	}
	return etfs, nil
}

func (r *PgETFRepository) GetETFByTicker(ctx context.Context, ticker string) (domain.ETF, error) {
	e, err := scanETF(r.pool.QueryRow(ctx, `SELECT `+etfColumns+` FROM etfs WHERE ticker = $1`, ticker))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ETF{}, ErrNotFound
		}
		return domain.ETF{}, fmt.Errorf("getting etf %s: %w", ticker, err)
	}
	return e, nil
}

// UpsertETF inserts or refreshes a fund keyed by ticker and returns its id.
func (r *PgETFRepository) UpsertETF(ctx context.Context, e domain.ETF) (int64, error) {
	holdings, err := encodeHoldings(e.TopHoldings)
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.pool.QueryRow(ctx,
		`INSERT INTO etfs (ticker, name, current_price, previous_price, dividend_yield,
			expense_ratio, aum, volume, sector, region,
			return_1d, return_1w, return_1m, return_1y,
			investment_strategy, top_holdings)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16::jsonb)
		 ON CONFLICT (ticker) DO UPDATE SET
			name = $2, current_price = $3, previous_price = $4, dividend_yield = $5,
			expense_ratio = $6, aum = $7, volume = $8, sector = $9, region = $10,
			return_1d = $11, return_1w = $12, return_1m = $13, return_1y = $14,
			investment_strategy = $15, top_holdings = $16::jsonb, updated_at = NOW()
		 RETURNING id`,
		e.Ticker, e.Name, e.CurrentPrice, e.PreviousPrice, nullDecimal(e.DividendYield),
		e.ExpenseRatio, e.AUM, e.Volume, e.Sector, e.Region,
		e.Returns.Day, e.Returns.Week, e.Returns.Month, e.Returns.Year,
		e.InvestmentStrategy.ToPointer(), holdings).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting etf %s: %w", e.Ticker, err)
	}
	return id, nil
}
