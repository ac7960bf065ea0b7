package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/etflens/etflens/internal/domain"
)

// DividendRepository defines persistent storage for dividend events.
type DividendRepository interface {
	ListDividends(ctx context.Context) ([]domain.Dividend, error)
	InsertDividend(ctx context.Context, d domain.Dividend) (int64, error)
}

// PgDividendRepository implements DividendRepository with PostgreSQL.
type PgDividendRepository struct {
	pool *pgxpool.Pool
}

// NewPgDividendRepository creates a new PostgreSQL dividend repository.
func NewPgDividendRepository(pool *pgxpool.Pool) *PgDividendRepository {
	return &PgDividendRepository{pool: pool}
}

// ListDividends returns all dividends in insertion order. Ordering for display
// is the engine's job.
func (r *PgDividendRepository) ListDividends(ctx context.Context) ([]domain.Dividend, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, etf_id, ex_dividend_date, payment_date, dividend_per_share, frequency
		 FROM dividends
		 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing dividends: %w", err)
	}
	defer rows.Close()

	var dividends []domain.Dividend
	for rows.Next() {
		var (
			d         domain.Dividend
			ex, pay   time.Time
			frequency string
		)
		if err := rows.Scan(&d.ID, &d.ETFID, &ex, &pay, &d.DividendPerShare, &frequency); err != nil {
			return nil, fmt.Errorf("scanning dividend: %w", err)
		}
		d.ExDividendDate = dateOf(ex)
		d.PaymentDate = dateOf(pay)
		d.Frequency = domain.Frequency(frequency)
		dividends = append(dividends, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating dividends: %w", err)
	}
	return dividends, nil
}

func (r *PgDividendRepository) InsertDividend(ctx context.Context, d domain.Dividend) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO dividends (etf_id, ex_dividend_date, payment_date, dividend_per_share, frequency)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (etf_id, ex_dividend_date) DO UPDATE SET
			payment_date = $3, dividend_per_share = $4, frequency = $5
		 RETURNING id`,
		d.ETFID, d.ExDividendDate.Time(), d.PaymentDate.Time(), d.DividendPerShare, string(d.Frequency)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting dividend for etf %d on %s: %w", d.ETFID, d.ExDividendDate, err)
	}
	return id, nil
}
