package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/etflens/etflens/internal/domain"
)

// PositionRepository defines persistent storage for user positions.
type PositionRepository interface {
	ListPositions(ctx context.Context, userID string) ([]domain.Position, error)
	UpsertPosition(ctx context.Context, p domain.Position) (int64, error)
	ListUsers(ctx context.Context) ([]string, error)
}

// PgPositionRepository implements PositionRepository with PostgreSQL.
type PgPositionRepository struct {
	pool *pgxpool.Pool
}

// NewPgPositionRepository creates a new PostgreSQL position repository.
func NewPgPositionRepository(pool *pgxpool.Pool) *PgPositionRepository {
	return &PgPositionRepository{pool: pool}
}

// ListPositions returns the positions of one user. Rows whose etf_id no longer
// exists in the catalog are returned as well; the engine reports them.
func (r *PgPositionRepository) ListPositions(ctx context.Context, userID string) ([]domain.Position, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, etf_id, shares, avg_price, total_invested
		 FROM positions
		 WHERE user_id = $1
		 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing positions for %s: %w", userID, err)
	}
	defer rows.Close()

	var positions []domain.Position
	for rows.Next() {
		var p domain.Position
		if err := rows.Scan(&p.ID, &p.UserID, &p.ETFID, &p.Shares, &p.AvgPrice, &p.TotalInvested); err != nil {
			return nil, fmt.Errorf("scanning position: %w", err)
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating positions: %w", err)
	}
	return positions, nil
}

// UpsertPosition stores the position for (user, etf), replacing any previous row.
func (r *PgPositionRepository) UpsertPosition(ctx context.Context, p domain.Position) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO positions (user_id, etf_id, shares, avg_price, total_invested)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, etf_id) DO UPDATE SET
			shares = $3, avg_price = $4, total_invested = $5, updated_at = NOW()
		 RETURNING id`,
		p.UserID, p.ETFID, p.Shares, p.AvgPrice, p.TotalInvested).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting position %s/%d: %w", p.UserID, p.ETFID, err)
	}
	return id, nil
}

// ListUsers returns every user id that owns at least one position.
func (r *PgPositionRepository) ListUsers(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT user_id FROM positions ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return collectUsers(rows)
}

func collectUsers(rows pgx.Rows) ([]string, error) {
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return users, nil
}
