package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/etflens/etflens/internal/domain"
)

// ErrNotFound indicates that the requested snapshot was not found.
var ErrNotFound = errors.New("snapshot not found")

// DefaultListLimit bounds List when the caller passes a non-positive limit.
const DefaultListLimit = 30

// Snapshot is a stored daily portfolio summary of one user.
type Snapshot struct {
	ID           int64           `json:"id"`
	UserID       string          `json:"user_id"`
	SnapshotDate domain.Date     `json:"snapshot_date"`
	Data         json.RawMessage `json:"data"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Repository defines persistent storage for snapshots.
type Repository interface {
	Save(ctx context.Context, userID string, date domain.Date, data json.RawMessage) error
	GetLatest(ctx context.Context, userID string) (Snapshot, error)
	GetByDate(ctx context.Context, userID string, date domain.Date) (Snapshot, error)
	List(ctx context.Context, userID string, limit int) ([]Snapshot, error)
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL snapshot repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const snapshotColumns = `id, user_id, snapshot_date, data, created_at`

func scanSnapshot(row pgx.Row) (Snapshot, error) {
	var (
		s    Snapshot
		date time.Time
	)
	if err := row.Scan(&s.ID, &s.UserID, &date, &s.Data, &s.CreatedAt); err != nil {
		return Snapshot{}, err
	}
	s.SnapshotDate = domain.DateOf(date)
	return s, nil
}

func (r *PgRepository) Save(ctx context.Context, userID string, date domain.Date, data json.RawMessage) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO portfolio_snapshots (user_id, snapshot_date, data)
		 VALUES ($1, $2, $3::jsonb)
		 ON CONFLICT (user_id, snapshot_date)
		 DO UPDATE SET data = $3::jsonb, created_at = now()`,
		userID, date.Time(), data)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

func (r *PgRepository) GetLatest(ctx context.Context, userID string) (Snapshot, error) {
	s, err := scanSnapshot(r.pool.QueryRow(ctx,
		`SELECT `+snapshotColumns+` FROM portfolio_snapshots
		 WHERE user_id = $1
		 ORDER BY snapshot_date DESC
		 LIMIT 1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Snapshot{}, ErrNotFound
		}
		return Snapshot{}, fmt.Errorf("getting latest snapshot: %w", err)
	}
	return s, nil
}

func (r *PgRepository) GetByDate(ctx context.Context, userID string, date domain.Date) (Snapshot, error) {
	s, err := scanSnapshot(r.pool.QueryRow(ctx,
		`SELECT `+snapshotColumns+` FROM portfolio_snapshots
		 WHERE user_id = $1 AND snapshot_date = $2`, userID, date.Time()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Snapshot{}, ErrNotFound
		}
		return Snapshot{}, fmt.Errorf("getting snapshot by date: %w", err)
	}
	return s, nil
}

func (r *PgRepository) List(ctx context.Context, userID string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+snapshotColumns+` FROM portfolio_snapshots
		 WHERE user_id = $1
		 ORDER BY snapshot_date DESC
		 LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	snapshots, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Snapshot, error) {
		return scanSnapshot(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scanning snapshots: %w", err)
	}
	return snapshots, nil
}
