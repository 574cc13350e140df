package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sharedsmiles/ticketdesk/internal/model"
)

// SeatPoolRepository handles the per-pool seat counters.
type SeatPoolRepository struct {
	db *pgxpool.Pool
}

// NewSeatPoolRepository constructs a SeatPoolRepository.
func NewSeatPoolRepository(db *pgxpool.Pool) *SeatPoolRepository {
	return &SeatPoolRepository{db: db}
}

// GetByKey returns one pool counter or ErrPoolNotFound.
func (r *SeatPoolRepository) GetByKey(ctx context.Context, key model.PoolKey) (*model.SeatPool, error) {
	var p model.SeatPool
	err := r.db.QueryRow(ctx,
		`SELECT config_key, total_seats, used_seats, updated_at FROM seat_config WHERE config_key = $1`,
		key,
	).Scan(&p.Key, &p.TotalSeats, &p.UsedSeats, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPoolNotFound
		}
		return nil, fmt.Errorf("get seat pool: %w", err)
	}
	return &p, nil
}

// List returns all pool counters.
func (r *SeatPoolRepository) List(ctx context.Context) ([]model.SeatPool, error) {
	rows, err := r.db.Query(ctx,
		`SELECT config_key, total_seats, used_seats, updated_at FROM seat_config ORDER BY config_key`)
	if err != nil {
		return nil, fmt.Errorf("list seat pools: %w", err)
	}
	defer rows.Close()

	var pools []model.SeatPool
	for rows.Next() {
		var p model.SeatPool
		if err := rows.Scan(&p.Key, &p.TotalSeats, &p.UsedSeats, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan seat pool: %w", err)
		}
		pools = append(pools, p)
	}
	return pools, rows.Err()
}

// Reserve atomically takes amount seats from the pool. The capacity check and
// the increment are a single conditional UPDATE, so two concurrent reserves
// can never overshoot total_seats together. Zero rows means either the pool
// row is missing or the ceiling would be exceeded; the follow-up read tells
// the two apart.
func (r *SeatPoolRepository) Reserve(ctx context.Context, key model.PoolKey, amount int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE seat_config
		 SET used_seats = used_seats + $2, updated_at = now()
		 WHERE config_key = $1 AND used_seats + $2 <= total_seats`,
		key, amount,
	)
	if err != nil {
		return fmt.Errorf("reserve seats: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetByKey(ctx, key); getErr != nil {
			return getErr
		}
		return ErrSeatsUnavailable
	}
	return nil
}

// Release returns amount seats to the pool, clamped so used_seats never goes
// negative.
func (r *SeatPoolRepository) Release(ctx context.Context, key model.PoolKey, amount int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE seat_config
		 SET used_seats = GREATEST(0, used_seats - $2), updated_at = now()
		 WHERE config_key = $1`,
		key, amount,
	)
	if err != nil {
		return fmt.Errorf("release seats: %w", err)
	}
	return nil
}

// SetUsed overwrites a pool's used counter. Used by the resync recomputation.
func (r *SeatPoolRepository) SetUsed(ctx context.Context, key model.PoolKey, used int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE seat_config SET used_seats = $2, updated_at = now() WHERE config_key = $1`,
		key, used,
	)
	if err != nil {
		return fmt.Errorf("set used seats: %w", err)
	}
	return nil
}
