// Package repository implements all database queries for the registration
// system. It uses pgx directly (no ORM) for transparency and performance.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sharedsmiles/ticketdesk/internal/model"
)

// PassRepository handles persistence for passes.
type PassRepository struct {
	db *pgxpool.Pool
}

// NewPassRepository constructs a PassRepository.
func NewPassRepository(db *pgxpool.Pool) *PassRepository {
	return &PassRepository{db: db}
}

const passColumns = `id, title, price, total_seats, max_people, is_early_bird, is_active, display_order, created_at`

func scanPass(row pgx.Row) (*model.Pass, error) {
	var p model.Pass
	err := row.Scan(&p.ID, &p.Title, &p.Price, &p.TotalSeats, &p.MaxPeople,
		&p.IsEarlyBird, &p.IsActive, &p.DisplayOrder, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PassRepository) queryPasses(ctx context.Context, query string) ([]model.Pass, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list passes: %w", err)
	}
	defer rows.Close()

	var passes []model.Pass
	for rows.Next() {
		p, err := scanPass(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pass: %w", err)
		}
		passes = append(passes, *p)
	}
	return passes, rows.Err()
}

// ListActive returns passes visible to buyers, ordered for display.
func (r *PassRepository) ListActive(ctx context.Context) ([]model.Pass, error) {
	return r.queryPasses(ctx,
		`SELECT `+passColumns+` FROM passes WHERE is_active ORDER BY display_order ASC, id ASC`)
}

// List returns every pass, active or not.
func (r *PassRepository) List(ctx context.Context) ([]model.Pass, error) {
	return r.queryPasses(ctx,
		`SELECT `+passColumns+` FROM passes ORDER BY display_order ASC, id ASC`)
}

// GetByID returns a single pass or ErrPassNotFound.
func (r *PassRepository) GetByID(ctx context.Context, id int64) (*model.Pass, error) {
	p, err := scanPass(r.db.QueryRow(ctx,
		`SELECT `+passColumns+` FROM passes WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPassNotFound
		}
		return nil, fmt.Errorf("get pass: %w", err)
	}
	return p, nil
}

// Create inserts a new pass and returns it with its assigned id.
func (r *PassRepository) Create(ctx context.Context, in model.PassInput) (*model.Pass, error) {
	p := &model.Pass{
		Title:        in.Title,
		Price:        in.Price,
		TotalSeats:   in.TotalSeats,
		MaxPeople:    in.MaxPeople,
		IsEarlyBird:  in.IsEarlyBird,
		IsActive:     in.IsActive,
		DisplayOrder: in.DisplayOrder,
		CreatedAt:    time.Now().UTC(),
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO passes (title, price, total_seats, max_people, is_early_bird, is_active, display_order, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		p.Title, p.Price, p.TotalSeats, p.MaxPeople, p.IsEarlyBird, p.IsActive, p.DisplayOrder, p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		return nil, fmt.Errorf("insert pass: %w", err)
	}
	return p, nil
}

// Update overwrites the editable fields of a pass.
func (r *PassRepository) Update(ctx context.Context, id int64, in model.PassInput) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE passes
		 SET title = $2, price = $3, total_seats = $4, max_people = $5,
		     is_early_bird = $6, is_active = $7, display_order = $8
		 WHERE id = $1`,
		id, in.Title, in.Price, in.TotalSeats, in.MaxPeople, in.IsEarlyBird, in.IsActive, in.DisplayOrder,
	)
	if err != nil {
		return fmt.Errorf("update pass: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPassNotFound
	}
	return nil
}

// Delete removes a pass. Existing registrations keep their dangling pass_id.
func (r *PassRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM passes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete pass: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPassNotFound
	}
	return nil
}
