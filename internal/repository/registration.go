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

// RegistrationRepository handles persistence for registrations.
type RegistrationRepository struct {
	db *pgxpool.Pool
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

const registrationColumns = `id, full_name, email, phone, pass_id, additional_names, wants_updates, receipt_url, status, created_at`

func scanRegistration(row pgx.Row) (*model.Registration, error) {
	var reg model.Registration
	err := row.Scan(&reg.ID, &reg.FullName, &reg.Email, &reg.Phone, &reg.PassID,
		&reg.AdditionalNames, &reg.WantsUpdates, &reg.ReceiptURL, &reg.Status, &reg.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// Insert persists a new registration and fills in its assigned id.
func (r *RegistrationRepository) Insert(ctx context.Context, reg *model.Registration) error {
	if reg.AdditionalNames == nil {
		reg.AdditionalNames = []string{}
	}
	reg.CreatedAt = time.Now().UTC()
	err := r.db.QueryRow(ctx,
		`INSERT INTO registrations (full_name, email, phone, pass_id, additional_names, wants_updates, receipt_url, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		reg.FullName, reg.Email, reg.Phone, reg.PassID, reg.AdditionalNames,
		reg.WantsUpdates, reg.ReceiptURL, reg.Status, reg.CreatedAt,
	).Scan(&reg.ID)
	if err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

// GetByID returns a single registration or ErrRegistrationNotFound.
func (r *RegistrationRepository) GetByID(ctx context.Context, id int64) (*model.Registration, error) {
	reg, err := scanRegistration(r.db.QueryRow(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return reg, nil
}

// List returns all registrations, newest first.
func (r *RegistrationRepository) List(ctx context.Context) ([]model.Registration, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+registrationColumns+` FROM registrations ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}

// UpdateStatus sets the registration's status. A zero-rows result with no
// error means the write was blocked by database policy, surfaced as
// ErrUpdateRestricted so callers can tell it apart from not-found.
func (r *RegistrationRepository) UpdateStatus(ctx context.Context, id int64, status model.Status) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE registrations SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update registration status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUpdateRestricted
	}
	return nil
}

// Delete removes the registration row, with the same zero-rows semantics as
// UpdateStatus.
func (r *RegistrationRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUpdateRestricted
	}
	return nil
}

// CountByPass returns the number of registrations referencing a pass.
func (r *RegistrationRepository) CountByPass(ctx context.Context, passID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE pass_id = $1`, passID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return n, nil
}
