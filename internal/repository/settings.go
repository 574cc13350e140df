package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sharedsmiles/ticketdesk/internal/model"
)

const smtpSettingsKey = "smtp_settings"

// SettingsRepository stores named JSON configuration blobs in the config
// table.
type SettingsRepository struct {
	db *pgxpool.Pool
}

// NewSettingsRepository constructs a SettingsRepository.
func NewSettingsRepository(db *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the raw JSON value for a key or ErrSettingsNotFound.
func (r *SettingsRepository) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var raw []byte
	err := r.db.QueryRow(ctx, `SELECT value FROM config WHERE key = $1`, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("get config %q: %w", key, err)
	}
	return raw, nil
}

// Set upserts the JSON value for a key.
func (r *SettingsRepository) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode config %q: %w", key, err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO config (key, value) VALUES ($1, $2::jsonb)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		key, string(data),
	)
	if err != nil {
		return fmt.Errorf("set config %q: %w", key, err)
	}
	return nil
}

// SMTPSettings loads the typed mail settings blob. Absence is reported as
// ErrSettingsNotFound; the dispatcher treats that as "sending disabled".
func (r *SettingsRepository) SMTPSettings(ctx context.Context) (*model.SMTPSettings, error) {
	raw, err := r.Get(ctx, smtpSettingsKey)
	if err != nil {
		return nil, err
	}
	var s model.SMTPSettings
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode smtp settings: %w", err)
	}
	return &s, nil
}

// SaveSMTPSettings persists the typed mail settings blob.
func (r *SettingsRepository) SaveSMTPSettings(ctx context.Context, s *model.SMTPSettings) error {
	return r.Set(ctx, smtpSettingsKey, s)
}
