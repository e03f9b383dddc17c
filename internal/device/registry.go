package device

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/tidbit/internal/clock"
)

//go:generate mockgen -source=registry.go -destination=../mocks/device/mock_registry.go -package=mock_device

// Registry stores device preferences.
type Registry interface {
	// Upsert validates and stores p, replacing the previous preference of its token.
	Upsert(ctx context.Context, p Preference) error
	ListEnabled(ctx context.Context) ([]Preference, error)
	Touch(ctx context.Context, token string) error
	Delete(ctx context.Context, token string) error
}

// DBRegistry implements Registry using MySQL.
type DBRegistry struct {
	db        *sqlx.DB
	validator *Validator
	clock     clock.Clock
}

// NewDBRegistry creates a new DBRegistry.
func NewDBRegistry(db *sqlx.DB, v *Validator, c clock.Clock) *DBRegistry {
	return &DBRegistry{db: db, validator: v, clock: c}
}

// Upsert validates p and inserts or updates it by token.
func (r *DBRegistry) Upsert(ctx context.Context, p Preference) error {
	if err := r.validator.Validate(p); err != nil {
		return err
	}
	if p.SelectedCategories == nil {
		p.SelectedCategories = Categories{}
	}
	p.LastActive = r.clock.Now().UTC()

	query := `INSERT INTO device_tokens
		(token, platform, notification_interval, notifications_enabled, quiet_hours_enabled,
		quiet_hours_start, quiet_hours_end, selected_categories, timezone_offset_minutes, last_active)
		VALUES (:token, :platform, :notification_interval, :notifications_enabled, :quiet_hours_enabled,
		:quiet_hours_start, :quiet_hours_end, :selected_categories, :timezone_offset_minutes, :last_active)
		ON DUPLICATE KEY UPDATE
		platform = VALUES(platform),
		notification_interval = VALUES(notification_interval),
		notifications_enabled = VALUES(notifications_enabled),
		quiet_hours_enabled = VALUES(quiet_hours_enabled),
		quiet_hours_start = VALUES(quiet_hours_start),
		quiet_hours_end = VALUES(quiet_hours_end),
		selected_categories = VALUES(selected_categories),
		timezone_offset_minutes = VALUES(timezone_offset_minutes),
		last_active = VALUES(last_active)`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("db.NamedExecContext(upsert device) > %w", err)
	}
	return nil
}

// ListEnabled returns every device with notifications enabled, ordered by token.
func (r *DBRegistry) ListEnabled(ctx context.Context) ([]Preference, error) {
	var prefs []Preference
	if err := r.db.SelectContext(ctx, &prefs,
		"SELECT * FROM device_tokens WHERE notifications_enabled = 1 ORDER BY token"); err != nil {
		return nil, fmt.Errorf("db.SelectContext(enabled devices) > %w", err)
	}
	return prefs, nil
}

// Touch records that the device was active now.
func (r *DBRegistry) Touch(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE device_tokens SET last_active = ? WHERE token = ?",
		r.clock.Now().UTC(), token); err != nil {
		return fmt.Errorf("db.ExecContext(touch device) > %w", err)
	}
	return nil
}

// Delete removes a device.
func (r *DBRegistry) Delete(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM device_tokens WHERE token = ?", token); err != nil {
		return fmt.Errorf("db.ExecContext(delete device) > %w", err)
	}
	return nil
}
