package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/jmoiron/sqlx"
)

// TidbitRecord is a row of the tidbits table.
type TidbitRecord struct {
	ID         string    `db:"id"`
	CategoryID string    `db:"category_id"`
	Text       string    `db:"text"`
	SortOrder  int       `db:"sort_order"`
	IsActive   bool      `db:"is_active"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// DBStore implements Repository using MySQL.
type DBStore struct {
	db *sqlx.DB
}

// NewDBStore creates a new DBStore.
func NewDBStore(db *sqlx.DB) *DBStore {
	return &DBStore{db: db}
}

// Categories returns all categories ordered by id.
func (s *DBStore) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := s.db.SelectContext(ctx, &categories,
		"SELECT id, name, description FROM categories ORDER BY id"); err != nil {
		return nil, fmt.Errorf("db.SelectContext(categories) > %w", err)
	}
	return categories, nil
}

// TidbitsByCategory returns the active tidbit texts of a category.
func (s *DBStore) TidbitsByCategory(ctx context.Context, categoryID string) ([]string, error) {
	var texts []string
	if err := s.db.SelectContext(ctx, &texts,
		"SELECT text FROM tidbits WHERE category_id = ? AND is_active = 1 ORDER BY sort_order, id",
		categoryID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(tidbits by category) > %w", err)
	}
	return texts, nil
}

// Snapshot returns all active tidbits grouped by category.
func (s *DBStore) Snapshot(ctx context.Context) (Snapshot, error) {
	var rows []TidbitRecord
	if err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM tidbits WHERE is_active = 1 ORDER BY category_id, sort_order, id"); err != nil {
		return Snapshot{}, fmt.Errorf("db.SelectContext(tidbits) > %w", err)
	}

	tidbits := make(map[string][]string)
	var lastModified time.Time
	for _, row := range rows {
		tidbits[row.CategoryID] = append(tidbits[row.CategoryID], row.Text)
		if row.UpdatedAt.After(lastModified) {
			lastModified = row.UpdatedAt
		}
	}

	// json.Marshal orders map keys, so equal content yields an equal version.
	encoded, err := json.Marshal(tidbits)
	if err != nil {
		return Snapshot{}, fmt.Errorf("json.Marshal() > %w", err)
	}
	return Snapshot{
		Tidbits:      tidbits,
		Version:      fmt.Sprintf("%x", xxhash.Sum64(encoded)),
		LastModified: lastModified.UTC(),
	}, nil
}

// FindTidbit returns a tidbit row by id, or nil if not found.
func (s *DBStore) FindTidbit(ctx context.Context, id string) (*TidbitRecord, error) {
	var record TidbitRecord
	err := s.db.GetContext(ctx, &record, "SELECT * FROM tidbits WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(tidbit) > %w", err)
	}
	return &record, nil
}

// UpsertCategory inserts a category or updates its name and description.
func (s *DBStore) UpsertCategory(ctx context.Context, category Category) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, description) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE name = VALUES(name), description = VALUES(description)`,
		category.ID, category.Name, category.Description); err != nil {
		return fmt.Errorf("db.ExecContext(upsert category) > %w", err)
	}
	return nil
}

// CreateTidbit inserts a new tidbit row.
func (s *DBStore) CreateTidbit(ctx context.Context, record *TidbitRecord) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO tidbits (id, category_id, text, sort_order, is_active) VALUES (?, ?, ?, ?, ?)`,
		record.ID, record.CategoryID, record.Text, record.SortOrder, record.IsActive); err != nil {
		return fmt.Errorf("db.ExecContext(insert tidbit) > %w", err)
	}
	return nil
}

// UpdateTidbit updates the ordering and active flag of a tidbit.
func (s *DBStore) UpdateTidbit(ctx context.Context, record *TidbitRecord) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE tidbits SET sort_order = ?, is_active = ? WHERE id = ?`,
		record.SortOrder, record.IsActive, record.ID); err != nil {
		return fmt.Errorf("db.ExecContext(update tidbit) > %w", err)
	}
	return nil
}
