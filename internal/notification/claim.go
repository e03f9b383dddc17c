package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

//go:generate mockgen -source=claim.go -destination=../mocks/notification/mock_claim.go -package=mock_notification

// Claimer makes sure a device is notified at most once per tick minute when
// several dispatchers run at the same time.
type Claimer interface {
	// Claim returns true if the caller is the first to claim (minute, token).
	Claim(ctx context.Context, minute time.Time, token string) (bool, error)
}

// Pruner removes claims older than a point in time.
type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// DBClaimer implements Claimer with the dispatch_claims table.
type DBClaimer struct {
	db *sqlx.DB
}

// NewDBClaimer creates a new DBClaimer.
func NewDBClaimer(db *sqlx.DB) *DBClaimer {
	return &DBClaimer{db: db}
}

// Claim inserts the claim unless another dispatcher already holds it.
func (c *DBClaimer) Claim(ctx context.Context, minute time.Time, token string) (bool, error) {
	result, err := c.db.ExecContext(ctx,
		"INSERT IGNORE INTO dispatch_claims (tick_minute, token) VALUES (?, ?)",
		minute.UTC().Truncate(time.Minute), token)
	if err != nil {
		return false, fmt.Errorf("db.ExecContext(claim) > %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("result.RowsAffected() > %w", err)
	}
	return affected == 1, nil
}

// Prune deletes claims for minutes before before.
func (c *DBClaimer) Prune(ctx context.Context, before time.Time) (int64, error) {
	result, err := c.db.ExecContext(ctx,
		"DELETE FROM dispatch_claims WHERE tick_minute < ?", before.UTC())
	if err != nil {
		return 0, fmt.Errorf("db.ExecContext(prune claims) > %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("result.RowsAffected() > %w", err)
	}
	return affected, nil
}
