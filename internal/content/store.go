package content

import (
	"context"
	"time"
)

//go:generate mockgen -source=store.go -destination=../mocks/content/mock_store.go -package=mock_content

// Store is the read-only source of categories and tidbit texts.
type Store interface {
	Categories(ctx context.Context) ([]Category, error)
	TidbitsByCategory(ctx context.Context, categoryID string) ([]string, error)
}

// SnapshotSource exposes the whole content set with a version for client-side
// cache invalidation.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// Repository is the writable, database-backed content store used for seeding.
type Repository interface {
	Store
	FindTidbit(ctx context.Context, id string) (*TidbitRecord, error)
	UpsertCategory(ctx context.Context, category Category) error
	CreateTidbit(ctx context.Context, record *TidbitRecord) error
	UpdateTidbit(ctx context.Context, record *TidbitRecord) error
}

// Snapshot is the full content set at a given version.
type Snapshot struct {
	Tidbits      map[string][]string
	Version      string
	LastModified time.Time
}
