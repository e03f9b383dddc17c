// Package kvstore provides the key-value store that persists learning state,
// plans and session history.
package kvstore

import "context"

//go:generate mockgen -source=store.go -destination=../mocks/kvstore/mock_store.go -package=mock_kvstore

// Store is a string key-value store.
type Store interface {
	// Get returns the value for key. ok is false when the key does not exist.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// ListKeys returns every key starting with prefix, in byte order.
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys []string) error
}
