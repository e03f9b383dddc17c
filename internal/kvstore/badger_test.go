package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := Open(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		cfg     func(t *testing.T) Config
		wantErr bool
	}{
		{
			name: "in memory",
			cfg:  func(t *testing.T) Config { return InMemoryConfig() },
		},
		{
			name: "persistent with gc",
			cfg: func(t *testing.T) Config {
				return DefaultConfig(filepath.Join(t.TempDir(), "state"))
			},
		},
		{
			name:    "persistent without path",
			cfg:     func(t *testing.T) Config { return Config{} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Open(tt.cfg(t))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, store.Close())
		})
	}
}

func TestBadgerStore_GetSet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "sr_a", `{"tidbitId":"a"}`))
	got, ok, err := store.Get(ctx, "sr_a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"tidbitId":"a"}`, got)

	require.NoError(t, store.Set(ctx, "sr_a", "replaced"))
	got, _, err = store.Get(ctx, "sr_a")
	require.NoError(t, err)
	assert.Equal(t, "replaced", got)
}

func TestBadgerStore_ListKeys(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	for _, key := range []string{"sr_b", "sr_a", "daily_study_plan", "srx"} {
		require.NoError(t, store.Set(ctx, key, "v"))
	}

	tests := []struct {
		prefix string
		want   []string
	}{
		{prefix: "sr_", want: []string{"sr_a", "sr_b"}},
		{prefix: "daily", want: []string{"daily_study_plan"}},
		{prefix: "none", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			got, err := store.ListKeys(ctx, tt.prefix)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBadgerStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	for _, key := range []string{"sr_a", "sr_b", "sr_c"} {
		require.NoError(t, store.Set(ctx, key, "v"))
	}

	require.NoError(t, store.Delete(ctx, "sr_a"))
	require.NoError(t, store.Delete(ctx, "missing"))
	require.NoError(t, store.DeleteMany(ctx, []string{"sr_b", "sr_c", "missing"}))
	require.NoError(t, store.DeleteMany(ctx, nil))

	keys, err := store.ListKeys(ctx, "sr_")
	require.NoError(t, err)
	assert.Empty(t, keys)
}
