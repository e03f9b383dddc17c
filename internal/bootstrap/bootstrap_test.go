package bootstrap

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApp_Run(t *testing.T) {
	t.Run("run returns nil", func(t *testing.T) {
		app := New(0)
		err := app.Run(context.Background(), func(ctx context.Context) error {
			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("run returns error", func(t *testing.T) {
		app := New(0)
		want := errors.New("run failed")
		err := app.Run(context.Background(), func(ctx context.Context) error {
			return want
		})
		assert.ErrorIs(t, err, want)
	})

	t.Run("shutdown hooks run in LIFO order on context cancel", func(t *testing.T) {
		app := New(time.Second)
		var mu sync.Mutex
		var order []string
		for _, name := range []string{"server", "dispatcher", "store"} {
			app.AddShutdownHook(func(ctx context.Context) error {
				mu.Lock()
				defer mu.Unlock()
				order = append(order, name)
				return nil
			})
		}

		ctx, cancel := context.WithCancel(context.Background())
		err := app.Run(ctx, func(ctx context.Context) error {
			cancel()
			<-ctx.Done()
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"store", "dispatcher", "server"}, order)
	})

	t.Run("hook errors are joined", func(t *testing.T) {
		app := New(time.Second)
		errStore := errors.New("store close failed")
		errServer := errors.New("server shutdown failed")
		app.AddShutdownHook(func(ctx context.Context) error { return errServer })
		app.AddShutdownHook(func(ctx context.Context) error { return errStore })

		ctx, cancel := context.WithCancel(context.Background())
		err := app.Run(ctx, func(ctx context.Context) error {
			cancel()
			<-ctx.Done()
			return nil
		})
		assert.ErrorIs(t, err, errStore)
		assert.ErrorIs(t, err, errServer)
	})

	t.Run("hooks get a shutdown deadline", func(t *testing.T) {
		app := New(50 * time.Millisecond)
		var deadline time.Time
		var ok bool
		app.AddShutdownHook(func(ctx context.Context) error {
			deadline, ok = ctx.Deadline()
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		start := time.Now()
		err := app.Run(ctx, func(ctx context.Context) error {
			cancel()
			<-ctx.Done()
			return nil
		})
		require.NoError(t, err)
		require.True(t, ok)
		assert.WithinDuration(t, start.Add(50*time.Millisecond), deadline, time.Second)
	})

	t.Run("hook registered from inside run callback", func(t *testing.T) {
		app := New(0)
		hookCalled := false

		ctx, cancel := context.WithCancel(context.Background())
		err := app.Run(ctx, func(ctx context.Context) error {
			app.AddShutdownHook(func(ctx context.Context) error {
				hookCalled = true
				return nil
			})
			cancel()
			<-ctx.Done()
			return nil
		})
		require.NoError(t, err)
		assert.True(t, hookCalled)
	})
}
