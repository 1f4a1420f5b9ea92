package panicerr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorker(t *testing.T) {
	ctx := context.Background()

	t.Run("nil stays nil", func(t *testing.T) {
		err := Worker("idle", func(context.Context) error { return nil })(ctx)
		assert.NoError(t, err)
	})

	t.Run("error is tagged", func(t *testing.T) {
		boom := errors.New("boom")
		err := Worker("relay", func(context.Context) error { return boom })(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "relay: ")
	})

	t.Run("panic becomes error", func(t *testing.T) {
		err := Worker("pruner", func(context.Context) error { panic("bad state") })(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pruner: ")
		assert.Contains(t, err.Error(), "bad state")
	})

	t.Run("context is passed through", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := Worker("waiter", func(ctx context.Context) error { return ctx.Err() })(cctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
