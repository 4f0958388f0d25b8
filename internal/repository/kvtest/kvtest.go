// Package kvtest holds the behaviour every repository.KVStore backend must share.
package kvtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arsen1987144/joycity-marketplace/internal/repository"
)

// Run exercises store against the KVStore contract.
func Run(t *testing.T, store repository.KVStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		v, found, err := store.Get(ctx, "kvtest:missing")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, v)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "kvtest:a", `[{"id":1,"quantity":2}]`))

		v, found, err := store.Get(ctx, "kvtest:a")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, `[{"id":1,"quantity":2}]`, v)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "kvtest:b", "first"))
		require.NoError(t, store.Set(ctx, "kvtest:b", "second"))

		v, _, err := store.Get(ctx, "kvtest:b")
		require.NoError(t, err)
		assert.Equal(t, "second", v)
	})

	t.Run("empty value is still found", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "kvtest:empty", ""))

		_, found, err := store.Get(ctx, "kvtest:empty")
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "kvtest:c", "value"))
		require.NoError(t, store.Delete(ctx, "kvtest:c"))

		_, found, err := store.Get(ctx, "kvtest:c")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("delete missing key", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, "kvtest:never-set"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, repository.CartKey("one"), "1"))
		require.NoError(t, store.Set(ctx, repository.CartKey("two"), "2"))

		v, _, err := store.Get(ctx, repository.CartKey("one"))
		require.NoError(t, err)
		assert.Equal(t, "1", v)
	})
}
