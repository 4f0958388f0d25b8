package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arsen1987144/joycity-marketplace/internal/repository/kvtest"
)

func TestKVStore(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer store.Close()

	kvtest.Run(t, store)
}

func TestKVStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "cart:local", `[{"id":2,"quantity":1}]`))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	v, found, err := reopened.Get(ctx, "cart:local")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":2,"quantity":1}]`, v)
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing-dir", "kv.db"))
	assert.Error(t, err)
}
