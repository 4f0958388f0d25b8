//go:build container

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arsen1987144/joycity-marketplace/internal/catalog"
	"github.com/Arsen1987144/joycity-marketplace/internal/repository/kvtest"
)

func startPostgres(t *testing.T, ctx context.Context) string {
	t.Helper()

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "joycity",
			"POSTGRES_PASSWORD": "joycity",
			"POSTGRES_DB":       "joycity",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://joycity:joycity@%s:%s/joycity?sslmode=disable", host, port.Port())
}

func TestPostgres(t *testing.T) {
	ctx := context.Background()
	db, err := InitDB(startPostgres(t, ctx))
	require.NoError(t, err)

	t.Run("kv store", func(t *testing.T) {
		kvtest.Run(t, NewKVStore(db))
	})

	t.Run("product seed is idempotent", func(t *testing.T) {
		c, err := catalog.Load()
		require.NoError(t, err)

		repo := NewProductRepository(db)
		require.NoError(t, repo.Seed(ctx, c.ListProducts()))
		require.NoError(t, repo.Seed(ctx, c.ListProducts()))

		products, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, c.ListProducts(), products)
	})

	require.NoError(t, db.Close())
}
