package app

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arsen1987144/joycity-marketplace/internal/config"
	"github.com/Arsen1987144/joycity-marketplace/internal/repository"
	"github.com/Arsen1987144/joycity-marketplace/internal/repository/memory"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func memoryConfig() config.Config {
	cfg := config.Default()
	cfg.Storage.Backend = config.StorageMemory
	return cfg
}

func TestNew_MemoryCheckoutFlow(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	a, err := New(ctx, memoryConfig(), WithClock(fixedClock{now: t0}))
	require.NoError(t, err)
	defer a.Close()

	a.StartConsumers(ctx)

	count, err := a.Carts.AddToCart(ctx, "s1", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	order, placed, err := a.Orders.PlaceOrder(ctx, "s1")
	require.NoError(t, err)
	require.True(t, placed)
	assert.Equal(t, t0.Add(4*24*time.Hour), order.ExpectedDeliveryDate)

	loaded, found, err := a.Tracking.LoadCurrentOrder(ctx, "s1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, order.ID, loaded.ID)

	cart, err := a.Carts.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, cart)
}

func TestNew_LeadTimeFromConfig(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	cfg := memoryConfig()
	cfg.Order.LeadTimeDays = 1

	a, err := New(ctx, cfg, WithClock(fixedClock{now: t0}))
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Carts.AddToCart(ctx, "s1", 3, 1)
	require.NoError(t, err)
	order, placed, err := a.Orders.PlaceOrder(ctx, "s1")
	require.NoError(t, err)
	require.True(t, placed)
	assert.Equal(t, t0.Add(24*time.Hour), order.ExpectedDeliveryDate)
}

func TestNew_WithStore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewKVStore()
	require.NoError(t, store.Set(ctx, repository.CartKey("s1"), `[{"id":2,"quantity":5}]`))

	a, err := New(ctx, memoryConfig(), WithStore(store))
	require.NoError(t, err)
	defer a.Close()

	cart, err := a.Carts.GetCart(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, 5, cart[0].Quantity)
}

func TestNew_SQLitePersistsAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "joycity.db")

	a, err := New(ctx, cfg)
	require.NoError(t, err)
	_, err = a.Carts.AddToCart(ctx, "local", 4, 1)
	require.NoError(t, err)
	require.NoError(t, a.Close())

	b, err := New(ctx, cfg)
	require.NoError(t, err)
	defer b.Close()

	cart, err := b.Carts.GetCart(ctx, "local")
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, 4, cart[0].ProductID)
}

func TestNew_Redis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Storage.Backend = config.StorageRedis
	cfg.Storage.RedisAddr = mr.Addr()

	a, err := New(ctx, cfg)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Carts.AddToCart(ctx, "s1", 1, 1)
	require.NoError(t, err)
	assert.True(t, mr.Exists("joycity:cart:s1"))
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "mongo"

	_, err := New(context.Background(), cfg)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestSetupLogging(t *testing.T) {
	var buf bytes.Buffer

	logger := SetupLogging(&buf, config.LogSection{Level: "warn", Format: "json"}, false)
	logger.Info("hidden")
	logger.Warn("Shown", "cart_id", "s1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"Shown"`)
	assert.Contains(t, out, `"cart_id":"s1"`)

	buf.Reset()
	logger = SetupLogging(&buf, config.LogSection{Level: "warn", Format: "text"}, true)
	logger.Debug("Verbose")
	assert.Contains(t, buf.String(), "msg=Verbose")
}
