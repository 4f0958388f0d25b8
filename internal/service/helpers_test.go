package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/Arsen1987144/joycity-marketplace/internal/catalog"
	"github.com/Arsen1987144/joycity-marketplace/internal/entity"
	"github.com/Arsen1987144/joycity-marketplace/internal/metrics"
	"github.com/Arsen1987144/joycity-marketplace/internal/repository"
	"github.com/Arsen1987144/joycity-marketplace/internal/repository/memory"
)

var (
	t0       = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	errStore = errors.New("storage unavailable")
)

// fakeClock returns now and then moves forward by step.
type fakeClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

func (c *fakeClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

type published struct {
	topic string
	key   string
	event any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) PublishEvent(ctx context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{topic: topic, key: key, event: event})
	return p.err
}

// flakyStore fails the operations switched on in it.
type flakyStore struct {
	repository.KVStore
	failGet, failSet, failDelete bool
}

func (s *flakyStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.failGet {
		return "", false, errStore
	}
	return s.KVStore.Get(ctx, key)
}

func (s *flakyStore) Set(ctx context.Context, key, value string) error {
	if s.failSet {
		return errStore
	}
	return s.KVStore.Set(ctx, key, value)
}

func (s *flakyStore) Delete(ctx context.Context, key string) error {
	if s.failDelete {
		return errStore
	}
	return s.KVStore.Delete(ctx, key)
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]entity.Product{
		{ID: 1, Name: "Dress", Category: "Women", Price: 49.99},
		{ID: 2, Name: "Sneakers", Category: "Shoes", Price: 69.99},
		{ID: 3, Name: "Robot", Category: "Toys", Price: 34.99},
	})
	require.NoError(t, err)
	return c
}

type fixture struct {
	store     *flakyStore
	publisher *recordingPublisher
	clock     *fakeClock
	carts     *CartService
	orders    *OrderService
	tracking  *TrackingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:     &flakyStore{KVStore: memory.NewKVStore()},
		publisher: &recordingPublisher{},
		clock:     &fakeClock{now: t0},
	}
	f.carts = NewCartService(f.store, testCatalog(t), f.publisher, nil)
	f.orders = NewOrderService(f.store, f.carts, f.publisher, nil, f.clock, DefaultLeadTimeDays)
	f.tracking = NewTrackingService(f.store, f.clock)
	return f
}

func testutilCount(m *metrics.Metrics, op string) int {
	return int(testutil.ToFloat64(m.CartMutations.WithLabelValues(op)))
}
