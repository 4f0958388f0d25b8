// Package app builds the storefront object graph from configuration. It is
// shared by the web server and the terminal client.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Arsen1987144/joycity-marketplace/internal/catalog"
	"github.com/Arsen1987144/joycity-marketplace/internal/config"
	"github.com/Arsen1987144/joycity-marketplace/internal/messaging"
	"github.com/Arsen1987144/joycity-marketplace/internal/messaging/bus"
	"github.com/Arsen1987144/joycity-marketplace/internal/messaging/kafka"
	"github.com/Arsen1987144/joycity-marketplace/internal/metrics"
	"github.com/Arsen1987144/joycity-marketplace/internal/repository"
	"github.com/Arsen1987144/joycity-marketplace/internal/repository/memory"
	"github.com/Arsen1987144/joycity-marketplace/internal/repository/postgres"
	"github.com/Arsen1987144/joycity-marketplace/internal/repository/redis"
	"github.com/Arsen1987144/joycity-marketplace/internal/repository/sqlite"
	"github.com/Arsen1987144/joycity-marketplace/internal/service"
)

// NotificationsGroup is the consumer group of the order notification handler.
const NotificationsGroup = "joycity-notifications"

type eventBroker interface {
	messaging.Publisher
	messaging.Subscriber
	io.Closer
}

// App holds everything a renderer needs.
type App struct {
	Config   config.Config
	Catalog  *catalog.Catalog
	Store    repository.KVStore
	Carts    *service.CartService
	Orders   *service.OrderService
	Tracking *service.TrackingService
	Metrics  *metrics.Metrics

	events eventBroker
}

// Option tweaks the graph before services are built.
type Option func(*options)

type options struct {
	clock service.Clock
	store repository.KVStore
}

// WithClock replaces the system clock.
func WithClock(c service.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithStore uses an already opened store instead of the configured backend.
func WithStore(s repository.KVStore) Option {
	return func(o *options) { o.store = s }
}

// New opens storage and the event transport and wires the services.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cat, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	store := o.store
	if store == nil {
		store, cat, err = openStore(ctx, cfg.Storage, cat)
		if err != nil {
			return nil, err
		}
	}

	var events eventBroker
	if len(cfg.Events.KafkaBrokers) > 0 {
		slog.Info("Using Kafka event transport", "brokers", cfg.Events.KafkaBrokers)
		events = kafka.NewKafkaBroker(cfg.Events.KafkaBrokers)
	} else {
		events = bus.New()
	}

	m := metrics.New()
	carts := service.NewCartService(store, cat, events, m)

	return &App{
		Config:   cfg,
		Catalog:  cat,
		Store:    store,
		Carts:    carts,
		Orders:   service.NewOrderService(store, carts, events, m, o.clock, cfg.Order.LeadTimeDays),
		Tracking: service.NewTrackingService(store, o.clock),
		Metrics:  m,
		events:   events,
	}, nil
}

func openStore(ctx context.Context, cfg config.StorageSection, cat *catalog.Catalog) (repository.KVStore, *catalog.Catalog, error) {
	switch cfg.Backend {
	case config.StorageMemory:
		return memory.NewKVStore(), cat, nil

	case config.StorageSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("Storage ready", "backend", cfg.Backend, "path", cfg.SQLitePath)
		return store, cat, nil

	case config.StorageRedis:
		store, err := redis.Open(ctx, cfg.RedisAddr, "", cfg.RedisDB, cfg.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("Storage ready", "backend", cfg.Backend, "addr", cfg.RedisAddr)
		return store, cat, nil

	case config.StoragePostgres:
		db, err := postgres.InitDB(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		store := postgres.NewKVStore(db)

		products := postgres.NewProductRepository(db)
		if err := products.Seed(ctx, cat.ListProducts()); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("failed to seed products: %w", err)
		}
		seeded, err := products.FindAll(ctx)
		if err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("failed to load products: %w", err)
		}
		dbCat, err := catalog.New(seeded)
		if err != nil {
			store.Close()
			return nil, nil, err
		}
		slog.Info("Storage ready", "backend", cfg.Backend, "products", len(seeded))
		return store, dbCat, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown storage backend %q", config.ErrInvalidConfig, cfg.Backend)
}

// StartConsumers runs the event handlers until ctx is done.
func (a *App) StartConsumers(ctx context.Context) {
	handler := service.OrderPlacedHandler{}
	go a.events.Consume(ctx, messaging.TopicOrdersPlaced, NotificationsGroup, handler.Handle)
	slog.Info("🔄 Event consumers started", "handler", handler.HandlerName())
}

// Close flushes the event transport and closes storage.
func (a *App) Close() error {
	var errs []error
	if err := a.events.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close events: %w", err))
	}
	if err := a.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close storage: %w", err))
	}
	return errors.Join(errs...)
}
