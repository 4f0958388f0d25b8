package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Arsen1987144/joycity-marketplace/internal/repository"
)

type kvStore struct {
	client *goredis.Client
	prefix string
}

// Open connects to Redis at addr and verifies the connection.
func Open(ctx context.Context, addr, password string, db int, prefix string) (repository.KVStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	slog.Info("Redis connected", "addr", addr)
	return NewKVStore(client, prefix), nil
}

// NewKVStore wraps an existing client. Keys are stored under prefix.
func NewKVStore(client *goredis.Client, prefix string) repository.KVStore {
	return &kvStore{client: client, prefix: prefix}
}

func (s *kvStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *kvStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *kvStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *kvStore) Close() error {
	return s.client.Close()
}
