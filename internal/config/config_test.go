package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "joycity.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, StorageSQLite, cfg.Storage.Backend)
	assert.Equal(t, 4, cfg.Order.LeadTimeDays)
	assert.Equal(t, "local", cfg.CartScope)
	assert.Empty(t, cfg.Events.KafkaBrokers)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
http:
  addr: ":9090"
storage:
  backend: redis
  redis_addr: "redis:6379"
events:
  kafka_brokers: ["k1:9092", "k2:9092"]
order:
  lead_time_days: 2
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "joycity_cart", cfg.HTTP.CookieName, "unset keys keep defaults")
	assert.Equal(t, StorageRedis, cfg.Storage.Backend)
	assert.Equal(t, "redis:6379", cfg.Storage.RedisAddr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.KafkaBrokers)
	assert.Equal(t, 2, cfg.Order.LeadTimeDays)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "storage:\n  backend: redis\n")
	t.Setenv("JOYCITY_STORAGE", "memory")
	t.Setenv("KAFKA_BROKERS", "a:1, b:2,")
	t.Setenv("JOYCITY_LEAD_TIME_DAYS", "6")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.Storage.Backend)
	assert.Equal(t, []string{"a:1", "b:2"}, cfg.Events.KafkaBrokers)
	assert.Equal(t, 6, cfg.Order.LeadTimeDays)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")

	_, err = Load(writeConfig(t, "http: [unclosed"))
	assert.ErrorContains(t, err, "failed to parse config")

	t.Setenv("JOYCITY_LEAD_TIME_DAYS", "soon")
	_, err = Load("")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown backend", func(c *Config) { c.Storage.Backend = "mongo" }, `unknown storage backend "mongo"`},
		{"sqlite without path", func(c *Config) { c.Storage.SQLitePath = "" }, "sqlite_path is required"},
		{"negative lead time", func(c *Config) { c.Order.LeadTimeDays = -1 }, "lead_time_days must be >= 0"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, `unknown log level "loud"`},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format must be text or json"},
		{"no scope", func(c *Config) { c.CartScope = "" }, "cart_scope is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	level, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}
