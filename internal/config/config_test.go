package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), ".env")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_TYPE", StorageMemory)
	t.Setenv("JWT_ACCESS_SECRET", testSecret)

	cfg, err := load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, 3, cfg.Discovery.WindowSize)
	assert.Equal(t, 0.15, cfg.Discovery.CommitFraction)
	assert.Equal(t, 3*time.Second, cfg.Discovery.MatchEmptyDelay)
	assert.Equal(t, LockRedis, cfg.Matching.LockBackend)
	assert.Equal(t, 10*time.Second, cfg.Matching.LockTTL)
	assert.Empty(t, cfg.Broker.AMQPURL)
	assert.Equal(t, "localhost:6379", cfg.Redis.GetAddr())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STORAGE_TYPE", StoragePostgres)
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "finder")
	t.Setenv("DB_NAME", "partners")
	t.Setenv("JWT_ACCESS_SECRET", testSecret)
	t.Setenv("DISCOVERY_MATCH_EMPTY_DELAY", "5s")
	t.Setenv("MATCH_LOCK_BACKEND", LockMemory)

	cfg, err := load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Discovery.MatchEmptyDelay)
	assert.Equal(t, LockMemory, cfg.Matching.LockBackend)
	assert.Equal(t, "host=db port=5432 user=finder password= dbname=partners sslmode=disable", cfg.Database.GetDSN())
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "STORAGE_TYPE=memory\nJWT_ACCESS_SECRET=" + testSecret + "\nDISCOVERY_WINDOW_SIZE=5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Discovery.WindowSize)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Storage:   StorageConfig{Type: StorageMemory},
			JWT:       JWTConfig{AccessSecret: testSecret},
			Discovery: DiscoveryConfig{WindowSize: 3, ScreenWidth: 390, CommitFraction: 0.15},
			Matching:  MatchingConfig{LockBackend: LockMemory, LockTTL: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"postgres without host", func(c *Config) { c.Storage.Type = StoragePostgres }, "database host is required"},
		{"unknown storage", func(c *Config) { c.Storage.Type = "sqlite" }, "unknown storage type"},
		{"short secret", func(c *Config) { c.JWT.AccessSecret = "short" }, "at least 32 characters"},
		{"zero window", func(c *Config) { c.Discovery.WindowSize = 0 }, "window size"},
		{"commit fraction of one", func(c *Config) { c.Discovery.CommitFraction = 1 }, "commit fraction"},
		{"unknown lock backend", func(c *Config) { c.Matching.LockBackend = "etcd" }, "unknown lock backend"},
		{"broker without exchange", func(c *Config) { c.Broker.AMQPURL = "amqp://localhost" }, "AMQP exchange"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
