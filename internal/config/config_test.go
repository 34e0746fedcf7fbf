package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"STORE_DRIVER", "BACKEND_PORT", "RANKING_SIZE", "RANKING_EXPIRE", "DB_ENABLED", "GAME_TIMEZONE",
		"REQUIRE_REGISTERED_NICKNAME", "REDIS_HOST", "REDIS_PORT", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverRedis, cfg.Redis.Driver)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Game.RankingSize)
	assert.True(t, cfg.Game.ExpireRanking)
	assert.False(t, cfg.Game.RequireRegisteredNickname)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "localhost:6379", cfg.GetRedisAddr())
	assert.Zero(t, cfg.Server.RateLimitRPS)
	assert.Equal(t, 10, cfg.Server.RateLimitBurst)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("BACKEND_PORT", "3000")
	t.Setenv("RANKING_SIZE", "5")
	t.Setenv("RANKING_EXPIRE", "false")
	t.Setenv("REQUIRE_REGISTERED_NICKNAME", "true")
	t.Setenv("GAME_TIMEZONE", "Asia/Seoul")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/timer")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMemory, cfg.Redis.Driver)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Game.RankingSize)
	assert.False(t, cfg.Game.ExpireRanking)
	assert.True(t, cfg.Game.RequireRegisteredNickname)
	assert.Equal(t, "postgres://u:p@db/timer", cfg.GetDSN())
	assert.Equal(t, 2.5, cfg.Server.RateLimitRPS)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Seoul", loc.String())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Redis:  RedisConfig{Driver: StoreDriverRedis},
			Game:   GameConfig{Timezone: "UTC", RankingSize: 10},
			Worker: WorkerConfig{Count: 1, QueueSize: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Redis.Driver = "etcd" }, wantErr: true},
		{name: "bad timezone", mutate: func(c *Config) { c.Game.Timezone = "Mars/Olympus" }, wantErr: true},
		{name: "zero ranking size", mutate: func(c *Config) { c.Game.RankingSize = 0 }, wantErr: true},
		{name: "zero workers", mutate: func(c *Config) { c.Worker.Count = 0 }, wantErr: true},
		{name: "negative rate limit", mutate: func(c *Config) { c.Server.RateLimitRPS = -1 }, wantErr: true},
		{name: "rate limit without burst", mutate: func(c *Config) { c.Server.RateLimitRPS = 1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetDSNFromParts(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: 5433, User: "game", Password: "secret", DBName: "timer", SSLMode: "disable",
	}}
	assert.Equal(t, "host=db port=5433 user=game password=secret dbname=timer sslmode=disable", cfg.GetDSN())
}
