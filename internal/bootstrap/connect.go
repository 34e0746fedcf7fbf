// Package bootstrap opens the store and database connections shared by the
// server and seeder commands.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/HoonDongKang/daily-ranking-redis/internal/config"
	"github.com/HoonDongKang/daily-ranking-redis/internal/repository"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// PoolSize sizes connection pools for a process
type PoolSize struct {
	RedisPool    int
	RedisIdle    int
	DatabaseOpen int
	DatabaseIdle int
}

// ServerPools suits the HTTP server
var ServerPools = PoolSize{RedisPool: 20, RedisIdle: 5, DatabaseOpen: 30, DatabaseIdle: 10}

// SeederPools suits bulk seeding
var SeederPools = PoolSize{RedisPool: 50, RedisIdle: 10, DatabaseOpen: 50, DatabaseIdle: 10}

// OpenStore returns the Store selected by STORE_DRIVER
func OpenStore(cfg *config.Config, clock clockwork.Clock, pools PoolSize) (repository.Store, error) {
	switch cfg.Redis.Driver {
	case config.StoreDriverMemory:
		return repository.NewMemoryStore(clock), nil
	case config.StoreDriverRedis:
		client, err := InitRedis(cfg, pools)
		if err != nil {
			return nil, err
		}
		return repository.NewRedisRepository(client), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Redis.Driver)
	}
}

// InitRedis initializes Redis connection with connection pooling
func InitRedis(cfg *config.Config, pools PoolSize) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Username:     cfg.Redis.Username,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     pools.RedisPool,
		MinIdleConns: pools.RedisIdle,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.GetRedisAddr(), err)
	}

	return client, nil
}

// InitPostgres initializes the archive database with connection pooling
func InitPostgres(cfg *config.Config, pools PoolSize) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Max connections should cover every archive worker
	sqlDB.SetMaxOpenConns(pools.DatabaseOpen)
	sqlDB.SetMaxIdleConns(pools.DatabaseIdle)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(2 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	return db, nil
}
