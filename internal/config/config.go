package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	// StoreDriverRedis backs the registry and ranking board with Redis
	StoreDriverRedis = "redis"

	// StoreDriverMemory keeps everything in process (single instance only)
	StoreDriverMemory = "memory"
)

// Config holds all configuration for the application
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Server   ServerConfig
	Game     GameConfig
	Worker   WorkerConfig
	Log      LogConfig
}

// DatabaseConfig holds database configuration for the game record archive
type DatabaseConfig struct {
	Enabled  bool
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Driver   string
	Host     string
	Port     int
	Username string
	Password string
	DB       int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         int
	AllowOrigins string

	// Per client IP limit on write endpoints; 0 disables it
	RateLimitRPS   float64
	RateLimitBurst int
}

// GameConfig holds the daily ranking rules
type GameConfig struct {
	Timezone                  string
	RankingSize               int
	ExpireRanking             bool
	RequireRegisteredNickname bool
}

// WorkerConfig sizes the archive worker pool
type WorkerConfig struct {
	Count     int
	QueueSize int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Pretty bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file from the parent directory first, then the working directory
	if err := godotenv.Load("../.env"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Debug().Msg("No .env file found, using environment variables")
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("DB_ENABLED", false),
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "timer_game"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Driver:   strings.ToLower(getEnv("STORE_DRIVER", StoreDriverRedis)),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Username: getEnv("REDIS_USERNAME", "default"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("BACKEND_PORT", 8000),
			AllowOrigins:   getEnv("CORS_ALLOW_ORIGINS", "*"),
			RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 0),
			RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 10),
		},
		Game: GameConfig{
			Timezone:                  getEnv("GAME_TIMEZONE", "Local"),
			RankingSize:               getEnvAsInt("RANKING_SIZE", 10),
			ExpireRanking:             getEnvAsBool("RANKING_EXPIRE", true),
			RequireRegisteredNickname: getEnvAsBool("REQUIRE_REGISTERED_NICKNAME", false),
		},
		Worker: WorkerConfig{
			Count:     getEnvAsInt("WORKER_COUNT", 4),
			QueueSize: getEnvAsInt("WORKER_QUEUE_SIZE", 256),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvAsBool("LOG_PRETTY", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	switch c.Redis.Driver {
	case StoreDriverRedis, StoreDriverMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Redis.Driver)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if c.Game.RankingSize <= 0 {
		return fmt.Errorf("RANKING_SIZE must be positive, got %d", c.Game.RankingSize)
	}
	if c.Worker.Count <= 0 || c.Worker.QueueSize <= 0 {
		return fmt.Errorf("WORKER_COUNT and WORKER_QUEUE_SIZE must be positive")
	}
	if c.Server.RateLimitRPS < 0 || (c.Server.RateLimitRPS > 0 && c.Server.RateLimitBurst <= 0) {
		return fmt.Errorf("RATE_LIMIT_RPS must be non-negative with a positive RATE_LIMIT_BURST")
	}

	return nil
}

// Location resolves the time zone that defines a game day
func (c *Config) Location() (*time.Location, error) {
	if c.Game.Timezone == "" || c.Game.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Game.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid GAME_TIMEZONE %q: %w", c.Game.Timezone, err)
	}
	return loc, nil
}

// GetDSN returns the PostgreSQL DSN
func (c *Config) GetDSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsFloat retrieves an environment variable as a float or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
