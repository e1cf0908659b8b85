package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	LockRedis  = "redis"
	LockMemory = "memory"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Logging   LoggingConfig
	Discovery DiscoveryConfig
	Matching  MatchingConfig
	Broker    BrokerConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	AccessSecret string
}

type StorageConfig struct {
	Type string
}

type LoggingConfig struct {
	Level string
}

// DiscoveryConfig tunes the card stack sessions.
type DiscoveryConfig struct {
	WindowSize         int
	ScreenWidth        float64
	CommitFraction     float64
	PendingEmptyDelay  time.Duration
	MatchEmptyDelay    time.Duration
	SessionIdleTimeout time.Duration
}

type MatchingConfig struct {
	LockBackend string
	LockTTL     time.Duration
	LockPrefix  string
}

// BrokerConfig is optional; an empty URL disables AMQP publishing.
type BrokerConfig struct {
	AMQPURL  string
	Exchange string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("ENV", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", 15*time.Second)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 15*time.Second)

	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSL_MODE", "disable")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)

	v.SetDefault("STORAGE_TYPE", StoragePostgres)
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DISCOVERY_WINDOW_SIZE", 3)
	v.SetDefault("DISCOVERY_SCREEN_WIDTH", 390.0)
	v.SetDefault("DISCOVERY_COMMIT_FRACTION", 0.15)
	v.SetDefault("DISCOVERY_PENDING_EMPTY_DELAY", 300*time.Millisecond)
	v.SetDefault("DISCOVERY_MATCH_EMPTY_DELAY", 3*time.Second)
	v.SetDefault("DISCOVERY_SESSION_IDLE_TIMEOUT", 30*time.Minute)

	v.SetDefault("MATCH_LOCK_BACKEND", LockRedis)
	v.SetDefault("MATCH_LOCK_TTL", 10*time.Second)
	v.SetDefault("MATCH_LOCK_PREFIX", "partnerfinder:lock:")

	v.SetDefault("AMQP_EXCHANGE", "partnerfinder.matches")
}

// Load loads configuration from environment variables or .env file
func Load() (*Config, error) {
	return load(".env")
}

func load(envFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	// Try to read from .env file, but don't fail if it doesn't exist
	_ = v.ReadInConfig()

	config := &Config{
		Server: ServerConfig{
			Host:         v.GetString("SERVER_HOST"),
			Port:         v.GetInt("SERVER_PORT"),
			Env:          v.GetString("ENV"),
			ReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSL_MODE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Storage: StorageConfig{
			Type: v.GetString("STORAGE_TYPE"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Discovery: DiscoveryConfig{
			WindowSize:         v.GetInt("DISCOVERY_WINDOW_SIZE"),
			ScreenWidth:        v.GetFloat64("DISCOVERY_SCREEN_WIDTH"),
			CommitFraction:     v.GetFloat64("DISCOVERY_COMMIT_FRACTION"),
			PendingEmptyDelay:  v.GetDuration("DISCOVERY_PENDING_EMPTY_DELAY"),
			MatchEmptyDelay:    v.GetDuration("DISCOVERY_MATCH_EMPTY_DELAY"),
			SessionIdleTimeout: v.GetDuration("DISCOVERY_SESSION_IDLE_TIMEOUT"),
		},
		Matching: MatchingConfig{
			LockBackend: v.GetString("MATCH_LOCK_BACKEND"),
			LockTTL:     v.GetDuration("MATCH_LOCK_TTL"),
			LockPrefix:  v.GetString("MATCH_LOCK_PREFIX"),
		},
		Broker: BrokerConfig{
			AMQPURL:  v.GetString("AMQP_URL"),
			Exchange: v.GetString("AMQP_EXCHANGE"),
		},
	}

	// Validate critical configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates critical configuration values
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case StoragePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("database name is required")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}

	if c.JWT.AccessSecret == "" {
		return fmt.Errorf("JWT access secret is required")
	}
	if len(c.JWT.AccessSecret) < 32 {
		return fmt.Errorf("JWT access secret must be at least 32 characters")
	}

	if c.Discovery.WindowSize < 1 {
		return fmt.Errorf("discovery window size must be positive")
	}
	if c.Discovery.ScreenWidth <= 0 {
		return fmt.Errorf("discovery screen width must be positive")
	}
	if c.Discovery.CommitFraction <= 0 || c.Discovery.CommitFraction >= 1 {
		return fmt.Errorf("discovery commit fraction must be between 0 and 1")
	}

	switch c.Matching.LockBackend {
	case LockRedis, LockMemory:
	default:
		return fmt.Errorf("unknown lock backend %q", c.Matching.LockBackend)
	}
	if c.Matching.LockTTL <= 0 {
		return fmt.Errorf("match lock TTL must be positive")
	}

	if c.Broker.AMQPURL != "" && c.Broker.Exchange == "" {
		return fmt.Errorf("AMQP exchange is required when AMQP_URL is set")
	}
	return nil
}

func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
