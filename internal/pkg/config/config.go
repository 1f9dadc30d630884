package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	LockLocal = "local"
	LockRedis = "redis"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`
	// Timezone names the IANA zone that defines "today".
	Timezone string `env:"TIMEZONE, default=Local"`

	Clock ClockConfig
	Mongo MongoConfig
	Redis RedisConfig
	Seed  SeedConfig

	QuoteCacheTTL time.Duration `env:"QUOTE_CACHE_TTL, default=1m"`
}

// ClockConfig selects how clock actions of one user are serialized.
type ClockConfig struct {
	Lock    string `env:"CLOCK_LOCK,    default=local"`
	Workers int    `env:"CLOCK_WORKERS, default=8"`
}

type MongoConfig struct {
	URI          string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database     string `env:"MONGO_DB,  default=timeclock"`
	Transactions bool   `env:"MONGO_TRANSACTIONS, default=true"`
}

type RedisConfig struct {
	Addr    string        `env:"REDIS_ADDR, default=localhost:6379"`
	DB      int           `env:"REDIS_DB,   default=0"`
	LockTTL time.Duration `env:"REDIS_LOCK_TTL, default=10s"`
}

type SeedConfig struct {
	AdminEmail    string `env:"SEED_ADMIN_EMAIL,    default=admin@example.com"`
	AdminUsername string `env:"SEED_ADMIN_USERNAME, default=admin"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through l.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// IsDevelopment reports whether ENV selects the development profile.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: TIMEZONE: %w", err)
	}
	return loc, nil
}

func (c *Config) validate() error {
	switch c.Clock.Lock {
	case LockLocal, LockRedis:
	default:
		return fmt.Errorf("CLOCK_LOCK must be %q or %q, got %q", LockLocal, LockRedis, c.Clock.Lock)
	}
	if c.Clock.Workers <= 0 {
		return fmt.Errorf("CLOCK_WORKERS must be positive, got %d", c.Clock.Workers)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}
	return nil
}
