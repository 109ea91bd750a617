// Package config loads process settings from the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port          string        `env:"PORT,           default=3000"`
	Env           string        `env:"ENV,            default=development"`
	LogLevel      string        `env:"LOG_LEVEL,      default=info"`
	SessionSecret string        `env:"SESSION_SECRET, default=dev-secret"`
	SessionTTL    time.Duration `env:"SESSION_TTL,    default=168h"`

	Mongo     MongoConfig
	Redis     RedisConfig
	WebSocket WebSocketConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://127.0.0.1:27017"`
	Database string `env:"MONGO_DB,  default=modern_forum"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type WebSocketConfig struct {
	// AllowedOrigins lists accepted Origin headers; "*" accepts any.
	AllowedOrigins []string      `env:"WS_ALLOWED_ORIGINS, default=*"`
	RateBurst      int           `env:"WS_RATE_BURST,      default=5"`
	RateInterval   time.Duration `env:"WS_RATE_INTERVAL,   default=1s"`
}

// IsDevelopment reports whether pretty logs and other dev affordances apply.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads an optional .env file (existing variables win) and then the
// environment.
func Load(ctx context.Context, dotenv ...string) (*Config, error) {
	if err := godotenv.Load(dotenv...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load dotenv: %w", err)
	}
	return process(ctx, envconfig.OsLookuper())
}

func process(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("config: SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	if cfg.WebSocket.RateBurst <= 0 || cfg.WebSocket.RateInterval <= 0 {
		return nil, errors.New("config: WS_RATE_BURST and WS_RATE_INTERVAL must be positive")
	}
	return &cfg, nil
}
