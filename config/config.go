// Package config loads runtime settings from the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	normalizr "github.com/reoring/gonormalizr"
	"github.com/reoring/gonormalizr/lock"
	"github.com/reoring/gonormalizr/lock/redislock"
)

// Config holds the environment-driven settings. Defaults are provided via struct tags.
type Config struct {
	// LogLevel is a zerolog level name. ENV: NORMALIZR_LOG_LEVEL
	LogLevel string `env:"NORMALIZR_LOG_LEVEL,default=info"`
	// LogFormat is "console" or "json". ENV: NORMALIZR_LOG_FORMAT
	LogFormat string `env:"NORMALIZR_LOG_FORMAT,default=console"`

	// LockBackend is "memory" or "redis". ENV: NORMALIZR_LOCK_BACKEND
	LockBackend string `env:"NORMALIZR_LOCK_BACKEND,default=memory"`
	// RedisAddr like "localhost:6379". ENV: NORMALIZR_REDIS_ADDR
	RedisAddr  string        `env:"NORMALIZR_REDIS_ADDR,default=localhost:6379"`
	LockPrefix string        `env:"NORMALIZR_LOCK_PREFIX,default=normalizr:gate:"`
	LockTTL    time.Duration `env:"NORMALIZR_LOCK_TTL,default=30s"`
	LockRetry  time.Duration `env:"NORMALIZR_LOCK_RETRY,default=25ms"`

	// ValidatorMaxDepth bounds schema nesting. ENV: NORMALIZR_VALIDATOR_MAX_DEPTH
	ValidatorMaxDepth int `env:"NORMALIZR_VALIDATOR_MAX_DEPTH,default=32"`
}

// Default returns the configuration used when no variable is set.
func Default() Config {
	return Config{
		LogLevel:          "info",
		LogFormat:         "console",
		LockBackend:       "memory",
		RedisAddr:         "localhost:6379",
		LockPrefix:        "normalizr:gate:",
		LockTTL:           30 * time.Second,
		LockRetry:         25 * time.Millisecond,
		ValidatorMaxDepth: normalizr.DefaultMaxDepth,
	}
}

// FromEnv decodes Config from the process environment.
func FromEnv() (Config, error) {
	cfg := Default()
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch strings.ToLower(c.LockBackend) {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: unknown lock backend %q", c.LockBackend)
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.ValidatorMaxDepth < 0 {
		return fmt.Errorf("config: validator max depth %d is negative", c.ValidatorMaxDepth)
	}
	return nil
}

// Logger builds a zerolog logger writing to w.
func (c Config) Logger(w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || c.LogLevel == "" {
		lvl = zerolog.InfoLevel
	}
	if strings.EqualFold(c.LogFormat, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Validator returns the schema validator configured by ValidatorMaxDepth.
func (c Config) Validator() normalizr.DefaultValidator {
	return normalizr.DefaultValidator{MaxDepth: c.ValidatorMaxDepth}
}

// Locker builds the gate lock backend. The returned close function releases
// backend resources and is never nil.
func (c Config) Locker(ctx context.Context) (lock.Locker, func() error, error) {
	if !strings.EqualFold(c.LockBackend, "redis") {
		return lock.NewMemory(), func() error { return nil }, nil
	}
	cl := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
	if err := cl.Ping(ctx).Err(); err != nil {
		_ = cl.Close()
		return nil, nil, fmt.Errorf("config: redis ping %s: %w", c.RedisAddr, err)
	}
	l, err := redislock.New(redislock.Config{
		Client:        cl,
		KeyPrefix:     c.LockPrefix,
		TTL:           c.LockTTL,
		RetryInterval: c.LockRetry,
	})
	if err != nil {
		_ = cl.Close()
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	return l, cl.Close, nil
}
