package redislock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/reoring/gonormalizr/lock"
)

// Config contains configuration options for the Redis locker.
type Config struct {
	// Client is the Redis client instance.
	Client redis.UniversalClient

	// KeyPrefix is the prefix for all lock keys.
	// Default: "normalizr:gate:"
	KeyPrefix string

	// TTL bounds how long an abandoned lock survives. Default: 30s.
	TTL time.Duration

	// RetryInterval is the polling period while waiting. Default: 25ms.
	RetryInterval time.Duration
}

// Locker implements lock.Locker using Redis.
type Locker struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
	retry     time.Duration
}

var _ lock.Locker = (*Locker)(nil)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// New creates a Redis-backed locker.
func New(config Config) (*Locker, error) {
	if config.Client == nil {
		return nil, fmt.Errorf("redis client is required")
	}

	// Apply defaults
	if config.KeyPrefix == "" {
		config.KeyPrefix = "normalizr:gate:"
	}
	if config.TTL <= 0 {
		config.TTL = 30 * time.Second
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = 25 * time.Millisecond
	}

	return &Locker{
		client:    config.Client,
		keyPrefix: config.KeyPrefix,
		ttl:       config.TTL,
		retry:     config.RetryInterval,
	}, nil
}

// Lock polls until the key is acquired or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string) (lock.Unlock, error) {
	redisKey := l.keyPrefix + key
	token := uuid.NewString()

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", redisKey, err)
		}
		if ok {
			return l.unlocker(redisKey, token), nil
		}
		timer.Reset(l.retry)
	}
}

func (l *Locker) unlocker(redisKey, token string) lock.Unlock {
	return func(ctx context.Context) error {
		n, err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Int()
		if err != nil {
			return fmt.Errorf("failed to release lock %s: %w", redisKey, err)
		}
		if n == 0 {
			return lock.ErrNotHeld
		}
		return nil
	}
}
