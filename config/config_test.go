package config_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/gonormalizr/config"
	"github.com/reoring/gonormalizr/lock"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := config.FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.LockBackend)
	assert.Equal(t, 30*time.Second, cfg.LockTTL)
	assert.Equal(t, 32, cfg.ValidatorMaxDepth)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("NORMALIZR_LOG_LEVEL", "debug")
	t.Setenv("NORMALIZR_LOG_FORMAT", "json")
	t.Setenv("NORMALIZR_LOCK_TTL", "5s")
	t.Setenv("NORMALIZR_LOCK_PREFIX", "test:")
	t.Setenv("NORMALIZR_VALIDATOR_MAX_DEPTH", "4")

	cfg, err := config.FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 5*time.Second, cfg.LockTTL)
	assert.Equal(t, "test:", cfg.LockPrefix)
	assert.Equal(t, 4, cfg.Validator().MaxDepth)
}

func TestFromEnv_Invalid(t *testing.T) {
	t.Setenv("NORMALIZR_LOCK_BACKEND", "etcd")
	_, err := config.FromEnv()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	cfg.LogFormat = "xml"
	require.Error(t, cfg.Validate())

	cfg = config.Default()
	cfg.LogLevel = "loud"
	require.Error(t, cfg.Validate())
}

func TestLogger_JSON(t *testing.T) {
	cfg := config.Default()
	cfg.LogFormat = "json"
	cfg.LogLevel = "warn"

	var buf bytes.Buffer
	log := cfg.Logger(&buf)
	log.Info().Msg("hidden")
	log.Warn().Str("op", "normalize").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"op":"normalize"`)
}

func TestLocker_Memory(t *testing.T) {
	l, closeFn, err := config.Default().Locker(context.Background())
	require.NoError(t, err)
	defer func() { require.NoError(t, closeFn()) }()
	_, ok := l.(*lock.Memory)
	require.True(t, ok)

	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	require.NoError(t, unlock(context.Background()))
}

func TestLocker_RedisUnreachable(t *testing.T) {
	cfg := config.Default()
	cfg.LockBackend = "redis"
	cfg.RedisAddr = "127.0.0.1:1"
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, _, err := cfg.Locker(ctx)
	require.Error(t, err)
}
