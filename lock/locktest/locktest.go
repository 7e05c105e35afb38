// Package locktest provides a conformance suite for lock.Locker implementations.
package locktest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/gonormalizr/lock"
)

// RunLockerTests exercises a Locker created by factory.
func RunLockerTests(t *testing.T, factory func(t *testing.T) lock.Locker) {
	t.Run("SameKeySerializes", func(t *testing.T) { testSameKeySerializes(t, factory(t)) })
	t.Run("DistinctKeysConcurrent", func(t *testing.T) { testDistinctKeys(t, factory(t)) })
	t.Run("ContextCancelWhileWaiting", func(t *testing.T) { testCancel(t, factory(t)) })
	t.Run("DoubleUnlock", func(t *testing.T) { testDoubleUnlock(t, factory(t)) })
}

// key returns a key unique to one run so shared backends do not collide.
func key(name string) string { return name + ":" + uuid.NewString() }

func testSameKeySerializes(t *testing.T, l lock.Locker) {
	ctx := context.Background()
	k := key("same")
	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, k)
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			assert.NoError(t, unlock(ctx))
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInside))
}

func testDistinctKeys(t *testing.T, l lock.Locker) {
	ctx := context.Background()
	a, err := l.Lock(ctx, key("a"))
	require.NoError(t, err)
	defer func() { _ = a(ctx) }()

	done := make(chan error, 1)
	go func() {
		b, err := l.Lock(ctx, key("b"))
		if err == nil {
			err = b(ctx)
		}
		done <- err
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("distinct key blocked behind a held key")
	}
}

func testCancel(t *testing.T, l lock.Locker) {
	ctx := context.Background()
	k := key("cancel")
	held, err := l.Lock(ctx, k)
	require.NoError(t, err)

	wctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = l.Lock(wctx, k)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)

	require.NoError(t, held(ctx))
	again, err := l.Lock(ctx, k)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

func testDoubleUnlock(t *testing.T, l lock.Locker) {
	ctx := context.Background()
	unlock, err := l.Lock(ctx, key("double"))
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))
	assert.ErrorIs(t, unlock(ctx), lock.ErrNotHeld)
}
