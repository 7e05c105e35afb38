package normalizr_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	normalizr "github.com/reoring/gonormalizr"
	"github.com/reoring/gonormalizr/dsl"
	"github.com/reoring/gonormalizr/lock"
)

// slowRegistry returns a registry whose "slow" handler records how many calls
// overlap.
func slowRegistry(inside, maxInside *int32) *normalizr.Registry {
	reg := normalizr.NewRegistry()
	_ = reg.Register("slow", normalizr.HandlerFuncs{
		NormalizeFunc: func(_ context.Context, v any, _ *normalizr.CustomSchema, _ normalizr.EntityStore) (any, error) {
			n := atomic.AddInt32(inside, 1)
			for {
				m := atomic.LoadInt32(maxInside)
				if n <= m || atomic.CompareAndSwapInt32(maxInside, m, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt32(inside, -1)
			return v, nil
		},
	})
	return reg
}

func slowSchema() normalizr.Schema {
	return normalizr.NewSchema("job", dsl.Object("job").Field("id", dsl.String()).Field("payload", dsl.Custom("slow")).Build())
}

func TestGate_IdenticalCallsSerialize(t *testing.T) {
	var inside, maxInside int32
	o := normalizr.Options{Registry: slowRegistry(&inside, &maxInside)}
	gate := normalizr.NewGate(nil)
	data := map[string]any{"id": "j1", "payload": "p"}

	results := make([]normalizr.NormalizedData, 4)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			nd, err := gate.SafeNormalize(context.Background(), data, slowSchema(), o)
			assert.NoError(t, err)
			results[i] = nd
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	for _, r := range results[1:] {
		assert.Equal(t, results[0], r)
	}
}

func TestGate_DistinctCallsRunConcurrently(t *testing.T) {
	var inside, maxInside int32
	o := normalizr.Options{Registry: slowRegistry(&inside, &maxInside)}
	gate := normalizr.NewGate(nil)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := gate.SafeNormalize(context.Background(), map[string]any{"id": "j", "payload": string(rune('a' + i))}, slowSchema(), o)
			assert.NoError(t, err)
		}(i)
	}
	close(start)
	wg.Wait()
	assert.Greater(t, maxInside, int32(1))
}

func TestGate_WaitHonoursContext(t *testing.T) {
	l := lock.NewMemory()
	gate := normalizr.NewGate(l)
	data := map[string]any{"id": "1"}
	s := userSchema()

	fp, err := normalizr.Fingerprint(data, s)
	require.NoError(t, err)
	unlock, err := l.Lock(context.Background(), "normalize:"+fp)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = gate.SafeNormalize(ctx, data, s, opts())
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(context.Background()))
	nd, err := gate.SafeNormalize(context.Background(), data, s, opts())
	require.NoError(t, err)
	assert.Equal(t, "1", nd.Result)
	assert.Equal(t, 0, l.Len())
}

func TestGate_PropagatesEngineErrors(t *testing.T) {
	_, err := normalizr.SafeNormalize(context.Background(), map[string]any{"id": "1", "age": 1}, userSchema(), opts())
	requireNormErr(t, err, normalizr.CodeTooSmall)

	_, err = normalizr.SafeDenormalize(context.Background(), normalizr.NormalizedData{Result: "1"}, userSchema(), opts())
	requireDenormErr(t, err, normalizr.CodeMissingEntity)
}

func TestSafeRoundTrip(t *testing.T) {
	ctx := context.Background()
	in := map[string]any{"id": "1", "name": "a", "friends": []any{map[string]any{"id": "2"}}}
	nd, err := normalizr.SafeNormalize(ctx, in, userSchema(), opts())
	require.NoError(t, err)
	out, err := normalizr.SafeDenormalize(ctx, nd, userSchema(), opts())
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Same(t, normalizr.DefaultGate(), normalizr.DefaultGate())
}

func TestFingerprint(t *testing.T) {
	s := userSchema()
	fp := func(v any, s normalizr.Schema) string {
		t.Helper()
		out, err := normalizr.Fingerprint(v, s)
		require.NoError(t, err)
		return out
	}

	a := fp(map[string]any{"id": "1", "age": 30, "name": "x"}, s)
	assert.Equal(t, a, fp(map[string]any{"name": "x", "age": 30.0, "id": "1"}, s), "key order and number kind do not matter")
	assert.NotEqual(t, a, fp(map[string]any{"id": "1", "age": "30", "name": "x"}, s), "string and number differ")
	assert.NotEqual(t, a, fp(map[string]any{"id": "1", "age": 31, "name": "x"}, s))
	assert.NotEqual(t, a, fp(map[string]any{"id": "1", "age": 30, "name": "x"}, normalizr.NewSchema("other", dsl.Object("user").Build())))

	// equal shapes built separately fingerprint the same
	assert.Equal(t, fp(nil, userSchema()), fp(nil, userSchema()))

	// cyclic values terminate
	c := map[string]any{"id": "1"}
	c["self"] = c
	assert.NotEmpty(t, fp(c, s))

	type point struct{ X, Y int }
	assert.Equal(t, fp(point{1, 2}, s), fp(point{1, 2}, s))
	assert.NotEqual(t, fp(point{1, 2}, s), fp(point{2, 1}, s))
}
