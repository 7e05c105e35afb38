package normalizr

import (
	"context"
	"fmt"
	"time"

	"github.com/reoring/gonormalizr/lock"
)

// Gate serializes calls whose (input, schema) fingerprints are identical.
// Calls with different fingerprints run concurrently.
type Gate struct {
	locker lock.Locker
}

// NewGate returns a Gate backed by l; nil selects an in-process locker.
func NewGate(l lock.Locker) *Gate {
	if l == nil {
		l = lock.NewMemory()
	}
	return &Gate{locker: l}
}

var defaultGate = NewGate(nil)

// DefaultGate is the process-wide gate used by SafeNormalize and SafeDenormalize.
func DefaultGate() *Gate { return defaultGate }

// SafeNormalize runs Normalize under the default gate.
func SafeNormalize(ctx context.Context, data any, schema Schema, opts ...Options) (NormalizedData, error) {
	return defaultGate.SafeNormalize(ctx, data, schema, opts...)
}

// SafeDenormalize runs Denormalize under the default gate.
func SafeDenormalize(ctx context.Context, nd NormalizedData, schema Schema, opts ...Options) (any, error) {
	return defaultGate.SafeDenormalize(ctx, nd, schema, opts...)
}

// SafeNormalize waits for the lock keyed by the fingerprint of (data, schema),
// then runs Normalize. Only the wait honours ctx; the engine call does not yield.
func (g *Gate) SafeNormalize(ctx context.Context, data any, schema Schema, opts ...Options) (NormalizedData, error) {
	var nd NormalizedData
	err := g.do(ctx, OpNormalize, data, schema, opts, func() error {
		var err error
		nd, err = Normalize(ctx, data, schema, opts...)
		return err
	})
	return nd, err
}

// SafeDenormalize is the Denormalize counterpart of SafeNormalize.
func (g *Gate) SafeDenormalize(ctx context.Context, nd NormalizedData, schema Schema, opts ...Options) (any, error) {
	var out any
	input := map[string]any{"entities": map[string]map[string]any(nd.Entities), "result": nd.Result}
	err := g.do(ctx, OpDenormalize, input, schema, opts, func() error {
		var err error
		out, err = Denormalize(ctx, nd, schema, opts...)
		return err
	})
	return out, err
}

func (g *Gate) do(ctx context.Context, op Operation, input any, schema Schema, opts []Options, run func() error) error {
	opt := pickOptions(opts)
	fp, err := Fingerprint(input, schema)
	if err != nil {
		return fmt.Errorf("normalizr: fingerprint %s input: %w", op, err)
	}
	key := string(op) + ":" + fp
	log := loggerFor(ctx, opt)

	start := time.Now()
	unlock, err := g.locker.Lock(ctx, key)
	if err != nil {
		return fmt.Errorf("normalizr: acquire %s gate: %w", op, err)
	}
	waited := time.Since(start)
	if opt.Observer != nil {
		opt.Observer.ObserveGateWait(op, waited)
	}
	log.Debug().Str("op", string(op)).Str("key", key).Dur("waited", waited).Msg("gate acquired")

	runErr := run()
	if err := unlock(context.WithoutCancel(ctx)); err != nil {
		log.Warn().Str("op", string(op)).Str("key", key).Err(err).Msg("gate release failed")
	}
	return runErr
}
