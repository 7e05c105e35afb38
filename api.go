package normalizr

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Redactor is an optional pre/post transform applied to whole values. The
// engines call it but do not implement any redaction policy.
type Redactor interface {
	Redact(ctx context.Context, v any) (any, error)
}

// RedactorFunc adapts a function to Redactor.
type RedactorFunc func(ctx context.Context, v any) (any, error)

func (f RedactorFunc) Redact(ctx context.Context, v any) (any, error) { return f(ctx, v) }

// Normalize decomposes data into an EntityStore plus a result reference, guided
// by the first declared entry of schema. Any failure is returned as a single
// *NormalizationError and no partial store is exposed.
func Normalize(ctx context.Context, data any, schema Schema, opts ...Options) (NormalizedData, error) {
	opt := pickOptions(opts)
	var nd NormalizedData
	err := observe(ctx, OpNormalize, opt, func() error {
		var err error
		nd, err = normalize(ctx, data, schema, opt)
		return err
	}, func(ev *zerolog.Event) *zerolog.Event {
		return ev.Int("entities", nd.Entities.Len()).Strs("types", nd.Entities.Types())
	})
	if err != nil {
		return NormalizedData{}, err
	}
	return nd, nil
}

// Denormalize reconstructs the nested value described by nd and schema. Any
// failure is returned as a single *DenormalizationError.
func Denormalize(ctx context.Context, nd NormalizedData, schema Schema, opts ...Options) (any, error) {
	opt := pickOptions(opts)
	var out any
	err := observe(ctx, OpDenormalize, opt, func() error {
		var err error
		out, err = denormalize(ctx, nd, schema, opt)
		return err
	}, func(ev *zerolog.Event) *zerolog.Event {
		return ev.Int("entities", nd.Entities.Len())
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func loggerFor(ctx context.Context, opt Options) *zerolog.Logger {
	if opt.Logger != nil {
		return opt.Logger
	}
	return zerolog.Ctx(ctx)
}

// observe emits the start/end/error events around one engine call.
func observe(ctx context.Context, op Operation, opt Options, run func() error, done func(*zerolog.Event) *zerolog.Event) error {
	log := loggerFor(ctx, opt)
	log.Debug().Str("op", string(op)).Msg(string(op) + " start")
	start := time.Now()
	err := run()
	took := time.Since(start)
	if opt.Observer != nil {
		opt.Observer.ObserveOperation(op, took, err)
	}
	if err != nil {
		ev := log.Warn().Str("op", string(op)).Dur("took", took).Err(err)
		if it, cls, ok := issueOf(err); ok {
			ev = ev.Str("code", it.Code).Str("path", it.Path).Str("class", cls.String()).Fields(it.Context)
		}
		ev.Msg(string(op) + " failed")
		return err
	}
	done(log.Debug().Str("op", string(op)).Dur("took", took)).Msg(string(op) + " complete")
	return nil
}

func issueOf(err error) (Issue, ErrorClass, bool) {
	if ne, ok := AsNormalizationError(err); ok {
		return ne.Issue, ne.Class, true
	}
	if de, ok := AsDenormalizationError(err); ok {
		return de.Issue, de.Class, true
	}
	return Issue{}, ClassUnexpected, false
}

// recoverInternal converts a panic escaping the engines into an internal Issue.
func recoverInternal(r any) error {
	if err, ok := r.(error); ok {
		return &Issue{Code: CodeInternal, Message: err.Error(), Cause: err}
	}
	return &Issue{Code: CodeInternal, Message: fmt.Sprint(r)}
}
