package normalizr

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// EntityID identifies an entity within one type partition. It holds either a
// string or an int64; the zero value is the empty string id.
type EntityID struct {
	str   string
	num   int64
	isNum bool
}

// StringID returns a string EntityID.
func StringID(s string) EntityID { return EntityID{str: s} }

// IntID returns a numeric EntityID.
func IntID(n int64) EntityID { return EntityID{num: n, isNum: true} }

// IsNumeric reports whether the id was built from a number.
func (id EntityID) IsNumeric() bool { return id.isNum }

// Key returns the store key. Numeric ids render as decimal text.
func (id EntityID) Key() string {
	if id.isNum {
		return strconv.FormatInt(id.num, 10)
	}
	return id.str
}

// Value returns the id as written into normalized trees: string or int64.
func (id EntityID) Value() any {
	if id.isNum {
		return id.num
	}
	return id.str
}

func (id EntityID) String() string { return id.Key() }

// AsEntityID converts a scalar into an EntityID. Accepted inputs are strings,
// Go integer kinds, integral floats and integral json.Number values.
func AsEntityID(v any) (EntityID, bool) {
	switch t := v.(type) {
	case EntityID:
		return t, true
	case string:
		return StringID(t), true
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return IntID(i), true
		}
		f, err := t.Float64()
		if err != nil {
			return EntityID{}, false
		}
		return floatID(f)
	case float64:
		return floatID(t)
	case float32:
		return floatID(float64(t))
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return IntID(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return EntityID{}, false
		}
		return IntID(int64(u)), true
	}
	return EntityID{}, false
}

func floatID(f float64) (EntityID, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return EntityID{}, false
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return EntityID{}, false
	}
	return IntID(int64(f)), true
}

// isReference reports whether v is an EntityID or a slice whose elements all are.
func isReference(v any) bool {
	if _, ok := AsEntityID(v); ok {
		return true
	}
	arr, ok := asSlice(v)
	if !ok {
		return false
	}
	for _, e := range arr {
		if _, ok := AsEntityID(e); !ok {
			return false
		}
	}
	return true
}

// NormalizedData is the output of Normalize and the input of Denormalize.
// Result holds an id value, a []any of id values, or an inline normalized value.
type NormalizedData struct {
	Entities EntityStore `json:"entities"`
	Result   any         `json:"result"`
}

// Options bundles the collaborators of a normalize/denormalize call. The zero
// value is usable: DefaultValidator, the package default registry and the
// context logger are used.
type Options struct {
	Registry  *Registry
	Validator Validator
	// Logger overrides zerolog.Ctx(ctx).
	Logger *zerolog.Logger
	// Redactor runs on the input of Normalize.
	Redactor Redactor
	// PresentRedactor runs on the output of Denormalize.
	PresentRedactor Redactor
	Observer        Observer
	// SkipValidation disables the schema validator gate.
	SkipValidation bool
}

func pickOptions(opts []Options) Options {
	var opt Options
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if opt.Registry == nil {
		opt.Registry = DefaultRegistry()
	}
	if opt.Validator == nil {
		opt.Validator = DefaultValidator{}
	}
	return opt
}

// Operation names a traversal direction for logging and observation.
type Operation string

const (
	OpNormalize   Operation = "normalize"
	OpDenormalize Operation = "denormalize"
)

// Observer receives timing information for completed operations.
type Observer interface {
	ObserveOperation(op Operation, d time.Duration, err error)
	ObserveGateWait(op Operation, d time.Duration)
}
