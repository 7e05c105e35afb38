package normalizr

import (
	"encoding/json"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"sync"
	"unicode/utf8"
)

// NormalizePrimitive validates a scalar against a primitive schema and returns
// it unmodified.
func NormalizePrimitive(v any, s Primitive) (any, error) {
	return checkPrimitive(rootPath(), v, s)
}

// DenormalizePrimitive re-validates a stored scalar with the same rules and
// error taxonomy as NormalizePrimitive.
func DenormalizePrimitive(v any, s Primitive) (any, error) {
	return checkPrimitive(rootPath(), v, s)
}

func checkPrimitive(p *pathRef, v any, s Primitive) (any, error) {
	switch ps := s.(type) {
	case *StringSchema:
		str, ok := v.(string)
		if !ok {
			return nil, typeIssue(p, TypeString, v)
		}
		if err := ps.check(p, str); err != nil {
			return nil, err
		}
		return v, nil
	case *NumberSchema:
		f, ok := toFloat(v)
		if !ok {
			return nil, typeIssue(p, TypeNumber, v)
		}
		// NaN and infinities compare false against every bound
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, p.Issue(CodeInvalidType, "expected", string(TypeNumber), "actual", strconv.FormatFloat(f, 'g', -1, 64))
		}
		if err := ps.check(p, f); err != nil {
			return nil, err
		}
		return v, nil
	case *BooleanSchema:
		if _, ok := v.(bool); !ok {
			return nil, typeIssue(p, TypeBoolean, v)
		}
		return v, nil
	default:
		return nil, p.Issue(CodeInvalidSchema, "reason", "unsupported primitive")
	}
}

func typeIssue(p *pathRef, want PrimitiveType, v any) *Issue {
	return p.Issue(CodeInvalidType, "expected", string(want), "actual", typeName(v), "value", v)
}

func (s *StringSchema) check(p *pathRef, v string) error {
	n := utf8.RuneCountInString(v)
	if s.MinLength != nil && n < *s.MinLength {
		return p.Issue(CodeTooShort, "minLength", *s.MinLength, "length", n)
	}
	if s.MaxLength != nil && n > *s.MaxLength {
		return p.Issue(CodeTooLong, "maxLength", *s.MaxLength, "length", n)
	}
	if s.Pattern != "" {
		re, err := compilePattern(s.Pattern)
		if err != nil {
			return p.Wrap(CodeInvalidSchema, err, "pattern", s.Pattern)
		}
		if !re.MatchString(v) {
			return p.Issue(CodePattern, "pattern", s.Pattern, "value", v)
		}
	}
	return nil
}

func (s *NumberSchema) check(p *pathRef, f float64) error {
	if s.Minimum != nil && f < *s.Minimum {
		return p.Issue(CodeTooSmall, "minimum", *s.Minimum, "value", f)
	}
	if s.Maximum != nil && f > *s.Maximum {
		return p.Issue(CodeTooBig, "maximum", *s.Maximum, "value", f)
	}
	return nil
}

var patternCache sync.Map // string -> *regexp.Regexp

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if re, ok := patternCache.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	patternCache.Store(pattern, re)
	return re, nil
}

func isNumber(v any) bool {
	_, ok := toFloat(v)
	return ok
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case bool, string, nil:
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
