package normalizr

import (
	"encoding/json"
	"io"
	"math"
	"reflect"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
	gojson "github.com/goccy/go-json"
)

// Fingerprint hashes the canonical serialization of a value and a schema.
// Map keys are sorted, numbers are rendered by value (1, int64(1) and 1.0 hash
// alike) and self-referencing maps are written as back-references.
func Fingerprint(value any, schema Schema) (string, error) {
	d := xxhash.New()
	fw := &fpWriter{w: d, seen: map[uintptr]int{}}
	if err := fw.value(value); err != nil {
		return "", err
	}
	fw.str("|schema|")
	sw := &schemaFP{fw: fw, seen: map[*ObjectSchema]int{}}
	for _, e := range schema {
		fw.str(e.Key)
		sw.entity(e.Entity)
	}
	return strconv.FormatUint(d.Sum64(), 16), nil
}

type fpWriter struct {
	w    io.Writer
	seen map[uintptr]int
}

func (f *fpWriter) str(s string) {
	_, _ = io.WriteString(f.w, strconv.Itoa(len(s)))
	_, _ = io.WriteString(f.w, ":")
	_, _ = io.WriteString(f.w, s)
}

func (f *fpWriter) tag(t string) { _, _ = io.WriteString(f.w, t) }

func (f *fpWriter) value(v any) error {
	switch t := v.(type) {
	case nil:
		f.tag("n")
		return nil
	case string:
		f.tag("s")
		f.str(t)
		return nil
	case bool:
		if t {
			f.tag("t")
		} else {
			f.tag("f")
		}
		return nil
	case json.Number:
		f.tag("d")
		f.str(t.String())
		return nil
	}
	if fl, ok := toFloat(v); ok {
		f.tag("d")
		if fl == math.Trunc(fl) && math.Abs(fl) < 1<<53 {
			f.str(strconv.FormatInt(int64(fl), 10))
		} else {
			f.str(strconv.FormatFloat(fl, 'g', -1, 64))
		}
		return nil
	}
	if obj, ok := asObject(v); ok {
		if addr := identityOf(v); addr != 0 {
			if depth, cyc := f.seen[addr]; cyc {
				f.tag("^")
				f.str(strconv.Itoa(depth))
				return nil
			}
			f.seen[addr] = len(f.seen)
			defer delete(f.seen, addr)
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		f.tag("{")
		for _, k := range keys {
			f.str(k)
			if err := f.value(obj[k]); err != nil {
				return err
			}
		}
		f.tag("}")
		return nil
	}
	if arr, ok := asSlice(v); ok {
		f.tag("[")
		for _, el := range arr {
			if err := f.value(el); err != nil {
				return err
			}
		}
		f.tag("]")
		return nil
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Func || rv.Kind() == reflect.Chan {
		f.tag("?")
		f.str(rv.Type().String())
		return nil
	}
	// leaves with their own encoding (time.Time, ...): the JSON form is canonical
	b, err := gojson.Marshal(v)
	if err != nil {
		return err
	}
	f.tag("j")
	f.str(string(b))
	return nil
}

type schemaFP struct {
	fw   *fpWriter
	seen map[*ObjectSchema]int
}

func (s *schemaFP) entity(e SchemaEntity) {
	f := s.fw
	switch t := e.(type) {
	case *ObjectSchema:
		if idx, ok := s.seen[t]; ok {
			f.tag("@")
			f.str(strconv.Itoa(idx))
			return
		}
		s.seen[t] = len(s.seen)
		f.tag("O")
		f.str(t.Name)
		f.str(t.identity().Describe())
		for _, p := range t.Properties {
			f.str(p.Name)
			s.entity(p.Schema)
		}
		f.tag("R")
		for _, r := range t.Required {
			f.str(r)
		}
		f.tag(";")
	case *ArraySchema:
		f.tag("A")
		s.entity(t.Items)
	case *StringSchema:
		f.tag("S")
		f.str(intPtr(t.MinLength))
		f.str(intPtr(t.MaxLength))
		f.str(t.Pattern)
	case *NumberSchema:
		f.tag("N")
		f.str(floatPtr(t.Minimum))
		f.str(floatPtr(t.Maximum))
	case *BooleanSchema:
		f.tag("B")
	case *CustomSchema:
		f.tag("C")
		f.str(t.Name)
	default:
		f.tag("_")
	}
}

func intPtr(p *int) string {
	if p == nil {
		return "-"
	}
	return strconv.Itoa(*p)
}

func floatPtr(p *float64) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatFloat(*p, 'g', -1, 64)
}
