package normalizr

import (
	"encoding"
	"encoding/json"
	"reflect"
	"slices"
	"strings"
)

// asSlice views arrays and typed slices as []any. []byte is not treated as an array.
func asSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case nil, []byte, string:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// asObject views string-keyed maps and structs as map[string]any.
func asObject(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, true
	}
	if sv, ok := structValue(rv); ok {
		out := map[string]any{}
		structFields(sv, out)
		return out, true
	}
	return nil, false
}

var (
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// structValue unwraps a struct or a non-nil pointer to one. Types that carry
// their own JSON or text encoding (time.Time, ...) are leaves, not objects.
func structValue(rv reflect.Value) (reflect.Value, bool) {
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() || ownEncoding(rv.Type()) {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct || ownEncoding(rv.Type()) {
		return reflect.Value{}, false
	}
	return rv, true
}

func ownEncoding(t reflect.Type) bool {
	return t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType)
}

// structFields copies exported fields into out under their resolved keys.
// Fields of untagged embedded structs are promoted unless an outer field
// already uses the key.
func structFields(rv reflect.Value, out map[string]any) {
	promoted := map[string]any{}
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		fv := rv.Field(i)
		if sf.Anonymous && sf.Tag.Get("json") == "" {
			if ev, ok := structValue(fv); ok {
				structFields(ev, promoted)
				continue
			}
		}
		if !sf.IsExported() || !fv.CanInterface() {
			continue
		}
		key, omitEmpty := resolveStructKey(sf)
		if key == "-" || (omitEmpty && isEmptyValue(fv)) {
			continue
		}
		out[key] = fieldValue(fv)
	}
	for k, v := range promoted {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
}

// resolveStructKey resolves the external key of a struct field.
// Priority: json tag name > field name; "-" disables the field.
func resolveStructKey(sf reflect.StructField) (string, bool) {
	jt := sf.Tag.Get("json")
	if jt == "-" {
		return "-", false
	}
	name, opts, _ := strings.Cut(jt, ",")
	if name == "" {
		name = sf.Name
	}
	return name, slices.Contains(strings.Split(opts, ","), "omitempty")
}

// fieldValue dereferences pointers to scalars. Pointers to structs are kept so
// cycles through them can be detected by address.
func fieldValue(fv reflect.Value) any {
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			return nil
		}
		if _, ok := structValue(fv); !ok {
			return fv.Elem().Interface()
		}
	}
	return fv.Interface()
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Pointer:
		return v.IsZero()
	}
	return false
}

// identityOf returns the runtime address of a map or struct pointer, used to
// detect cycles in Go values that reference themselves. Zero means "not
// addressable".
func identityOf(v any) uintptr {
	rv := reflect.ValueOf(v)
	switch {
	case rv.Kind() == reflect.Map && !rv.IsNil():
		return rv.Pointer()
	case rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Kind() == reflect.Struct:
		return rv.Pointer()
	}
	return 0
}

// typeName renders the dynamic type of v the way error contexts report it.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	}
	if isNumber(v) {
		return "number"
	}
	if _, ok := asSlice(v); ok {
		return "array"
	}
	if _, ok := asObject(v); ok {
		return "object"
	}
	return reflect.TypeOf(v).String()
}
