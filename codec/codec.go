// Package codec implements the wire format of NormalizedData:
//
//	{"entities": {"<type>": {"<id>": value}}, "result": id | [id...] | value}
//
// Decoding keeps the distinction between numeric and string ids: integral
// JSON numbers decode to int64, other numbers to float64, strings stay strings.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"

	normalizr "github.com/reoring/gonormalizr"
)

type wire struct {
	Entities map[string]map[string]any `json:"entities"`
	Result   any                       `json:"result"`
}

// Marshal renders nd in its wire shape. A nil store is written as {}.
func Marshal(nd normalizr.NormalizedData) ([]byte, error) {
	return gojson.Marshal(toWire(nd))
}

// MarshalIndent is Marshal with indentation.
func MarshalIndent(nd normalizr.NormalizedData, prefix, indent string) ([]byte, error) {
	return gojson.MarshalIndent(toWire(nd), prefix, indent)
}

func toWire(nd normalizr.NormalizedData) wire {
	ents := map[string]map[string]any(nd.Entities)
	if ents == nil {
		ents = map[string]map[string]any{}
	}
	return wire{Entities: ents, Result: nd.Result}
}

// Unmarshal parses the wire shape. Duplicate object keys are rejected.
func Unmarshal(b []byte) (normalizr.NormalizedData, error) {
	if err := checkDuplicateKeys(b); err != nil {
		return normalizr.NormalizedData{}, err
	}
	var w struct {
		Entities map[string]map[string]any `json:"entities"`
		Result   any                       `json:"result"`
	}
	if err := decodeStrict(bytes.NewReader(b), &w); err != nil {
		return normalizr.NormalizedData{}, err
	}
	store := normalizr.NewEntityStore()
	for typ, part := range w.Entities {
		if part == nil {
			return normalizr.NormalizedData{}, fmt.Errorf("codec: entities.%s is not an object", typ)
		}
		conv := make(map[string]any, len(part))
		for id, v := range part {
			conv[id] = normalizeNumbers(v)
		}
		store[typ] = conv
	}
	return normalizr.NormalizedData{Entities: store, Result: normalizeNumbers(w.Result)}, nil
}

// DecodeValue parses arbitrary JSON input with the same number rules.
func DecodeValue(b []byte) (any, error) {
	return DecodeReader(bytes.NewReader(b))
}

// DecodeReader parses a single JSON value from r. Duplicate object keys are rejected.
func DecodeReader(r io.Reader) (any, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("codec: read: %w", err)
	}
	if err := checkDuplicateKeys(b); err != nil {
		return nil, err
	}
	var v any
	if err := decodeStrict(bytes.NewReader(b), &v); err != nil {
		return nil, err
	}
	return normalizeNumbers(v), nil
}

// Encode writes v as JSON followed by a newline.
func Encode(w io.Writer, v any, indent bool) error {
	enc := gojson.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func decodeStrict(r io.Reader, v any) error {
	dec := gojson.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("codec: decode: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return errors.New("codec: trailing data after JSON value")
	}
	return nil
}

func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalizeNumbers(e)
		}
		return t
	default:
		return v
	}
}
