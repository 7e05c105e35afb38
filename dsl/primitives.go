package dsl

import (
	normalizr "github.com/reoring/gonormalizr"
)

// StringOpt configures a string leaf.
type StringOpt func(*normalizr.StringSchema)

// NumberOpt configures a number leaf.
type NumberOpt func(*normalizr.NumberSchema)

// String returns a string leaf.
func String(opts ...StringOpt) *normalizr.StringSchema {
	s := &normalizr.StringSchema{}
	for _, o := range opts {
		o(s)
	}
	return s
}

// MinLen sets the inclusive minimum rune count.
func MinLen(n int) StringOpt { return func(s *normalizr.StringSchema) { s.MinLength = &n } }

// MaxLen sets the inclusive maximum rune count.
func MaxLen(n int) StringOpt { return func(s *normalizr.StringSchema) { s.MaxLength = &n } }

// Pattern sets a regular expression (RE2 syntax) the value must match.
func Pattern(re string) StringOpt { return func(s *normalizr.StringSchema) { s.Pattern = re } }

// Number returns a number leaf.
func Number(opts ...NumberOpt) *normalizr.NumberSchema {
	s := &normalizr.NumberSchema{}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Min sets the inclusive minimum.
func Min(v float64) NumberOpt { return func(s *normalizr.NumberSchema) { s.Minimum = &v } }

// Max sets the inclusive maximum.
func Max(v float64) NumberOpt { return func(s *normalizr.NumberSchema) { s.Maximum = &v } }

// Bool returns a boolean leaf.
func Bool() *normalizr.BooleanSchema { return &normalizr.BooleanSchema{} }

// Array returns an array of items.
func Array(items normalizr.SchemaEntity) *normalizr.ArraySchema {
	return &normalizr.ArraySchema{Items: items}
}

// Custom returns an extension node resolved through the handler registered as name.
func Custom(name string) *normalizr.CustomSchema {
	return &normalizr.CustomSchema{Name: name}
}
