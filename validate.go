package normalizr

import (
	"fmt"
	"math"
)

// Validator checks a schema before any traversal begins.
type Validator interface {
	Validate(s Schema) error
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(s Schema) error

func (f ValidatorFunc) Validate(s Schema) error { return f(s) }

// DefaultMaxDepth bounds schema nesting when DefaultValidator.MaxDepth is zero.
const DefaultMaxDepth = 32

// DefaultValidator performs structural conformance checks. Failures are
// reported as *SchemaValidationError.
type DefaultValidator struct {
	MaxDepth int
}

func (v DefaultValidator) Validate(s Schema) error {
	if len(s) == 0 {
		return &SchemaValidationError{Issue: *rootPath().Issue(CodeEmptySchema)}
	}
	w := &schemaWalker{maxDepth: v.MaxDepth, visiting: map[*ObjectSchema]bool{}}
	if w.maxDepth <= 0 {
		w.maxDepth = DefaultMaxDepth
	}
	seen := make(map[string]struct{}, len(s))
	for _, e := range s {
		p := rootPath().Field(e.Key)
		if e.Key == "" {
			return w.fail(p, "empty top-level key")
		}
		if _, dup := seen[e.Key]; dup {
			return w.fail(p, "duplicate top-level key")
		}
		seen[e.Key] = struct{}{}
		if o, ok := e.Entity.(*ObjectSchema); ok && o.Name == "" {
			return &SchemaValidationError{Issue: *p.Issue(CodeUnnamedEntity, "key", e.Key)}
		}
		if err := w.walk(p, e.Entity, 1); err != nil {
			return err
		}
	}
	return nil
}

type schemaWalker struct {
	maxDepth int
	visiting map[*ObjectSchema]bool
}

func (w *schemaWalker) fail(p *pathRef, reason string, kv ...any) error {
	it := p.Issue(CodeInvalidSchema, append([]any{"reason", reason}, kv...)...)
	it.Message = it.Message + ": " + reason
	return &SchemaValidationError{Issue: *it}
}

func (w *schemaWalker) walk(p *pathRef, e SchemaEntity, depth int) error {
	if depth > w.maxDepth {
		return &SchemaValidationError{Issue: *p.Issue(CodeSchemaDepth, "maxDepth", w.maxDepth)}
	}
	switch s := e.(type) {
	case *ObjectSchema:
		return w.object(p, s, depth)
	case *ArraySchema:
		if s.Items == nil {
			return w.fail(p, "array schema has no items")
		}
		return w.walk(p.Field("items"), s.Items, depth+1)
	case *StringSchema:
		return w.str(p, s)
	case *NumberSchema:
		return w.num(p, s)
	case *BooleanSchema:
		return nil
	case *CustomSchema:
		if s.Name == "" {
			return w.fail(p, "custom schema has no name")
		}
		return nil
	case nil:
		return w.fail(p, "missing schema entity")
	default:
		return w.fail(p, fmt.Sprintf("unsupported schema entity %T", e))
	}
}

func (w *schemaWalker) object(p *pathRef, o *ObjectSchema, depth int) error {
	// recursion through an object already on the path is a legal self-reference
	if w.visiting[o] {
		if o.Name == "" {
			return w.fail(p, "recursive object schema has no name")
		}
		return nil
	}
	w.visiting[o] = true
	defer delete(w.visiting, o)

	names := make(map[string]struct{}, len(o.Properties))
	for _, prop := range o.Properties {
		pp := p.Field("properties").Field(prop.Name)
		if prop.Name == "" {
			return w.fail(pp, "empty property name")
		}
		if _, dup := names[prop.Name]; dup {
			return w.fail(pp, "duplicate property", "property", prop.Name)
		}
		names[prop.Name] = struct{}{}
		if err := w.walk(pp, prop.Schema, depth+1); err != nil {
			return err
		}
	}
	for _, r := range o.Required {
		if _, ok := names[r]; !ok {
			return w.fail(p.Field("required"), "required property is not declared", "property", r)
		}
	}
	return nil
}

func (w *schemaWalker) str(p *pathRef, s *StringSchema) error {
	if s.MinLength != nil && *s.MinLength < 0 {
		return w.fail(p, "minLength is negative", "minLength", *s.MinLength)
	}
	if s.MaxLength != nil && *s.MaxLength < 0 {
		return w.fail(p, "maxLength is negative", "maxLength", *s.MaxLength)
	}
	if s.MinLength != nil && s.MaxLength != nil && *s.MinLength > *s.MaxLength {
		return w.fail(p, "minLength exceeds maxLength", "minLength", *s.MinLength, "maxLength", *s.MaxLength)
	}
	if s.Pattern != "" {
		if _, err := compilePattern(s.Pattern); err != nil {
			return w.fail(p, "pattern does not compile: "+err.Error(), "pattern", s.Pattern)
		}
	}
	return nil
}

func (w *schemaWalker) num(p *pathRef, s *NumberSchema) error {
	for _, b := range []*float64{s.Minimum, s.Maximum} {
		if b != nil && (math.IsNaN(*b) || math.IsInf(*b, 0)) {
			return w.fail(p, "bound is not finite")
		}
	}
	if s.Minimum != nil && s.Maximum != nil && *s.Minimum > *s.Maximum {
		return w.fail(p, "minimum exceeds maximum", "minimum", *s.Minimum, "maximum", *s.Maximum)
	}
	return nil
}
