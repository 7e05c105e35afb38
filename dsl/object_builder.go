package dsl

import (
	normalizr "github.com/reoring/gonormalizr"
)

type objectBuilder struct {
	s *normalizr.ObjectSchema
}

type fieldStep struct {
	b    *objectBuilder
	name string
}

// Object creates an object builder. name is the entity-store partition; it may
// be empty for inline-only shapes.
func Object(name string) *objectBuilder {
	return &objectBuilder{s: &normalizr.ObjectSchema{Name: name}}
}

// Field declares a property with its schema.
func (b *objectBuilder) Field(name string, s normalizr.SchemaEntity) *fieldStep {
	b.s.Set(name, s)
	return &fieldStep{b: b, name: name}
}

// Require marks several declared fields as required at once.
func (b *objectBuilder) Require(names ...string) *objectBuilder {
	for _, n := range names {
		b.require(n)
	}
	return b
}

func (b *objectBuilder) require(name string) {
	if !b.s.IsRequired(name) {
		b.s.Required = append(b.s.Required, name)
	}
}

// IdentifiedBy sets the property that carries the entity id (default "id").
func (b *objectBuilder) IdentifiedBy(field string) *objectBuilder {
	b.s.Identity = normalizr.ByField(field)
	return b
}

// Identity installs a custom identity extractor.
func (b *objectBuilder) Identity(id normalizr.Identity) *objectBuilder {
	b.s.Identity = id
	return b
}

// Inline marks the object as never stored: it always stays embedded in its parent.
func (b *objectBuilder) Inline() *objectBuilder {
	b.s.Identity = normalizr.NoIdentity()
	return b
}

// Build returns the schema. The builder must not be reused afterwards.
func (b *objectBuilder) Build() *normalizr.ObjectSchema { return b.s }

// Required marks the field as required and returns the builder.
func (f *fieldStep) Required() *objectBuilder {
	f.b.require(f.name)
	return f.b
}

// Optional keeps the field optional (default) and returns the builder.
func (f *fieldStep) Optional() *objectBuilder { return f.b }

func (f *fieldStep) Field(name string, s normalizr.SchemaEntity) *fieldStep {
	return f.b.Field(name, s)
}

func (f *fieldStep) IdentifiedBy(field string) *objectBuilder {
	return f.b.IdentifiedBy(field)
}

func (f *fieldStep) Identity(id normalizr.Identity) *objectBuilder {
	return f.b.Identity(id)
}

func (f *fieldStep) Inline() *objectBuilder { return f.b.Inline() }

func (f *fieldStep) Build() *normalizr.ObjectSchema { return f.b.Build() }
