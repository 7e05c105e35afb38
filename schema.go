package normalizr

import (
	"fmt"

	js "github.com/reoring/gonormalizr/jsonschema"
)

// Kind identifies a SchemaEntity variant.
type Kind int

const (
	KindObject Kind = iota
	KindArray
	KindPrimitive
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindPrimitive:
		return "primitive"
	case KindCustom:
		return "custom"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// PrimitiveType is the JSON name of a primitive variant.
type PrimitiveType string

const (
	TypeString  PrimitiveType = "string"
	TypeNumber  PrimitiveType = "number"
	TypeBoolean PrimitiveType = "boolean"
)

// SchemaEntity is the sealed sum type over the schema variants:
// *ObjectSchema, *ArraySchema, *StringSchema, *NumberSchema, *BooleanSchema and
// *CustomSchema. Engines match it with an exhaustive type switch.
type SchemaEntity interface {
	Kind() Kind
	// JSONSchema projects the denormalized shape into a JSON Schema representation.
	JSONSchema() (*js.Schema, error)
	schemaEntity()
}

// Primitive is implemented by the string, number and boolean variants.
type Primitive interface {
	SchemaEntity
	PrimitiveType() PrimitiveType
}

// Property maps a property name to its schema.
type Property struct {
	Name   string
	Schema SchemaEntity
}

// ObjectSchema describes an object. Name is the entity-store partition key.
type ObjectSchema struct {
	Name       string
	Properties []Property
	Required   []string
	// Identity extracts the entity id; nil means ByField("id").
	Identity Identity
}

// ArraySchema describes a homogeneous array.
type ArraySchema struct {
	Items SchemaEntity
}

// StringSchema describes a string leaf. Nil bounds are unset.
type StringSchema struct {
	MinLength *int
	MaxLength *int
	Pattern   string
}

// NumberSchema describes a numeric leaf. Nil bounds are unset.
type NumberSchema struct {
	Minimum *float64
	Maximum *float64
}

// BooleanSchema describes a boolean leaf.
type BooleanSchema struct{}

// CustomSchema defers all structural knowledge to the handler registered as Name.
type CustomSchema struct {
	Name string
}

func (*ObjectSchema) Kind() Kind  { return KindObject }
func (*ArraySchema) Kind() Kind   { return KindArray }
func (*StringSchema) Kind() Kind  { return KindPrimitive }
func (*NumberSchema) Kind() Kind  { return KindPrimitive }
func (*BooleanSchema) Kind() Kind { return KindPrimitive }
func (*CustomSchema) Kind() Kind  { return KindCustom }

func (*ObjectSchema) schemaEntity()  {}
func (*ArraySchema) schemaEntity()   {}
func (*StringSchema) schemaEntity()  {}
func (*NumberSchema) schemaEntity()  {}
func (*BooleanSchema) schemaEntity() {}
func (*CustomSchema) schemaEntity()  {}

func (*StringSchema) PrimitiveType() PrimitiveType  { return TypeString }
func (*NumberSchema) PrimitiveType() PrimitiveType  { return TypeNumber }
func (*BooleanSchema) PrimitiveType() PrimitiveType { return TypeBoolean }

// Property returns the schema declared for name.
func (o *ObjectSchema) Property(name string) (SchemaEntity, bool) {
	for _, p := range o.Properties {
		if p.Name == name {
			return p.Schema, true
		}
	}
	return nil, false
}

// IsRequired reports whether name is listed in Required.
func (o *ObjectSchema) IsRequired(name string) bool {
	for _, r := range o.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Set declares or replaces a property. It is the way to close a
// self-referential schema after construction.
func (o *ObjectSchema) Set(name string, s SchemaEntity) *ObjectSchema {
	for i := range o.Properties {
		if o.Properties[i].Name == name {
			o.Properties[i].Schema = s
			return o
		}
	}
	o.Properties = append(o.Properties, Property{Name: name, Schema: s})
	return o
}

func (o *ObjectSchema) identity() Identity {
	if o.Identity == nil {
		return ByField("id")
	}
	return o.Identity
}

// entityName resolves the partition key; the sentinel only labels inline shapes.
func (o *ObjectSchema) entityName() string {
	if o.Name == "" {
		return unnamedEntity
	}
	return o.Name
}

const unnamedEntity = "unnamed"

// Entry is one top-level declaration of a Schema.
type Entry struct {
	Key    string
	Entity SchemaEntity
}

// Schema is an ordered list of top-level declarations. The first entry is the
// root used by Normalize and Denormalize.
type Schema []Entry

// NewSchema returns a schema with a single root entry.
func NewSchema(key string, root SchemaEntity) Schema {
	return Schema{{Key: key, Entity: root}}
}

// With appends a declaration and returns the extended schema.
func (s Schema) With(key string, e SchemaEntity) Schema {
	return append(append(Schema{}, s...), Entry{Key: key, Entity: e})
}

// Root returns the first declared entry.
func (s Schema) Root() (Entry, error) {
	if len(s) == 0 {
		return Entry{}, rootPath().Issue(CodeEmptySchema)
	}
	return s[0], nil
}

// Lookup finds a top-level declaration by key.
func (s Schema) Lookup(key string) (SchemaEntity, bool) {
	for _, e := range s {
		if e.Key == key {
			return e.Entity, true
		}
	}
	return nil, false
}
