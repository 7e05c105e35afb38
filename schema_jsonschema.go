package normalizr

import (
	"fmt"

	js "github.com/reoring/gonormalizr/jsonschema"
)

// projector renders SchemaEntity trees; objects re-entered while still being
// rendered become $defs references. Denormalize emits the bare id at such a
// back-reference, so the reference also admits string and integer ids.
type projector struct {
	defs     map[string]*js.Schema
	visiting map[*ObjectSchema]bool
	names    map[*ObjectSchema]string
	taken    map[string]bool
}

func project(e SchemaEntity) (*js.Schema, error) {
	p := &projector{
		defs:     map[string]*js.Schema{},
		visiting: map[*ObjectSchema]bool{},
		names:    map[*ObjectSchema]string{},
		taken:    map[string]bool{},
	}
	out, err := p.entity(e)
	if err != nil {
		return nil, err
	}
	if len(p.defs) > 0 {
		out.Defs = p.defs
	}
	return out, nil
}

func (p *projector) entity(e SchemaEntity) (*js.Schema, error) {
	switch s := e.(type) {
	case *ObjectSchema:
		return p.object(s)
	case *ArraySchema:
		if s.Items == nil {
			return nil, fmt.Errorf("jsonschema: array without items")
		}
		items, err := p.entity(s.Items)
		if err != nil {
			return nil, err
		}
		return &js.Schema{Type: "array", Items: items}, nil
	case *StringSchema:
		return &js.Schema{Type: "string", MinLength: s.MinLength, MaxLength: s.MaxLength, Pattern: s.Pattern}, nil
	case *NumberSchema:
		return &js.Schema{Type: "number", Minimum: s.Minimum, Maximum: s.Maximum}, nil
	case *BooleanSchema:
		return &js.Schema{Type: "boolean"}, nil
	case *CustomSchema:
		return &js.Schema{Description: "custom:" + s.Name}, nil
	case nil:
		return nil, fmt.Errorf("jsonschema: nil schema entity")
	default:
		return nil, fmt.Errorf("jsonschema: unsupported schema entity %T", e)
	}
}

func (p *projector) object(o *ObjectSchema) (*js.Schema, error) {
	if p.visiting[o] {
		if o.Name == "" {
			return nil, fmt.Errorf("jsonschema: recursive object schema needs a name")
		}
		return &js.Schema{OneOf: []*js.Schema{
			{Ref: js.DefRef(p.defName(o))},
			{Type: "string"},
			{Type: "integer"},
		}}, nil
	}
	p.visiting[o] = true
	defer delete(p.visiting, o)

	out := &js.Schema{Type: "object", Title: o.Name, Properties: map[string]*js.Schema{}}
	for _, prop := range o.Properties {
		ps, err := p.entity(prop.Schema)
		if err != nil {
			return nil, err
		}
		out.Properties[prop.Name] = ps
	}
	if len(o.Required) > 0 {
		out.Required = append([]string(nil), o.Required...)
	}
	if name, refd := p.names[o]; refd {
		p.defs[name] = out
		return &js.Schema{Ref: js.DefRef(name)}, nil
	}
	return out, nil
}

// defName assigns o a $defs key. Distinct objects sharing a Name get numbered
// suffixes ("user", "user_2", ...).
func (p *projector) defName(o *ObjectSchema) string {
	if name, ok := p.names[o]; ok {
		return name
	}
	name := o.Name
	for i := 2; p.taken[name]; i++ {
		name = fmt.Sprintf("%s_%d", o.Name, i)
	}
	p.taken[name] = true
	p.names[o] = name
	return name
}

func (o *ObjectSchema) JSONSchema() (*js.Schema, error)  { return project(o) }
func (a *ArraySchema) JSONSchema() (*js.Schema, error)   { return project(a) }
func (s *StringSchema) JSONSchema() (*js.Schema, error)  { return project(s) }
func (n *NumberSchema) JSONSchema() (*js.Schema, error)  { return project(n) }
func (b *BooleanSchema) JSONSchema() (*js.Schema, error) { return project(b) }
func (c *CustomSchema) JSONSchema() (*js.Schema, error)  { return project(c) }
