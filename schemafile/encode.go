package schemafile

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	normalizr "github.com/reoring/gonormalizr"
)

// Encode renders s as a YAML document that Parse reads back. A named object is
// written in full at its first occurrence and as $ref afterwards.
func Encode(s normalizr.Schema) ([]byte, error) {
	e := &encoder{seen: map[*normalizr.ObjectSchema]bool{}, stack: map[*normalizr.ObjectSchema]bool{}}
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, entry := range s {
		n, err := e.node("/"+entry.Key, entry.Entity)
		if err != nil {
			return nil, err
		}
		doc.Content = append(doc.Content, scalar(entry.Key), n)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("schemafile: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("schemafile: encode: %w", err)
	}
	return buf.Bytes(), nil
}

type encoder struct {
	seen  map[*normalizr.ObjectSchema]bool
	stack map[*normalizr.ObjectSchema]bool
}

func (e *encoder) node(path string, se normalizr.SchemaEntity) (*yaml.Node, error) {
	m := &yaml.Node{Kind: yaml.MappingNode}
	put := func(k string, v *yaml.Node) { m.Content = append(m.Content, scalar(k), v) }
	switch s := se.(type) {
	case *normalizr.ObjectSchema:
		if s.Name != "" && e.seen[s] {
			put("$ref", scalar(s.Name))
			return m, nil
		}
		if e.stack[s] {
			return nil, &Error{Path: path, Msg: "recursive object must be named"}
		}
		e.seen[s] = true
		e.stack[s] = true
		defer delete(e.stack, s)

		put("type", scalar("object"))
		if s.Name != "" {
			put("name", scalar(s.Name))
		}
		if s.Identity != nil {
			id, err := identityText(s.Identity)
			if err != nil {
				return nil, &Error{Path: path, Msg: err.Error()}
			}
			if id != "" {
				put("identity", scalar(id))
			}
		}
		if len(s.Required) > 0 {
			put("required", scalar(s.Required))
		}
		if len(s.Properties) > 0 {
			props := &yaml.Node{Kind: yaml.MappingNode}
			for _, p := range s.Properties {
				c, err := e.node(path+"/properties/"+p.Name, p.Schema)
				if err != nil {
					return nil, err
				}
				props.Content = append(props.Content, scalar(p.Name), c)
			}
			put("properties", props)
		}
	case *normalizr.ArraySchema:
		put("type", scalar("array"))
		items, err := e.node(path+"/items", s.Items)
		if err != nil {
			return nil, err
		}
		put("items", items)
	case *normalizr.StringSchema:
		put("type", scalar("string"))
		if s.MinLength != nil {
			put("minLength", scalar(*s.MinLength))
		}
		if s.MaxLength != nil {
			put("maxLength", scalar(*s.MaxLength))
		}
		if s.Pattern != "" {
			put("pattern", scalar(s.Pattern))
		}
	case *normalizr.NumberSchema:
		put("type", scalar("number"))
		if s.Minimum != nil {
			put("minimum", scalar(*s.Minimum))
		}
		if s.Maximum != nil {
			put("maximum", scalar(*s.Maximum))
		}
	case *normalizr.BooleanSchema:
		put("type", scalar("boolean"))
	case *normalizr.CustomSchema:
		put("type", scalar("custom"))
		put("name", scalar(s.Name))
	default:
		return nil, &Error{Path: path, Msg: fmt.Sprintf("unsupported schema entity %T", se)}
	}
	return m, nil
}

// identityText maps an Identity onto the document form; "" is the default.
func identityText(id normalizr.Identity) (string, error) {
	d := id.Describe()
	switch {
	case d == "none":
		return "-", nil
	case d == "field:id":
		return "", nil
	case strings.HasPrefix(d, "field:"):
		return strings.TrimPrefix(d, "field:"), nil
	}
	return "", fmt.Errorf("identity %q has no document form", d)
}

func scalar(v any) *yaml.Node {
	n := &yaml.Node{}
	// Encode only fails for values yaml cannot represent; callers pass scalars and string slices.
	_ = n.Encode(v)
	if n.Kind == yaml.SequenceNode {
		n.Style = yaml.FlowStyle
	}
	return n
}

// MetaSchema returns the JSON Schema of the document format.
func MetaSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{}
	node := r.Reflect(new(Node))
	return &jsonschema.Schema{
		Version:              jsonschema.Version,
		Title:                "normalizr schema document",
		Description:          "Mapping of top-level declaration keys to schema nodes. The first key is the root.",
		Type:                 "object",
		AdditionalProperties: &jsonschema.Schema{Ref: node.Ref},
		Definitions:          node.Definitions,
	}
}
