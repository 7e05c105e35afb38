package schemafile

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	normalizr "github.com/reoring/gonormalizr"
)

// Error reports a problem at a document location.
type Error struct {
	Line int
	Path string
	Msg  string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("schemafile: line %d: %s: %s", e.Line, e.Path, e.Msg)
	}
	return fmt.Sprintf("schemafile: %s: %s", e.Path, e.Msg)
}

// Load reads and parses the schema document at path.
func Load(path string) (normalizr.Schema, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schemafile: read %s: %w", path, err)
	}
	return Parse(b)
}

// Parse builds a Schema from a YAML or JSON document.
func Parse(b []byte) (normalizr.Schema, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil, fmt.Errorf("schemafile: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, errors.New("schemafile: empty document")
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, &Error{Line: doc.Line, Path: "/", Msg: "document must be a mapping of declarations"}
	}
	if len(doc.Content) == 0 {
		return nil, errors.New("schemafile: empty document")
	}

	keys := make([]string, 0, len(doc.Content)/2)
	nodes := make([]*Node, 0, len(doc.Content)/2)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		n := &Node{}
		if err := doc.Content[i+1].Decode(n); err != nil {
			return nil, fmt.Errorf("schemafile: %s: %w", doc.Content[i].Value, err)
		}
		keys = append(keys, doc.Content[i].Value)
		nodes = append(nodes, n)
	}

	bl := &builder{named: map[string]*normalizr.ObjectSchema{}}
	for i, n := range nodes {
		if err := bl.collect("/"+keys[i], n); err != nil {
			return nil, err
		}
	}
	out := make(normalizr.Schema, 0, len(nodes))
	for i, n := range nodes {
		e, err := bl.build("/"+keys[i], n)
		if err != nil {
			return nil, err
		}
		out = append(out, normalizr.Entry{Key: keys[i], Entity: e})
	}
	return out, nil
}

type builder struct {
	// named objects, allocated up front so $ref can point forward
	named map[string]*normalizr.ObjectSchema
}

func (b *builder) collect(path string, n *Node) error {
	if n == nil {
		return nil
	}
	if n.Type == "object" && n.Name != "" {
		if _, dup := b.named[n.Name]; dup {
			return &Error{Line: n.line, Path: path, Msg: fmt.Sprintf("object %q declared twice; use $ref", n.Name)}
		}
		b.named[n.Name] = &normalizr.ObjectSchema{Name: n.Name}
	}
	for _, k := range n.PropertyNames() {
		if err := b.collect(path+"/properties/"+k, n.Properties[k]); err != nil {
			return err
		}
	}
	return b.collect(path+"/items", n.Items)
}

func (b *builder) build(path string, n *Node) (normalizr.SchemaEntity, error) {
	if n == nil {
		return nil, &Error{Path: path, Msg: "missing schema node"}
	}
	if n.Ref != "" {
		if n.Type != "" {
			return nil, &Error{Line: n.line, Path: path, Msg: "$ref cannot be combined with type"}
		}
		o, ok := b.named[n.Ref]
		if !ok {
			return nil, &Error{Line: n.line, Path: path, Msg: fmt.Sprintf("unknown $ref %q", n.Ref)}
		}
		return o, nil
	}
	switch n.Type {
	case "object":
		return b.object(path, n)
	case "array":
		if n.Items == nil {
			return nil, &Error{Line: n.line, Path: path, Msg: "array requires items"}
		}
		items, err := b.build(path+"/items", n.Items)
		if err != nil {
			return nil, err
		}
		return &normalizr.ArraySchema{Items: items}, nil
	case "string":
		return &normalizr.StringSchema{MinLength: n.MinLength, MaxLength: n.MaxLength, Pattern: n.Pattern}, nil
	case "number":
		return &normalizr.NumberSchema{Minimum: n.Minimum, Maximum: n.Maximum}, nil
	case "boolean":
		return &normalizr.BooleanSchema{}, nil
	case "custom":
		return &normalizr.CustomSchema{Name: n.Name}, nil
	case "":
		return nil, &Error{Line: n.line, Path: path, Msg: "type or $ref is required"}
	default:
		return nil, &Error{Line: n.line, Path: path, Msg: fmt.Sprintf("unknown type %q", n.Type)}
	}
}

func (b *builder) object(path string, n *Node) (*normalizr.ObjectSchema, error) {
	o := &normalizr.ObjectSchema{}
	if n.Name != "" {
		o = b.named[n.Name]
	}
	switch n.Identity {
	case "":
	case "-":
		o.Identity = normalizr.NoIdentity()
	default:
		o.Identity = normalizr.ByField(n.Identity)
	}
	o.Required = append([]string(nil), n.Required...)
	for _, k := range n.PropertyNames() {
		child, err := b.build(path+"/properties/"+k, n.Properties[k])
		if err != nil {
			return nil, err
		}
		o.Set(k, child)
	}
	return o, nil
}
