package schemafile

import (
	"sort"

	"gopkg.in/yaml.v3"
)

// Node is the document form of one schema node.
type Node struct {
	Ref        string           `yaml:"$ref,omitempty" json:"$ref,omitempty" jsonschema:"description=Name of an object declared elsewhere in the document"`
	Type       string           `yaml:"type,omitempty" json:"type,omitempty" jsonschema:"enum=object,enum=array,enum=string,enum=number,enum=boolean,enum=custom"`
	Name       string           `yaml:"name,omitempty" json:"name,omitempty" jsonschema:"description=Entity type name for objects or handler name for custom nodes"`
	Identity   string           `yaml:"identity,omitempty" json:"identity,omitempty" jsonschema:"description=Property holding the entity id; - disables identity"`
	Required   []string         `yaml:"required,omitempty" json:"required,omitempty"`
	Properties map[string]*Node `yaml:"properties,omitempty" json:"properties,omitempty"`
	Items      *Node            `yaml:"items,omitempty" json:"items,omitempty"`
	MinLength  *int             `yaml:"minLength,omitempty" json:"minLength,omitempty" jsonschema:"minimum=0"`
	MaxLength  *int             `yaml:"maxLength,omitempty" json:"maxLength,omitempty" jsonschema:"minimum=0"`
	Pattern    string           `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Minimum    *float64         `yaml:"minimum,omitempty" json:"minimum,omitempty"`
	Maximum    *float64         `yaml:"maximum,omitempty" json:"maximum,omitempty"`

	line  int
	order []string
}

// UnmarshalYAML records the source line and the declaration order of properties.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	type plain Node
	if err := value.Decode((*plain)(n)); err != nil {
		return err
	}
	n.line = value.Line
	n.order = nil
	if value.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		if value.Content[i].Value != "properties" || value.Content[i+1].Kind != yaml.MappingNode {
			continue
		}
		props := value.Content[i+1].Content
		for j := 0; j+1 < len(props); j += 2 {
			n.order = append(n.order, props[j].Value)
		}
	}
	return nil
}

// PropertyNames returns property keys in declaration order.
func (n *Node) PropertyNames() []string {
	if len(n.order) == len(n.Properties) {
		return n.order
	}
	// nodes built in code have no recorded order; unknown keys sort last
	out := append([]string(nil), n.order...)
	seen := make(map[string]bool, len(out))
	for _, k := range out {
		seen[k] = true
	}
	var extra []string
	for k := range n.Properties {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}
