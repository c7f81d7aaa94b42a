package discovery

// Typed view of a discovery document. The raw input is a nested mapping of
// arbitrary keys; we decode it once at this boundary into the finite set of
// node shapes the generator understands and ignore everything else.

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document is the root of a discovery document.
type Document struct {
	ID                string `yaml:"id"`
	Name              string `yaml:"name"`
	Version           string `yaml:"version"`
	Title             string `yaml:"title"`
	Revision          string `yaml:"revision"`
	Description       string `yaml:"description"`
	DocumentationLink string `yaml:"documentationLink"`
	Protocol          string `yaml:"protocol"`
	RootURL           string `yaml:"rootUrl"`
	ServicePath       string `yaml:"servicePath"`
	BaseURL           string `yaml:"baseUrl"`
	BasePath          string `yaml:"basePath"`

	Schemas   NamedSchemas   `yaml:"schemas"`
	Methods   NamedMethods   `yaml:"methods"`
	Resources NamedResources `yaml:"resources"`
}

// SchemaNode describes a named data type or one of its properties.
type SchemaNode struct {
	Type             string       `yaml:"type"`
	Ref              string       `yaml:"$ref"`
	Description      string       `yaml:"description"`
	Default          Literal      `yaml:"default"`
	Required         bool         `yaml:"required"`
	Enum             []string     `yaml:"enum"`
	EnumDescriptions []string     `yaml:"enumDescriptions"`
	Properties       NamedSchemas `yaml:"properties"`
}

// ResourceNode is a named group of operations, possibly nested.
type ResourceNode struct {
	Methods   NamedMethods   `yaml:"methods"`
	Resources NamedResources `yaml:"resources"`
}

// MethodNode describes one callable operation.
type MethodNode struct {
	ID             string          `yaml:"id"`
	Description    string          `yaml:"description"`
	Parameters     NamedParameters `yaml:"parameters"`
	ParameterOrder []string        `yaml:"parameterOrder"`
	Response       *ResponseNode   `yaml:"response"`
}

// ParameterNode describes one method parameter. It shares the shape of a
// schema property minus nested properties.
type ParameterNode struct {
	Type             string   `yaml:"type"`
	Ref              string   `yaml:"$ref"`
	Description      string   `yaml:"description"`
	Default          Literal  `yaml:"default"`
	Required         bool     `yaml:"required"`
	Enum             []string `yaml:"enum"`
	EnumDescriptions []string `yaml:"enumDescriptions"`
}

// ResponseNode is either a reference mapping ({"$ref": "Name"}) or a bare type
// token. Any other shape sets Invalid so the model builder can reject it.
type ResponseNode struct {
	Ref     string
	Literal string
	Invalid bool
}

func (r *ResponseNode) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		r.Literal = node.Value
		return nil
	case yaml.MappingNode:
		var m struct {
			Ref string `yaml:"$ref"`
		}
		if err := node.Decode(&m); err != nil {
			return err
		}
		if m.Ref == "" {
			r.Invalid = true
			return nil
		}
		r.Ref = m.Ref
		return nil
	default:
		r.Invalid = true
		return nil
	}
}

// Literal is a scalar default value that remembers whether it was present at
// all, so an absent default is never confused with the empty string.
type Literal struct {
	Value string
	IsSet bool
}

func (l *Literal) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: default must be a scalar", node.Line)
	}
	l.Value = node.Value
	l.IsSet = true
	return nil
}

// NamedSchema pairs a schema node with its key in the enclosing mapping.
type NamedSchema struct {
	Name   string
	Schema SchemaNode
}

// NamedSchemas preserves the mapping's declaration order, which plain Go maps
// would lose. Declaration order drives attribute order and, transitively, the
// byte-for-byte determinism of the output.
type NamedSchemas []NamedSchema

func (s *NamedSchemas) UnmarshalYAML(node *yaml.Node) error {
	return eachPair(node, func(key string, val *yaml.Node) error {
		var ns NamedSchema
		ns.Name = key
		if err := val.Decode(&ns.Schema); err != nil {
			return err
		}
		*s = append(*s, ns)
		return nil
	})
}

type NamedResource struct {
	Name     string
	Resource ResourceNode
}

type NamedResources []NamedResource

func (s *NamedResources) UnmarshalYAML(node *yaml.Node) error {
	return eachPair(node, func(key string, val *yaml.Node) error {
		var nr NamedResource
		nr.Name = key
		if err := val.Decode(&nr.Resource); err != nil {
			return err
		}
		*s = append(*s, nr)
		return nil
	})
}

type NamedMethod struct {
	Name   string
	Method MethodNode
}

type NamedMethods []NamedMethod

func (s *NamedMethods) UnmarshalYAML(node *yaml.Node) error {
	return eachPair(node, func(key string, val *yaml.Node) error {
		var nm NamedMethod
		nm.Name = key
		if err := val.Decode(&nm.Method); err != nil {
			return err
		}
		*s = append(*s, nm)
		return nil
	})
}

type NamedParameter struct {
	Name      string
	Parameter ParameterNode
}

type NamedParameters []NamedParameter

func (s *NamedParameters) UnmarshalYAML(node *yaml.Node) error {
	return eachPair(node, func(key string, val *yaml.Node) error {
		var np NamedParameter
		np.Name = key
		if err := val.Decode(&np.Parameter); err != nil {
			return err
		}
		*s = append(*s, np)
		return nil
	})
}

// eachPair visits a mapping node's key/value pairs in document order.
func eachPair(node *yaml.Node, fn func(key string, val *yaml.Node) error) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping, got %s", node.Line, kindName(node.Kind))
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := fn(node.Content[i].Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.DocumentNode:
		return "document"
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}

// Parse decodes a raw discovery document. JSON input is accepted because JSON
// is a subset of YAML.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &DocError{Code: ParseError, Message: fmt.Sprintf("parse discovery document: %v", err), Cause: err}
	}
	if doc.ID == "" {
		return nil, &DocError{Code: ParseError, Message: "discovery document is missing its id"}
	}
	return &doc, nil
}
