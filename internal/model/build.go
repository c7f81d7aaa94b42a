package model

import (
	"strings"

	"github.com/mark3labs/discovery2py/internal/discovery"
)

// Build constructs the full type graph for one document: data classes from
// the schemas section first, then the API-root pseudo-class, then one
// synthetic class per resource group. Enum synthesis inserts additional
// classes while these are being built; nothing mutates the File afterward.
func Build(doc *discovery.Document) (*File, error) {
	f := NewFile(unitName(doc.ID))

	for _, ns := range doc.Schemas {
		c, err := buildSchemaClass(f, ns.Name, ns.Schema, "schemas/"+ns.Name)
		if err != nil {
			return nil, err
		}
		f.Register(c)
	}

	root := buildRootClass(doc)
	f.Register(root)
	for _, nm := range doc.Methods {
		m, err := buildMethod(f, root, nm.Name, nm.Method, "methods/"+nm.Name)
		if err != nil {
			return nil, err
		}
		root.Methods = append(root.Methods, m)
	}
	if err := addResources(f, root, doc.Resources, "resources"); err != nil {
		return nil, err
	}

	return f, nil
}

// buildSchemaClass walks one schema node into a data class, synthesizing
// enumerations for restricted-value properties and recording referenced
// class names as dependencies.
func buildSchemaClass(f *File, name string, node discovery.SchemaNode, path string) (*Class, error) {
	c := &Class{Name: name, Kind: KindData, Description: node.Description}

	for _, np := range node.Properties {
		p := np.Schema
		ppath := path + "/properties/" + np.Name
		attr := Attribute{Name: np.Name, Comment: p.Description}

		switch {
		case len(p.Enum) > 0:
			enum := synthesizeEnum(f, name+capitalize(np.Name), p.Type, p.Enum, p.EnumDescriptions)
			c.addDependency(enum.Name)
			attr.Type = enum.Name
			if p.Default.IsSet {
				def, err := resolveEnumDefault(enum, p.Default.Value, ppath)
				if err != nil {
					return nil, err
				}
				attr.Default = &def
			}
		case p.Ref != "":
			c.addDependency(p.Ref)
			attr.Type = p.Ref
			if p.Default.IsSet {
				return nil, integrityErr(ppath, "no literal coercion rule for type %q", p.Ref)
			}
		default:
			attr.Type = TranslateType(p.Type)
			if p.Default.IsSet {
				def, err := coerceDefault(attr.Type, p.Default.Value, ppath)
				if err != nil {
					return nil, err
				}
				attr.Default = &def
			}
		}
		c.ClassAttributes = append(c.ClassAttributes, attr)
	}

	return c, nil
}

// buildRootClass turns the document itself, minus the schemas section, into
// one additional class. Scalar document metadata becomes plain attributes.
func buildRootClass(doc *discovery.Document) *Class {
	c := &Class{
		Name:        ClassNameFromID(doc.ID),
		Kind:        KindResource,
		Description: doc.Description,
	}

	meta := []struct{ name, value string }{
		{"id", doc.ID},
		{"name", doc.Name},
		{"version", doc.Version},
		{"title", doc.Title},
		{"revision", doc.Revision},
		{"documentation_link", doc.DocumentationLink},
		{"protocol", doc.Protocol},
		{"root_url", doc.RootURL},
		{"service_path", doc.ServicePath},
		{"base_url", doc.BaseURL},
		{"base_path", doc.BasePath},
	}
	for _, m := range meta {
		if m.value == "" {
			continue
		}
		def := `"` + m.value + `"`
		c.Attributes = append(c.Attributes, Attribute{Name: m.name, Type: "str", Default: &def})
	}

	return c
}

// addResources appends one zero-argument shortcut method per resource to
// owner and registers each resource as its own class under a path-qualified
// name, pre-order. Qualified naming keeps sibling resources that share a name
// in different nesting contexts from colliding.
func addResources(f *File, owner *Class, resources discovery.NamedResources, path string) error {
	for _, nr := range resources {
		rpath := path + "/" + nr.Name
		childName := owner.Name + capitalize(nr.Name)

		owner.Methods = append(owner.Methods, Method{
			Name:       nr.Name,
			ReturnType: childName,
		})
		owner.addDependency(childName)

		child := &Class{Name: childName, Kind: KindResource}
		f.Register(child)

		for _, nm := range nr.Resource.Methods {
			m, err := buildMethod(f, child, nm.Name, nm.Method, rpath+"/methods/"+nm.Name)
			if err != nil {
				return err
			}
			child.Methods = append(child.Methods, m)
		}
		if err := addResources(f, child, nr.Resource.Resources, rpath+"/resources"); err != nil {
			return err
		}
	}
	return nil
}

// ClassNameFromID names the API-root class by capitalizing and concatenating
// the colon-delimited id segments: "blogger:v3" becomes "BloggerV3".
func ClassNameFromID(id string) string {
	var b strings.Builder
	for _, seg := range strings.Split(id, ":") {
		b.WriteString(capitalize(identRunes(seg)))
	}
	return b.String()
}

// unitName derives the output unit name from the id: segments lower-cased
// and joined with underscores, "blogger:v3" becomes "blogger_v3".
func unitName(id string) string {
	segs := strings.Split(id, ":")
	for i, seg := range segs {
		segs[i] = strings.ToLower(seg)
	}
	return strings.Join(segs, "_")
}

func identRunes(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
