package discovery

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

const componentsPrefix = "#/components/schemas/"

// FromOpenAPI maps an OpenAPI v3 document onto the discovery shape so the rest
// of the pipeline only ever sees one input format. Named component schemas
// become discovery schemas, and paths are grouped into one resource per first
// path segment with one method per operation.
func FromOpenAPI(doc *openapi3.T) (*Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}
	if doc.Info == nil {
		return nil, fmt.Errorf("openapi document has no info block")
	}

	out := &Document{
		ID:          openAPIID(doc.Info.Title, doc.Info.Version),
		Name:        slug(doc.Info.Title),
		Version:     versionSegment(doc.Info.Version),
		Title:       strings.TrimSpace(doc.Info.Title),
		Description: strings.TrimSpace(doc.Info.Description),
	}

	if doc.Components != nil && len(doc.Components.Schemas) > 0 {
		names := make([]string, 0, len(doc.Components.Schemas))
		for name := range doc.Components.Schemas {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			ref := doc.Components.Schemas[name]
			if ref == nil || ref.Value == nil {
				continue
			}
			out.Schemas = append(out.Schemas, NamedSchema{Name: name, Schema: schemaNodeFromOpenAPI(ref.Value)})
		}
	}

	if doc.Paths != nil {
		grouped := map[string]*ResourceNode{}
		var order []string
		paths := make([]string, 0, len(doc.Paths))
		for p := range doc.Paths {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			item := doc.Paths[p]
			if item == nil {
				continue
			}
			seg := firstSegment(p)
			res, ok := grouped[seg]
			if !ok {
				res = &ResourceNode{}
				grouped[seg] = res
				order = append(order, seg)
			}
			ops := []struct {
				verb string
				op   *openapi3.Operation
			}{
				{"get", item.Get},
				{"post", item.Post},
				{"put", item.Put},
				{"delete", item.Delete},
				{"patch", item.Patch},
			}
			for _, pair := range ops {
				if pair.op == nil {
					continue
				}
				name := strings.TrimSpace(pair.op.OperationID)
				if name == "" {
					name = pair.verb + "_" + slug(p)
				}
				res.Methods = append(res.Methods, NamedMethod{Name: name, Method: methodNodeFromOpenAPI(pair.op)})
			}
		}
		for _, seg := range order {
			out.Resources = append(out.Resources, NamedResource{Name: seg, Resource: *grouped[seg]})
		}
	}

	return out, nil
}

func schemaNodeFromOpenAPI(s *openapi3.Schema) SchemaNode {
	node := SchemaNode{
		Type:        s.Type,
		Description: strings.TrimSpace(s.Description),
		Enum:        enumLiterals(s.Enum),
	}
	if len(s.Properties) > 0 {
		names := make([]string, 0, len(s.Properties))
		for name := range s.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			pref := s.Properties[name]
			if pref == nil {
				continue
			}
			var pn SchemaNode
			if pref.Ref != "" {
				pn.Ref = strings.TrimPrefix(pref.Ref, componentsPrefix)
			} else if pref.Value != nil {
				pn = schemaNodeFromOpenAPI(pref.Value)
			}
			node.Properties = append(node.Properties, NamedSchema{Name: name, Schema: pn})
		}
	}
	return node
}

func methodNodeFromOpenAPI(op *openapi3.Operation) MethodNode {
	node := MethodNode{Description: strings.TrimSpace(op.Description)}
	if node.Description == "" {
		node.Description = strings.TrimSpace(op.Summary)
	}
	for _, pref := range op.Parameters {
		if pref == nil || pref.Value == nil {
			continue
		}
		p := pref.Value
		pn := ParameterNode{
			Description: strings.TrimSpace(p.Description),
			Required:    p.Required,
		}
		if p.Schema != nil {
			if p.Schema.Ref != "" {
				pn.Ref = strings.TrimPrefix(p.Schema.Ref, componentsPrefix)
			} else if p.Schema.Value != nil {
				pn.Type = p.Schema.Value.Type
				pn.Enum = enumLiterals(p.Schema.Value.Enum)
				if p.Schema.Value.Default != nil {
					pn.Default = Literal{Value: fmt.Sprintf("%v", p.Schema.Value.Default), IsSet: true}
				}
			}
		}
		node.Parameters = append(node.Parameters, NamedParameter{Name: p.Name, Parameter: pn})
	}
	if ref := successResponseRef(op); ref != "" {
		node.Response = &ResponseNode{Ref: strings.TrimPrefix(ref, componentsPrefix)}
	}
	return node
}

// successResponseRef picks the schema reference of the lowest 2xx response
// with JSON content, if any.
func successResponseRef(op *openapi3.Operation) string {
	if op.Responses == nil {
		return ""
	}
	codes := make([]string, 0, len(op.Responses))
	for code := range op.Responses {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		if !strings.HasPrefix(code, "2") {
			continue
		}
		rref := op.Responses[code]
		if rref == nil || rref.Value == nil {
			continue
		}
		for _, mime := range []string{"application/json", "*/*"} {
			if mt, ok := rref.Value.Content[mime]; ok && mt != nil && mt.Schema != nil && mt.Schema.Ref != "" {
				return mt.Schema.Ref
			}
		}
	}
	return ""
}

func enumLiterals(values []any) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, fmt.Sprintf("%v", v))
	}
	return out
}

func openAPIID(title, version string) string {
	name := slug(title)
	if name == "" {
		name = "api"
	}
	return name + ":" + versionSegment(version)
}

func versionSegment(version string) string {
	v := keepAlnum(version)
	if v == "" {
		return "v1"
	}
	if v[0] >= '0' && v[0] <= '9' {
		return "v" + v
	}
	return v
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}

func keepAlnum(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func firstSegment(path string) string {
	path = strings.Trim(path, "/")
	if path == "" {
		return "root"
	}
	seg := path
	if i := strings.IndexByte(path, '/'); i >= 0 {
		seg = path[:i]
	}
	seg = slug(seg)
	if seg == "" {
		return "root"
	}
	return seg
}
