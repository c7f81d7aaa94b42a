package model

// Internal type graph built from one discovery document and consumed by the
// emitters. All entities are created during Build and never mutated afterward.

import "fmt"

// Kind distinguishes the three class flavors.
type Kind string

const (
	// KindData is a plain data record built from a schema node.
	KindData Kind = "data"
	// KindResource is a synthetic class for a resource group or the API root;
	// it carries methods and plain attributes but no schema properties.
	KindResource Kind = "resource"
	// KindEnum is a synthesized enumeration extracted from an inline
	// restricted-value declaration.
	KindEnum Kind = "enum"
)

// Class is one emitted type. Dependencies are class names, not pointers;
// the emitter resolves them against the owning File, and a name that is
// absent there is simply skipped.
type Class struct {
	Name        string
	Kind        Kind
	Description string

	// Attributes are plain fields (document metadata on the root class).
	Attributes []Attribute
	// ClassAttributes originate from schema properties.
	ClassAttributes []Attribute
	Methods         []Method
	Dependencies    []string

	// Enum classes only.
	EnumKind string        `json:",omitempty"`
	Elements []EnumElement `json:",omitempty"`
}

func (c *Class) addDependency(name string) {
	if name == "" {
		return
	}
	for _, d := range c.Dependencies {
		if d == name {
			return
		}
	}
	c.Dependencies = append(c.Dependencies, name)
}

// EnumElement is one named value of a synthesized enumeration.
type EnumElement struct {
	Name    string
	Literal string
	Comment string `json:",omitempty"`
}

// Attribute is a named, typed, optionally defaulted field. Default is nil
// when no default was declared; a literal empty string stays distinguishable
// from "no default".
type Attribute struct {
	Name    string
	Type    string
	Default *string `json:",omitempty"`
	Comment string  `json:",omitempty"`
}

// Method is a callable signature with ordered arguments.
type Method struct {
	Name        string
	Description string
	Args        []MethodArgument
	// ReturnType is a class name, a Python primitive, or "None".
	ReturnType string
}

// MethodArgument is one method parameter. Default is already a Python
// literal; empty means no default.
type MethodArgument struct {
	Name     string
	Required bool
	Type     string
	Default  string `json:",omitempty"`
}

// File owns every class generated from one document, keyed by name.
// Registration order is preserved and drives top-level emission order.
type File struct {
	// Name is the output unit name without extension, e.g. "blogger_v3".
	Name string

	classes map[string]*Class
	order   []string

	// Warnings collects non-fatal findings, e.g. a declared parameter order
	// that puts a defaulted argument ahead of a required one.
	Warnings []string
}

// NewFile returns an empty registry for one document.
func NewFile(name string) *File {
	return &File{Name: name, classes: make(map[string]*Class)}
}

// Register inserts a class. Re-registering a name replaces the class but
// keeps its original position.
func (f *File) Register(c *Class) {
	if _, ok := f.classes[c.Name]; !ok {
		f.order = append(f.order, c.Name)
	}
	f.classes[c.Name] = c
}

// Lookup resolves a class name.
func (f *File) Lookup(name string) (*Class, bool) {
	c, ok := f.classes[name]
	return c, ok
}

// Classes returns all classes in registration order.
func (f *File) Classes() []*Class {
	out := make([]*Class, 0, len(f.order))
	for _, name := range f.order {
		out = append(out, f.classes[name])
	}
	return out
}

// HasEnums reports whether any enumeration class was synthesized; it gates
// the shared import line in the output.
func (f *File) HasEnums() bool {
	for _, name := range f.order {
		if f.classes[name].Kind == KindEnum {
			return true
		}
	}
	return false
}

func (f *File) warnf(format string, args ...any) {
	f.Warnings = append(f.Warnings, fmt.Sprintf(format, args...))
}
