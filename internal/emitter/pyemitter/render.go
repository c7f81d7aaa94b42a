package pyemitter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mark3labs/discovery2py/internal/model"
)

const indentWidth = 4

// printer accumulates indented output lines.
type printer struct {
	buf    bytes.Buffer
	indent int
}

func (p *printer) line(format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	if text != "" {
		p.buf.WriteString(strings.Repeat(" ", p.indent*indentWidth))
		p.buf.WriteString(text)
	}
	p.buf.WriteByte('\n')
}

func (p *printer) blank() { p.buf.WriteByte('\n') }

type emitState uint8

const (
	stateInProgress emitState = iota + 1
	stateWritten
)

// Render produces the full output unit for one File: the shared enum import
// when any enumeration exists, then every class in dependency order.
func Render(f *model.File) []byte {
	p := &printer{}
	if f.HasEnums() {
		p.line("from enum import Enum")
		p.blank()
		p.blank()
	}
	states := make(map[string]emitState, len(f.Classes()))
	for _, c := range f.Classes() {
		emitClass(p, f, c, states)
	}
	return p.buf.Bytes()
}

// emitClass writes c after all of its dependencies. The in-progress marker is
// what breaks cycles: a class is only marked written after its body is
// rendered, so mutually dependent classes would otherwise recurse forever.
// Dependency names absent from the registry are skipped.
func emitClass(p *printer, f *model.File, c *model.Class, states map[string]emitState) {
	if states[c.Name] != 0 {
		return
	}
	states[c.Name] = stateInProgress

	for _, dep := range c.Dependencies {
		d, ok := f.Lookup(dep)
		if !ok {
			continue
		}
		emitClass(p, f, d, states)
	}

	renderClass(p, c)
	states[c.Name] = stateWritten
}

func renderClass(p *printer, c *model.Class) {
	if c.Kind == model.KindEnum {
		p.line("class %s(Enum):", c.Name)
	} else {
		p.line("class %s:", c.Name)
	}
	p.indent++

	empty := true
	if c.Description != "" {
		renderDocstring(p, c.Description)
		empty = false
	}

	if c.Kind == model.KindEnum {
		for _, el := range c.Elements {
			renderComment(p, el.Comment)
			p.line("%s = %s", el.Name, enumLiteral(c.EnumKind, el.Literal))
		}
		empty = empty && len(c.Elements) == 0
	} else {
		for _, a := range c.Attributes {
			renderAttribute(p, a)
			empty = false
		}
		for _, a := range c.ClassAttributes {
			renderAttribute(p, a)
			empty = false
		}
		for _, m := range c.Methods {
			if !empty {
				p.blank()
			}
			renderMethod(p, m)
			empty = false
		}
	}

	// A class with no body at all still has to parse.
	if empty {
		p.line("...")
	}

	p.indent--
	p.blank()
	p.blank()
}

func renderAttribute(p *printer, a model.Attribute) {
	renderComment(p, a.Comment)
	if a.Default != nil {
		p.line("%s: %s = %s", a.Name, a.Type, *a.Default)
	} else {
		p.line("%s: %s", a.Name, a.Type)
	}
}

func renderMethod(p *printer, m model.Method) {
	params := make([]string, 0, 1+len(m.Args))
	params = append(params, "self")
	for _, a := range m.Args {
		s := a.Name + ": " + a.Type
		if a.Default != "" {
			s += " = " + a.Default
		}
		params = append(params, s)
	}
	p.line("def %s(%s) -> %s:", m.Name, strings.Join(params, ", "), m.ReturnType)
	p.indent++
	if m.Description != "" {
		renderDocstring(p, m.Description)
	}
	p.line("...")
	p.indent--
}

func renderDocstring(p *printer, text string) {
	p.line("'''")
	for _, l := range strings.Split(text, "\n") {
		p.line("%s", l)
	}
	p.line("'''")
}

func renderComment(p *printer, comment string) {
	if comment == "" {
		return
	}
	for _, l := range strings.Split(comment, "\n") {
		p.line("# %s", l)
	}
}

// enumLiteral renders an element value according to the enumeration's
// underlying primitive kind.
func enumLiteral(kind, literal string) string {
	switch kind {
	case "int", "float":
		return literal
	case "bool":
		if strings.EqualFold(literal, "true") {
			return "True"
		}
		return "False"
	default:
		return `"` + literal + `"`
	}
}
