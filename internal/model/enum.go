package model

import (
	"strings"
	"unicode"
)

// synthesizeEnum extracts an inline restricted-value declaration into a
// standalone enumeration class and registers it. values and descs are the
// parallel literal/description sequences; a missing description leaves the
// element comment empty.
func synthesizeEnum(f *File, name, typeToken string, values, descs []string) *Class {
	c := &Class{
		Name:     name,
		Kind:     KindEnum,
		EnumKind: TranslateType(typeToken),
	}
	for i, v := range values {
		el := EnumElement{Name: enumElementName(v), Literal: v}
		if i < len(descs) {
			el.Comment = descs[i]
		}
		c.Elements = append(c.Elements, el)
	}
	f.Register(c)
	return c
}

// resolveEnumDefault maps a declared default literal to a symbolic reference
// to the matching element. A default that matches none of the declared values
// is an authoring error in the source schema, never silently dropped.
func resolveEnumDefault(c *Class, literal, path string) (string, error) {
	for _, el := range c.Elements {
		if el.Literal == literal {
			return c.Name + "." + el.Name, nil
		}
	}
	return "", integrityErr(path, "default %q is not one of the declared enum values of %s", literal, c.Name)
}

// enumElementName derives a valid identifier from an enum literal: uppercase,
// non-identifier runes folded to underscores, and a guard prefix when the
// literal starts with a digit.
func enumElementName(literal string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(literal) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	name := b.String()
	if name == "" {
		return "EMPTY"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "V" + name
	}
	return name
}

// capitalize upper-cases the first rune only, leaving the rest untouched.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
