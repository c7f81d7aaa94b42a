package model

import (
	"strings"

	"github.com/mark3labs/discovery2py/internal/discovery"
)

// buildMethod turns one operation node into a Method and records the
// synthesized enum and return-type dependencies on owner.
func buildMethod(f *File, owner *Class, name string, node discovery.MethodNode, path string) (Method, error) {
	m := Method{Name: name}

	ret, err := returnType(node.Response, path)
	if err != nil {
		return m, err
	}
	m.ReturnType = ret
	if ret != "None" {
		owner.addDependency(ret)
	}

	var args []MethodArgument
	var paramDocs []string
	for _, np := range node.Parameters {
		p := np.Parameter
		ppath := path + "/parameters/" + np.Name
		arg := MethodArgument{Name: np.Name, Required: p.Required}

		switch {
		case len(p.Enum) > 0:
			enumName := "Param" + capitalize(name) + capitalize(np.Name)
			enum := synthesizeEnum(f, enumName, p.Type, p.Enum, p.EnumDescriptions)
			owner.addDependency(enumName)
			arg.Type = enumName
			if p.Default.IsSet {
				def, err := resolveEnumDefault(enum, p.Default.Value, ppath)
				if err != nil {
					return m, err
				}
				arg.Default = def
			}
		case p.Ref != "":
			owner.addDependency(p.Ref)
			arg.Type = p.Ref
			if p.Default.IsSet {
				return m, integrityErr(ppath, "no literal coercion rule for type %q", p.Ref)
			}
		default:
			arg.Type = TranslateType(p.Type)
			if p.Default.IsSet {
				def, err := coerceDefault(arg.Type, p.Default.Value, ppath)
				if err != nil {
					return m, err
				}
				arg.Default = def
			}
		}
		args = append(args, arg)

		if p.Description != "" {
			paramDocs = append(paramDocs, np.Name+": "+p.Description)
		}
	}

	m.Args = orderArguments(f, path, args, node.ParameterOrder)
	m.Description = methodDescription(node.Description, paramDocs)
	return m, nil
}

func returnType(resp *discovery.ResponseNode, path string) (string, error) {
	switch {
	case resp == nil:
		return "None", nil
	case resp.Invalid:
		return "", integrityErr(path+"/response", "response must be a $ref mapping or a type token")
	case resp.Ref != "":
		return resp.Ref, nil
	default:
		return TranslateType(resp.Literal), nil
	}
}

// coerceDefault renders a declared literal default as a Python literal of the
// argument's annotation type. Types without a coercion rule reject defaults.
func coerceDefault(typ, literal, path string) (string, error) {
	switch typ {
	case "bool":
		switch strings.ToLower(literal) {
		case "true":
			return "True", nil
		case "false":
			return "False", nil
		default:
			return "", integrityErr(path, "boolean default must be true or false, got %q", literal)
		}
	case "int":
		return literal, nil
	case "str":
		return `"` + literal + `"`, nil
	default:
		return "", integrityErr(path, "no literal coercion rule for type %q", typ)
	}
}

// orderArguments applies the declared parameter order first, verbatim, then
// appends the remaining arguments with every argument lacking a default ahead
// of every argument that has one, each group keeping declaration order.
// Defaulted parameters cannot precede plain ones in a Python signature, so a
// declared order that does this is recorded as a warning rather than being
// silently reordered.
func orderArguments(f *File, path string, args []MethodArgument, explicit []string) []MethodArgument {
	if len(args) == 0 {
		return nil
	}
	byName := make(map[string]int, len(args))
	for i, a := range args {
		byName[a.Name] = i
	}

	ordered := make([]MethodArgument, 0, len(args))
	taken := make(map[string]bool, len(explicit))
	for _, name := range explicit {
		i, ok := byName[name]
		if !ok || taken[name] {
			continue
		}
		taken[name] = true
		ordered = append(ordered, args[i])
	}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].Default != "" && ordered[i].Default == "" {
			f.warnf("%s: declared parameter order puts defaulted %q before %q", path, ordered[i-1].Name, ordered[i].Name)
		}
	}

	for _, a := range args {
		if !taken[a.Name] && a.Default == "" {
			ordered = append(ordered, a)
		}
	}
	for _, a := range args {
		if !taken[a.Name] && a.Default != "" {
			ordered = append(ordered, a)
		}
	}
	return ordered
}

// methodDescription extends the operation description with one line per
// documented parameter, in declaration order.
func methodDescription(desc string, paramDocs []string) string {
	parts := make([]string, 0, 1+len(paramDocs))
	if desc != "" {
		parts = append(parts, desc)
	}
	parts = append(parts, paramDocs...)
	return strings.Join(parts, "\n")
}
