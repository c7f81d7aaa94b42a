package model

// translateTable maps discovery type tokens to Python type names. Unknown
// tokens pass through unchanged; that is how class references and synthesized
// enum class names flow through as annotation types.
var translateTable = map[string]string{
	"string":  "str",
	"boolean": "bool",
	"array":   "list",
	"object":  "dict",
	"integer": "int",
	"int32":   "int",
	"int64":   "int",
	"uint32":  "int",
	"uint64":  "int",
	"number":  "float",
	"float":   "float",
	"double":  "float",
	"any":     "Any",
}

// TranslateType returns the Python spelling of a schema type token.
func TranslateType(token string) string {
	if t, ok := translateTable[token]; ok {
		return t
	}
	return token
}
