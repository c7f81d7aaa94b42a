package model

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func listMethod(t *testing.T, raw string) Method {
	t.Helper()
	f := mustBuild(t, raw)
	c, ok := f.Lookup("DemoV1Posts")
	if !ok {
		t.Fatal("resource class missing")
	}
	if len(c.Methods) == 0 {
		t.Fatal("no methods built")
	}
	return c.Methods[0]
}

func argNames(m Method) []string {
	names := make([]string, 0, len(m.Args))
	for _, a := range m.Args {
		names = append(names, a.Name)
	}
	return names
}

func TestMethod_ExplicitOrderThenRequiredBeforeDefaulted(t *testing.T) {
	t.Parallel()
	m := listMethod(t, `{
  "id": "demo:v1",
  "resources": {
    "posts": {
      "methods": {
        "list": {
          "parameters": {
            "p4": {"type": "string", "default": "x"},
            "p3": {"type": "string"},
            "p2": {"type": "string"},
            "p1": {"type": "string"}
          },
          "parameterOrder": ["p1", "p2"]
        }
      }
    }
  }
}`)

	if diff := cmp.Diff([]string{"p1", "p2", "p3", "p4"}, argNames(m)); diff != "" {
		t.Errorf("argument order mismatch (-want +got):\n%s", diff)
	}
}

func TestMethod_DeclarationOrderPreservedWithinGroups(t *testing.T) {
	t.Parallel()
	m := listMethod(t, `{
  "id": "demo:v1",
  "resources": {
    "posts": {
      "methods": {
        "list": {
          "parameters": {
            "b": {"type": "string", "default": "1"},
            "a": {"type": "string"},
            "d": {"type": "string", "default": "2"},
            "c": {"type": "string"}
          }
        }
      }
    }
  }
}`)

	if diff := cmp.Diff([]string{"a", "c", "b", "d"}, argNames(m)); diff != "" {
		t.Errorf("argument order mismatch (-want +got):\n%s", diff)
	}
}

func TestMethod_ExplicitOrderConflictWarnsWithoutReordering(t *testing.T) {
	t.Parallel()
	f := mustBuild(t, `{
  "id": "demo:v1",
  "resources": {
    "posts": {
      "methods": {
        "list": {
          "parameters": {
            "a": {"type": "string", "default": "x"},
            "b": {"type": "string"}
          },
          "parameterOrder": ["a", "b"]
        }
      }
    }
  }
}`)

	c, _ := f.Lookup("DemoV1Posts")
	if diff := cmp.Diff([]string{"a", "b"}, argNames(c.Methods[0])); diff != "" {
		t.Errorf("declared order must be kept verbatim (-want +got):\n%s", diff)
	}
	if len(f.Warnings) != 1 {
		t.Fatalf("warnings: got %v, want one", f.Warnings)
	}
	if !strings.Contains(f.Warnings[0], "defaulted") {
		t.Errorf("warning text: got %q", f.Warnings[0])
	}
}

func TestMethod_ReturnTypes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{"Ref", `"response": {"$ref": "Post"},`, "Post"},
		{"LiteralToken", `"response": "string",`, "str"},
		{"Absent", "", "None"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := listMethod(t, `{
  "id": "demo:v1",
  "resources": {
    "posts": {"methods": {"list": {`+tt.response+`"description": "d"}}}
  }
}`)
			if m.ReturnType != tt.want {
				t.Errorf("return type: got %q, want %q", m.ReturnType, tt.want)
			}
		})
	}
}

func TestMethod_MalformedResponseIsFatal(t *testing.T) {
	t.Parallel()
	_, err := Build(parseDoc(t, `{
  "id": "demo:v1",
  "resources": {
    "posts": {"methods": {"list": {"response": {"type": "object"}}}}
  }
}`))
	var be *BuildError
	if !errors.As(err, &be) {
		t.Fatalf("expected BuildError, got %v", err)
	}
	if be.Code != DataIntegrityError {
		t.Errorf("code: got %q", be.Code)
	}
}

func TestMethod_DefaultCoercion(t *testing.T) {
	t.Parallel()
	m := listMethod(t, `{
  "id": "demo:v1",
  "resources": {
    "posts": {
      "methods": {
        "list": {
          "parameters": {
            "flag": {"type": "boolean", "default": "true"},
            "max": {"type": "integer", "default": "25"},
            "cursor": {"type": "string", "default": ""}
          }
        }
      }
    }
  }
}`)

	byName := map[string]MethodArgument{}
	for _, a := range m.Args {
		byName[a.Name] = a
	}
	if got := byName["flag"].Default; got != "True" {
		t.Errorf("flag default: got %q, want True", got)
	}
	if got := byName["max"].Default; got != "25" {
		t.Errorf("max default: got %q, want 25", got)
	}
	if got := byName["cursor"].Default; got != `""` {
		t.Errorf("cursor default: got %q, want quoted empty string", got)
	}
}

func TestMethod_UncoercibleDefaultIsFatal(t *testing.T) {
	t.Parallel()
	_, err := Build(parseDoc(t, `{
  "id": "demo:v1",
  "resources": {
    "posts": {
      "methods": {
        "list": {"parameters": {"filter": {"type": "object", "default": "x"}}}
      }
    }
  }
}`))
	var be *BuildError
	if !errors.As(err, &be) {
		t.Fatalf("expected BuildError, got %v", err)
	}
}

func TestMethod_RequiredFlagDefaultsFalse(t *testing.T) {
	t.Parallel()
	m := listMethod(t, `{
  "id": "demo:v1",
  "resources": {
    "posts": {
      "methods": {
        "list": {
          "parameters": {
            "blogId": {"type": "string", "required": true},
            "maxResults": {"type": "integer"}
          }
        }
      }
    }
  }
}`)

	byName := map[string]MethodArgument{}
	for _, a := range m.Args {
		byName[a.Name] = a
	}
	if !byName["blogId"].Required {
		t.Error("blogId should be required")
	}
	if byName["maxResults"].Required {
		t.Error("maxResults should default to optional")
	}
}

func TestMethod_DescriptionCollectsParameterLines(t *testing.T) {
	t.Parallel()
	m := listMethod(t, `{
  "id": "demo:v1",
  "resources": {
    "posts": {
      "methods": {
        "list": {
          "description": "Lists posts.",
          "parameters": {
            "blogId": {"type": "string", "description": "Blog to list."},
            "silent": {"type": "boolean"},
            "maxResults": {"type": "integer", "description": "Page size."}
          }
        }
      }
    }
  }
}`)

	want := "Lists posts.\nblogId: Blog to list.\nmaxResults: Page size."
	if m.Description != want {
		t.Errorf("description:\ngot  %q\nwant %q", m.Description, want)
	}
}
