package model

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEnumElementName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		literal string
		want    string
	}{
		{"live", "LIVE"},
		{"DRAFT", "DRAFT"},
		{"1day", "V1DAY"},
		{"30days", "V30DAYS"},
		{"read-only", "READ_ONLY"},
		{"a.b", "A_B"},
		{"", "EMPTY"},
	}
	for _, tt := range tests {
		if got := enumElementName(tt.literal); got != tt.want {
			t.Errorf("enumElementName(%q) = %q, want %q", tt.literal, got, tt.want)
		}
	}
}

func TestBuild_EnumProperty(t *testing.T) {
	t.Parallel()
	f := mustBuild(t, `{
  "id": "demo:v1",
  "schemas": {
    "Post": {
      "properties": {
        "status": {
          "type": "string",
          "enum": ["A", "B"],
          "enumDescriptions": ["first", "second"]
        }
      }
    }
  }
}`)

	if !f.HasEnums() {
		t.Fatal("expected an enum class")
	}
	enum, ok := f.Lookup("PostStatus")
	if !ok {
		t.Fatal("PostStatus not registered")
	}
	if enum.Kind != KindEnum {
		t.Errorf("kind: got %q", enum.Kind)
	}
	if enum.EnumKind != "str" {
		t.Errorf("underlying kind: got %q", enum.EnumKind)
	}
	want := []EnumElement{
		{Name: "A", Literal: "A", Comment: "first"},
		{Name: "B", Literal: "B", Comment: "second"},
	}
	if diff := cmp.Diff(want, enum.Elements); diff != "" {
		t.Errorf("elements mismatch (-want +got):\n%s", diff)
	}

	post, _ := f.Lookup("Post")
	if diff := cmp.Diff([]string{"PostStatus"}, post.Dependencies); diff != "" {
		t.Errorf("dependencies mismatch (-want +got):\n%s", diff)
	}
	if got := post.ClassAttributes[0].Type; got != "PostStatus" {
		t.Errorf("attribute type: got %q", got)
	}
}

func TestBuild_EnumDefaultResolvesSymbolically(t *testing.T) {
	t.Parallel()
	f := mustBuild(t, `{
  "id": "demo:v1",
  "schemas": {
    "Post": {
      "properties": {
        "status": {"type": "string", "enum": ["live", "draft"], "default": "draft"}
      }
    }
  }
}`)

	post, _ := f.Lookup("Post")
	attr := post.ClassAttributes[0]
	if attr.Default == nil || *attr.Default != "PostStatus.DRAFT" {
		t.Errorf("default: got %v, want PostStatus.DRAFT", attr.Default)
	}
}

func TestBuild_EnumDefaultMismatchIsFatal(t *testing.T) {
	t.Parallel()
	_, err := Build(parseDoc(t, `{
  "id": "demo:v1",
  "schemas": {
    "Post": {
      "properties": {
        "status": {"type": "string", "enum": ["live", "draft"], "default": "gone"}
      }
    }
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

func TestBuild_ParameterEnumNaming(t *testing.T) {
	t.Parallel()
	f := mustBuild(t, `{
  "id": "demo:v1",
  "resources": {
    "posts": {
      "methods": {
        "list": {
          "parameters": {
            "view": {"type": "string", "enum": ["full", "summary"], "default": "full"}
          }
        }
      }
    }
  }
}`)

	enum, ok := f.Lookup("ParamListView")
	if !ok {
		t.Fatal("ParamListView not registered")
	}
	if len(enum.Elements) != 2 {
		t.Fatalf("elements: got %d", len(enum.Elements))
	}

	posts, _ := f.Lookup("DemoV1Posts")
	arg := posts.Methods[0].Args[0]
	if arg.Type != "ParamListView" {
		t.Errorf("arg type: got %q", arg.Type)
	}
	if arg.Default != "ParamListView.FULL" {
		t.Errorf("arg default: got %q", arg.Default)
	}
	found := false
	for _, d := range posts.Dependencies {
		if d == "ParamListView" {
			found = true
		}
	}
	if !found {
		t.Errorf("enum not recorded as dependency: %v", posts.Dependencies)
	}
}
