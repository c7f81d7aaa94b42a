package discovery

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

const sampleDiscovery = `{
  "kind": "discovery#restDescription",
  "discoveryVersion": "v1",
  "id": "blogger:v3",
  "name": "blogger",
  "version": "v3",
  "title": "Blogger API",
  "schemas": {
    "Post": {"type": "object", "properties": {"title": {"type": "string"}}}
  },
  "resources": {
    "posts": {"methods": {"list": {"response": {"$ref": "Post"}}}}
  }
}`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp: %v", err)
	}
	return path
}

func TestLoad_DiscoveryFromFile(t *testing.T) {
	t.Parallel()
	path := writeTemp(t, "blogger.json", sampleDiscovery)

	doc, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.ID != "blogger:v3" {
		t.Errorf("id: got %q", doc.ID)
	}
	if len(doc.Schemas) != 1 || doc.Schemas[0].Name != "Post" {
		t.Errorf("schemas: got %+v", doc.Schemas)
	}
	if len(doc.Resources) != 1 || doc.Resources[0].Name != "posts" {
		t.Errorf("resources: got %+v", doc.Resources)
	}
}

func TestLoad_DiscoveryFromHTTP(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleDiscovery))
	}))
	defer srv.Close()

	doc, err := Load(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.ID != "blogger:v3" {
		t.Errorf("id: got %q", doc.ID)
	}
}

func TestLoad_RetriesTransientHTTPErrors(t *testing.T) {
	t.Parallel()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(sampleDiscovery))
	}))
	defer srv.Close()

	doc, err := Load(context.Background(), srv.URL, WithMaxRetries(3), WithBackoffBase(time.Millisecond))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.ID != "blogger:v3" {
		t.Errorf("id: got %q", doc.ID)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("request count: got %d, want 2", got)
	}
}

func TestLoad_ErrorCodes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		code  ErrorCode
	}{
		{"EmptyInput", "  ", InputError},
		{"MissingFile", filepath.Join(t.TempDir(), "nope.json"), InputError},
		{"UnsupportedScheme", "ftp://example.com/doc.json", InputError},
		{"UnknownFormat", writeTemp(t, "junk.json", `{"hello": "world"}`), ParseError},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(context.Background(), tt.input)
			var de *DocError
			if !errors.As(err, &de) {
				t.Fatalf("expected DocError, got %v", err)
			}
			if de.Code != tt.code {
				t.Errorf("code: got %q, want %q", de.Code, tt.code)
			}
		})
	}
}

func TestLoad_NonTransientHTTPErrorFailsFast(t *testing.T) {
	t.Parallel()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := Load(context.Background(), srv.URL, WithMaxRetries(3), WithBackoffBase(time.Millisecond))
	var de *DocError
	if !errors.As(err, &de) || de.Code != NetworkError {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("request count: got %d, want 1 (no retry on 404)", got)
	}
}
