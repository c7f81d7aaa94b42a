package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// ErrorCode categorizes loader errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError      ErrorCode = "InputError"
	NetworkError    ErrorCode = "NetworkError"
	ParseError      ErrorCode = "ParseError"
	ConversionError ErrorCode = "ConversionError"
)

// DocError is a structured error with an optional source location.
type DocError struct {
	Code     ErrorCode
	Message  string
	Location string // file path or URL
	Cause    error
}

func (e *DocError) Error() string { return e.Message }
func (e *DocError) Unwrap() error { return e.Cause }

// Settings configures loader behavior.
type Settings struct {
	// HTTPTimeout bounds each HTTP request.
	HTTPTimeout time.Duration
	// MaxRetries for transient HTTP failures (>=500, 429, or network errors).
	MaxRetries int
	// BackoffBase is the base delay for exponential backoff.
	BackoffBase time.Duration
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout: 10 * time.Second,
		MaxRetries:  3,
		BackoffBase: 200 * time.Millisecond,
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option  { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option             { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option  { return func(s *Settings) { s.BackoffBase = d } }

// Load reads a document from a filesystem path or an http/https URL and
// returns it as a discovery Document. OpenAPI v3 documents are accepted as an
// alternative input format and converted on the fly.
func Load(ctx context.Context, input string, opts ...Option) (*Document, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &DocError{Code: InputError, Message: "discovery: input is empty"}
	}

	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}

	u, uerr := url.Parse(input)
	isURL := uerr == nil && u.Scheme != "" && u.Host != ""

	var raw []byte
	location := input
	if isURL {
		scheme := strings.ToLower(u.Scheme)
		if scheme != "http" && scheme != "https" {
			return nil, &DocError{Code: InputError, Message: fmt.Sprintf("discovery: unsupported URL scheme %q (only http/https allowed)", scheme), Location: input}
		}
		fetched, err := fetchWithRetry(ctx, input, settings)
		if err != nil {
			return nil, &DocError{Code: NetworkError, Message: fmt.Sprintf("fetch %s: %v", input, err), Location: input, Cause: err}
		}
		raw = fetched
	} else {
		abs, err := filepath.Abs(input)
		if err != nil {
			return nil, &DocError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
		}
		location = abs
		raw, err = os.ReadFile(abs)
		if err != nil {
			return nil, &DocError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, err), Location: abs, Cause: err}
		}
	}

	format, err := detectFormat(raw)
	if err != nil {
		return nil, &DocError{Code: ParseError, Message: err.Error(), Location: location, Cause: err}
	}

	switch format {
	case formatDiscovery:
		doc, err := Parse(raw)
		if err != nil {
			var de *DocError
			if errors.As(err, &de) {
				de.Location = location
			}
			return nil, err
		}
		return doc, nil
	case formatOpenAPI:
		loader := openapi3.NewLoader()
		oas, err := loader.LoadFromData(raw)
		if err != nil {
			return nil, &DocError{Code: ParseError, Message: fmt.Sprintf("parse openapi document: %v", err), Location: location, Cause: err}
		}
		if err := oas.Validate(ctx); err != nil {
			// Conversion is best effort; validation problems surface later
			// as missing schema details rather than a hard stop.
			if !canProceedDespiteValidation(err) {
				return nil, &DocError{Code: ParseError, Message: err.Error(), Location: location, Cause: err}
			}
		}
		doc, err := FromOpenAPI(oas)
		if err != nil {
			return nil, &DocError{Code: ConversionError, Message: fmt.Sprintf("convert openapi document: %v", err), Location: location, Cause: err}
		}
		return doc, nil
	default:
		return nil, &DocError{Code: ParseError, Message: "discovery: unrecognized document format", Location: location}
	}
}

type docFormat int

const (
	formatUnknown docFormat = iota
	formatDiscovery
	formatOpenAPI
)

// detectFormat sniffs the top-level keys to classify the document.
func detectFormat(data []byte) (docFormat, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return formatUnknown, fmt.Errorf("parse document: %w", err)
	}
	if v, ok := root["openapi"]; ok {
		if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "3.") {
			return formatOpenAPI, nil
		}
	}
	if _, ok := root["discoveryVersion"]; ok {
		return formatDiscovery, nil
	}
	if _, ok := root["id"]; ok {
		if _, ok := root["schemas"]; ok {
			return formatDiscovery, nil
		}
		if _, ok := root["resources"]; ok {
			return formatDiscovery, nil
		}
	}
	return formatUnknown, fmt.Errorf("discovery: missing discovery or openapi markers in document root")
}

func fetchWithRetry(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
	client := &http.Client{Timeout: settings.HTTPTimeout}
	var lastErr error
	backoff := settings.BackoffBase
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := settings.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode < 300 {
			defer resp.Body.Close()
			return io.ReadAll(resp.Body)
		}
		if err != nil {
			lastErr = err
		} else {
			defer resp.Body.Close()
			if resp.StatusCode >= 500 || resp.StatusCode == 429 {
				lastErr = fmt.Errorf("transient http error %d", resp.StatusCode)
			} else {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
				return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			}
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if lastErr == nil {
		lastErr = errors.New("fetch failed")
	}
	return nil, lastErr
}

// canProceedDespiteValidation returns true for validation errors where a
// best-effort conversion can still proceed (e.g., unresolved $ref entries).
func canProceedDespiteValidation(err error) bool {
	if err == nil {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unresolved ref") || strings.Contains(s, "found unresolved ref")
}
