package model

import "fmt"

// ErrorCode categorizes build failures.
type ErrorCode string

const (
	// DataIntegrityError marks a schema whose declared values contradict each
	// other, e.g. an enum default that is not one of the declared values.
	DataIntegrityError ErrorCode = "DataIntegrityError"
)

// BuildError is a structured error raised while constructing the type graph.
// Path points at the offending node, e.g. "schemas/Post/properties/status".
type BuildError struct {
	Code    ErrorCode
	Message string
	Path    string
	Cause   error
}

func (e *BuildError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

func (e *BuildError) Unwrap() error { return e.Cause }

func integrityErr(path, format string, args ...any) error {
	return &BuildError{Code: DataIntegrityError, Path: path, Message: fmt.Sprintf(format, args...)}
}
