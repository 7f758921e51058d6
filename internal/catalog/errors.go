package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFetchFailure matches transport errors and non-2xx responses.
	ErrFetchFailure = errors.New("catalog: fetch failed")
	// ErrSchemaMismatch matches payloads that do not have the expected shape.
	ErrSchemaMismatch = errors.New("catalog: schema mismatch")
)

// FetchError describes a failed request against one of the catalog endpoints.
type FetchError struct {
	Endpoint   string
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "catalog: fetch %s", e.Endpoint)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if body := strings.TrimSpace(e.Body); body != "" {
		fmt.Fprintf(&b, ": %s", body)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrFetchFailure) match any FetchError.
func (e *FetchError) Is(target error) bool { return target == ErrFetchFailure }

// SchemaError points at the first field of a payload that failed validation.
type SchemaError struct {
	Endpoint string
	Path     string
	Reason   string
}

func (e *SchemaError) Error() string {
	path := e.Path
	if path == "" {
		path = "$"
	}
	if e.Endpoint == "" {
		return fmt.Sprintf("catalog: schema mismatch at %s: %s", path, e.Reason)
	}
	return fmt.Sprintf("catalog: schema mismatch in %s at %s: %s", e.Endpoint, path, e.Reason)
}

// Is lets errors.Is(err, ErrSchemaMismatch) match any SchemaError.
func (e *SchemaError) Is(target error) bool { return target == ErrSchemaMismatch }

func schemaErrorf(path, format string, args ...any) *SchemaError {
	return &SchemaError{Path: path, Reason: fmt.Sprintf(format, args...)}
}
