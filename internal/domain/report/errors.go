package report

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrReportNotFound indicates the report doesn't exist.
	ErrReportNotFound = errors.New("report not found")
	// ErrInvalidInput indicates a malformed create or update request.
	ErrInvalidInput = errors.New("invalid report input")
)

// ValidationError lists per-field problems. It unwraps to ErrInvalidInput.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
