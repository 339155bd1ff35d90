// Package repository holds the errors shared by every report and activity store.
package repository

import "errors"

var (
	// ErrNotFound is returned when no report has the requested id.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when a store rejects a malformed record.
	ErrInvalidInput = errors.New("invalid input")
)
