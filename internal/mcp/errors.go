package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/civicreport/internal/domain/report"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var verr *report.ValidationError
	switch {
	case errors.Is(err, report.ErrReportNotFound):
		return &APIError{Code: "REPORT_NOT_FOUND", Message: "report not found", RecoveryHint: "Use list_reports to find valid ids"}
	case errors.As(err, &verr):
		return &APIError{Code: "INVALID_INPUT", Message: verr.Error(), Details: verr.Fields}
	case errors.Is(err, report.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	default:
		return nil
	}
}

// toolError converts a service error into the error returned from a tool handler.
func toolError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
