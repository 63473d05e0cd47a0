package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Base error types
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrNoSections    = errors.New("no report sections")
	ErrTooLarge      = errors.New("payload too large")
	ErrRenderFailed  = errors.New("render failed")
	ErrInternalError = errors.New("internal error")
)

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeTooLarge   ErrorType = "too_large"
	ErrorTypeRender     ErrorType = "render"
	ErrorTypeStorage    ErrorType = "storage"
	ErrorTypeInternal   ErrorType = "internal"
)

// ReportError is a structured error for report operations.
type ReportError struct {
	Type      ErrorType
	Op        string // Operation that failed (e.g., "decode_record", "render_pdf")
	ReportID  string // Report the operation was working on, if known
	Err       error  // Underlying error
	Timestamp time.Time
}

func (e *ReportError) Error() string {
	if e.ReportID != "" {
		return fmt.Sprintf("%s failed for %s: %v", e.Op, e.ReportID, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *ReportError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is interface
func (e *ReportError) Is(target error) bool {
	if target == nil {
		return false
	}

	switch target {
	case ErrNotFound:
		return e.Type == ErrorTypeNotFound
	case ErrInvalidInput:
		return e.Type == ErrorTypeValidation
	case ErrTooLarge:
		return e.Type == ErrorTypeTooLarge
	case ErrRenderFailed:
		return e.Type == ErrorTypeRender
	}

	return errors.Is(e.Err, target)
}

// NewReportError creates a new ReportError
func NewReportError(errorType ErrorType, op string, err error) *ReportError {
	return &ReportError{
		Type:      errorType,
		Op:        op,
		Err:       err,
		Timestamp: time.Now(),
	}
}

// WithReportID adds the report identifier to the error
func (e *ReportError) WithReportID(id string) *ReportError {
	e.ReportID = id
	return e
}

// Helper functions

// WrapValidationError wraps a bad-input error with context
func WrapValidationError(op string, err error) error {
	return NewReportError(ErrorTypeValidation, op, err)
}

// WrapRenderError wraps a canvas or encoder failure with context
func WrapRenderError(op string, err error) error {
	return NewReportError(ErrorTypeRender, op, err)
}

// WrapStorageError wraps an archive failure with context
func WrapStorageError(op string, err error) error {
	return NewReportError(ErrorTypeStorage, op, err)
}

// IsValidationError checks if an error was caused by bad input
func IsValidationError(err error) bool {
	var repErr *ReportError
	if errors.As(err, &repErr) {
		return repErr.Type == ErrorTypeValidation
	}
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrNoSections)
}

// IsNotFound checks if an error means the requested report does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// HTTPStatus maps an error onto the response status the API returns for it.
func HTTPStatus(err error) int {
	var repErr *ReportError
	if errors.As(err, &repErr) {
		switch repErr.Type {
		case ErrorTypeValidation:
			return http.StatusBadRequest
		case ErrorTypeNotFound:
			return http.StatusNotFound
		case ErrorTypeTooLarge:
			return http.StatusRequestEntityTooLarge
		}
		return http.StatusInternalServerError
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNoSections):
		return http.StatusBadRequest
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}
