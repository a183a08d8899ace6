// Package errors defines the error taxonomy shared by the scanning pipeline
// and its transports.
//
// Only acquisition and recognition failures are meant to reach a user.
// Geometry failures are recovered inside the pipeline and surface as a
// logged fallback; a missing quadrilateral is a result status, not an error.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	// ErrorTypeAcquisition means the frame source (camera, upload, file)
	// could not supply a frame. The pipeline is not invoked.
	ErrorTypeAcquisition ErrorType = "acquisition_unavailable"

	// ErrorTypeDegenerateGeometry means the rectifier was handed a
	// quadrilateral whose projective transform is singular.
	ErrorTypeDegenerateGeometry ErrorType = "degenerate_geometry"

	// ErrorTypeRecognition means the OCR collaborator failed. The scanned
	// image is still valid.
	ErrorTypeRecognition ErrorType = "recognition_failed"

	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeCancelled  ErrorType = "cancelled"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAcquisitionError creates a new acquisition error
func NewAcquisitionError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeAcquisition, Message: message, Cause: cause}
}

// NewDegenerateGeometryError creates a new degenerate geometry error
func NewDegenerateGeometryError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeDegenerateGeometry, Message: message, Cause: cause}
}

// NewRecognitionError creates a new recognition error
func NewRecognitionError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeRecognition, Message: message, Cause: cause}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeValidation, Message: message, Cause: cause}
}

// NewCancelledError creates a new cancellation error
func NewCancelledError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeCancelled, Message: message, Cause: cause}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{Type: ErrorTypeInternal, Message: message, Cause: cause}
}

// IsType reports whether any error in err's chain is an AppError of the
// given type.
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// TypeOf returns the type of the first AppError in err's chain, or
// ErrorTypeInternal when there is none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}
