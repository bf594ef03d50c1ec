package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared by services and transport.
const (
	CodeValidation         = "VALIDATION_FAILED"
	CodeReferenceNotFound  = "REFERENCE_NOT_FOUND"
	CodeNotFound           = "NOT_FOUND"
	CodeConcurrency        = "CONCURRENCY_CONFLICT"
	CodeConfiguration      = "CONFIGURATION_ERROR"
	CodeDuplicateNumber    = "DUPLICATE_TICKET_NUMBER"
	CodeConflict           = "CONFLICT"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeInternal           = "INTERNAL_ERROR"
	CodeDependencyDown     = "DEPENDENCY_UNAVAILABLE"
	msgInternalServerError = "internal server error"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

// NewReferenceNotFound reports a user-selected reference (category, priority, status, user)
// that does not resolve.
func NewReferenceNotFound(resource string, details map[string]any) error {
	return NewDomainError(CodeReferenceNotFound,
		fmt.Sprintf("selected %s does not exist", resource),
		http.StatusUnprocessableEntity, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewConcurrencyConflict reports a stale version stamp.
func NewConcurrencyConflict(resource string, details map[string]any) error {
	return NewDomainError(CodeConcurrency,
		fmt.Sprintf("%s was modified by another request; reload and retry", resource),
		http.StatusConflict, details)
}

// NewConfigurationError reports missing deployment data such as a workflow anchor status.
func NewConfigurationError(message string, details map[string]any) error {
	return NewDomainError(CodeConfiguration, message, http.StatusInternalServerError, details)
}

func NewDuplicateTicketNumber(number string, err error) error {
	return &DomainError{
		Code:       CodeDuplicateNumber,
		Message:    "could not allocate a unique ticket number",
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"ticket_number": number},
		Err:        err,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    msgInternalServerError,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    msgInternalServerError,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err carries the given DomainError code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr.Code == code
}
