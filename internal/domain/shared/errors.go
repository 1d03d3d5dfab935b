package shared

import (
	"errors"
	"sort"
	"strings"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so wrapped
// errors can be matched against the sentinels below with errors.Is.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes
const (
	CodeNetworkFailure   = "NETWORK_FAILURE"
	CodeValidation       = "VALIDATION_FAILED"
	CodeAdLoadTimeout    = "AD_LOAD_TIMEOUT"
	CodeAdLoadError      = "AD_LOAD_ERROR"
	CodeAdAlreadyShowing = "AD_ALREADY_SHOWING"
	CodeAdNotInitialized = "AD_NOT_INITIALIZED"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeNotFound         = "NOT_FOUND"
	CodeInvalidInput     = "INVALID_INPUT"
)

// Common domain errors
var (
	ErrNetworkFailure   = NewDomainError(CodeNetworkFailure, "Remote call failed")
	ErrValidation       = NewDomainError(CodeValidation, "Validation failed")
	ErrAdLoadTimeout    = NewDomainError(CodeAdLoadTimeout, "Ad did not load in time")
	ErrAdLoadError      = NewDomainError(CodeAdLoadError, "Ad failed to load")
	ErrAdAlreadyShowing = NewDomainError(CodeAdAlreadyShowing, "A rewarded ad is already being shown")
	ErrAdNotInitialized = NewDomainError(CodeAdNotInitialized, "Ad unit not initialized")
	ErrUnauthorized     = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrNotFound         = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput     = NewDomainError(CodeInvalidInput, "Invalid input provided")
)

// ValidationError carries per-field messages for a rejected form.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a validation error for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

// Is matches ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// First returns the message of the alphabetically first field, used for
// single-line notifications.
func (e *ValidationError) First() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return e.Fields[keys[0]]
}
