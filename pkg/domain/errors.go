package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Error codes
const (
	ErrCodeUnauthenticated     = "UNAUTHENTICATED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeAdminSignupDisabled = "ADMIN_SIGNUP_DISABLED"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeInvalidArgument     = "INVALID_ARGUMENT"
	ErrCodeRateLimited         = "RATE_LIMITED"
	ErrCodePayloadTooLarge     = "PAYLOAD_TOO_LARGE"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// NewUnauthenticatedError creates an error for a missing or invalid credential
func NewUnauthenticatedError(msg string) error {
	if msg == "" {
		msg = "Authentication required"
	}
	return &DomainError{Code: ErrCodeUnauthenticated, Message: msg}
}

// NewForbiddenError creates a new forbidden error
func NewForbiddenError(msg string) error {
	if msg == "" {
		msg = "You do not have permission to perform this action"
	}
	return &DomainError{Code: ErrCodeForbidden, Message: msg}
}

// NewAdminSignupDisabledError is returned when self-service admin signup is turned off
func NewAdminSignupDisabledError() error {
	return &DomainError{
		Code:    ErrCodeAdminSignupDisabled,
		Message: "Admin signup is currently disabled",
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) error {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(msg string) error {
	return &DomainError{Code: ErrCodeConflict, Message: msg}
}

// NewValidationError creates a new validation error
func NewValidationError(msg string) error {
	return &DomainError{Code: ErrCodeValidation, Message: msg}
}

// NewInvalidArgumentError signals a violated precondition of an internal operation
func NewInvalidArgumentError(msg string) error {
	return &DomainError{Code: ErrCodeInvalidArgument, Message: msg}
}

// NewRateLimitedError creates a new rate limited error
func NewRateLimitedError(msg string) error {
	return &DomainError{Code: ErrCodeRateLimited, Message: msg}
}

// NewPayloadTooLargeError creates an error for uploads above the size limit
func NewPayloadTooLargeError(msg string) error {
	return &DomainError{Code: ErrCodePayloadTooLarge, Message: msg}
}

// NewInternalError creates a new internal error
func NewInternalError(err error) error {
	return &DomainError{
		Code:    ErrCodeInternal,
		Message: "An internal error occurred",
		Err:     err,
	}
}

// GetErrorCode extracts the error code from a domain error
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrCodeInternal
}

func hasCode(err error, code string) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}

// IsUnauthenticated checks if the error is an unauthenticated error
func IsUnauthenticated(err error) bool { return hasCode(err, ErrCodeUnauthenticated) }

// IsForbidden checks if the error is a forbidden error
func IsForbidden(err error) bool { return hasCode(err, ErrCodeForbidden) }

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsConflict checks if the error is a conflict error
func IsConflict(err error) bool { return hasCode(err, ErrCodeConflict) }

// IsValidation checks if the error is a validation error
func IsValidation(err error) bool { return hasCode(err, ErrCodeValidation) }

// IsInvalidArgument checks if the error is an invalid argument error
func IsInvalidArgument(err error) bool { return hasCode(err, ErrCodeInvalidArgument) }

// IsRateLimited checks if the error is a rate limited error
func IsRateLimited(err error) bool { return hasCode(err, ErrCodeRateLimited) }

// IsInternal checks if the error is an internal error
func IsInternal(err error) bool { return hasCode(err, ErrCodeInternal) }
