package util

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
)

// Error codes used across the access-control pipeline. Authentication
// failures map to 401, authorization failures to 403, quota to 429.
const (
	CodeNoToken                = "NO_TOKEN"
	CodeInvalidToken           = "INVALID_TOKEN"
	CodeTokenExpired           = "TOKEN_EXPIRED"
	CodeTokenRevoked           = "TOKEN_REVOKED"
	CodeForbiddenRole          = "FORBIDDEN_ROLE"
	CodeForbiddenOwnership     = "FORBIDDEN_OWNERSHIP"
	CodeForbiddenPermission    = "FORBIDDEN_PERMISSION"
	CodeAccountInactive        = "ACCOUNT_INACTIVE"
	CodeNotOnShift             = "NOT_ON_SHIFT"
	CodePasswordChangeRequired = "PASSWORD_CHANGE_REQUIRED"
	CodeQuotaExceeded          = "QUOTA_EXCEEDED"
	CodeValidationFailed       = "VALIDATION_FAILED"
	CodeNotFound               = "NOT_FOUND"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeConflict               = "CONFLICT"
	CodeInternal               = "INTERNAL_ERROR"
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
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
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

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewNoToken signals that neither token header was present.
func NewNoToken() error {
	return NewDomainError(CodeNoToken, "No token provided", http.StatusUnauthorized, nil)
}

// NewInvalidToken covers malformed tokens and bad signatures.
func NewInvalidToken() error {
	return NewDomainError(CodeInvalidToken, "Invalid token", http.StatusUnauthorized, nil)
}

// NewTokenExpired covers well-signed tokens past their expiry.
func NewTokenExpired() error {
	return NewDomainError(CodeTokenExpired, "Token expired", http.StatusUnauthorized, nil)
}

// NewTokenRevoked covers tokens present in the revocation store.
func NewTokenRevoked() error {
	return NewDomainError(CodeTokenRevoked, "Token has been revoked", http.StatusUnauthorized, nil)
}

// NewPasswordChangeRequired carries a machine-readable flag so clients can
// route to the change-password flow instead of treating it as a generic 403.
func NewPasswordChangeRequired() error {
	return NewDomainError(CodePasswordChangeRequired,
		"Password change required before accessing this resource",
		http.StatusForbidden,
		map[string]any{"requirePasswordChange": true})
}

// NewForbiddenRole uses a deliberately generic message so callers cannot
// tell which check failed or whether the resource exists.
func NewForbiddenRole() error {
	return NewDomainError(CodeForbiddenRole, "Insufficient permissions", http.StatusForbidden, nil)
}

// NewForbiddenOwnership rejects access to a resource the caller does not own.
func NewForbiddenOwnership() error {
	return NewDomainError(CodeForbiddenOwnership,
		"Access denied: You do not own this resource", http.StatusForbidden, nil)
}

// NewForbiddenPermission names the missing permissions. Safe to be specific:
// the caller is already an authenticated administrator.
func NewForbiddenPermission(missing []string) error {
	return NewDomainError(CodeForbiddenPermission,
		fmt.Sprintf("Missing required permissions: %v", missing),
		http.StatusForbidden,
		map[string]any{"missingPermissions": missing})
}

// NewAccountInactive rejects deactivated administrator/operator accounts.
func NewAccountInactive() error {
	return NewDomainError(CodeAccountInactive, "Account is inactive", http.StatusForbidden, nil)
}

// NewNotOnShift rejects operators outside their shift window.
func NewNotOnShift() error {
	return NewDomainError(CodeNotOnShift, "Operator is not on shift", http.StatusForbidden, nil)
}

// NewQuotaExceeded carries the retry hint in seconds.
func NewQuotaExceeded(message string, retryAfter int) error {
	if message == "" {
		message = "Too many requests, please try again later"
	}
	return NewDomainError(CodeQuotaExceeded, message, http.StatusTooManyRequests,
		map[string]any{"retryAfter": retryAfter})
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
	if errors.Is(err, sql.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
