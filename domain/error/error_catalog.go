package error

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode string

// Error codes for different categories
const (
	// Registration / validation errors (1xxx)
	ErrCodeInvalidCategory ErrorCode = "REG_1001"
	ErrCodeMissingName     ErrorCode = "REG_1002"
	ErrCodeInvalidNuit     ErrorCode = "REG_1003"
	ErrCodeDuplicateNuit   ErrorCode = "REG_1004"
	ErrCodeDuplicateNuel   ErrorCode = "REG_1005"
	ErrCodeActorNotFound   ErrorCode = "REG_1006"
	ErrCodeInvalidQuantity ErrorCode = "REG_1007"
	ErrCodeNotAGroup       ErrorCode = "REG_1008"

	// Sync errors (2xxx)
	ErrCodeSyncInProgress     ErrorCode = "SYNC_2001"
	ErrCodeRemoteRejected     ErrorCode = "SYNC_2002"
	ErrCodeNetworkUnreachable ErrorCode = "SYNC_2003"
	ErrCodeEnqueueFailed      ErrorCode = "SYNC_2004"

	// Session errors (3xxx)
	ErrCodeInvalidCredentials ErrorCode = "SESSION_3001"
	ErrCodeSessionExpired     ErrorCode = "SESSION_3002"
	ErrCodeRefreshFailed      ErrorCode = "SESSION_3003"
	ErrCodeAccountBlocked     ErrorCode = "SESSION_3004"
	ErrCodeAccountBanned      ErrorCode = "SESSION_3005"
	ErrCodeEmailNotVerified   ErrorCode = "SESSION_3006"
	ErrCodeNotAuthorized      ErrorCode = "SESSION_3007"
	ErrCodeOffline            ErrorCode = "SESSION_3008"

	// Local store errors (5xxx)
	ErrCodeLocalCommitFailed ErrorCode = "DB_5001"
	ErrCodeQueryFailed       ErrorCode = "DB_5002"

	// Server errors (6xxx)
	ErrCodeInternalServerError ErrorCode = "SERVER_6001"
	ErrCodeConfigurationError  ErrorCode = "SERVER_6002"
)

// AppError represents a structured application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// Common error constructors

func ErrInvalidCategory(category string) *AppError {
	return NewAppError(ErrCodeInvalidCategory, "Invalid actor category", fmt.Sprintf("Category: %s", category), nil)
}

func ErrMissingName() *AppError {
	return NewAppError(ErrCodeMissingName, "Name is required", "", nil)
}

func ErrInvalidNuit(nuit string) *AppError {
	return NewAppError(ErrCodeInvalidNuit, "NUIT must be exactly 9 digits", fmt.Sprintf("NUIT: %s", nuit), nil)
}

func ErrInvalidQuantity(details string) *AppError {
	return NewAppError(ErrCodeInvalidQuantity, "Invalid quantity or price", details, nil)
}

func ErrNotAGroup(category string) *AppError {
	return NewAppError(ErrCodeNotAGroup, "Managers can only be assigned to groups", fmt.Sprintf("Category: %s", category), nil)
}

func ErrActorNotFound(actorID string) *AppError {
	return NewAppError(ErrCodeActorNotFound, "Actor not found", fmt.Sprintf("Actor ID: %s", actorID), nil)
}

func ErrDuplicateNuit(nuit string) *AppError {
	return NewAppError(ErrCodeDuplicateNuit, "An organization with this NUIT is already registered", fmt.Sprintf("NUIT: %s", nuit), nil)
}

func ErrDuplicateNuel(nuel string) *AppError {
	return NewAppError(ErrCodeDuplicateNuel, "An organization with this NUEL is already registered", fmt.Sprintf("NUEL: %s", nuel), nil)
}

func ErrInvalidCredentials(details string) *AppError {
	return NewAppError(ErrCodeInvalidCredentials, "Invalid email or password", details, nil)
}

func ErrSessionExpired(details string) *AppError {
	return NewAppError(ErrCodeSessionExpired, "Session has expired", details, nil)
}

func ErrRefreshFailed(cause error) *AppError {
	return NewAppError(ErrCodeRefreshFailed, "Session refresh failed", "", cause)
}

func ErrAccountStatus(code ErrorCode, status string) *AppError {
	return NewAppError(code, "Account is not allowed to sign in", fmt.Sprintf("Status: %s", status), nil)
}

func ErrOffline(operation string) *AppError {
	return NewAppError(ErrCodeOffline, "Operation requires connectivity", fmt.Sprintf("Operation: %s", operation), nil)
}

func ErrLocalCommitFailed(operation string, cause error) *AppError {
	return NewAppError(ErrCodeLocalCommitFailed, "Local write failed", fmt.Sprintf("Operation: %s", operation), cause)
}

func ErrInternalServerError(details string, cause error) *AppError {
	return NewAppError(ErrCodeInternalServerError, "Internal server error", details, cause)
}

func ErrConfigurationError(config string) *AppError {
	return NewAppError(ErrCodeConfigurationError, "Configuration error", fmt.Sprintf("Config: %s", config), nil)
}

// Error mapping for HTTP status codes
func GetHTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case ErrCodeInvalidCategory, ErrCodeMissingName, ErrCodeInvalidNuit, ErrCodeInvalidQuantity, ErrCodeNotAGroup:
			return http.StatusUnprocessableEntity
		case ErrCodeDuplicateNuit, ErrCodeDuplicateNuel:
			return http.StatusConflict
		case ErrCodeActorNotFound:
			return http.StatusNotFound
		case ErrCodeInvalidCredentials, ErrCodeSessionExpired, ErrCodeRefreshFailed, ErrCodeNotAuthorized:
			return http.StatusUnauthorized
		case ErrCodeAccountBlocked, ErrCodeAccountBanned, ErrCodeEmailNotVerified:
			return http.StatusForbidden
		case ErrCodeOffline, ErrCodeNetworkUnreachable:
			return http.StatusServiceUnavailable
		case ErrCodeSyncInProgress:
			return http.StatusAccepted
		case ErrCodeLocalCommitFailed, ErrCodeQueryFailed:
			return http.StatusServiceUnavailable
		}
	}
	return http.StatusInternalServerError
}
