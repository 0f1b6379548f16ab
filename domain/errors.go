package domain

import (
	"errors"
	"fmt"
)

// Validation errors
var (
	ErrRoleRequired       = errors.New("role selection is required")
	ErrIdentifierRequired = errors.New("identifier is required")
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// OTP errors
var (
	ErrOTPInvalid = errors.New("invalid otp code")
)

// Token errors
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("malformed token")
)

// Credential store errors
var (
	ErrCredentialsNotFound = errors.New("credentials not found")
)

// APIError is a structured failure from the backend. Message carries the
// server's human-readable message field, Err the server's error field.
type APIError struct {
	Status  int
	Message string
	Err     string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != "" {
		return e.Err
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// ErrorMessage selects the most specific user-facing message for err:
// server message, then server error field, then the transport error text,
// then the operation's fallback string.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if apiErr.Err != "" {
			return apiErr.Err
		}
		return fallback
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
