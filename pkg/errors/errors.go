package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies failures of the login and comment-fetch flows
type ErrorType string

const (
	ErrorTypeNetwork            ErrorType = "network"
	ErrorTypeHTTPStatus         ErrorType = "http_status"
	ErrorTypeParsing            ErrorType = "parsing"
	ErrorTypeAuthLoss           ErrorType = "auth_loss"
	ErrorTypeTwoFactor          ErrorType = "two_factor_required"
	ErrorTypeChallenge          ErrorType = "challenge_required"
	ErrorTypeInvalidCredentials ErrorType = "invalid_credentials"
	ErrorTypeIncompleteLogin    ErrorType = "incomplete_login"
	ErrorTypeNoCSRFToken        ErrorType = "no_csrf_token"
	ErrorTypeStorage            ErrorType = "storage"
	ErrorTypeUnknown            ErrorType = "unknown"
)

// Error represents a classified API or storage error
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// New creates a classified error without an HTTP code
func New(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// NewWithCode creates a classified error carrying an HTTP status code
func NewWithCode(errorType ErrorType, message string, code int) *Error {
	return &Error{Type: errorType, Message: message, Code: code}
}

// TypeOf returns the classification of err, or ErrorTypeUnknown for plain errors
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsRetryable reports whether an error type is worth retrying with the same credentials
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeParsing, ErrorTypeHTTPStatus:
		return true
	default:
		return false
	}
}

// IsAuthLoss reports whether err means the session is no longer accepted mid-run.
// Auth loss is recovered by re-authentication, not by blind retry.
func IsAuthLoss(err error) bool {
	return TypeOf(err) == ErrorTypeAuthLoss
}

// IsTerminal reports whether err must surface immediately and end the run
func IsTerminal(err error) bool {
	switch TypeOf(err) {
	case ErrorTypeTwoFactor, ErrorTypeChallenge, ErrorTypeInvalidCredentials, ErrorTypeStorage:
		return true
	default:
		return false
	}
}

// IsAuthLossStatusCode reports whether an HTTP status code indicates session invalidation.
// Redirects off the query endpoint are how the endpoint bounces logged-out clients.
func IsAuthLossStatusCode(statusCode int) bool {
	switch statusCode {
	case 401, 301, 302, 303, 307, 308:
		return true
	default:
		return false
	}
}
