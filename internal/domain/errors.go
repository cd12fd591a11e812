package domain

import "errors"

var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
)

// Login flow failures. Each maps to a stable code surfaced to the frontend.
var (
	ErrConfiguration        = errors.New("configuration error")
	ErrUnknownProvider      = errors.New("unknown oauth provider")
	ErrProviderReported     = errors.New("provider reported an error")
	ErrMissingCode          = errors.New("missing authorization code")
	ErrTokenExchange        = errors.New("token exchange failed")
	ErrNoAccessToken        = errors.New("no access token in provider response")
	ErrProfileFetch         = errors.New("profile fetch failed")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrNetwork              = errors.New("network error")
)

// Session token failures.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Persistence failures. These never reach the login flow's caller.
var (
	ErrPersistence      = errors.New("persistence error")
	ErrStoreUnavailable = errors.New("datastore not configured")
)

// Stable error codes sent to the frontend in the redirect query string.
const (
	CodeOAuthFailed         = "oauth_failed"
	CodeNoCode              = "no_code"
	CodeTokenExchangeFailed = "token_exchange_failed"
	CodeNoAccessToken       = "no_access_token"
	CodeUserinfoFailed      = "userinfo_failed"
	CodeNoEmail             = "no_email"
	CodeNetworkError        = "network_error"
	CodeConfigError         = "config_error"
	CodeUnexpectedError     = "unexpected_error"
)

// ErrorCode classifies err into one of the frontend error codes.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrProviderReported):
		return CodeOAuthFailed
	case errors.Is(err, ErrMissingCode):
		return CodeNoCode
	case errors.Is(err, ErrNetwork):
		return CodeNetworkError
	case errors.Is(err, ErrNoAccessToken):
		return CodeNoAccessToken
	case errors.Is(err, ErrTokenExchange):
		return CodeTokenExchangeFailed
	case errors.Is(err, ErrProfileFetch):
		return CodeUserinfoFailed
	case errors.Is(err, ErrMissingRequiredField):
		return CodeNoEmail
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrUnknownProvider):
		return CodeConfigError
	default:
		return CodeUnexpectedError
	}
}

// ValidationError represents a field-level validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
