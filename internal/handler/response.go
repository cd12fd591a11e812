package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sumire/socialauth/internal/domain"
)

// Envelope is the standard API response wrapper.
type Envelope struct {
	Data  any             `json:"data,omitempty"`
	Meta  *PaginationMeta `json:"meta,omitempty"`
	Error *APIError       `json:"error,omitempty"`
}

// PaginationMeta tells the client whether more rows exist beyond the page.
type PaginationMeta struct {
	HasNext bool `json:"has_next"`
}

// APIError represents an error in the API response.
type APIError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a field-level validation error.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// JSON writes a JSON response with the standard envelope.
func JSON(c echo.Context, status int, data any) error {
	return c.JSON(status, Envelope{Data: data})
}

// JSONList writes a JSON list response with pagination info.
func JSONList(c echo.Context, status int, data any, meta PaginationMeta) error {
	return c.JSON(status, Envelope{Data: data, Meta: &meta})
}

// NewHTTPErrorHandler returns the global error handler for echo.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, apiErr := mapError(err)
		if status >= http.StatusInternalServerError {
			log.Error().Err(err).
				Str("path", c.Request().URL.Path).
				Int("status", status).
				Msg("request failed")
		}
		if jsonErr := c.JSON(status, Envelope{Error: &apiErr}); jsonErr != nil {
			log.Error().Err(jsonErr).Msg("failed to send error response")
		}
	}
}

func mapError(err error) (int, APIError) {
	// Handle echo's own HTTP errors (404, 405, etc.)
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		msg, _ := echoErr.Message.(string)
		if msg == "" {
			msg = http.StatusText(echoErr.Code)
		}
		return echoErr.Code, APIError{
			Code:    http.StatusText(echoErr.Code),
			Message: msg,
		}
	}

	switch {
	case errors.Is(err, domain.ErrUnknownProvider):
		return http.StatusNotFound, APIError{
			Code:    "unknown_provider",
			Message: "The requested login provider is not supported",
		}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: "The requested resource was not found",
		}
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken):
		return http.StatusUnauthorized, APIError{
			Code:    "unauthorized",
			Message: "Authentication is required",
		}
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, APIError{
			Code:    "invalid_input",
			Message: "The request body is invalid",
		}
	case errors.Is(err, domain.ErrConfiguration):
		return http.StatusInternalServerError, APIError{
			Code:    domain.CodeConfigError,
			Message: "The login provider is not configured",
		}
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, APIError{
			Code:    "datastore_unavailable",
			Message: "The datastore is not configured",
		}
	default:
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			return http.StatusBadRequest, APIError{
				Code:    "validation_error",
				Message: "Validation failed",
				Details: []FieldError{
					{Field: validationErr.Field, Message: validationErr.Message},
				},
			}
		}

		return http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "An unexpected error occurred",
		}
	}
}
