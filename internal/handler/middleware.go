package handler

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sumire/socialauth/internal/domain"
	"github.com/sumire/socialauth/internal/token"
)

const (
	contextKeySession = "session"
)

// RequestLogger logs each HTTP request with structured fields.
func RequestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// Let the error handler set the final status before logging it.
				c.Error(err)
			}

			log.Info().
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", c.Response().Status).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Msg("http request")

			return nil
		}
	}
}

// JWTAuth validates the Bearer session token and stores the session in echo context.
func JWTAuth(codec *token.Codec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return domain.ErrUnauthorized
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				return domain.ErrUnauthorized
			}

			session, err := codec.Verify(parts[1])
			if err != nil {
				return domain.ErrUnauthorized
			}

			c.Set(contextKeySession, session)
			return next(c)
		}
	}
}

// GetSession extracts the authenticated session from echo context.
func GetSession(c echo.Context) (*domain.SessionToken, bool) {
	session, ok := c.Get(contextKeySession).(*domain.SessionToken)
	return session, ok
}
