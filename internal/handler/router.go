package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/sumire/socialauth/internal/service"
	"github.com/sumire/socialauth/internal/token"
)

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Login       *service.LoginService
	Store       *service.UserStore
	Codec       *token.Codec
	CORSOrigins []string
	Log         zerolog.Logger
}

// NewRouter builds the echo instance with middleware and all routes.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewAppValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	e.Use(middleware.RequestID())
	e.Use(RequestLogger(d.Log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     d.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentType},
		ExposeHeaders:    []string{echo.HeaderXRequestID},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	health := NewHealthHandler(d.Store)
	e.GET("/health", health.Live)
	e.GET("/health/db", health.Database)

	NewAuthHandler(d.Login).Register(e.Group("/auth"), JWTAuth(d.Codec))
	NewUserHandler(d.Store).Register(e.Group("/users"))

	return e
}
