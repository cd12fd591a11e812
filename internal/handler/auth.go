package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sumire/socialauth/internal/domain"
	"github.com/sumire/socialauth/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	login *service.LoginService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(login *service.LoginService) *AuthHandler {
	return &AuthHandler{login: login}
}

// Register mounts the auth routes on g.
func (h *AuthHandler) Register(g *echo.Group, auth echo.MiddlewareFunc) {
	g.GET("/providers", h.Providers)
	g.POST("/verify", h.Verify)
	g.GET("/me", h.Me, auth)
	g.GET("/:provider", h.Initiate)
	g.GET("/:provider/callback", h.Callback)
}

// Providers lists the providers that are ready to log users in.
func (h *AuthHandler) Providers(c echo.Context) error {
	return JSON(c, http.StatusOK, h.login.ConfiguredProviders())
}

type authURLResponse struct {
	AuthURL string `json:"auth_url"`
}

// Initiate sends the browser to the provider's consent page. Clients that
// accept JSON get the URL back instead of a redirect.
func (h *AuthHandler) Initiate(c echo.Context) error {
	authURL, err := h.login.Initiate(c.Param("provider"))
	if err != nil {
		return err
	}

	if strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) {
		return c.JSON(http.StatusOK, authURLResponse{AuthURL: authURL})
	}
	return c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// Callback handles the provider redirect. It always answers with a redirect
// to the frontend, carrying either a session token or an error code.
func (h *AuthHandler) Callback(c echo.Context) error {
	redirect := h.login.Callback(c.Request().Context(), service.CallbackRequest{
		Provider:  c.Param("provider"),
		Code:      c.QueryParam("code"),
		Error:     c.QueryParam("error"),
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})
	return c.Redirect(http.StatusFound, redirect)
}

// verifyRequest allows an empty token: that is answered with valid=false, not a 400.
type verifyRequest struct {
	Token string `json:"token" validate:"max=8192"`
}

// Verify decodes a session token for the frontend.
func (h *AuthHandler) Verify(c echo.Context) error {
	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, h.login.Verify(req.Token))
}

// Me returns the session of the authenticated caller.
func (h *AuthHandler) Me(c echo.Context) error {
	session, ok := GetSession(c)
	if !ok {
		return domain.ErrUnauthorized
	}
	return JSON(c, http.StatusOK, session)
}
