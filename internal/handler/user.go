package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumire/socialauth/internal/domain"
	"github.com/sumire/socialauth/internal/service"
)

// historyLimit caps the login history page.
const historyLimit = 50

// UserHandler exposes stored users and their login history.
type UserHandler struct {
	store *service.UserStore
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(store *service.UserStore) *UserHandler {
	return &UserHandler{store: store}
}

// Register mounts the user routes on g.
func (h *UserHandler) Register(g *echo.Group) {
	g.GET("/:provider/:id", h.Get)
	g.GET("/:provider/:id/login-history", h.LoginHistory)
}

// Get returns the stored user for a provider account.
func (h *UserHandler) Get(c echo.Context) error {
	provider, ok := domain.ParseAuthProvider(c.Param("provider"))
	if !ok {
		return domain.ErrNotFound
	}

	user, err := h.store.GetUser(c.Request().Context(), provider, c.Param("id"))
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, user)
}

// LoginHistory returns the latest login events for a provider account, newest first.
func (h *UserHandler) LoginHistory(c echo.Context) error {
	provider, ok := domain.ParseAuthProvider(c.Param("provider"))
	if !ok {
		return domain.ErrNotFound
	}

	// Fetch one extra row to learn whether older events exist.
	events, err := h.store.LoginHistory(c.Request().Context(), provider, c.Param("id"), historyLimit+1)
	if err != nil {
		return err
	}

	hasNext := len(events) > historyLimit
	if hasNext {
		events = events[:historyLimit]
	}
	return JSONList(c, http.StatusOK, events, PaginationMeta{HasNext: hasNext})
}
