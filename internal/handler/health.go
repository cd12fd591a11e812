package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sumire/socialauth/internal/domain"
)

// Pinger reports datastore connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and datastore checks.
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Live always answers ok while the process serves requests.
func (h *HealthHandler) Live(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "ok"})
}

// Database pings the datastore with a short deadline.
func (h *HealthHandler) Database(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	err := h.db.Ping(ctx)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, healthResponse{Status: "ok"})
	case errors.Is(err, domain.ErrStoreUnavailable):
		return c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "disabled", Error: err.Error()})
	default:
		return c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "error", Error: err.Error()})
	}
}
