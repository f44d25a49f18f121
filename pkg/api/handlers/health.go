package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is anything whose liveness can be checked
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports dependency health
type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler creates a health handler probing the named dependencies
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Check godoc
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /health [get]
func (h *HealthHandler) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			deps[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "up"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	return c.JSON(status, map[string]any{
		"status":       state,
		"dependencies": deps,
		"time":         time.Now().UTC(),
	})
}
