package handlers

import (
	apimw "github.com/jordanlanch/printfast/pkg/api/middleware"
	"github.com/jordanlanch/printfast/pkg/api/response"
	"github.com/jordanlanch/printfast/pkg/settings"
	"github.com/labstack/echo/v4"
)

// SettingsHandler exposes the server settings overview
type SettingsHandler struct {
	settings *settings.Service
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settings *settings.Service) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get godoc
// @Summary Server settings
// @Description Feature flags, runtime backends and entity counts. God users only.
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=settings.Settings}
// @Failure 403 {object} errors.ErrorResponse
// @Router /settings [get]
func (h *SettingsHandler) Get(c echo.Context) error {
	s, err := h.settings.Get(c.Request().Context(), apimw.ActorFrom(c))
	if err != nil {
		return err
	}
	return response.OK(c, s)
}
