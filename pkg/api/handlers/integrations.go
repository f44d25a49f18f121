package handlers

import (
	apimw "github.com/jordanlanch/printfast/pkg/api/middleware"
	"github.com/jordanlanch/printfast/pkg/api/response"
	"github.com/jordanlanch/printfast/pkg/integrations"
	"github.com/jordanlanch/printfast/pkg/models"
	"github.com/labstack/echo/v4"
)

// IntegrationHandler handles field-service integration endpoints
type IntegrationHandler struct {
	integrations *integrations.Service
}

// NewIntegrationHandler creates a new integration handler
func NewIntegrationHandler(integrations *integrations.Service) *IntegrationHandler {
	return &IntegrationHandler{integrations: integrations}
}

// ListByVendor godoc
// @Summary Active integrations of a vendor
// @Tags Integrations
// @Produce json
// @Security BearerAuth
// @Param vendorId path string true "Vendor ID"
// @Success 200 {object} response.Envelope{data=[]models.IntegrationResponse}
// @Failure 404 {object} errors.ErrorResponse "Vendor not found"
// @Router /integrations/vendor/{vendorId} [get]
func (h *IntegrationHandler) ListByVendor(c echo.Context) error {
	rows, err := h.integrations.ListByVendor(c.Request().Context(), apimw.ActorFrom(c), c.Param("vendorId"))
	if err != nil {
		return err
	}
	out := make([]models.IntegrationResponse, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToResponse())
	}
	return response.OK(c, out)
}

// ConnectServiceTitan godoc
// @Summary Connect ServiceTitan
// @Tags Integrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ConnectServiceTitanRequest true "Client credentials"
// @Success 200 {object} response.Envelope{data=models.IntegrationResponse}
// @Failure 409 {object} errors.ErrorResponse "Already connected"
// @Router /integrations/service-titan/connect [post]
func (h *IntegrationHandler) ConnectServiceTitan(c echo.Context) error {
	var req models.ConnectServiceTitanRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	i, err := h.integrations.ConnectServiceTitan(c.Request().Context(), apimw.ActorFrom(c), req)
	if err != nil {
		return err
	}
	return response.Message(c, i.ToResponse(), "ServiceTitan connected successfully")
}

// ConnectJobber godoc
// @Summary Connect Jobber
// @Tags Integrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ConnectJobberRequest true "OAuth code"
// @Success 200 {object} response.Envelope{data=models.IntegrationResponse}
// @Failure 409 {object} errors.ErrorResponse "Already connected"
// @Router /integrations/jobber/connect [post]
func (h *IntegrationHandler) ConnectJobber(c echo.Context) error {
	var req models.ConnectJobberRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	i, err := h.integrations.ConnectJobber(c.Request().Context(), apimw.ActorFrom(c), req)
	if err != nil {
		return err
	}
	return response.Message(c, i.ToResponse(), "Jobber connected successfully")
}

// Disconnect godoc
// @Summary Disconnect an integration
// @Tags Integrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.DisconnectIntegrationRequest true "Vendor and provider"
// @Success 200 {object} response.Envelope{data=models.IntegrationResponse}
// @Failure 404 {object} errors.ErrorResponse "Integration not found"
// @Router /integrations/disconnect [post]
func (h *IntegrationHandler) Disconnect(c echo.Context) error {
	var req models.DisconnectIntegrationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	i, err := h.integrations.Disconnect(c.Request().Context(), apimw.ActorFrom(c), req)
	if err != nil {
		return err
	}
	return response.Message(c, i.ToResponse(), "Integration disconnected successfully")
}
