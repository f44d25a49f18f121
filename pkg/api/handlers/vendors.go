package handlers

import (
	apimw "github.com/jordanlanch/printfast/pkg/api/middleware"
	"github.com/jordanlanch/printfast/pkg/api/response"
	"github.com/jordanlanch/printfast/pkg/models"
	"github.com/jordanlanch/printfast/pkg/vendors"
	"github.com/labstack/echo/v4"
)

// VendorHandler handles vendor endpoints
type VendorHandler struct {
	vendors *vendors.Service
}

// NewVendorHandler creates a new vendor handler
func NewVendorHandler(vendors *vendors.Service) *VendorHandler {
	return &VendorHandler{vendors: vendors}
}

// List godoc
// @Summary List vendors
// @Tags Vendors
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size (max 100)"
// @Param sort query string false "Sort field"
// @Param order query string false "asc or desc"
// @Param search query string false "Matches name, email or contact person"
// @Param isActive query bool false "Active filter"
// @Success 200 {object} response.Envelope{data=models.ListResult[models.VendorResponse]}
// @Router /vendors [get]
func (h *VendorHandler) List(c echo.Context) error {
	var q models.VendorListQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	active, err := boolQuery(c, "isActive")
	if err != nil {
		return err
	}
	q.IsActive = active

	result, err := h.vendors.List(c.Request().Context(), apimw.ActorFrom(c), q)
	if err != nil {
		return err
	}
	return response.OK(c, result)
}

// AllActive godoc
// @Summary All active vendors, by name
// @Tags Vendors
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]models.VendorResponse}
// @Router /vendors/all-active [get]
func (h *VendorHandler) AllActive(c echo.Context) error {
	items, err := h.vendors.AllActive(c.Request().Context(), apimw.ActorFrom(c))
	if err != nil {
		return err
	}
	return response.OK(c, items)
}

// Get godoc
// @Summary Get a vendor
// @Tags Vendors
// @Produce json
// @Security BearerAuth
// @Param id path string true "Vendor ID"
// @Success 200 {object} response.Envelope{data=models.VendorResponse}
// @Failure 404 {object} errors.ErrorResponse
// @Router /vendors/{id} [get]
func (h *VendorHandler) Get(c echo.Context) error {
	v, err := h.vendors.Get(c.Request().Context(), apimw.ActorFrom(c), c.Param("id"))
	if err != nil {
		return err
	}
	return response.OK(c, v.ToResponse())
}

// Create godoc
// @Summary Create a vendor
// @Tags Vendors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateVendorRequest true "Vendor"
// @Success 201 {object} response.Envelope{data=models.VendorResponse}
// @Failure 409 {object} errors.ErrorResponse "Vendor with this email already exists"
// @Router /vendors [post]
func (h *VendorHandler) Create(c echo.Context) error {
	var req models.CreateVendorRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	v, err := h.vendors.Create(c.Request().Context(), apimw.ActorFrom(c), req)
	if err != nil {
		return err
	}
	return response.Created(c, v.ToResponse(), "Vendor created successfully")
}

// Update godoc
// @Summary Update a vendor
// @Tags Vendors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Vendor ID"
// @Param request body models.UpdateVendorRequest true "Changes"
// @Success 200 {object} response.Envelope{data=models.VendorResponse}
// @Router /vendors/{id} [patch]
func (h *VendorHandler) Update(c echo.Context) error {
	var req models.UpdateVendorRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	v, err := h.vendors.Update(c.Request().Context(), apimw.ActorFrom(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return response.Message(c, v.ToResponse(), "Vendor updated successfully")
}

// Deactivate godoc
// @Summary Deactivate a vendor
// @Tags Vendors
// @Produce json
// @Security BearerAuth
// @Param id path string true "Vendor ID"
// @Success 200 {object} response.Envelope{data=models.VendorResponse}
// @Router /vendors/{id}/deactivate [patch]
func (h *VendorHandler) Deactivate(c echo.Context) error {
	v, err := h.vendors.Deactivate(c.Request().Context(), apimw.ActorFrom(c), c.Param("id"))
	if err != nil {
		return err
	}
	return response.Message(c, v.ToResponse(), "Vendor deactivated successfully")
}

// Activate godoc
// @Summary Activate a vendor
// @Tags Vendors
// @Produce json
// @Security BearerAuth
// @Param id path string true "Vendor ID"
// @Success 200 {object} response.Envelope{data=models.VendorResponse}
// @Router /vendors/{id}/activate [patch]
func (h *VendorHandler) Activate(c echo.Context) error {
	v, err := h.vendors.Activate(c.Request().Context(), apimw.ActorFrom(c), c.Param("id"))
	if err != nil {
		return err
	}
	return response.Message(c, v.ToResponse(), "Vendor activated successfully")
}
