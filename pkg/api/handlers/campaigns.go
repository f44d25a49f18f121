package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	apimw "github.com/jordanlanch/printfast/pkg/api/middleware"
	"github.com/jordanlanch/printfast/pkg/api/response"
	"github.com/jordanlanch/printfast/pkg/campaigns"
	"github.com/jordanlanch/printfast/pkg/domain"
	"github.com/jordanlanch/printfast/pkg/models"
	"github.com/jordanlanch/printfast/pkg/report"
	"github.com/jordanlanch/printfast/pkg/storage"
	"github.com/labstack/echo/v4"
)

// CampaignHandler handles campaign endpoints
type CampaignHandler struct {
	campaigns *campaigns.Service
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(campaigns *campaigns.Service) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns}
}

// List godoc
// @Summary List campaigns
// @Tags Campaigns
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size (max 100)"
// @Param sort query string false "Sort field"
// @Param order query string false "asc or desc"
// @Param search query string false "Matches name or current product"
// @Param vendor query string false "Vendor ID"
// @Param isActive query bool false "Active filter"
// @Success 200 {object} response.Envelope{data=models.ListResult[models.CampaignListItem]}
// @Router /campaigns [get]
func (h *CampaignHandler) List(c echo.Context) error {
	q, err := campaignQuery(c)
	if err != nil {
		return err
	}
	result, err := h.campaigns.List(c.Request().Context(), apimw.ActorFrom(c), q)
	if err != nil {
		return err
	}
	return response.OK(c, result)
}

// Export godoc
// @Summary Export campaigns as XLSX
// @Description Accepts the list filters; pagination is ignored.
// @Tags Campaigns
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file
// @Router /campaigns/export [get]
func (h *CampaignHandler) Export(c echo.Context) error {
	q, err := campaignQuery(c)
	if err != nil {
		return err
	}
	rows, err := h.campaigns.Export(c.Request().Context(), apimw.ActorFrom(c), q)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := report.WriteCampaigns(&buf, rows); err != nil {
		return err
	}

	filename := fmt.Sprintf("campaigns-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, report.ContentType, buf.Bytes())
}

// Get godoc
// @Summary Get a campaign
// @Tags Campaigns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} response.Envelope{data=models.CampaignResponse}
// @Failure 404 {object} errors.ErrorResponse
// @Router /campaigns/{id} [get]
func (h *CampaignHandler) Get(c echo.Context) error {
	campaign, err := h.campaigns.Get(c.Request().Context(), apimw.ActorFrom(c), c.Param("id"))
	if err != nil {
		return err
	}
	return response.OK(c, campaign.ToResponse())
}

// Create godoc
// @Summary Create a campaign
// @Description Generates the weekly schedule from quantity, week count and start date.
// @Tags Campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateCampaignRequest true "Campaign"
// @Success 201 {object} response.Envelope{data=models.CampaignResponse}
// @Failure 404 {object} errors.ErrorResponse "Vendor not found"
// @Router /campaigns [post]
func (h *CampaignHandler) Create(c echo.Context) error {
	var req models.CreateCampaignRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	campaign, err := h.campaigns.Create(c.Request().Context(), apimw.ActorFrom(c), req)
	if err != nil {
		return err
	}
	return response.Created(c, campaign.ToResponse(), "Campaign created successfully")
}

// Update godoc
// @Summary Update a campaign
// @Description Changing quantity, week count or start date regenerates the schedule.
// @Tags Campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param request body models.UpdateCampaignRequest true "Changes"
// @Success 200 {object} response.Envelope{data=models.CampaignResponse}
// @Router /campaigns/{id} [patch]
func (h *CampaignHandler) Update(c echo.Context) error {
	var req models.UpdateCampaignRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	campaign, err := h.campaigns.Update(c.Request().Context(), apimw.ActorFrom(c), c.Param("id"), req)
	if err != nil {
		return err
	}
	return response.Message(c, campaign.ToResponse(), "Campaign updated successfully")
}

// UpdateWeek godoc
// @Summary Update one scheduled week
// @Tags Campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param weekNumber path int true "Week number"
// @Param request body models.UpdateWeekRequest true "Changes"
// @Success 200 {object} response.Envelope{data=models.CampaignResponse}
// @Failure 400 {object} errors.ErrorResponse "Week not found in campaign"
// @Router /campaigns/{id}/weeks/{weekNumber} [patch]
func (h *CampaignHandler) UpdateWeek(c echo.Context) error {
	week, err := strconv.Atoi(c.Param("weekNumber"))
	if err != nil || week < 1 {
		return domain.NewValidationError("weekNumber must be a positive integer")
	}
	var req models.UpdateWeekRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	campaign, err := h.campaigns.UpdateWeek(c.Request().Context(), apimw.ActorFrom(c), c.Param("id"), week, req)
	if err != nil {
		return err
	}
	return response.Message(c, campaign.ToResponse(), "Week updated successfully")
}

// UploadPostcard godoc
// @Summary Upload the campaign postcard
// @Tags Campaigns
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param postcardImage formData file true "PDF, at most 10MB"
// @Success 200 {object} response.Envelope{data=models.CampaignResponse}
// @Failure 413 {object} errors.ErrorResponse
// @Router /campaigns/{id}/postcard [post]
func (h *CampaignHandler) UploadPostcard(c echo.Context) error {
	fh, err := c.FormFile("postcardImage")
	if err != nil {
		return domain.NewValidationError("postcardImage is required")
	}
	if fh.Size > storage.PostcardPolicy.MaxSize {
		return domain.NewPayloadTooLargeError("File exceeds the 10MB limit")
	}
	file, err := fh.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	campaign, err := h.campaigns.UploadPostcard(c.Request().Context(), apimw.ActorFrom(c), c.Param("id"), fh.Filename, file)
	if err != nil {
		return err
	}
	return response.Message(c, campaign.ToResponse(), "Postcard uploaded successfully")
}

// Deactivate godoc
// @Summary Deactivate a campaign
// @Tags Campaigns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} response.Envelope{data=models.CampaignResponse}
// @Router /campaigns/{id}/deactivate [patch]
func (h *CampaignHandler) Deactivate(c echo.Context) error {
	campaign, err := h.campaigns.Deactivate(c.Request().Context(), apimw.ActorFrom(c), c.Param("id"))
	if err != nil {
		return err
	}
	return response.Message(c, campaign.ToResponse(), "Campaign deactivated successfully")
}

// Activate godoc
// @Summary Activate a campaign
// @Tags Campaigns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} response.Envelope{data=models.CampaignResponse}
// @Router /campaigns/{id}/activate [patch]
func (h *CampaignHandler) Activate(c echo.Context) error {
	campaign, err := h.campaigns.Activate(c.Request().Context(), apimw.ActorFrom(c), c.Param("id"))
	if err != nil {
		return err
	}
	return response.Message(c, campaign.ToResponse(), "Campaign activated successfully")
}

func campaignQuery(c echo.Context) (models.CampaignListQuery, error) {
	var q models.CampaignListQuery
	if err := bindQuery(c, &q); err != nil {
		return q, err
	}
	active, err := boolQuery(c, "isActive")
	if err != nil {
		return q, err
	}
	q.IsActive = active
	return q, nil
}
