package handlers

import (
	"fmt"

	apimw "github.com/jordanlanch/printfast/pkg/api/middleware"
	"github.com/jordanlanch/printfast/pkg/api/response"
	"github.com/jordanlanch/printfast/pkg/auth"
	"github.com/jordanlanch/printfast/pkg/authz"
	"github.com/jordanlanch/printfast/pkg/domain"
	"github.com/jordanlanch/printfast/pkg/metrics"
	"github.com/jordanlanch/printfast/pkg/storage"
	"github.com/labstack/echo/v4"
)

// UploadHandler handles generic file uploads
type UploadHandler struct {
	uploader *storage.Uploader
	metrics  *metrics.Metrics
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploader *storage.Uploader, m *metrics.Metrics) *UploadHandler {
	return &UploadHandler{uploader: uploader, metrics: m}
}

// Upload godoc
// @Summary Upload a file
// @Description Images (jpeg, png, webp, gif, svg) and PDFs up to 10MB. The content type is sniffed, not trusted.
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param folder query string false "postcards, profiles or general" default(general)
// @Param file formData file true "File"
// @Success 200 {object} response.Envelope{data=models.UploadResponse}
// @Failure 413 {object} errors.ErrorResponse
// @Router /upload [post]
func (h *UploadHandler) Upload(c echo.Context) error {
	if err := auth.Require(apimw.ActorFrom(c), authz.OpUploadFile); err != nil {
		return err
	}

	folder := c.QueryParam("folder")
	if folder == "" {
		folder = "general"
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return domain.NewValidationError("file is required")
	}
	if fh.Size > storage.GeneralPolicy.MaxSize {
		return domain.NewPayloadTooLargeError(fmt.Sprintf("File exceeds the %dMB limit", storage.MaxUploadSize>>20))
	}
	file, err := fh.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	res, err := h.uploader.Upload(c.Request().Context(), folder, fh.Filename, file, storage.GeneralPolicy)
	if err != nil {
		return err
	}
	h.metrics.RecordUpload(folder)
	return response.Message(c, res, "File uploaded successfully")
}
