package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jordanlanch/printfast/pkg/api/validation"
	"github.com/jordanlanch/printfast/pkg/domain"
	"github.com/jordanlanch/printfast/pkg/logger"
	"github.com/jordanlanch/printfast/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// render runs err through the handler and returns the recorder and decoded envelope
func render(t *testing.T, production bool, err error) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/campaigns", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHandler(logger.Nop(), production).HandleHTTPError(err, c)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestHandleHTTPError_DomainErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.NewUnauthenticatedError(""), http.StatusUnauthorized, "UNAUTHENTICATED"},
		{domain.NewForbiddenError(""), http.StatusForbidden, "FORBIDDEN"},
		{domain.NewAdminSignupDisabledError(), http.StatusForbidden, "ADMIN_SIGNUP_DISABLED"},
		{domain.NewNotFoundError("Campaign"), http.StatusNotFound, "NOT_FOUND"},
		{domain.NewConflictError("Email already exists"), http.StatusConflict, "CONFLICT"},
		{domain.NewValidationError("Week 9 not found in campaign"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{domain.NewInvalidArgumentError("totalWeeks must be at least 1"), http.StatusBadRequest, "INVALID_ARGUMENT"},
		{domain.NewRateLimitedError("slow down"), http.StatusTooManyRequests, "RATE_LIMITED"},
		{domain.NewPayloadTooLargeError("too big"), http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rec, resp := render(t, true, tt.err)
			assert.Equal(t, tt.status, rec.Code)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestHandleHTTPError_WrappedDomainError(t *testing.T) {
	err := fmt.Errorf("update campaign: %w", domain.NewNotFoundError("Campaign"))
	rec, resp := render(t, true, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Campaign not found", resp.Error.Message)
}

func TestHandleHTTPError_ValidatorErrors(t *testing.T) {
	err := validation.New().Validate(&models.LoginRequest{Email: "x@example.com"})
	rec, resp := render(t, true, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "password is required", resp.Error.Message)
}

func TestHandleHTTPError_EchoHTTPError(t *testing.T) {
	rec, resp := render(t, true, echo.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)

	rec, resp = render(t, true, echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", resp.Error.Code)
	assert.Equal(t, "rate limit exceeded", resp.Error.Message)
}

func TestHandleHTTPError_InternalDetailsHiddenInProduction(t *testing.T) {
	internal := fmt.Errorf("pq: relation \"campaigns\" does not exist")

	rec, resp := render(t, true, internal)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
	assert.Equal(t, "Internal server error", resp.Error.Message)
	assert.NotContains(t, rec.Body.String(), "pq:")

	_, resp = render(t, true, domain.NewInternalError(internal))
	assert.Equal(t, "Internal server error", resp.Error.Message)
}

func TestHandleHTTPError_InternalDetailsShownInDevelopment(t *testing.T) {
	_, resp := render(t, false, fmt.Errorf("disk full"))
	assert.Equal(t, "disk full", resp.Error.Message)
}

func TestStatusFor_UnknownCode(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusFor("SOMETHING_ELSE"))
}
