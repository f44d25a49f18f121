// Package errors renders every failure as the API error envelope.
package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/jordanlanch/printfast/pkg/api/validation"
	"github.com/jordanlanch/printfast/pkg/domain"
	"github.com/jordanlanch/printfast/pkg/logger"
	"github.com/labstack/echo/v4"
)

const internalMessage = "Internal server error"

// ErrorBody is the error half of the envelope
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the failure envelope
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

var statusByCode = map[string]int{
	domain.ErrCodeUnauthenticated:     http.StatusUnauthorized,
	domain.ErrCodeForbidden:           http.StatusForbidden,
	domain.ErrCodeAdminSignupDisabled: http.StatusForbidden,
	domain.ErrCodeNotFound:            http.StatusNotFound,
	domain.ErrCodeConflict:            http.StatusConflict,
	domain.ErrCodeValidation:          http.StatusBadRequest,
	domain.ErrCodeInvalidArgument:     http.StatusBadRequest,
	domain.ErrCodeRateLimited:         http.StatusTooManyRequests,
	domain.ErrCodePayloadTooLarge:     http.StatusRequestEntityTooLarge,
	domain.ErrCodeInternal:            http.StatusInternalServerError,
}

var codeByStatus = map[int]string{
	http.StatusBadRequest:            domain.ErrCodeValidation,
	http.StatusUnauthorized:          domain.ErrCodeUnauthenticated,
	http.StatusForbidden:             domain.ErrCodeForbidden,
	http.StatusNotFound:              domain.ErrCodeNotFound,
	http.StatusMethodNotAllowed:      domain.ErrCodeNotFound,
	http.StatusConflict:              domain.ErrCodeConflict,
	http.StatusRequestEntityTooLarge: domain.ErrCodePayloadTooLarge,
	http.StatusTooManyRequests:       domain.ErrCodeRateLimited,
	http.StatusServiceUnavailable:    domain.ErrCodeInternal,
}

// StatusFor returns the HTTP status of a domain error code
func StatusFor(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Handler converts errors returned by handlers and middleware into envelopes
type Handler struct {
	log        logger.Logger
	production bool
}

// NewHandler creates an error handler. In production internal error details
// are replaced by a generic message.
func NewHandler(log logger.Logger, production bool) *Handler {
	return &Handler{log: log, production: production}
}

// HandleHTTPError implements echo.HTTPErrorHandler
func (h *Handler) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := h.classify(err, c)
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, ErrorResponse{Success: false, Error: body})
	}
	if err != nil {
		h.log.Error("failed writing error response", "error", err)
	}
}

func (h *Handler) classify(err error, c echo.Context) (int, ErrorBody) {
	var de *domain.DomainError
	if stderrors.As(err, &de) {
		if de.Code == domain.ErrCodeInternal {
			return http.StatusInternalServerError, h.internal(err, c)
		}
		return StatusFor(de.Code), ErrorBody{Code: de.Code, Message: de.Message}
	}

	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		return http.StatusBadRequest, ErrorBody{Code: domain.ErrCodeValidation, Message: validation.Message(verrs)}
	}

	var he *echo.HTTPError
	if stderrors.As(err, &he) {
		code, ok := codeByStatus[he.Code]
		if !ok || he.Code >= http.StatusInternalServerError {
			return he.Code, h.internal(err, c)
		}
		msg, isString := he.Message.(string)
		if !isString {
			msg = http.StatusText(he.Code)
		}
		return he.Code, ErrorBody{Code: code, Message: msg}
	}

	return http.StatusInternalServerError, h.internal(err, c)
}

func (h *Handler) internal(err error, c echo.Context) ErrorBody {
	req := c.Request()
	h.log.WithContext(req.Context()).Error("request failed",
		"error", err,
		"method", req.Method,
		"path", req.URL.Path,
	)
	if hub := sentryecho.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}

	msg := internalMessage
	if !h.production {
		msg = err.Error()
	}
	return ErrorBody{Code: domain.ErrCodeInternal, Message: msg}
}
