// Package handlers binds HTTP requests to the domain services.
package handlers

import (
	"strconv"

	"github.com/jordanlanch/printfast/pkg/domain"
	"github.com/labstack/echo/v4"
)

// bindAndValidate decodes the request into req and runs the struct validator
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewValidationError("Invalid request body")
	}
	return c.Validate(req)
}

// bindQuery decodes query parameters into q and validates it
func bindQuery(c echo.Context, q any) error {
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, q); err != nil {
		return domain.NewValidationError("Invalid query parameters")
	}
	return c.Validate(q)
}

// boolQuery parses an optional boolean query parameter
func boolQuery(c echo.Context, name string) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, domain.NewValidationError(name + " must be true or false")
	}
	return &v, nil
}
