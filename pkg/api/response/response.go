// Package response writes the success envelope.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the success payload wrapper
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

// OK writes 200 with data
func OK(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes 201 with data and a message
func Created(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Data: data, Message: message})
}

// Message writes 200 with data and a message
func Message(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}
