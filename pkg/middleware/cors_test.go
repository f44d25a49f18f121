package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
)

func newCORSEcho(origins ...string) *echo.Echo {
	e := echo.New()
	e.Use(middleware.CORSWithConfig(CORSConfig(origins)))
	e.GET("/test", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	return e
}

func TestParseOrigins(t *testing.T) {
	assert.Equal(t,
		[]string{"http://localhost:5173", "https://app.printfast.io"},
		ParseOrigins(" http://localhost:5173/ , https://app.printfast.io,,"))
	assert.Empty(t, ParseOrigins(""))
}

func TestCORS_AllowedOrigin(t *testing.T) {
	e := newCORSEcho("http://localhost:5173")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_BlockedOrigins(t *testing.T) {
	for _, origin := range []string{"https://evil.com", "http://localhost:5173.evil.com", "http://localhost:3000", "null"} {
		t.Run(origin, func(t *testing.T) {
			e := newCORSEcho("http://localhost:5173")

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("Origin", origin)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.NotEqual(t, origin, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	e := newCORSEcho("https://app.printfast.io")

	req := httptest.NewRequest(http.MethodOptions, "/test", nil)
	req.Header.Set("Origin", "https://app.printfast.io")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	req.Header.Set("Access-Control-Request-Headers", "Authorization,Content-Type")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	methods := rec.Header().Get("Access-Control-Allow-Methods")
	for _, m := range AllowedMethods {
		assert.Contains(t, methods, m)
	}
	assert.False(t, strings.Contains(methods, http.MethodPut))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}
