package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4/middleware"
)

// AllowedMethods are the methods the API answers cross-origin
var AllowedMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPatch,
	http.MethodDelete,
}

// ParseOrigins splits a comma-separated CORS_ORIGIN value
func ParseOrigins(value string) []string {
	var origins []string
	for _, o := range strings.Split(value, ",") {
		if o = strings.TrimSuffix(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// CORSConfig allows the configured front-end origins with credentials, so the
// session cookie travels on cross-origin requests.
func CORSConfig(origins []string) middleware.CORSConfig {
	return middleware.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     AllowedMethods,
		AllowCredentials: true,
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
		},
		ExposeHeaders: []string{"Content-Disposition"},
	}
}
