package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// SecurityHeadersConfig holds configuration for the security headers middleware.
// Empty strings fall back to the API defaults.
type SecurityHeadersConfig struct {
	Skipper               middleware.Skipper
	ContentSecurityPolicy string
	ReferrerPolicy        string
	PermissionsPolicy     string
}

// DefaultSecurityHeadersConfig locks responses down to JSON and file downloads
func DefaultSecurityHeadersConfig() SecurityHeadersConfig {
	return SecurityHeadersConfig{
		Skipper:               middleware.DefaultSkipper,
		ContentSecurityPolicy: "default-src 'none'; img-src 'self' data:; frame-ancestors 'none'; base-uri 'none'; form-action 'none'",
		ReferrerPolicy:        "no-referrer",
		PermissionsPolicy:     "camera=(), microphone=(), geolocation=(), payment=()",
	}
}

// SecurityHeaders sets Content-Security-Policy, Referrer-Policy and
// Permissions-Policy on every response the skipper lets through.
func SecurityHeaders(config SecurityHeadersConfig) echo.MiddlewareFunc {
	defaults := DefaultSecurityHeadersConfig()
	if config.Skipper == nil {
		config.Skipper = defaults.Skipper
	}
	if config.ContentSecurityPolicy == "" {
		config.ContentSecurityPolicy = defaults.ContentSecurityPolicy
	}
	if config.ReferrerPolicy == "" {
		config.ReferrerPolicy = defaults.ReferrerPolicy
	}
	if config.PermissionsPolicy == "" {
		config.PermissionsPolicy = defaults.PermissionsPolicy
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}
			h := c.Response().Header()
			h.Set("Content-Security-Policy", config.ContentSecurityPolicy)
			h.Set("Referrer-Policy", config.ReferrerPolicy)
			h.Set("Permissions-Policy", config.PermissionsPolicy)
			return next(c)
		}
	}
}
