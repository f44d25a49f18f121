// Package api mounts the REST surface on an echo instance.
package api

import (
	"github.com/jordanlanch/printfast/pkg/api/handlers"
	apimw "github.com/jordanlanch/printfast/pkg/api/middleware"
	"github.com/jordanlanch/printfast/pkg/authz"
	"github.com/labstack/echo/v4"
)

// Handlers groups every route handler
type Handlers struct {
	Auth         *handlers.AuthHandler
	Users        *handlers.UserHandler
	Vendors      *handlers.VendorHandler
	Campaigns    *handlers.CampaignHandler
	Integrations *handlers.IntegrationHandler
	Upload       *handlers.UploadHandler
	Settings     *handlers.SettingsHandler
}

// RegisterRoutes mounts the /api/v1 routes. authenticate guards everything
// that needs an actor and authLimiter throttles login and signup. Write
// routes are role-checked before their body is bound; services check again.
func RegisterRoutes(e *echo.Echo, h Handlers, authenticate, authLimiter echo.MiddlewareFunc) {
	can := apimw.Authorize
	v1 := e.Group("/api/v1")

	// Public
	v1.GET("/config/public", h.Auth.PublicConfig)
	authGroup := v1.Group("/auth")
	authGroup.POST("/login", h.Auth.Login, authLimiter)
	authGroup.POST("/signup", h.Auth.Signup, authLimiter)
	authGroup.POST("/god-credentials", h.Auth.GodCredentials)

	// Authenticated
	authGroup.POST("/logout", h.Auth.Logout, authenticate)
	authGroup.GET("/me", h.Auth.Me, authenticate)
	authGroup.POST("/change-password", h.Auth.ChangePassword, authenticate)

	protected := v1.Group("", authenticate)

	usersGroup := protected.Group("/users")
	usersGroup.GET("/profile", h.Users.GetProfile)
	usersGroup.PATCH("/profile", h.Users.UpdateProfile)
	usersGroup.GET("", h.Users.List)
	usersGroup.POST("", h.Users.Create, can(authz.OpCreateUser))
	usersGroup.GET("/:id", h.Users.Get)
	usersGroup.PATCH("/:id", h.Users.Update, can(authz.OpManageUsers))
	usersGroup.PATCH("/:id/deactivate", h.Users.Deactivate, can(authz.OpManageUsers))
	usersGroup.PATCH("/:id/activate", h.Users.Activate, can(authz.OpManageUsers))

	vendorsGroup := protected.Group("/vendors")
	vendorsGroup.GET("", h.Vendors.List)
	vendorsGroup.GET("/all-active", h.Vendors.AllActive)
	vendorsGroup.GET("/:id", h.Vendors.Get)
	vendorsGroup.POST("", h.Vendors.Create, can(authz.OpCreateVendor))
	vendorsGroup.PATCH("/:id", h.Vendors.Update, can(authz.OpUpdateVendor))
	vendorsGroup.PATCH("/:id/deactivate", h.Vendors.Deactivate, can(authz.OpDeactivateVendor))
	vendorsGroup.PATCH("/:id/activate", h.Vendors.Activate, can(authz.OpActivateVendor))

	campaignsGroup := protected.Group("/campaigns")
	campaignsGroup.GET("", h.Campaigns.List)
	campaignsGroup.GET("/export", h.Campaigns.Export, can(authz.OpExportCampaigns))
	campaignsGroup.GET("/:id", h.Campaigns.Get)
	campaignsGroup.POST("", h.Campaigns.Create, can(authz.OpCreateCampaign))
	campaignsGroup.PATCH("/:id", h.Campaigns.Update, can(authz.OpUpdateCampaign))
	campaignsGroup.PATCH("/:id/weeks/:weekNumber", h.Campaigns.UpdateWeek, can(authz.OpUpdateWeek))
	campaignsGroup.POST("/:id/postcard", h.Campaigns.UploadPostcard, can(authz.OpUploadPostcard))
	campaignsGroup.PATCH("/:id/deactivate", h.Campaigns.Deactivate, can(authz.OpDeactivateCampaign))
	campaignsGroup.PATCH("/:id/activate", h.Campaigns.Activate, can(authz.OpActivateCampaign))

	integrationsGroup := protected.Group("/integrations", can(authz.OpManageIntegrations))
	integrationsGroup.GET("/vendor/:vendorId", h.Integrations.ListByVendor)
	integrationsGroup.POST("/service-titan/connect", h.Integrations.ConnectServiceTitan)
	integrationsGroup.POST("/jobber/connect", h.Integrations.ConnectJobber)
	integrationsGroup.POST("/disconnect", h.Integrations.Disconnect)

	protected.POST("/upload", h.Upload.Upload)
	protected.GET("/settings", h.Settings.Get, can(authz.OpViewSettings))
}
