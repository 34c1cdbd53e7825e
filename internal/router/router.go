package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/adisurya/hr-admin-api/internal/handler"
	"github.com/adisurya/hr-admin-api/internal/middleware"
)

// Deps carries everything route registration needs. Middleware
// entries may be nil (rate limiting and caching are optional at
// deploy time); handlers must be set.
type Deps struct {
	Auth    *handler.AuthHandler
	Access  *handler.AccessHandler
	Account *handler.AccountHandler

	JWTSecret string
	Sessions  middleware.SessionChecker
	Perms     middleware.PermissionSource

	RateLimit echo.MiddlewareFunc // applied to the public auth group
	Cache     echo.MiddlewareFunc // applied to read-only protected routes
}

// RegisterRoutes wires the full HTTP surface onto the provided Echo
// instance: a health check, the public auth group, and the protected
// group behind JWT-plus-session verification.
func RegisterRoutes(e *echo.Echo, d Deps) {
	// Liveness probe for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	// Unauthenticated operations live under /v1/auth. These are the
	// endpoints an attacker can hammer, so the token-bucket limiter
	// sits here.
	pub := e.Group("/v1/auth")
	if d.RateLimit != nil {
		pub.Use(d.RateLimit)
	}
	pub.POST("/signup", d.Auth.Signup)
	pub.POST("/login", d.Auth.Login)
	pub.POST("/forgot-password", d.Auth.ForgotPassword)
	pub.POST("/change-password", d.Auth.ChangePassword)

	// Everything under /v1 outside the auth group requires a valid
	// access token whose session row is still active. Logout lives
	// here: it needs the caller's identity to know which session to
	// kill.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(d.JWTSecret, d.Sessions))
	auth.POST("/logout", d.Auth.Logout)
	auth.GET("/me", d.Auth.Me)

	// Per-user read endpoints. Responses vary by caller, so the cache
	// key strategy must include the user id. Me is excluded: it mints
	// a fresh token per call.
	perms := auth.Group("/permissions")
	menu := auth.Group("/menu")
	if d.Cache != nil {
		perms.Use(d.Cache)
		menu.Use(d.Cache)
	}
	perms.GET("", d.Access.Permissions)
	menu.GET("", d.Access.Menu)

	// Administrative endpoints sit behind an explicit permission
	// gate on top of authentication.
	admin := auth.Group("", middleware.RequirePermission(d.Perms, "users:manage"))
	admin.GET("/users", d.Account.List)
	admin.GET("/users/:id", d.Account.Detail)
	admin.PUT("/users/:id", d.Account.Edit)
	admin.GET("/roles/options", d.Access.RoleOptions)
	admin.GET("/role-management", d.Access.RoleManagement)
	admin.PUT("/role-management/permissions", d.Access.UpdateGrants)
}
