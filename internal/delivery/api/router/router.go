// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"sso/internal/delivery/api/middleware"
	"sso/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	SessionHandler *handler.SessionHandler
	ConfigHandler  *handler.ConfigHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	sessionHandler *handler.SessionHandler
	configHandler  *handler.ConfigHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		sessionHandler: params.SessionHandler,
		configHandler:  params.ConfigHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Public auth routes
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/refresh", r.authHandler.Refresh)
		authGroup.POST("/forgot-password", r.authHandler.ForgotPassword)
		authGroup.POST("/reset-password", r.authHandler.ResetPassword)
		authGroup.POST("/send-email-verification", r.authHandler.SendEmailVerification)
		authGroup.POST("/verify-email", r.authHandler.VerifyEmail)
	}

	// Auth routes that require a live session
	securedAuth := e.Group("/auth", r.authMiddleware.Authenticate)
	{
		securedAuth.GET("/me", r.authHandler.Me)
		securedAuth.POST("/logout", r.authHandler.Logout)
		securedAuth.POST("/logout-all", r.authHandler.LogoutAll)
		securedAuth.POST("/switch-tenant", r.authHandler.SwitchTenant)
		securedAuth.POST("/users/:id/toggle-locked", r.authHandler.ToggleUserLocked)

		securedAuth.GET("/sessions", r.sessionHandler.ListSessions)
		securedAuth.DELETE("/sessions/:id", r.sessionHandler.RevokeSession)

		securedAuth.GET("/users/config", r.configHandler.GetUserConfig)
		securedAuth.PATCH("/users/config", r.configHandler.UpdateUserConfig)
	}

	// Tenant scoped routes
	tenantGroup := e.Group("/tenants", r.authMiddleware.Authenticate)
	{
		tenantGroup.GET("/config", r.configHandler.GetTenantConfig)
		tenantGroup.PATCH("/config", r.configHandler.UpdateTenantConfig)
		tenantGroup.GET("/rls/verify", r.configHandler.VerifyTenantIsolation)
	}
}
