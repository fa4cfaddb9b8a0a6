// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"authsvc/internal/delivery/http/middleware"
	"authsvc/internal/domain/entity"
	"authsvc/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler         *handler.AuthHandler
	AuthMiddleware      *middleware.AuthMiddleware
	RequestIDMiddleware *middleware.RequestIDMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler         *handler.AuthHandler
	authMiddleware      *middleware.AuthMiddleware
	requestIDMiddleware *middleware.RequestIDMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:         params.AuthHandler,
		authMiddleware:      params.AuthMiddleware,
		requestIDMiddleware: params.RequestIDMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.Use(r.requestIDMiddleware.Process)

	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Auth routes
	authGroup := e.Group("/api/auth")
	{
		authGroup.POST("/register", r.authHandler.Register)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/refresh-token", r.authHandler.RefreshToken)
	}

	// Routes that require a valid access token
	protectedGroup := e.Group("/api/auth")
	protectedGroup.Use(r.authMiddleware.Authenticate)
	{
		protectedGroup.POST("/logout", r.authHandler.Logout)
		protectedGroup.GET("/profile", r.authHandler.GetProfile)

		// Administrative lookup of any account's profile
		protectedGroup.GET("/users/:id", r.authHandler.GetUserProfile,
			r.authMiddleware.RequireRole(entity.RoleAdmin.String()))
	}

	echo.NotFoundHandler = middleware.NotFoundHandler
}
