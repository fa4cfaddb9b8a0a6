package middleware

import (
	"net/http"
	"slices"

	domainerrors "authsvc/internal/domain/errors"
	"authsvc/internal/domain/service"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Context keys set by Authenticate for downstream handlers.
const (
	ContextKeyUserID = "userID"
	ContextKeyEmail  = "email"
	ContextKeyRoles  = "roles"
)

// AuthMiddleware provides middleware for JWT authentication and authorization.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate validates the bearer access token and stores its identity
// claims on the request context. Verification is purely cryptographic; the
// account store is never consulted, so a token stays usable until it expires
// even after a logout.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString := service.ExtractBearerToken(c.Request().Header.Get("Authorization"))
		if tokenString == "" {
			return domainerrors.ErrNoTokenProvided.WrapMessage("missing bearer token")
		}

		claims, err := m.tokenSvc.VerifyAccessToken(tokenString)
		if err != nil {
			if errors.Is(err, service.ErrTokenExpired) {
				return domainerrors.ErrAccessTokenExpired.WrapMessage("access token rejected")
			}

			return domainerrors.ErrAccessTokenInvalid.WrapMessage("access token rejected")
		}

		// Set user info on the context for handlers to use
		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyRoles, claims.Roles)

		return next(c)
	}
}

// RequireRole is a middleware factory that checks if the user has a specific role.
// It must be used AFTER the Authenticate middleware.
func (m *AuthMiddleware) RequireRole(requiredRole string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles, ok := c.Get(ContextKeyRoles).([]string)
			if !ok {
				return echo.NewHTTPError(http.StatusForbidden, "Permission denied: role information missing")
			}

			if !slices.Contains(roles, requiredRole) {
				return echo.NewHTTPError(http.StatusForbidden, "Permission denied: require '"+requiredRole+"' role")
			}

			return next(c)
		}
	}
}
