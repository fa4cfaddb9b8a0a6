package service

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Verification sentinels. Infrastructure maps library-specific parse failures
// onto these two; anything else propagates unchanged.
var (
	// ErrTokenExpired is returned when a token's signature is valid but its
	// expiry has passed.
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenInvalid is returned when a token's signature, structure or
	// issuer is wrong.
	ErrTokenInvalid = errors.New("token is invalid")
)

// AccessClaims is the decoded payload of an access token. It carries exactly
// the identity and role claims needed for stateless authorization.
type AccessClaims struct {
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
	Roles  []string  `json:"roles"`
	jwt.RegisteredClaims
}

// RefreshClaims is the decoded payload of a refresh token: the account ID only.
type RefreshClaims struct {
	UserID uuid.UUID `json:"userId"`
	jwt.RegisteredClaims
}

// TokenService defines the interface for issuing and verifying the two token
// kinds. Implementations are stateless; secrets, expiries and the issuer are
// fixed at construction and never change at runtime.
type TokenService interface {
	// IssueAccessToken signs a short-lived token carrying the account's
	// identity and roles.
	IssueAccessToken(userID uuid.UUID, email string, roles []string) (string, error)

	// IssueRefreshToken signs a longer-lived token carrying only the account ID.
	IssueRefreshToken(userID uuid.UUID) (string, error)

	// VerifyAccessToken checks signature, expiry and issuer with the access
	// secret. Returns ErrTokenExpired or ErrTokenInvalid on failure.
	VerifyAccessToken(tokenString string) (*AccessClaims, error)

	// VerifyRefreshToken checks signature, expiry and issuer with the refresh
	// secret. Returns ErrTokenExpired or ErrTokenInvalid on failure.
	VerifyRefreshToken(tokenString string) (*RefreshClaims, error)
}

// ExtractBearerToken pulls the token out of an Authorization header value.
// Only the exact two-part form "Bearer <token>" is accepted; any other shape
// (missing header, wrong scheme, extra parts) yields the empty string rather
// than an error.
func ExtractBearerToken(headerValue string) string {
	if headerValue == "" {
		return ""
	}

	parts := strings.Split(headerValue, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}
