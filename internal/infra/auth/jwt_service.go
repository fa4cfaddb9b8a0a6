// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"authsvc/config"
	"authsvc/internal/domain/service"
	"authsvc/internal/errors"
)

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
// Access and refresh tokens are signed with independent secrets so a leaked
// token of one kind can never be replayed as the other. The issuer claim pins
// tokens to this service instance's configuration.
type jwtService struct {
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
}

// NewJWTService is the constructor for jwtService.
// It takes configuration values to create a new token service instance.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Access == "" || cfg.SecretKey.Refresh == "" {
		return nil, errors.New("jwt secrets must be provided")
	}

	return &jwtService{
		accessSecret:  cfg.SecretKey.Access,
		refreshSecret: cfg.SecretKey.Refresh,
		accessTTL:     cfg.Token.AccessTTL,
		refreshTTL:    cfg.Token.RefreshTTL,
		issuer:        cfg.Env.ServiceName,
	}, nil
}

// IssueAccessToken signs a token carrying exactly {userId, email, roles}
// plus the registered issuer/expiry metadata.
func (s *jwtService) IssueAccessToken(userID uuid.UUID, email string, roles []string) (string, error) {
	claims := &service.AccessClaims{
		UserID:           userID,
		Email:            email,
		Roles:            roles,
		RegisteredClaims: s.registeredClaims(s.accessTTL),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.accessSecret))
	if err != nil {
		return "", errors.Wrap(err, "failed to sign access token")
	}

	return signed, nil
}

// IssueRefreshToken signs a token whose payload is only the account ID.
func (s *jwtService) IssueRefreshToken(userID uuid.UUID) (string, error) {
	claims := &service.RefreshClaims{
		UserID:           userID,
		RegisteredClaims: s.registeredClaims(s.refreshTTL),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.refreshSecret))
	if err != nil {
		return "", errors.Wrap(err, "failed to sign refresh token")
	}

	return signed, nil
}

// VerifyAccessToken validates a token against the access secret.
func (s *jwtService) VerifyAccessToken(tokenString string) (*service.AccessClaims, error) {
	claims := &service.AccessClaims{}
	if err := s.verify(tokenString, s.accessSecret, claims); err != nil {
		return nil, err
	}

	return claims, nil
}

// VerifyRefreshToken validates a token against the refresh secret.
func (s *jwtService) VerifyRefreshToken(tokenString string) (*service.RefreshClaims, error) {
	claims := &service.RefreshClaims{}
	if err := s.verify(tokenString, s.refreshSecret, claims); err != nil {
		return nil, err
	}

	return claims, nil
}

func (s *jwtService) registeredClaims(ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()

	return jwt.RegisteredClaims{
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

// verify parses and validates a token, mapping library failures onto the
// domain's two verification sentinels.
func (s *jwtService) verify(tokenString, secret string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return []byte(secret), nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return classifyTokenError(err)
	}
	if !token.Valid {
		return errors.Wrap(service.ErrTokenInvalid, "token verification failed")
	}

	return nil
}

// classifyTokenError maps library failures onto the domain's verification
// sentinels: expiry and signature/structure problems get their own kinds,
// anything else propagates unchanged.
func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return errors.Wrap(service.ErrTokenExpired, "token verification failed")
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenInvalidClaims):
		return errors.Wrap(service.ErrTokenInvalid, "token verification failed")
	}

	return errors.Wrap(err, "token verification failed")
}
