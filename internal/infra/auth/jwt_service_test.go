package auth

import (
	"testing"
	"time"

	"authsvc/config"
	"authsvc/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Env.ServiceName = "auth-service"
	cfg.SecretKey.Access = "test-access-secret"
	cfg.SecretKey.Refresh = "test-refresh-secret"
	cfg.Token.AccessTTL = time.Hour
	cfg.Token.RefreshTTL = 24 * time.Hour

	return cfg
}

func TestNewJWTService_MissingSecrets(t *testing.T) {
	cfg := newTestConfig()
	cfg.SecretKey.Access = ""

	svc, err := NewJWTService(cfg)
	assert.Error(t, err)
	assert.Nil(t, svc)

	cfg = newTestConfig()
	cfg.SecretKey.Refresh = ""

	svc, err = NewJWTService(cfg)
	assert.Error(t, err)
	assert.Nil(t, svc)
}

func TestJWTService_IssueAndVerifyAccessToken(t *testing.T) {
	svc, err := NewJWTService(newTestConfig())
	require.NoError(t, err)

	userID := uuid.New()
	roles := []string{"patient", "admin"}

	tokenString, err := svc.IssueAccessToken(userID, "test@example.com", roles)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := svc.VerifyAccessToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "test@example.com", claims.Email)
	assert.Equal(t, roles, claims.Roles)
	assert.Equal(t, "auth-service", claims.Issuer)
}

func TestJWTService_IssueAndVerifyRefreshToken(t *testing.T) {
	svc, err := NewJWTService(newTestConfig())
	require.NoError(t, err)

	userID := uuid.New()

	tokenString, err := svc.IssueRefreshToken(userID)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := svc.VerifyRefreshToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestJWTService_VerifyAccessToken_Expired(t *testing.T) {
	cfg := newTestConfig()
	cfg.Token.AccessTTL = -time.Minute

	svc, err := NewJWTService(cfg)
	require.NoError(t, err)

	tokenString, err := svc.IssueAccessToken(uuid.New(), "test@example.com", nil)
	require.NoError(t, err)

	claims, err := svc.VerifyAccessToken(tokenString)
	assert.Nil(t, claims)
	assert.True(t, errors.Is(err, service.ErrTokenExpired))
}

func TestJWTService_VerifyAccessToken_WrongSecret(t *testing.T) {
	svc, err := NewJWTService(newTestConfig())
	require.NoError(t, err)

	otherCfg := newTestConfig()
	otherCfg.SecretKey.Access = "a-different-secret"
	otherSvc, err := NewJWTService(otherCfg)
	require.NoError(t, err)

	tokenString, err := otherSvc.IssueAccessToken(uuid.New(), "test@example.com", nil)
	require.NoError(t, err)

	claims, err := svc.VerifyAccessToken(tokenString)
	assert.Nil(t, claims)
	assert.True(t, errors.Is(err, service.ErrTokenInvalid))
}

func TestJWTService_VerifyAccessToken_IssuerMismatch(t *testing.T) {
	svc, err := NewJWTService(newTestConfig())
	require.NoError(t, err)

	otherCfg := newTestConfig()
	otherCfg.Env.ServiceName = "another-service"
	otherSvc, err := NewJWTService(otherCfg)
	require.NoError(t, err)

	tokenString, err := otherSvc.IssueAccessToken(uuid.New(), "test@example.com", nil)
	require.NoError(t, err)

	claims, err := svc.VerifyAccessToken(tokenString)
	assert.Nil(t, claims)
	assert.True(t, errors.Is(err, service.ErrTokenInvalid))
}

func TestJWTService_TokensAreNotInterchangeable(t *testing.T) {
	svc, err := NewJWTService(newTestConfig())
	require.NoError(t, err)

	userID := uuid.New()

	// A refresh token must not verify as an access token and vice versa,
	// because the two kinds are signed with independent secrets.
	refreshToken, err := svc.IssueRefreshToken(userID)
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(refreshToken)
	assert.True(t, errors.Is(err, service.ErrTokenInvalid))

	accessToken, err := svc.IssueAccessToken(userID, "test@example.com", nil)
	require.NoError(t, err)

	_, err = svc.VerifyRefreshToken(accessToken)
	assert.True(t, errors.Is(err, service.ErrTokenInvalid))
}

func TestClassifyTokenError(t *testing.T) {
	unknown := errors.New("key store unavailable")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "expired", err: jwt.ErrTokenExpired, want: service.ErrTokenExpired},
		{name: "malformed", err: jwt.ErrTokenMalformed, want: service.ErrTokenInvalid},
		{name: "bad signature", err: jwt.ErrTokenSignatureInvalid, want: service.ErrTokenInvalid},
		{name: "unverifiable", err: jwt.ErrTokenUnverifiable, want: service.ErrTokenInvalid},
		{name: "claims rejected", err: jwt.ErrTokenInvalidClaims, want: service.ErrTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyTokenError(tt.err)
			assert.True(t, errors.Is(got, tt.want))
		})
	}

	// Failures outside the known kinds keep their original cause.
	got := classifyTokenError(unknown)
	assert.True(t, errors.Is(got, unknown))
	assert.False(t, errors.Is(got, service.ErrTokenInvalid))
}

func TestJWTService_VerifyAccessToken_Garbage(t *testing.T) {
	svc, err := NewJWTService(newTestConfig())
	require.NoError(t, err)

	claims, err := svc.VerifyAccessToken("not.a.jwt")
	assert.Nil(t, claims)
	assert.True(t, errors.Is(err, service.ErrTokenInvalid))
}
