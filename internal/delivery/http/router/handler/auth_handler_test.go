package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	deliverymiddleware "authsvc/internal/delivery/http/middleware"
	"authsvc/internal/delivery/http/validator"
	domainerrors "authsvc/internal/domain/errors"
	mockUsecase "authsvc/internal/mocks/usecase"
	"authsvc/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newHandlerTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder, *mockUsecase.MockAuthUsecase) {
	t.Helper()

	e := echo.New()
	e.Validator = validator.New()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec), rec, mockUsecase.NewMockAuthUsecase(t)
}

func TestAuthHandler_Register_Success(t *testing.T) {
	body := `{"email":"test@example.com","password":"StrongPass123!","firstName":"Test","lastName":"User"}`
	c, rec, uc := newHandlerTestContext(t, http.MethodPost, "/api/auth/register", body)

	uc.EXPECT().
		Register(mock.Anything, mock.MatchedBy(func(in *usecase.RegisterInput) bool {
			return in.Email == "test@example.com" && in.FirstName == "Test"
		})).
		Return(&usecase.AuthOutput{
			User:         &usecase.UserSummary{Email: "test@example.com"},
			AccessToken:  "access_token",
			RefreshToken: "refresh_token",
		}, nil)

	h := NewAuthHandler(uc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "access_token", resp.Data.AccessToken)
	assert.Equal(t, "refresh_token", resp.Data.RefreshToken)
}

func TestAuthHandler_Register_InvalidEmail(t *testing.T) {
	body := `{"email":"not-an-email","password":"StrongPass123!","firstName":"Test","lastName":"User"}`
	c, _, uc := newHandlerTestContext(t, http.MethodPost, "/api/auth/register", body)

	h := NewAuthHandler(uc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := h.Register(c)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}

func TestAuthHandler_Register_MissingFields(t *testing.T) {
	body := `{"email":"test@example.com"}`
	c, _, uc := newHandlerTestContext(t, http.MethodPost, "/api/auth/register", body)

	h := NewAuthHandler(uc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := h.Register(c)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}

func TestAuthHandler_Login_Success(t *testing.T) {
	body := `{"email":"test@example.com","password":"StrongPass123!"}`
	c, rec, uc := newHandlerTestContext(t, http.MethodPost, "/api/auth/login", body)

	uc.EXPECT().
		Login(mock.Anything, mock.MatchedBy(func(in *usecase.LoginInput) bool {
			return in.Email == "test@example.com"
		})).
		Return(&usecase.AuthOutput{
			User:         &usecase.UserSummary{Email: "test@example.com"},
			AccessToken:  "access_token",
			RefreshToken: "refresh_token",
		}, nil)

	h := NewAuthHandler(uc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthHandler_Login_PropagatesUsecaseError(t *testing.T) {
	body := `{"email":"test@example.com","password":"wrong"}`
	c, _, uc := newHandlerTestContext(t, http.MethodPost, "/api/auth/login", body)

	uc.EXPECT().
		Login(mock.Anything, mock.AnythingOfType("*usecase.LoginInput")).
		Return(nil, domainerrors.ErrInvalidPassword.WrapMessage("login failed"))

	h := NewAuthHandler(uc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := h.Login(c)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidPassword))
}

func TestAuthHandler_RefreshToken_Success(t *testing.T) {
	body := `{"refreshToken":"stored_refresh_token"}`
	c, rec, uc := newHandlerTestContext(t, http.MethodPost, "/api/auth/refresh-token", body)

	uc.EXPECT().
		RefreshToken(mock.Anything, mock.MatchedBy(func(in *usecase.RefreshTokenInput) bool {
			return in.RefreshToken == "stored_refresh_token"
		})).
		Return(&usecase.RefreshTokenOutput{AccessToken: "new_access_token"}, nil)

	h := NewAuthHandler(uc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, h.RefreshToken(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "new_access_token")
}

func TestAuthHandler_RefreshToken_MissingToken(t *testing.T) {
	c, _, uc := newHandlerTestContext(t, http.MethodPost, "/api/auth/refresh-token", `{}`)

	h := NewAuthHandler(uc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := h.RefreshToken(c)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}

func TestAuthHandler_Logout_Success(t *testing.T) {
	c, rec, uc := newHandlerTestContext(t, http.MethodPost, "/api/auth/logout", "")
	userID := uuid.New()
	c.Set(deliverymiddleware.ContextKeyUserID, userID)

	uc.EXPECT().Logout(mock.Anything, userID).Return(nil)

	h := NewAuthHandler(uc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Successfully logged out")
}

func TestAuthHandler_Logout_MissingIdentity(t *testing.T) {
	c, _, uc := newHandlerTestContext(t, http.MethodPost, "/api/auth/logout", "")

	h := NewAuthHandler(uc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := h.Logout(c)
	assert.True(t, errors.Is(err, domainerrors.ErrAccessTokenInvalid))
}

func TestAuthHandler_GetProfile_Success(t *testing.T) {
	c, rec, uc := newHandlerTestContext(t, http.MethodGet, "/api/auth/profile", "")
	userID := uuid.New()
	c.Set(deliverymiddleware.ContextKeyUserID, userID)

	uc.EXPECT().
		GetProfile(mock.Anything, userID).
		Return(&usecase.ProfileOutput{
			UserID: userID,
			Email:  "test@example.com",
			Roles:  []string{"patient"},
			Status: "active",
		}, nil)

	h := NewAuthHandler(uc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, h.GetProfile(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test@example.com")
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "refreshToken")
}

func TestAuthHandler_GetUserProfile_Success(t *testing.T) {
	targetID := uuid.New()
	c, rec, uc := newHandlerTestContext(t, http.MethodGet, "/api/auth/users/"+targetID.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(targetID.String())

	uc.EXPECT().
		GetProfile(mock.Anything, targetID).
		Return(&usecase.ProfileOutput{
			UserID: targetID,
			Email:  "patient@example.com",
			Roles:  []string{"patient"},
			Status: "active",
		}, nil)

	h := NewAuthHandler(uc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, h.GetUserProfile(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "patient@example.com")
}

func TestAuthHandler_GetUserProfile_InvalidID(t *testing.T) {
	c, _, uc := newHandlerTestContext(t, http.MethodGet, "/api/auth/users/not-a-uuid", "")
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	h := NewAuthHandler(uc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := h.GetUserProfile(c)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}

func TestHealthCheck(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, HealthCheck(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
