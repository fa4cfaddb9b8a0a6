package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"authsvc/config"
	"authsvc/internal/delivery/http/response"
	domainerrors "authsvc/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newErrorTestMiddleware(env string) *ErrorMiddleware {
	cfg := &config.Config{}
	cfg.Env.Env = env
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewErrorMiddleware(cfg, logger)
}

func renderError(t *testing.T, m *ErrorMiddleware, err error) (int, response.Response) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	m.HandleHTTPError(err, c)

	var body response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return rec.Code, body
}

func TestErrorMiddleware_AppError(t *testing.T) {
	m := newErrorTestMiddleware("production")

	code, body := renderError(t, m, domainerrors.ErrInvalidPassword.WrapMessage("login failed"))

	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, body.Success)
	assert.Equal(t, "Invalid password", body.Message)
	assert.Empty(t, body.Stack)
}

func TestErrorMiddleware_AppError_Conflict(t *testing.T) {
	m := newErrorTestMiddleware("production")

	code, body := renderError(t, m, domainerrors.ErrEmailAlreadyRegistered.WrapMessage("registration failed"))

	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "User with this email already exists", body.Message)
}

func TestErrorMiddleware_StackOutsideProduction(t *testing.T) {
	m := newErrorTestMiddleware("development")

	_, body := renderError(t, m, domainerrors.ErrUserNotFound.WrapMessage("profile lookup failed"))

	assert.Equal(t, "User not found", body.Message)
	assert.NotEmpty(t, body.Stack)
	assert.Contains(t, body.Stack, "profile lookup failed")
}

func TestErrorMiddleware_UnknownError(t *testing.T) {
	m := newErrorTestMiddleware("production")

	code, body := renderError(t, m, errors.New("driver: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.False(t, body.Success)
	assert.Equal(t, "Internal Server Error", body.Message)
	assert.Empty(t, body.Stack)
}

func TestErrorMiddleware_EchoHTTPError(t *testing.T) {
	m := newErrorTestMiddleware("production")

	code, body := renderError(t, m, echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"))

	assert.Equal(t, http.StatusMethodNotAllowed, code)
	assert.Equal(t, "Method Not Allowed", body.Message)
}
