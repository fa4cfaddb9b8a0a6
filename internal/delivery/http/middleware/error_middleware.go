package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"authsvc/config"
	"authsvc/internal/delivery/http/response"
	domainerrors "authsvc/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ErrorMiddleware error handling middleware
type ErrorMiddleware struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(cfg *config.Config, logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		cfg:    cfg,
		logger: logger,
	}
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler. Known error
// kinds map to their status and message; everything else becomes an opaque
// 500. Outside production the response carries the error chain for debugging.
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		if appErr.HTTPCode() >= http.StatusInternalServerError {
			m.logError(err, c)
		}
		response.Error(c, appErr.HTTPCode(), appErr.Message(), m.stack(err)) //nolint:errcheck

		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		response.Error(c, httpErr.Code, fmt.Sprintf("%v", httpErr.Message), m.stack(err)) //nolint:errcheck

		return
	}

	m.logError(err, c)
	response.Error(c, http.StatusInternalServerError, domainerrors.ErrInternalError.Message(), m.stack(err)) //nolint:errcheck
}

// NotFoundHandler is the catch-all for unregistered routes.
func NotFoundHandler(c echo.Context) error {
	return domainerrors.ErrNotFound.WrapMessage(c.Request().Method + " " + c.Request().URL.Path)
}

func (m *ErrorMiddleware) logError(err error, c echo.Context) {
	m.logger.Error("Unhandled error",
		slog.String("error", fmt.Sprintf("%+v", err)),
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
	)
}

// stack returns the error chain with stack traces, or empty in production.
func (m *ErrorMiddleware) stack(err error) string {
	if m.cfg.IsProduction() {
		return ""
	}

	return fmt.Sprintf("%+v", err)
}
