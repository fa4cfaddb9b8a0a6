package response

import (
	"github.com/labstack/echo/v4"
)

// Response unified API response structure
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

// Success successful response
func Success(c echo.Context, statusCode int, data any, message string) error {
	if message == "" {
		message = "Success"
	}

	return c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error error response. Stack is rendered only when the caller passes one; the
// error middleware omits it in production.
func Error(c echo.Context, statusCode int, message string, stack string) error {
	return c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Stack:   stack,
	})
}
