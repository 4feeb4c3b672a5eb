package handler

import (
	"github.com/labstack/echo/v4"
)

// ErrorResponse is the uniform failure body for the command surface.
func ErrorResponse(c echo.Context, code int, message string) error {
	return c.JSON(code, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
