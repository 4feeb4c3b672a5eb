package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"gowa-blast/internal/service"
)

type tokenRequest struct {
	APIKey string `json:"apiKey"`
	Name   string `json:"name"`
}

// POST /token exchanges the configured API key for a bearer token.
// Only mounted when auth is enabled.
func IssueToken(apiKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req tokenRequest
		if err := c.Bind(&req); err != nil {
			return ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		}

		if apiKey == "" || subtle.ConstantTimeCompare([]byte(req.APIKey), []byte(apiKey)) != 1 {
			return ErrorResponse(c, http.StatusUnauthorized, "Invalid API key")
		}

		name := req.Name
		if name == "" {
			name = "api-client"
		}

		token, err := service.GenerateAccessToken(name)
		if err != nil {
			return ErrorResponse(c, http.StatusInternalServerError, "Failed to generate token")
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"success": true,
			"token":   token,
		})
	}
}
