package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gowa-blast/internal/service"
)

func runProtected(t *testing.T, authHeader string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	e := echo.New()

	var clientName string
	h := JWTAuthMiddleware()(func(c echo.Context) error {
		if name, ok := c.Get("client_name").(string); ok {
			clientName = name
		}
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec, clientName
}

func TestJWTAuthMiddlewareAcceptsValidToken(t *testing.T) {
	service.InitAuthConfig("test-secret")
	t.Cleanup(func() { service.InitAuthConfig("") })

	token, err := service.GenerateAccessToken("ops")
	require.NoError(t, err)

	rec, clientName := runProtected(t, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ops", clientName)
}

func TestJWTAuthMiddlewareMissingHeader(t *testing.T) {
	service.InitAuthConfig("test-secret")
	t.Cleanup(func() { service.InitAuthConfig("") })

	rec, _ := runProtected(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authentication required")
}

func TestJWTAuthMiddlewareBadFormat(t *testing.T) {
	service.InitAuthConfig("test-secret")
	t.Cleanup(func() { service.InitAuthConfig("") })

	rec, _ := runProtected(t, "Token abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid authorization header format")
}

func TestJWTAuthMiddlewareInvalidToken(t *testing.T) {
	service.InitAuthConfig("test-secret")
	t.Cleanup(func() { service.InitAuthConfig("") })

	rec, _ := runProtected(t, "Bearer not.a.token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid or expired token")
}
