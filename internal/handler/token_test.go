package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gowa-blast/internal/service"
)

func TestIssueToken(t *testing.T) {
	service.InitAuthConfig("test-secret")
	t.Cleanup(func() { service.InitAuthConfig("") })

	h := IssueToken("my-api-key")

	rec, body := doRequest(t, h, http.MethodPost, "/token", `{"apiKey":"my-api-key","name":"ops"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["success"])

	claims, err := service.ValidateAccessToken(body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Name)
}

func TestIssueTokenDefaultName(t *testing.T) {
	service.InitAuthConfig("test-secret")
	t.Cleanup(func() { service.InitAuthConfig("") })

	_, body := doRequest(t, IssueToken("my-api-key"), http.MethodPost, "/token", `{"apiKey":"my-api-key"}`, nil)
	claims, err := service.ValidateAccessToken(body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "api-client", claims.Name)
}

func TestIssueTokenRejectsWrongKey(t *testing.T) {
	service.InitAuthConfig("test-secret")
	t.Cleanup(func() { service.InitAuthConfig("") })

	rec, body := doRequest(t, IssueToken("my-api-key"), http.MethodPost, "/token", `{"apiKey":"wrong"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid API key", body["error"])
}

func TestIssueTokenRejectsEmptyConfiguredKey(t *testing.T) {
	service.InitAuthConfig("test-secret")
	t.Cleanup(func() { service.InitAuthConfig("") })

	rec, _ := doRequest(t, IssueToken(""), http.MethodPost, "/token", `{"apiKey":""}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
