package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthDisabledWithoutSecret(t *testing.T) {
	InitAuthConfig("")
	assert.False(t, AuthEnabled())

	_, err := GenerateAccessToken("tester")
	assert.Error(t, err)
}

func TestGenerateAndValidateToken(t *testing.T) {
	InitAuthConfig("test-secret")
	t.Cleanup(func() { InitAuthConfig("") })

	token, err := GenerateAccessToken("tester")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "tester", claims.Name)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	InitAuthConfig("secret-a")
	token, err := GenerateAccessToken("tester")
	require.NoError(t, err)

	InitAuthConfig("secret-b")
	t.Cleanup(func() { InitAuthConfig("") })

	_, err = ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	InitAuthConfig("test-secret")
	t.Cleanup(func() { InitAuthConfig("") })

	_, err := ValidateAccessToken("not.a.token")
	assert.Error(t, err)
}
