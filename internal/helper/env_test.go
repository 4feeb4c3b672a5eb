package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("GOWA_TEST_STR", "value")
	assert.Equal(t, "value", GetEnv("GOWA_TEST_STR", "fallback"))
	assert.Equal(t, "fallback", GetEnv("GOWA_TEST_UNSET", "fallback"))
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("GOWA_TEST_INT", "42")
	assert.Equal(t, 42, GetEnvAsInt("GOWA_TEST_INT", 7))

	t.Setenv("GOWA_TEST_BAD", "not-a-number")
	assert.Equal(t, 7, GetEnvAsInt("GOWA_TEST_BAD", 7))

	assert.Equal(t, 7, GetEnvAsInt("GOWA_TEST_INT_UNSET", 7))
}
