package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	key := []byte("test-secret")

	token, err := GenerateJWT(key, "admin@example.com", "admin", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(key, token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestParseJWT_WrongKey(t *testing.T) {
	token, err := GenerateJWT([]byte("one"), "a@example.com", "donor", time.Hour)
	require.NoError(t, err)

	_, err = ParseJWT([]byte("two"), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseJWT_Expired(t *testing.T) {
	key := []byte("test-secret")
	token, err := GenerateJWT(key, "a@example.com", "admin", -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(key, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseJWT_Garbage(t *testing.T) {
	_, err := ParseJWT([]byte("k"), "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
