package util

import (
	"prepmate_backend/internal/model"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{
		BaseModel: model.BaseModel{ID: 42},
		Email:     "ada@example.com",
	}

	token, err := GenerateJWT(user, "test-secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestParseJWTWrongSecret(t *testing.T) {
	user := &model.User{Email: "ada@example.com"}
	token, err := GenerateJWT(user, "secret-one", time.Hour)
	require.NoError(t, err)

	_, err = ParseJWT(token, "secret-two")
	assert.Error(t, err)
}

func TestParseJWTExpired(t *testing.T) {
	user := &model.User{Email: "ada@example.com"}
	token, err := GenerateJWT(user, "test-secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, "test-secret")
	assert.Error(t, err)
}

func TestValidateMimeType(t *testing.T) {
	// <html> sniffs as text/html.
	_, err := ValidateMimeType(strings.NewReader("<html><body></body></html>"), []string{"video/"})
	assert.Error(t, err)

	mime, err := ValidateMimeType(strings.NewReader("<html><body></body></html>"), []string{"text/html"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(mime, "text/html"))
}

func TestIsVideo(t *testing.T) {
	assert.True(t, IsVideo("video/webm"))
	assert.True(t, IsVideo("video/mp4"))
	assert.True(t, IsVideo("application/octet-stream"))
	assert.False(t, IsVideo("text/html"))
	assert.False(t, IsVideo("image/png"))
}
