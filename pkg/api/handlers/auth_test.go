package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadpulse/leadpulse/config"
	"github.com/leadpulse/leadpulse/pkg/auth"
	"github.com/leadpulse/leadpulse/pkg/models"
	"github.com/leadpulse/leadpulse/pkg/userstore"
)

func newAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()

	hash, err := auth.HashPassword("correct-horse-battery")
	require.NoError(t, err)

	users := userstore.NewMemoryStore(models.User{
		ID:           1,
		Name:         "Operator",
		Email:        "ops@leadpulse.app",
		PasswordHash: hash,
	})

	cfg := config.Load()
	cfg.JWTSecret = "test-secret-key-minimum-32-characters-long"

	return NewAuthHandler(users, cfg, nil, nil)
}

func TestLogin_Success(t *testing.T) {
	h := newAuthHandler(t)

	rec := doJSON(t, h.Login, http.MethodPost, "/api/v1/auth/login",
		`{"email":"ops@leadpulse.app","password":"correct-horse-battery"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "ops@leadpulse.app", resp.User.Email)

	claims, err := auth.ValidateJWT(resp.Token, "test-secret-key-minimum-32-characters-long")
	require.NoError(t, err)
	assert.Equal(t, 1, claims.UserID)
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newAuthHandler(t)

	rec := doJSON(t, h.Login, http.MethodPost, "/api/v1/auth/login",
		`{"email":"ops@leadpulse.app","password":"wrong-password-here"}`)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_credentials")
}

func TestLogin_UnknownUser(t *testing.T) {
	h := newAuthHandler(t)

	rec := doJSON(t, h.Login, http.MethodPost, "/api/v1/auth/login",
		`{"email":"nobody@leadpulse.app","password":"whatever-password"}`)

	// Same response as a wrong password, no user enumeration
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_credentials")
}

func TestLogin_MalformedRequest(t *testing.T) {
	h := newAuthHandler(t)

	rec := doJSON(t, h.Login, http.MethodPost, "/api/v1/auth/login",
		`{"email":"not-an-email","password":"short"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
