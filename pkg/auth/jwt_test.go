package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/leadpulse/leadpulse/pkg/cache"
)

func TestGenerateJWT(t *testing.T) {
	userID := 1
	email := "test@example.com"
	secret := "test-secret-key-minimum-32-characters-long"
	expirationHours := 24

	token, err := GenerateJWT(userID, email, secret, expirationHours)
	if err != nil {
		t.Fatalf("Failed to generate JWT: %v", err)
	}

	if token == "" {
		t.Error("Token should not be empty")
	}

	if len(token) < 10 {
		t.Error("Token seems too short")
	}
}

func TestValidateJWT(t *testing.T) {
	userID := 123
	email := "test@example.com"
	secret := "test-secret-key-minimum-32-characters-long"
	expirationHours := 24

	token, err := GenerateJWT(userID, email, secret, expirationHours)
	if err != nil {
		t.Fatalf("Failed to generate JWT: %v", err)
	}

	claims, err := ValidateJWT(token, secret)
	if err != nil {
		t.Fatalf("Failed to validate JWT: %v", err)
	}

	if claims.UserID != userID {
		t.Errorf("Expected UserID %d, got %d", userID, claims.UserID)
	}

	if claims.Email != email {
		t.Errorf("Expected Email %s, got %s", email, claims.Email)
	}
}

func TestValidateJWTInvalidToken(t *testing.T) {
	secret := "test-secret-key-minimum-32-characters-long"

	_, err := ValidateJWT("invalid.token.here", secret)
	if err == nil {
		t.Error("ValidateJWT should return error for invalid token")
	}

	_, err = ValidateJWT("", secret)
	if err == nil {
		t.Error("ValidateJWT should return error for empty token")
	}
}

func TestValidateJWTWrongSecret(t *testing.T) {
	secret := "test-secret-key-minimum-32-characters-long"
	wrongSecret := "wrong-secret-key-minimum-32-characters-long"

	token, err := GenerateJWT(1, "test@example.com", secret, 24)
	if err != nil {
		t.Fatalf("Failed to generate JWT: %v", err)
	}

	_, err = ValidateJWT(token, wrongSecret)
	if err == nil {
		t.Error("ValidateJWT should return error when using wrong secret")
	}
}

func TestJWTExpiration(t *testing.T) {
	secret := "test-secret-key-minimum-32-characters-long"

	token, err := GenerateJWT(1, "test@example.com", secret, 24)
	if err != nil {
		t.Fatalf("Failed to generate JWT: %v", err)
	}

	claims, err := ValidateJWT(token, secret)
	if err != nil {
		t.Errorf("Token should be valid immediately: %v", err)
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		t.Error("Token expiration should be in the future")
	}
}

func TestValidateJWTWithBlacklist(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	cacheClient := &cache.Client{Redis: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	defer cacheClient.Close()

	blacklist := NewTokenBlacklist(cacheClient)
	secret := "test-secret-key-minimum-32-characters-long"
	ctx := context.Background()

	token, err := GenerateJWT(1, "test@example.com", secret, 24)
	if err != nil {
		t.Fatalf("Failed to generate JWT: %v", err)
	}

	// Not blacklisted yet
	if _, err := ValidateJWTWithBlacklist(ctx, token, secret, blacklist); err != nil {
		t.Fatalf("Token should validate before revocation: %v", err)
	}

	// Revoke it
	if err := blacklist.Add(ctx, token, time.Hour); err != nil {
		t.Fatalf("Failed to blacklist token: %v", err)
	}

	if _, err := ValidateJWTWithBlacklist(ctx, token, secret, blacklist); err == nil {
		t.Error("Revoked token should not validate")
	}
}
