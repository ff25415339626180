package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/leadpulse/leadpulse/config"
	"github.com/leadpulse/leadpulse/pkg/api/errors"
	"github.com/leadpulse/leadpulse/pkg/auth"
	"github.com/leadpulse/leadpulse/pkg/domain"
	"github.com/leadpulse/leadpulse/pkg/metrics"
	"github.com/leadpulse/leadpulse/pkg/models"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	users     domain.UserStore
	config    *config.Config
	blacklist *auth.TokenBlacklist
	metrics   *metrics.Metrics
	validator *validator.Validate
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users domain.UserStore, cfg *config.Config, blacklist *auth.TokenBlacklist, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		users:     users,
		config:    cfg,
		blacklist: blacklist,
		metrics:   m,
		validator: validator.New(),
	}
}

// Login authenticates an operator and returns a JWT
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if domain.IsNotFound(err) {
			h.recordLogin(false)
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "invalid_credentials",
				Message: "Invalid email or password",
			})
		}
		return errors.DatabaseError(c, err)
	}

	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		h.recordLogin(false)
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "invalid_credentials",
			Message: "Invalid email or password",
		})
	}

	token, err := auth.GenerateJWT(u.ID, u.Email, h.config.JWTSecret, h.config.JWTExpirationHours)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "token_generation_error",
		})
	}

	h.recordLogin(true)

	return c.JSON(http.StatusOK, models.LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(time.Duration(h.config.JWTExpirationHours) * time.Hour),
		User:      *u,
	})
}

// Logout revokes the current token via the blacklist
func (h *AuthHandler) Logout(c echo.Context) error {
	token, ok := c.Get("token").(string)
	if !ok || token == "" {
		return errors.UnauthorizedError(c, "no token")
	}

	if h.blacklist != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		expiration := time.Duration(h.config.JWTExpirationHours) * time.Hour
		if err := h.blacklist.Add(ctx, token, expiration); err != nil {
			return errors.InternalError(c, err)
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

// Me returns the authenticated operator's identity
func (h *AuthHandler) Me(c echo.Context) error {
	email, ok := c.Get("user_email").(string)
	if !ok {
		return errors.UnauthorizedError(c, "no identity")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return errors.UnauthorizedError(c, "user not found")
		}
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, u)
}

func (h *AuthHandler) recordLogin(success bool) {
	if h.metrics != nil {
		h.metrics.RecordLoginAttempt(success)
	}
}
