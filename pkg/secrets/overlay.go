package secrets

import (
	"context"

	"github.com/leadpulse/leadpulse/config"
)

// Overlay replaces the sensitive fields of cfg with values from the
// secrets backend. Keys absent from the backend leave the env-loaded
// value in place, so development setups keep working with plain env vars.
func Overlay(ctx context.Context, m Manager, cfg *config.Config) {
	load := func(key string, dest *string) {
		if value, err := m.GetSecret(ctx, key); err == nil && value != "" {
			*dest = value
		}
	}

	load("JWT_SECRET", &cfg.JWTSecret)
	load("DATABASE_URL", &cfg.DatabaseURL)
	load("REDIS_URL", &cfg.RedisURL)
	load("OPENAI_API_KEY", &cfg.OpenAIAPIKey)
	load("SENDGRID_API_KEY", &cfg.SendGridAPIKey)
	load("SMS_GATEWAY_TOKEN", &cfg.SMSGatewayToken)
	load("FACEBOOK_PAGE_TOKEN", &cfg.FacebookPageToken)
	load("SENTRY_DSN", &cfg.SentryDSN)
}
