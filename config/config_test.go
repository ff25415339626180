package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.APIPort)
	assert.Equal(t, 24, cfg.JWTExpirationHours)
	assert.Equal(t, 500, cfg.CampaignSendDelayMs)
	assert.Equal(t, 15, cfg.DispatchTimeoutSec)
	assert.Equal(t, 14, cfg.NoResponseAfterDays)
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
	assert.Equal(t, "US", cfg.SMSRegion)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("CAMPAIGN_SEND_DELAY_MS", "250")
	t.Setenv("OPENAI_TEMPERATURE", "0.2")
	t.Setenv("JWT_EXPIRATION_HOURS", "not-a-number")

	cfg := Load()

	assert.Equal(t, "9090", cfg.APIPort)
	assert.Equal(t, 250, cfg.CampaignSendDelayMs)
	assert.InDelta(t, 0.2, float64(cfg.OpenAITemperature), 0.001)
	// Unparseable values fall back to defaults
	assert.Equal(t, 24, cfg.JWTExpirationHours)
}
