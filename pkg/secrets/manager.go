package secrets

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"

	"github.com/leadpulse/leadpulse/pkg/logger"
)

// Manager resolves secret values by key. The environment backend reads
// plain env vars; the AWS backend reads AWS Secrets Manager entries.
type Manager interface {
	GetSecret(ctx context.Context, key string) (string, error)
	Close() error
}

// Config holds secrets manager configuration.
type Config struct {
	Backend       string // "env" or "aws"
	AWSRegion     string
	CacheDuration time.Duration
}

// DefaultConfig returns the development default: plain env vars.
func DefaultConfig() Config {
	return Config{
		Backend:       "env",
		AWSRegion:     "us-east-1",
		CacheDuration: 5 * time.Minute,
	}
}

// AutoDetectConfig picks the backend from the environment: AWS Secrets
// Manager when SECRETS_BACKEND=aws or when running inside AWS, env vars
// otherwise.
func AutoDetectConfig() Config {
	cfg := DefaultConfig()
	if region := os.Getenv("AWS_REGION"); region != "" {
		cfg.AWSRegion = region
	}
	switch {
	case os.Getenv("SECRETS_BACKEND") == "aws":
		cfg.Backend = "aws"
	case os.Getenv("AWS_REGION") != "" && os.Getenv("AWS_EXECUTION_ENV") != "":
		cfg.Backend = "aws"
	}
	return cfg
}

// NewManager creates a secrets manager for the configured backend.
func NewManager(cfg Config, log logger.Logger) (Manager, error) {
	if log == nil {
		log = logger.Default()
	}
	switch cfg.Backend {
	case "aws", "aws-secrets-manager":
		return newAWSManager(cfg, log)
	case "env", "environment", "":
		return &EnvironmentManager{}, nil
	default:
		return nil, fmt.Errorf("unsupported secrets backend: %s", cfg.Backend)
	}
}

// EnvironmentManager reads secrets straight from environment variables.
type EnvironmentManager struct{}

// GetSecret returns the env var value, or an error when unset.
func (m *EnvironmentManager) GetSecret(ctx context.Context, key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("secret not found: %s", key)
	}
	return value, nil
}

// Close is a no-op for the environment backend.
func (m *EnvironmentManager) Close() error { return nil }

// AWSManager reads secrets from AWS Secrets Manager with a small
// in-process cache to avoid hammering the API on restart loops.
type AWSManager struct {
	client *secretsmanager.SecretsManager
	ttl    time.Duration
	log    logger.Logger

	mu    sync.RWMutex
	cache map[string]cachedSecret
}

type cachedSecret struct {
	value     string
	expiresAt time.Time
}

func newAWSManager(cfg Config, log logger.Logger) (*AWSManager, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(cfg.AWSRegion)})
	if err != nil {
		return nil, fmt.Errorf("failed to create aws session: %w", err)
	}

	log.Info("aws secrets manager initialized", "region", cfg.AWSRegion, "cache_ttl", cfg.CacheDuration.String())
	return &AWSManager{
		client: secretsmanager.New(sess),
		ttl:    cfg.CacheDuration,
		log:    log,
		cache:  make(map[string]cachedSecret),
	}, nil
}

// GetSecret fetches one secret, serving from cache while fresh.
func (m *AWSManager) GetSecret(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	cached, ok := m.cache[key]
	m.mu.RUnlock()
	if ok && time.Now().Before(cached.expiresAt) {
		return cached.value, nil
	}

	result, err := m.client.GetSecretValueWithContext(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get secret %s: %w", key, err)
	}
	if result.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", key)
	}

	value := *result.SecretString
	m.mu.Lock()
	m.cache[key] = cachedSecret{value: value, expiresAt: time.Now().Add(m.ttl)}
	m.mu.Unlock()

	m.log.Debug("loaded secret from aws secrets manager", "key", key)
	return value, nil
}

// Close releases nothing; AWS SDK sessions need no explicit cleanup.
func (m *AWSManager) Close() error { return nil }
