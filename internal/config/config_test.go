package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setEnvs is a helper that sets multiple env vars for the test's lifetime.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

// The key material only needs to be non-empty for Load; parsing happens later
// in the signer.
const (
	testPrivateKey = "dGVzdC1wcml2YXRlLWtleQ=="
	testPublicKey  = "dGVzdC1wdWJsaWMta2V5"
)

func TestLoad_Defaults(t *testing.T) {
	setEnvs(t, map[string]string{
		"PRIVATE_KEY": testPrivateKey,
		"PUBLIC_KEY":  testPublicKey,
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8004, cfg.HTTPPort)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenExpiry)
	assert.Equal(t, 168*time.Hour, cfg.RefreshTokenExpiry)
	assert.Equal(t, "auth-service", cfg.TokenIssuer)
	assert.False(t, cfg.SecureCookies)
}

func TestLoad_MissingKeys(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "development",
		"PRIVATE_KEY": "",
		"PUBLIC_KEY":  "",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PRIVATE_KEY and PUBLIC_KEY must be set")
}

func TestLoad_MissingPublicKeyOnly(t *testing.T) {
	setEnvs(t, map[string]string{
		"PRIVATE_KEY": testPrivateKey,
		"PUBLIC_KEY":  "",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
}

func TestLoad_InvalidPort(t *testing.T) {
	setEnvs(t, map[string]string{
		"PRIVATE_KEY":    testPrivateKey,
		"PUBLIC_KEY":     testPublicKey,
		"AUTH_HTTP_PORT": "70000",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_InvalidExpiry(t *testing.T) {
	setEnvs(t, map[string]string{
		"PRIVATE_KEY":         testPrivateKey,
		"PUBLIC_KEY":          testPublicKey,
		"ACCESS_TOKEN_EXPIRY": "-5m",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid access token expiry")
}

func TestLoad_PostgresOverrides(t *testing.T) {
	setEnvs(t, map[string]string{
		"PRIVATE_KEY":       testPrivateKey,
		"PUBLIC_KEY":        testPublicKey,
		"POSTGRES_HOST":     "db.internal",
		"POSTGRES_PORT":     "5433",
		"POSTGRES_USER":     "svc",
		"POSTGRES_PASSWORD": "hunter2hunter2",
		"AUTH_DB_NAME":      "sessions",
		"POSTGRES_SSL_MODE": "require",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.PostgresHost)
	assert.Equal(t, 5433, cfg.PostgresPort)
	assert.Equal(t, "sessions", cfg.PostgresDB)
	assert.Equal(t, "require", cfg.PostgresSSL)
}

func TestLoad_KafkaBrokersList(t *testing.T) {
	setEnvs(t, map[string]string{
		"PRIVATE_KEY":   testPrivateKey,
		"PUBLIC_KEY":    testPublicKey,
		"KAFKA_BROKERS": "broker1:9092,broker2:9092",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
}
