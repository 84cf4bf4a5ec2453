package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesEnvironmentOverDefaults(t *testing.T) {
	t.Setenv("PB_DATABASE_DSN", "host=localhost dbname=projectbuddy")
	t.Setenv("PB_JWT_SECRET", "secret")
	t.Setenv("PB_JWT_TTL", "2h")
	t.Setenv("PB_SERVER_PORT", "8080")
	t.Setenv("PB_RATELIMIT_AUTH_PER_MINUTE", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "host=localhost dbname=projectbuddy", cfg.Database.DSN)
	assert.Equal(t, "secret", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 5, cfg.RateLimit.AuthPerMinute)
	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, 10*time.Second, cfg.Webhook.Timeout)
}

func TestLoadRequiresSecretAndDSN(t *testing.T) {
	t.Setenv("PB_DATABASE_DSN", "host=localhost")
	t.Setenv("PB_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret")
}

func TestEnvToKey(t *testing.T) {
	assert.Equal(t, "server.allowed_origins", envToKey("PB_SERVER_ALLOWED_ORIGINS"))
	assert.Equal(t, "jwt.secret", envToKey("PB_JWT_SECRET"))
	assert.Equal(t, "environment", envToKey("PB_ENVIRONMENT"))
}

func TestOrigins(t *testing.T) {
	cfg := &Config{Server: ServerConfig{AllowedOrigins: " http://a.test ,, http://b.test"}}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Origins())
}
