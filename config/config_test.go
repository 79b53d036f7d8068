package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("DEFAULT_ALTITUDE_METERS", "")
	t.Setenv("GRAPHQL_TIMEOUT", "")
	t.Setenv("SMTP_HOST", "")
	t.Setenv("NOTIFY_EMAIL", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "memory", cfg.StorageDriver)
	assert.Nil(t, cfg.DefaultAltitude)
	assert.Equal(t, 30*time.Second, cfg.GraphQLTimeout)
	assert.Equal(t, "foot-walking", cfg.RoutingProfile)
	assert.False(t, cfg.NotificationsEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "MySQL")
	t.Setenv("DEFAULT_ALTITUDE_METERS", "120.5")
	t.Setenv("GRAPHQL_TIMEOUT", "5s")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("SMTP_HOST", "smtp.test")
	t.Setenv("NOTIFY_EMAIL", "ops@trailcraft.test")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "mysql", cfg.StorageDriver)
	require.NotNil(t, cfg.DefaultAltitude)
	assert.Equal(t, 120.5, *cfg.DefaultAltitude)
	assert.Equal(t, 5*time.Second, cfg.GraphQLTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.True(t, cfg.NotificationsEnabled())
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MINUTE", "lots")
	t.Setenv("DEFAULT_ALTITUDE_METERS", "high")

	cfg := Load()

	assert.Equal(t, 120, cfg.RateLimit)
	assert.Nil(t, cfg.DefaultAltitude)
}

func TestLoadGinMode(t *testing.T) {
	t.Setenv("GIN_MODE", "Release")
	assert.Equal(t, "release", Load().GinMode)

	t.Setenv("GIN_MODE", "production")
	assert.Equal(t, "debug", Load().GinMode)
}

func TestNotificationsNeedValidRecipient(t *testing.T) {
	cfg := &Config{SMTPHost: "smtp.test", NotifyEmail: "not-an-email"}
	assert.False(t, cfg.NotificationsEnabled())

	cfg.NotifyEmail = "ops@trailcraft.test"
	assert.True(t, cfg.NotificationsEnabled())
}
