package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("SECRET_KEY", "")
	t.Setenv("ADMIN_EMAIL", "")
	t.Setenv("ADMIN_PASSWORD", "")
	t.Setenv("REDIS_DB", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev-secret-key", cfg.Session.Secret)
	assert.Equal(t, DefaultAdminEmail, cfg.Admin.Email)
	assert.True(t, cfg.Admin.UsesDefaults())
	assert.Equal(t, "Admin", cfg.Admin.Name)
}

func TestLoadSessionSecretFallsBackToSecretKey(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("SECRET_KEY", "flask-era-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "flask-era-secret", cfg.Session.Secret)
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}

func TestInvalidIntegersFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "")
	t.Setenv("AUTH_BCRYPT_COST", "twelve")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
}

func TestDurations(t *testing.T) {
	assert.Equal(t, 30*time.Second, AppConfig{RequestTimeoutSeconds: 30}.RequestTimeout())
	assert.Zero(t, AppConfig{}.RequestTimeout())
	assert.Equal(t, 12*time.Hour, SessionConfig{}.TTL())
	assert.Equal(t, 5*time.Minute, SessionConfig{TTLMinutes: 5}.TTL())
}
