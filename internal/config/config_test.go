package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, AuthLocal, cfg.AuthProvider)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.False(t, cfg.Production())
	assert.False(t, cfg.Kommo.Enabled())
	assert.Equal(t, DBPoolConfig{MaxOpen: 10, MaxIdle: 5, MaxLifetime: 5 * time.Minute}, cfg.DBPool)
}

func TestParseFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_PROVIDER", "firebase")
	t.Setenv("FIREBASE_API_KEY", "k")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://dsx.com.br,https://www.dsx.com.br")
	t.Setenv("WIZARD_SESSION_TTL", "30m")
	t.Setenv("KOMMO_BASE_URL", "https://dsx.kommo.com/api/v4")
	t.Setenv("KOMMO_API_TOKEN", "t")
	t.Setenv("KOMMO_PIPELINE_ID", "77")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.True(t, cfg.Production())
	assert.Equal(t, []string{"https://dsx.com.br", "https://www.dsx.com.br"}, cfg.CORSOrigins)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.True(t, cfg.Kommo.Enabled())
	assert.Equal(t, 77, cfg.Kommo.PipelineID)
}

func TestParseErrors(t *testing.T) {
	t.Run("Firebase without key", func(t *testing.T) {
		t.Setenv("AUTH_PROVIDER", "firebase")
		_, err := Parse()
		assert.ErrorContains(t, err, "FIREBASE_API_KEY")
	})

	t.Run("Unknown provider", func(t *testing.T) {
		t.Setenv("AUTH_PROVIDER", "ldap")
		_, err := Parse()
		assert.ErrorContains(t, err, "AUTH_PROVIDER")
	})

	t.Run("Bad duration", func(t *testing.T) {
		t.Setenv("WIZARD_SESSION_TTL", "amanhã")
		_, err := Parse()
		assert.ErrorContains(t, err, "parse env:")
	})
}
