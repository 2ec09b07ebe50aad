package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, 8*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 3306, cfg.DB.Port)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.Equal(t, "memory://", cfg.RedisURL)
	assert.Equal(t, "10-M", cfg.RateLimitRegister)
	assert.Equal(t, "20-M", cfg.RateLimitApprove)
	assert.False(t, cfg.SMS.Enabled())
	assert.False(t, cfg.S3.Enabled())
}

func TestFromViperEnvironment(t *testing.T) {
	t.Setenv("MYSQL_HOST", "db.internal")
	t.Setenv("MYSQL_PORT", "13306")
	t.Setenv("MYSQL_SSL_MODE", "required")
	t.Setenv("MAIL_USERNAME", "events@example.com")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("SECRET_KEY", "s3cret")

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()

	cfg, err := FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 13306, cfg.DB.Port)
	assert.Equal(t, "REQUIRED", cfg.DB.SSLMode)
	assert.Equal(t, "events@example.com", cfg.Mail.Sender, "sender falls back to username")
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.NoError(t, cfg.Validate())
}

func TestFromViperBadTTL(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("session_ttl", "forever")

	_, err := FromViper(v)
	assert.ErrorContains(t, err, "SESSION_TTL")
}

func TestValidate(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	cfg, err := FromViper(v)
	require.NoError(t, err)

	assert.ErrorContains(t, cfg.Validate(), "SECRET_KEY")

	cfg.SecretKey = "x"
	assert.NoError(t, cfg.Validate())
}
