package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"bearer", "session"}, cfg.AuthTransports)
	assert.False(t, cfg.AllowAdminSignup)
	assert.False(t, cfg.AllowSendGodCredentials)
	assert.False(t, cfg.PreserveWeekPayments)
	assert.Equal(t, "local", cfg.StorageType)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiration())
	assert.Equal(t, 5*time.Minute, cfg.DBConnMaxLifetime)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AUTH_TRANSPORTS", " Bearer ")
	t.Setenv("ALLOW_ADMIN_SIGNUP", "true")
	t.Setenv("CAMPAIGN_PRESERVE_WEEK_PAYMENTS", "true")
	t.Setenv("GOD_USER_EMAIL", " Boss@Example.com ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"bearer"}, cfg.AuthTransports)
	assert.True(t, cfg.UsesTransport("bearer"))
	assert.False(t, cfg.UsesTransport("session"))
	assert.True(t, cfg.AllowAdminSignup)
	assert.True(t, cfg.PreserveWeekPayments)
	assert.Equal(t, "boss@example.com", cfg.GodUserEmail)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Environment:        "production",
			JWTSecret:          "a-real-secret",
			JWTExpirationHours: 24,
			StorageType:        "local",
			AuthTransports:     []string{"bearer"},
		}
	}

	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.JWTSecret = defaultJWTSecret
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")

	cfg = valid()
	cfg.StorageType = "s3"
	assert.ErrorContains(t, cfg.Validate(), "S3_BUCKET")

	cfg = valid()
	cfg.StorageType = "ftp"
	assert.ErrorContains(t, cfg.Validate(), "STORAGE_TYPE")

	cfg = valid()
	cfg.AuthTransports = []string{"session"}
	assert.ErrorContains(t, cfg.Validate(), "REDIS_URL")

	cfg = valid()
	cfg.AuthTransports = []string{"carrier-pigeon"}
	assert.ErrorContains(t, cfg.Validate(), "unknown auth transport")

	cfg = valid()
	cfg.AllowSendGodCredentials = true
	assert.ErrorContains(t, cfg.Validate(), "SENDGRID_API_KEY")
	cfg.SendGridAPIKey = "SG.key"
	assert.NoError(t, cfg.Validate())
}

func TestSealingKey(t *testing.T) {
	cfg := &Config{JWTSecret: "jwt"}
	assert.Equal(t, "jwt", cfg.SealingKey())

	cfg.CredentialsKey = "dedicated"
	assert.Equal(t, "dedicated", cfg.SealingKey())
}
