package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ACCESS_TOKEN_TTL", "")
	t.Setenv("RUN_MIGRATIONS", "")
	t.Setenv("CORS_ALLOWED_ORIGIN", "*")

	cfg := Load()

	assert.Equal(t, "", cfg.Port)
	assert.Equal(t, 60*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 10*time.Minute, cfg.CategoryCacheTTL)
	assert.True(t, cfg.RunMigrations)
	assert.Equal(t, "*", cfg.CORSAllowedOrigin)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_CONNECTION_STRING", "postgres://u:p@localhost:5432/accounting")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("RUN_MIGRATIONS", "false")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "postgres://u:p@localhost:5432/accounting", cfg.DBConnectionString)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.False(t, cfg.RunMigrations)
	require.NoError(t, cfg.Validate())
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL", "forever")

	cfg := Load()

	assert.Equal(t, 60*time.Minute, cfg.AccessTokenTTL)
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := &Config{
		Port:             "abc",
		AccessTokenTTL:   time.Minute,
		CategoryCacheTTL: time.Minute,
		LogFormat:        "xml",
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port 'abc'")
	assert.Contains(t, err.Error(), "missing DB_CONNECTION_STRING")
	assert.Contains(t, err.Error(), "missing JWT_SECRET")
	assert.Contains(t, err.Error(), "invalid LOG_FORMAT 'xml'")
}

func TestValidate_PortOutOfRange(t *testing.T) {
	cfg := &Config{
		Port:               "70000",
		DBConnectionString: "postgres://localhost/db",
		JWTSecret:          "x",
		AccessTokenTTL:     time.Minute,
		CategoryCacheTTL:   time.Minute,
		LogFormat:          "json",
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be between 1 and 65535")
}
