package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	for _, key := range []string{"PORT", "DB_PORT", "ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL",
		"QUOTE_TIMEOUT", "SLOW_REQUEST_THRESHOLD", "CORS_ALLOWED_ORIGINS", "REQUIRE_AUTH"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, 24*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 10*time.Second, cfg.QuoteTimeout)
	assert.Equal(t, time.Second, cfg.SlowRequestThreshold)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.RequireAuth)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REQUIRE_AUTH", "true")
	t.Setenv("QUOTE_TIMEOUT", "2s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.RequireAuth)
	assert.Equal(t, 2*time.Second, cfg.QuoteTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("QUOTE_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 10*time.Second, cfg.QuoteTimeout)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.EqualError(t, err, "JWT_SECRET is required")
}

func TestValidate(t *testing.T) {
	valid := Config{
		JWTSecret:       "s",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: time.Hour,
		QuoteTimeout:    time.Second,
		QuoteRateLimit:  1,
	}
	require.NoError(t, valid.Validate())

	noTTL := valid
	noTTL.AccessTokenTTL = 0
	assert.Error(t, noTTL.Validate())

	noLimit := valid
	noLimit.QuoteRateLimit = 0
	assert.Error(t, noLimit.Validate())
}

func TestDSN(t *testing.T) {
	cfg := Config{
		DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n",
		DBPort: "5433", DBSSLMode: "require", DBTimeZone: "UTC",
	}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5433 sslmode=require TimeZone=UTC", cfg.DSN())
}
