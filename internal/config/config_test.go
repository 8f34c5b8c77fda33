package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	// Make sure ambient environment doesn't bleed into the assertions.
	for _, key := range []string{"PORT", "APP_ENV", "JWT_EXPIRE", "JWT_COOKIE_EXPIRE",
		"FILE_UPLOAD_PATH", "MAX_FILE_UPLOAD", "RATE_LIMIT", "RATE_WINDOW"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.Production())
	assert.Equal(t, "720h", cfg.JWTExpire)
	assert.Equal(t, 30, cfg.JWTCookieExpire)
	assert.Equal(t, int64(1000000), cfg.MaxFileUpload)
	assert.Equal(t, 100, cfg.RateLimit)
	assert.Equal(t, 10*time.Minute, cfg.RateWindow)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("APP_ENV", "production")
	t.Setenv("MAX_FILE_UPLOAD", "2000000")
	t.Setenv("RATE_WINDOW", "1m")
	t.Setenv("JWT_COOKIE_EXPIRE", "7")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.Production())
	assert.Equal(t, int64(2000000), cfg.MaxFileUpload)
	assert.Equal(t, time.Minute, cfg.RateWindow)
	assert.Equal(t, 7, cfg.JWTCookieExpire)
}

func TestLoadBadNumbersFallBack(t *testing.T) {
	t.Setenv("MAX_FILE_UPLOAD", "lots")
	t.Setenv("RATE_WINDOW", "soon")
	t.Setenv("JWT_COOKIE_EXPIRE", "never")

	cfg := Load()

	assert.Equal(t, int64(1000000), cfg.MaxFileUpload)
	assert.Equal(t, 10*time.Minute, cfg.RateWindow)
	assert.Equal(t, 30, cfg.JWTCookieExpire)
}
