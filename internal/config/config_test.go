package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HTTP_ADDR", "PORT", "GOOGLE_SHEETS_ID", "SHEET_ID", "GOOGLE_SERVICE_ACCOUNT_JSON",
		"GOOGLE_CLIENT_EMAIL", "GOOGLE_PRIVATE_KEY", "SCHEMAS_PATH", "STORE_TIMEOUT",
		"ALLOWED_ORIGINS", "LOG_LEVEL", "GELF_ADDR", "DEBUG_AUTH_SECRET",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.Equal(t, ":3001", cfg.HTTPAddr)
	assert.Equal(t, "", cfg.SpreadsheetID)
	assert.Equal(t, 10*time.Second, cfg.StoreTimeout)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.DebugAuthSecret)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("SHEET_ID", "legacy-id")
	t.Setenv("STORE_TIMEOUT", "3s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg := Load()
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, "legacy-id", cfg.SpreadsheetID)
	assert.Equal(t, 3*time.Second, cfg.StoreTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)

	t.Setenv("GOOGLE_SHEETS_ID", "primary-id")
	t.Setenv("HTTP_ADDR", "127.0.0.1:8081")
	cfg = Load()
	assert.Equal(t, "primary-id", cfg.SpreadsheetID)
	assert.Equal(t, "127.0.0.1:8081", cfg.HTTPAddr)
}

func TestGetEnvDuration_Invalid(t *testing.T) {
	t.Setenv("STORE_TIMEOUT", "soon")
	assert.Equal(t, 5*time.Second, getEnvDuration("STORE_TIMEOUT", 5*time.Second))

	t.Setenv("STORE_TIMEOUT", "-1s")
	assert.Equal(t, 5*time.Second, getEnvDuration("STORE_TIMEOUT", 5*time.Second))
}
