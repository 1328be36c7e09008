package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr           string
	SpreadsheetID      string
	ServiceAccountJSON string
	ClientEmail        string
	PrivateKey         string
	SchemasPath        string
	StoreTimeout       time.Duration
	AllowedOrigins     []string
	LogLevel           string
	GelfAddr           string
	DebugAuthSecret    string
}

func Load() *Config {
	addr := getEnv("HTTP_ADDR", "")
	if addr == "" {
		addr = ":" + getEnv("PORT", "3001")
	}

	return &Config{
		HTTPAddr:           addr,
		SpreadsheetID:      firstEnv("GOOGLE_SHEETS_ID", "SHEET_ID"),
		ServiceAccountJSON: strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")),
		ClientEmail:        strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_EMAIL")),
		PrivateKey:         os.Getenv("GOOGLE_PRIVATE_KEY"),
		SchemasPath:        getEnv("SCHEMAS_PATH", ""),
		StoreTimeout:       getEnvDuration("STORE_TIMEOUT", 10*time.Second),
		AllowedOrigins:     parseList("ALLOWED_ORIGINS", []string{"*"}),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		GelfAddr:           getEnv("GELF_ADDR", ""),
		DebugAuthSecret:    getEnv("DEBUG_AUTH_SECRET", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// firstEnv returns the first non-empty value among keys.
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}
	if len(values) == 0 {
		return fallback
	}
	return values
}
