// Package credentials loads the service-account identity used to talk to
// Google Sheets.
package credentials

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/parisxmas/intake-relay/internal/config"
)

const SpreadsheetsScope = "https://www.googleapis.com/auth/spreadsheets"

// Credential is immutable after Load and shared read-only by all requests.
type Credential struct {
	ClientEmail  string
	PrivateKey   []byte
	PrivateKeyID string
	Scopes       []string
}

// Usable reports whether both identity and key are present.
func (c Credential) Usable() bool {
	return c.ClientEmail != "" && len(c.PrivateKey) > 0
}

// ConfigError reports a missing or malformed configuration value.
type ConfigError struct {
	Var string
	Msg string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Var, e.Msg)
}

type serviceAccountFile struct {
	Type         string `json:"type"`
	ClientEmail  string `json:"client_email"`
	PrivateKey   string `json:"private_key"`
	PrivateKeyID string `json:"private_key_id"`
}

// Load builds the Credential from GOOGLE_SERVICE_ACCOUNT_JSON, or from the
// GOOGLE_CLIENT_EMAIL / GOOGLE_PRIVATE_KEY pair when the JSON is absent.
// On failure it returns a placeholder Credential without key material and a
// *ConfigError; callers log it and keep serving.
func Load(cfg *config.Config) (Credential, error) {
	placeholder := Credential{Scopes: []string{SpreadsheetsScope}}

	var (
		email, key, keyID string
		source            string
	)
	switch {
	case cfg.ServiceAccountJSON != "":
		source = "GOOGLE_SERVICE_ACCOUNT_JSON"
		var f serviceAccountFile
		if err := json.Unmarshal([]byte(cfg.ServiceAccountJSON), &f); err != nil {
			return placeholder, &ConfigError{Var: source, Msg: "invalid JSON: " + err.Error()}
		}
		email, key, keyID = f.ClientEmail, f.PrivateKey, f.PrivateKeyID
	case cfg.ClientEmail != "" || cfg.PrivateKey != "":
		source = "GOOGLE_CLIENT_EMAIL/GOOGLE_PRIVATE_KEY"
		email, key = cfg.ClientEmail, cfg.PrivateKey
	default:
		return placeholder, &ConfigError{
			Var: "GOOGLE_SERVICE_ACCOUNT_JSON",
			Msg: "not set (nor GOOGLE_CLIENT_EMAIL/GOOGLE_PRIVATE_KEY)",
		}
	}

	email = strings.TrimSpace(email)
	placeholder.ClientEmail = email
	if email == "" {
		return placeholder, &ConfigError{Var: source, Msg: "missing client email"}
	}

	pemKey := NormalizeKey(key)
	if pemKey == "" {
		return placeholder, &ConfigError{Var: source, Msg: "missing private key"}
	}
	if _, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(pemKey)); err != nil {
		return placeholder, &ConfigError{Var: source, Msg: "unusable private key: " + err.Error()}
	}

	return Credential{
		ClientEmail:  email,
		PrivateKey:   []byte(pemKey),
		PrivateKeyID: strings.TrimSpace(keyID),
		Scopes:       []string{SpreadsheetsScope},
	}, nil
}

// NormalizeKey decodes literal "\n" sequences and strips surrounding quotes
// that env files commonly leave around PEM blocks.
func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	key = strings.Trim(key, `"`)
	key = strings.ReplaceAll(key, `\r\n`, "\n")
	key = strings.ReplaceAll(key, `\n`, "\n")
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	return key + "\n"
}
