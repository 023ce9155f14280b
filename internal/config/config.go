// Package config loads and validates server configuration.
//
// CONFIGURATION SOURCE:
// Everything comes from environment variables — the server runs behind the
// same twelve-factor deployment as its front-end, so there is no config
// file to parse. Defaults cover local development; the auth variables have
// no defaults because there is nothing sensible to invent for them.
//
// VALIDATION:
// After loading we validate the struct with gookit/validate using the
// `validate` tags below. This turns a misconfigured deployment into one
// clear startup error instead of a confusing 500 at the first request.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gookit/validate"
)

// Config holds everything the server needs to start.
type Config struct {
	Port      int    `validate:"required|uint|min:1|max:65535"`
	DBPath    string `validate:"required"`
	StaticDir string `validate:"required"`
	// SwaggerDir holds the YAML fragments the docs assembler stitches into
	// the served API description.
	SwaggerDir string `validate:"required"`

	// Auth settings. Domain/ClientID/Audience/CallbackURL are handed to the
	// front-end verbatim via GET /auth/config; PublicKey is the PEM-encoded
	// RSA key tokens are verified against.
	AuthDomain      string `validate:"required"`
	AuthClientID    string `validate:"required"`
	AuthAudience    string `validate:"required"`
	AuthCallbackURL string `validate:"required|fullUrl"`
	AuthPublicKey   string `validate:"required"`

	MetricsEnabled bool
}

// Issuer returns the token issuer expected in the `iss` claim. Auth0 issues
// tokens with a trailing slash after the tenant domain.
func (c Config) Issuer() string {
	return "https://" + c.AuthDomain + "/"
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	cfg := Config{
		Port:       8080,
		DBPath:     "data/ecodriven.db",
		StaticDir:  "web/static",
		SwaggerDir: "swagger",

		AuthDomain:      os.Getenv("AUTH_DOMAIN"),
		AuthClientID:    os.Getenv("AUTH_CLIENT_ID"),
		AuthAudience:    os.Getenv("AUTH_AUDIENCE"),
		AuthCallbackURL: os.Getenv("AUTH_CALLBACK_URL"),
		AuthPublicKey:   os.Getenv("AUTH_PUBLIC_KEY"),

		MetricsEnabled: true,
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid PORT %q: %w", portStr, err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("STATIC_DIR"); v != "" {
		cfg.StaticDir = v
	}
	if v := os.Getenv("SWAGGER_DIR"); v != "" {
		cfg.SwaggerDir = v
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid METRICS_ENABLED %q: %w", v, err)
		}
		cfg.MetricsEnabled = enabled
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the struct's `validate` tags and returns the first
// failure as an error.
func (c Config) Validate() error {
	v := validate.Struct(c)
	if !v.Validate() {
		return fmt.Errorf("config: %s", v.Errors.One())
	}
	return nil
}
