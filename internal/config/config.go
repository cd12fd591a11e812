package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is built once at startup and treated as read-only afterwards.
type Config struct {
	Port          int    `env:"PORT" envDefault:"8002"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8002"`
	DatabaseURL   string `env:"DATABASE_URL"`

	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`

	Google ProviderConfig `envPrefix:"GOOGLE_"`
	GitHub ProviderConfig `envPrefix:"GITHUB_"`

	JWTSecret          string `env:"JWT_SECRET_KEY"`
	JWTAlgorithm       string `env:"JWT_ALGORITHM" envDefault:"HS256"`
	JWTExpirationHours int    `env:"JWT_EXPIRATION_HOURS" envDefault:"24"`

	FrontendBaseURL     string `env:"FRONTEND_BASE_URL"`
	FrontendURL         string `env:"FRONTEND_URL" envDefault:"http://localhost:8080"`
	FrontendSuccessPath string `env:"FRONTEND_SUCCESS_PATH" envDefault:"/auth/success"`
	FrontendErrorPath   string `env:"FRONTEND_ERROR_PATH" envDefault:"/auth/callback"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	OutboundTimeout time.Duration `env:"OUTBOUND_TIMEOUT" envDefault:"10s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// ProviderConfig holds the OAuth client registration for one provider.
type ProviderConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURI  string `env:"REDIRECT_URI"`
}

// Configured reports whether both client credentials are present.
func (p ProviderConfig) Configured() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

// Load reads an optional .env file, then parses the environment and validates it.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse reads configuration from the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.PublicBaseURL = strings.TrimRight(c.PublicBaseURL, "/")
	if c.Google.RedirectURI == "" {
		c.Google.RedirectURI = c.PublicBaseURL + "/auth/google/callback"
	}
	if c.GitHub.RedirectURI == "" {
		c.GitHub.RedirectURI = c.PublicBaseURL + "/auth/github/callback"
	}
	if len(c.CORSAllowedOrigins) == 0 {
		c.CORSAllowedOrigins = []string{c.Frontend()}
	}
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.JWTExpirationHours <= 0 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be positive, got %d", c.JWTExpirationHours)
	}
	if c.OutboundTimeout <= 0 {
		return fmt.Errorf("OUTBOUND_TIMEOUT must be positive, got %s", c.OutboundTimeout)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.LogFormat)
	}
	return nil
}

// Frontend returns the frontend base URL. FRONTEND_BASE_URL wins over FRONTEND_URL.
func (c Config) Frontend() string {
	if c.FrontendBaseURL != "" {
		return strings.TrimRight(c.FrontendBaseURL, "/")
	}
	return strings.TrimRight(c.FrontendURL, "/")
}

// JWTExpiration returns the default session token lifetime.
func (c Config) JWTExpiration() time.Duration {
	return time.Duration(c.JWTExpirationHours) * time.Hour
}
