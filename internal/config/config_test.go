package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, 8002, cfg.Port)
	assert.Equal(t, "HS256", cfg.JWTAlgorithm)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiration())
	assert.Equal(t, 10*time.Second, cfg.OutboundTimeout)
	assert.Equal(t, "http://localhost:8080", cfg.Frontend())
	assert.Equal(t, "/auth/success", cfg.FrontendSuccessPath)
	assert.Equal(t, "/auth/callback", cfg.FrontendErrorPath)
	assert.Equal(t, "http://localhost:8002/auth/google/callback", cfg.Google.RedirectURI)
	assert.Equal(t, "http://localhost:8002/auth/github/callback", cfg.GitHub.RedirectURI)
	assert.Equal(t, []string{"http://localhost:8080"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.Google.Configured())
}

func TestParseProviderPrefixes(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "g-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "g-secret")
	t.Setenv("GITHUB_CLIENT_ID", "gh-id")
	t.Setenv("GITHUB_REDIRECT_URI", "https://api.example.com/gh/cb")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.True(t, cfg.Google.Configured())
	assert.Equal(t, "g-id", cfg.Google.ClientID)
	assert.False(t, cfg.GitHub.Configured())
	assert.Equal(t, "https://api.example.com/gh/cb", cfg.GitHub.RedirectURI)
}

func TestFrontendBaseURLWinsOverFrontendURL(t *testing.T) {
	t.Setenv("FRONTEND_URL", "http://old.example.com")
	t.Setenv("FRONTEND_BASE_URL", "https://app.example.com/")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "https://app.example.com", cfg.Frontend())
}

func TestParseRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "non numeric port", key: "PORT", value: "http"},
		{name: "port out of range", key: "PORT", value: "70000"},
		{name: "zero expiration", key: "JWT_EXPIRATION_HOURS", value: "0"},
		{name: "bad timeout", key: "OUTBOUND_TIMEOUT", value: "soon"},
		{name: "unknown log format", key: "LOG_FORMAT", value: "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Parse()
			assert.Error(t, err)
		})
	}
}
