package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuthProvider represents an OAuth provider.
type AuthProvider string

const (
	AuthProviderGoogle AuthProvider = "google"
	AuthProviderGitHub AuthProvider = "github"
)

// ParseAuthProvider maps a route parameter to a known provider.
func ParseAuthProvider(s string) (AuthProvider, bool) {
	switch AuthProvider(s) {
	case AuthProviderGoogle, AuthProviderGitHub:
		return AuthProvider(s), true
	}
	return "", false
}

// ProviderIdentity is the normalized profile returned by a provider adapter.
// It lives for a single request and is never persisted directly.
type ProviderIdentity struct {
	ProviderUserID string       `json:"id"`
	Email          string       `json:"email"`
	DisplayName    string       `json:"name"`
	AvatarURL      *string      `json:"picture,omitempty"`
	Provider       AuthProvider `json:"provider"`
}

// StoredUser is the persisted user record, one per (provider, provider_user_id).
type StoredUser struct {
	ID             uuid.UUID    `json:"id" db:"id"`
	Provider       AuthProvider `json:"provider" db:"provider"`
	ProviderUserID string       `json:"provider_user_id" db:"provider_user_id"`
	Email          string       `json:"email" db:"email"`
	DisplayName    string       `json:"display_name" db:"display_name"`
	AvatarURL      *string      `json:"avatar_url,omitempty" db:"avatar_url"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	LastLoginAt    time.Time    `json:"last_login_at" db:"last_login_at"`
	UpdatedAt      time.Time    `json:"updated_at" db:"updated_at"`
}
