package domain

import (
	"time"

	"github.com/google/uuid"
)

// UnknownUserReference is recorded when a login fails before the identity is known.
const UnknownUserReference = "unknown"

// LoginEvent is an append-only audit record of a login attempt.
type LoginEvent struct {
	ID            uuid.UUID    `json:"id" db:"id"`
	UserReference string       `json:"user_reference" db:"user_reference"`
	Provider      AuthProvider `json:"provider" db:"provider"`
	Success       bool         `json:"success" db:"success"`
	IPAddress     string       `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent     string       `json:"user_agent,omitempty" db:"user_agent"`
	OccurredAt    time.Time    `json:"occurred_at" db:"occurred_at"`
}
