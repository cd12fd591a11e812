package domain

import "time"

// SessionToken is the decoded content of a signed session token.
type SessionToken struct {
	SubjectID   string       `json:"id"`
	Email       string       `json:"email"`
	DisplayName string       `json:"name"`
	AvatarURL   *string      `json:"picture,omitempty"`
	Provider    AuthProvider `json:"provider"`
	IssuedAt    time.Time    `json:"issued_at"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

// PersistResult reports whether a best-effort write reached the datastore.
type PersistResult struct {
	User   *StoredUser
	Reason string
}

// Persisted wraps a successfully written user.
func Persisted(user *StoredUser) PersistResult {
	return PersistResult{User: user}
}

// Skipped records why nothing was written.
func Skipped(reason string) PersistResult {
	return PersistResult{Reason: reason}
}

// Ok reports whether the user was written.
func (r PersistResult) Ok() bool {
	return r.User != nil
}
