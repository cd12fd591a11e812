package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sumire/socialauth/internal/domain"
)

const userColumns = `id, provider, provider_user_id, email, display_name, avatar_url, created_at, last_login_at, updated_at`

// UserRepository handles user data access operations.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByProviderID retrieves a user by their OAuth provider and provider user id.
func (r *UserRepository) FindByProviderID(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.StoredUser, error) {
	var user domain.StoredUser
	err := r.db.GetContext(ctx, &user, r.db.Rebind(
		`SELECT `+userColumns+` FROM users WHERE provider = ? AND provider_user_id = ?`),
		provider, providerUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user by provider %s/%s: %w", provider, providerUserID, err)
	}
	normalizeUserTimes(&user)
	return &user, nil
}

// Upsert creates a user or refreshes an existing one keyed by provider and
// provider user id. created_at is only written on insert.
func (r *UserRepository) Upsert(ctx context.Context, identity domain.ProviderIdentity, at time.Time) (*domain.StoredUser, error) {
	at = at.UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("upsert user: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, tx.Rebind(
		`INSERT INTO users (id, provider, provider_user_id, email, display_name, avatar_url, created_at, last_login_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (provider, provider_user_id)
		 DO UPDATE SET email = excluded.email,
		               display_name = excluded.display_name,
		               avatar_url = excluded.avatar_url,
		               last_login_at = excluded.last_login_at,
		               updated_at = excluded.updated_at`),
		uuid.New(), identity.Provider, identity.ProviderUserID, identity.Email,
		identity.DisplayName, identity.AvatarURL, at, at, at,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	var user domain.StoredUser
	err = tx.GetContext(ctx, &user, tx.Rebind(
		`SELECT `+userColumns+` FROM users WHERE provider = ? AND provider_user_id = ?`),
		identity.Provider, identity.ProviderUserID)
	if err != nil {
		return nil, fmt.Errorf("upsert user: reload: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("upsert user: commit: %w", err)
	}
	normalizeUserTimes(&user)
	return &user, nil
}

// Ping checks that the database is reachable.
func (r *UserRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func normalizeUserTimes(u *domain.StoredUser) {
	u.CreatedAt = u.CreatedAt.UTC()
	u.LastLoginAt = u.LastLoginAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
}
