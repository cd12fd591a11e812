package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sumire/socialauth/internal/domain"
)

// UserRepository defines the user data access consumed by UserStore.
type UserRepository interface {
	Upsert(ctx context.Context, identity domain.ProviderIdentity, at time.Time) (*domain.StoredUser, error)
	FindByProviderID(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.StoredUser, error)
	Ping(ctx context.Context) error
}

// LoginEventRepository defines the audit trail access consumed by UserStore.
type LoginEventRepository interface {
	Insert(ctx context.Context, event domain.LoginEvent) error
	ListByUser(ctx context.Context, provider domain.AuthProvider, userReference string, limit int) ([]domain.LoginEvent, error)
}

// UserStore is a best-effort gateway in front of the datastore. Writes never
// fail the caller: errors are logged and reported through PersistResult.
type UserStore struct {
	users  UserRepository
	events LoginEventRepository
	log    zerolog.Logger
	now    func() time.Time
}

// NewUserStore creates a UserStore. Nil repositories mean no datastore is configured.
func NewUserStore(users UserRepository, events LoginEventRepository, log zerolog.Logger) *UserStore {
	return &UserStore{
		users:  users,
		events: events,
		log:    log.With().Str("component", "userstore").Logger(),
		now:    time.Now,
	}
}

// Available reports whether a datastore is configured.
func (s *UserStore) Available() bool {
	return s != nil && s.users != nil
}

// UpsertUser inserts or refreshes the user record for identity.
func (s *UserStore) UpsertUser(ctx context.Context, identity domain.ProviderIdentity) domain.PersistResult {
	if !s.Available() {
		return domain.Skipped(domain.ErrStoreUnavailable.Error())
	}

	user, err := s.users.Upsert(ctx, identity, s.now())
	if err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		s.log.Error().Err(err).
			Str("provider", string(identity.Provider)).
			Str("provider_user_id", identity.ProviderUserID).
			Msg("user upsert failed")
		return domain.Skipped(err.Error())
	}
	return domain.Persisted(user)
}

// RecordLoginEvent appends event to the audit trail. Failures are only logged.
func (s *UserStore) RecordLoginEvent(ctx context.Context, event domain.LoginEvent) {
	if s == nil || s.events == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}
	if err := s.events.Insert(ctx, event); err != nil {
		s.log.Warn().Err(fmt.Errorf("%w: %w", domain.ErrPersistence, err)).
			Str("provider", string(event.Provider)).
			Str("user_reference", event.UserReference).
			Bool("success", event.Success).
			Msg("login event not recorded")
	}
}

// GetUser returns the stored user for a provider account.
func (s *UserStore) GetUser(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.StoredUser, error) {
	if !s.Available() {
		return nil, domain.ErrStoreUnavailable
	}
	return s.users.FindByProviderID(ctx, provider, providerUserID)
}

// LoginHistory returns up to limit login events for a user, newest first.
func (s *UserStore) LoginHistory(ctx context.Context, provider domain.AuthProvider, userReference string, limit int) ([]domain.LoginEvent, error) {
	if s == nil || s.events == nil {
		return nil, domain.ErrStoreUnavailable
	}
	return s.events.ListByUser(ctx, provider, userReference, limit)
}

// Ping checks datastore connectivity.
func (s *UserStore) Ping(ctx context.Context) error {
	if !s.Available() {
		return domain.ErrStoreUnavailable
	}
	return s.users.Ping(ctx)
}
