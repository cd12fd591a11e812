package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/sumire/socialauth/internal/domain"
)

// LoginEventRepository appends and reads the login audit trail.
type LoginEventRepository struct {
	db *DB
}

// NewLoginEventRepository creates a new LoginEventRepository.
func NewLoginEventRepository(db *DB) *LoginEventRepository {
	return &LoginEventRepository{db: db}
}

// Insert appends one login event. A zero ID is replaced with a new one.
func (r *LoginEventRepository) Insert(ctx context.Context, event domain.LoginEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		`INSERT INTO login_events (id, user_reference, provider, success, ip_address, user_agent, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		event.ID, event.UserReference, event.Provider, event.Success,
		event.IPAddress, event.UserAgent, event.OccurredAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert login event: %w", err)
	}
	return nil
}

// ListByUser returns up to limit events for a user, newest first.
func (r *LoginEventRepository) ListByUser(ctx context.Context, provider domain.AuthProvider, userReference string, limit int) ([]domain.LoginEvent, error) {
	events := []domain.LoginEvent{}
	err := r.db.SelectContext(ctx, &events, r.db.Rebind(
		`SELECT id, user_reference, provider, success, ip_address, user_agent, occurred_at
		 FROM login_events
		 WHERE provider = ? AND user_reference = ?
		 ORDER BY occurred_at DESC
		 LIMIT ?`),
		provider, userReference, limit)
	if err != nil {
		return nil, fmt.Errorf("list login events for %s/%s: %w", provider, userReference, err)
	}
	for i := range events {
		events[i].OccurredAt = events[i].OccurredAt.UTC()
	}
	return events, nil
}
