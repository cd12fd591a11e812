// Package token issues and verifies stateless session tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sumire/socialauth/internal/domain"
)

const (
	// DefaultTTL is used when neither the caller nor the configuration sets a lifetime.
	DefaultTTL = 24 * time.Hour

	issuer = "socialauth"
)

// Claims is the JWT payload of a session token.
type Claims struct {
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Picture  *string `json:"picture,omitempty"`
	Provider string  `json:"provider"`
	jwt.RegisteredClaims
}

// Codec signs session tokens with a symmetric secret.
type Codec struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// NewCodec creates a Codec. An empty secret is accepted so the process can
// start, but Issue and Verify then fail with domain.ErrConfiguration.
func NewCodec(secret, algorithm string, ttl time.Duration, opts ...Option) (*Codec, error) {
	method, err := signingMethod(algorithm)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c := &Codec{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func signingMethod(algorithm string) (jwt.SigningMethod, error) {
	switch algorithm {
	case "", "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("%w: unsupported JWT algorithm %q", domain.ErrConfiguration, algorithm)
	}
}

// Configured reports whether a signing secret is present.
func (c *Codec) Configured() bool {
	return len(c.secret) > 0
}

// Issue signs a session token for identity. A non-positive ttl uses the codec default.
func (c *Codec) Issue(identity domain.ProviderIdentity, ttl time.Duration) (string, domain.SessionToken, error) {
	if !c.Configured() {
		return "", domain.SessionToken{}, fmt.Errorf("%w: JWT_SECRET_KEY is not set", domain.ErrConfiguration)
	}
	if ttl <= 0 {
		ttl = c.ttl
	}

	// exp and iat are whole seconds on the wire; the returned times must match them.
	issuedAt := c.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(ttl).Truncate(time.Second)

	claims := Claims{
		Email:    identity.Email,
		Name:     identity.DisplayName,
		Picture:  identity.AvatarURL,
		Provider: string(identity.Provider),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ProviderUserID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", domain.SessionToken{}, fmt.Errorf("sign session token: %w", err)
	}

	return signed, domain.SessionToken{
		SubjectID:   identity.ProviderUserID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		AvatarURL:   identity.AvatarURL,
		Provider:    identity.Provider,
		IssuedAt:    issuedAt,
		ExpiresAt:   expiresAt,
	}, nil
}

// Verify checks the signature, then expiry, and returns the session fields.
func (c *Codec) Verify(tokenString string) (*domain.SessionToken, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("%w: JWT_SECRET_KEY is not set", domain.ErrConfiguration)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	var claims Claims
	token, err := parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" || claims.Email == "" {
		return nil, domain.ErrInvalidToken
	}

	session := &domain.SessionToken{
		SubjectID:   claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
		AvatarURL:   claims.Picture,
		Provider:    domain.AuthProvider(claims.Provider),
		ExpiresAt:   claims.ExpiresAt.Time.UTC(),
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	return session, nil
}
