package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumire/socialauth/internal/domain"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func testIdentity() domain.ProviderIdentity {
	avatar := "https://avatars.example.com/u/1"
	return domain.ProviderIdentity{
		ProviderUserID: "1",
		Email:          "a@b.com",
		DisplayName:    "A",
		AvatarURL:      &avatar,
		Provider:       domain.AuthProviderGitHub,
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	clock := newClock()
	codec, err := NewCodec("s3cret", "HS256", 0, WithClock(clock.Now))
	require.NoError(t, err)

	identity := testIdentity()
	signed, issued, err := codec.Issue(identity, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	assert.True(t, issued.ExpiresAt.Equal(issued.IssuedAt.Add(time.Hour)))

	session, err := codec.Verify(signed)
	require.NoError(t, err)

	assert.Equal(t, identity.ProviderUserID, session.SubjectID)
	assert.Equal(t, identity.Email, session.Email)
	assert.Equal(t, identity.DisplayName, session.DisplayName)
	assert.Equal(t, identity.Provider, session.Provider)
	require.NotNil(t, session.AvatarURL)
	assert.Equal(t, *identity.AvatarURL, *session.AvatarURL)
	assert.True(t, session.IssuedAt.Equal(issued.IssuedAt))
	assert.True(t, session.ExpiresAt.Equal(issued.ExpiresAt))
}

func TestVerifyExpiry(t *testing.T) {
	clock := newClock()
	codec, err := NewCodec("s3cret", "HS256", 0, WithClock(clock.Now))
	require.NoError(t, err)

	signed, _, err := codec.Issue(testIdentity(), time.Hour)
	require.NoError(t, err)

	clock.Advance(time.Hour - time.Second)
	_, err = codec.Verify(signed)
	require.NoError(t, err, "token must be valid before expires_at")

	clock.Advance(2 * time.Second)
	_, err = codec.Verify(signed)
	assert.ErrorIs(t, err, domain.ErrExpiredToken)
}

func TestIssueSubSecondTTLMatchesExpClaim(t *testing.T) {
	clock := newClock()
	codec, err := NewCodec("s3cret", "HS256", 0, WithClock(clock.Now))
	require.NoError(t, err)

	signed, issued, err := codec.Issue(testIdentity(), 1500*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, time.Second, issued.ExpiresAt.Sub(issued.IssuedAt))

	session, err := codec.Verify(signed)
	require.NoError(t, err)
	assert.True(t, session.ExpiresAt.Equal(issued.ExpiresAt))

	clock.Advance(1200 * time.Millisecond)
	_, err = codec.Verify(signed)
	assert.ErrorIs(t, err, domain.ErrExpiredToken, "expiry must not be later than the reported expires_at")
}

func TestIssueUsesDefaultTTL(t *testing.T) {
	clock := newClock()
	codec, err := NewCodec("s3cret", "HS512", 0, WithClock(clock.Now))
	require.NoError(t, err)

	_, issued, err := codec.Issue(testIdentity(), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, issued.ExpiresAt.Sub(issued.IssuedAt))

	configured, err := NewCodec("s3cret", "HS384", 2*time.Hour, WithClock(clock.Now))
	require.NoError(t, err)
	_, issued, err = configured.Issue(testIdentity(), -1)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, issued.ExpiresAt.Sub(issued.IssuedAt))
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	clock := newClock()
	issuerCodec, err := NewCodec("secret-one", "HS256", 0, WithClock(clock.Now))
	require.NoError(t, err)
	verifier, err := NewCodec("secret-two", "HS256", 0, WithClock(clock.Now))
	require.NoError(t, err)

	signed, _, err := issuerCodec.Issue(testIdentity(), time.Hour)
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	// An expired token with the wrong signature is still invalid, not expired.
	clock.Advance(2 * time.Hour)
	_, err = verifier.Verify(signed)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerifyRejectsMalformedTokens(t *testing.T) {
	codec, err := NewCodec("s3cret", "HS256", 0)
	require.NoError(t, err)

	signed, _, err := codec.Issue(testIdentity(), time.Hour)
	require.NoError(t, err)
	parts := strings.Split(signed, ".")
	require.Len(t, parts, 3)

	tests := map[string]string{
		"empty":             "",
		"garbage":           "not-a-token",
		"truncated":         parts[0] + "." + parts[1],
		"tampered payload":  parts[0] + "." + parts[1] + "x." + parts[2],
		"missing signature": parts[0] + "." + parts[1] + ".",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Verify(tok)
			assert.ErrorIs(t, err, domain.ErrInvalidToken)
		})
	}
}

func TestVerifyRejectsOtherAlgorithm(t *testing.T) {
	hs256, err := NewCodec("s3cret", "HS256", 0)
	require.NoError(t, err)
	hs512, err := NewCodec("s3cret", "HS512", 0)
	require.NoError(t, err)

	signed, _, err := hs512.Issue(testIdentity(), time.Hour)
	require.NoError(t, err)

	_, err = hs256.Verify(signed)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerifyRequiresSubjectAndEmail(t *testing.T) {
	codec, err := NewCodec("s3cret", "HS256", 0)
	require.NoError(t, err)

	claims := jwt.MapClaims{
		"name": "no subject",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = codec.Verify(signed)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerifyRequiresExpiry(t *testing.T) {
	codec, err := NewCodec("s3cret", "HS256", 0)
	require.NoError(t, err)

	claims := jwt.MapClaims{"sub": "1", "email": "a@b.com"}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = codec.Verify(signed)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestMissingSecretIsConfigurationError(t *testing.T) {
	codec, err := NewCodec("", "HS256", 0)
	require.NoError(t, err)
	assert.False(t, codec.Configured())

	_, _, err = codec.Issue(testIdentity(), time.Hour)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = codec.Verify("anything")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestNewCodecRejectsUnknownAlgorithm(t *testing.T) {
	_, err := NewCodec("s3cret", "RS256", 0)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
