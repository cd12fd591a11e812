package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/sumire/socialauth/internal/domain"
	"github.com/sumire/socialauth/internal/provider"
	"github.com/sumire/socialauth/internal/token"
)

// Providers resolves provider adapters by name.
type Providers interface {
	Get(name string) (provider.Provider, error)
	Configured() []string
}

// LoginConfig holds the frontend redirect targets and the session lifetime.
type LoginConfig struct {
	FrontendURL string
	SuccessPath string
	ErrorPath   string
	TokenTTL    time.Duration
}

// CallbackRequest carries the query parameters and client details of a provider callback.
type CallbackRequest struct {
	Provider  string
	Code      string
	Error     string
	IPAddress string
	UserAgent string
}

// VerifyResult is the outcome of a token verification.
type VerifyResult struct {
	Valid bool                 `json:"valid"`
	User  *domain.SessionToken `json:"user,omitempty"`
	Error string               `json:"error,omitempty"`
}

// LoginService runs the login flow: provider adapter, then user store, then token codec.
type LoginService struct {
	providers Providers
	codec     *token.Codec
	store     *UserStore
	cfg       LoginConfig
	log       zerolog.Logger
}

// NewLoginService creates a new LoginService.
func NewLoginService(providers Providers, codec *token.Codec, store *UserStore, cfg LoginConfig, log zerolog.Logger) *LoginService {
	return &LoginService{
		providers: providers,
		codec:     codec,
		store:     store,
		cfg:       cfg,
		log:       log.With().Str("component", "login").Logger(),
	}
}

// ConfiguredProviders returns the names of providers ready to log users in.
func (s *LoginService) ConfiguredProviders() []string {
	return s.providers.Configured()
}

// Initiate returns the provider authorization URL the browser should visit.
func (s *LoginService) Initiate(name string) (string, error) {
	p, err := s.providers.Get(name)
	if err != nil {
		return "", err
	}
	if !p.Configured() {
		return "", fmt.Errorf("%w: %s client credentials are not set", domain.ErrConfiguration, name)
	}
	if !s.codec.Configured() {
		return "", fmt.Errorf("%w: JWT_SECRET_KEY is not set", domain.ErrConfiguration)
	}
	return p.AuthorizationURL()
}

// Callback completes a login attempt and returns the frontend URL to redirect
// to. It never fails: every error becomes an error code in the redirect.
func (s *LoginService) Callback(ctx context.Context, req CallbackRequest) string {
	log := s.log.With().Str("provider", req.Provider).Logger()

	if req.Error != "" {
		log.Warn().Str("provider_error", req.Error).Msg("provider reported an error")
		return s.errorRedirect(fmt.Errorf("%w: %s", domain.ErrProviderReported, req.Error))
	}
	if req.Code == "" {
		log.Warn().Msg("callback without authorization code")
		return s.errorRedirect(domain.ErrMissingCode)
	}

	p, err := s.providers.Get(req.Provider)
	if err != nil {
		log.Error().Err(err).Msg("callback for unknown provider")
		return s.errorRedirect(err)
	}
	if !s.codec.Configured() {
		log.Error().Msg("JWT_SECRET_KEY is not set")
		return s.errorRedirect(domain.ErrConfiguration)
	}

	identity, err := s.authenticate(ctx, p, req.Code)
	if err != nil {
		log.Error().Err(err).Str("code", domain.ErrorCode(err)).Msg("login failed")
		s.store.RecordLoginEvent(ctx, domain.LoginEvent{
			UserReference: domain.UnknownUserReference,
			Provider:      p.Name(),
			Success:       false,
			IPAddress:     req.IPAddress,
			UserAgent:     req.UserAgent,
		})
		return s.errorRedirect(err)
	}

	result := s.store.UpsertUser(ctx, identity)
	if !result.Ok() {
		log.Warn().Str("reason", result.Reason).Msg("user not persisted")
	}
	s.store.RecordLoginEvent(ctx, domain.LoginEvent{
		UserReference: identity.ProviderUserID,
		Provider:      identity.Provider,
		Success:       true,
		IPAddress:     req.IPAddress,
		UserAgent:     req.UserAgent,
	})

	signed, _, err := s.codec.Issue(identity, s.cfg.TokenTTL)
	if err != nil {
		log.Error().Err(err).Msg("issue session token")
		return s.errorRedirect(err)
	}

	log.Info().
		Str("provider_user_id", identity.ProviderUserID).
		Bool("persisted", result.Ok()).
		Msg("login succeeded")
	return s.redirect(s.cfg.SuccessPath, "token", signed)
}

// authenticate runs adapter steps 2 to 4: exchange, fetch, normalize.
func (s *LoginService) authenticate(ctx context.Context, p provider.Provider, code string) (domain.ProviderIdentity, error) {
	accessToken, err := p.ExchangeCode(ctx, code)
	if err != nil {
		return domain.ProviderIdentity{}, err
	}
	raw, err := p.FetchProfile(ctx, accessToken)
	if err != nil {
		return domain.ProviderIdentity{}, err
	}
	return p.Normalize(raw)
}

// Verify decodes a session token. Failures are reported in the result, not as errors.
func (s *LoginService) Verify(tokenString string) VerifyResult {
	if tokenString == "" {
		return VerifyResult{Valid: false, Error: "missing_token"}
	}
	session, err := s.codec.Verify(tokenString)
	if err != nil {
		return VerifyResult{Valid: false, Error: verifyError(err)}
	}
	return VerifyResult{Valid: true, User: session}
}

func verifyError(err error) string {
	switch {
	case errors.Is(err, domain.ErrExpiredToken):
		return "token_expired"
	case errors.Is(err, domain.ErrConfiguration):
		return domain.CodeConfigError
	default:
		return "invalid_token"
	}
}

func (s *LoginService) errorRedirect(err error) string {
	return s.redirect(s.cfg.ErrorPath, "error", domain.ErrorCode(err))
}

func (s *LoginService) redirect(path, key, value string) string {
	q := url.Values{}
	q.Set(key, value)
	return s.cfg.FrontendURL + path + "?" + q.Encode()
}
