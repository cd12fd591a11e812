// Package provider drives the authorization-code exchange against external
// identity providers. Each adapter performs the same four steps: build the
// authorization URL, exchange the code, fetch the profile, normalize it.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"

	"golang.org/x/oauth2"

	"github.com/sumire/socialauth/internal/domain"
)

// maxBodyBytes bounds how much of a provider response is read.
const maxBodyBytes = 1 << 20

// Provider is implemented by every identity provider adapter.
type Provider interface {
	// Name returns the provider identifier used in routes and storage.
	Name() domain.AuthProvider

	// Configured reports whether client credentials are present.
	Configured() bool

	// AuthorizationURL returns the URL the browser is sent to.
	AuthorizationURL() (string, error)

	// ExchangeCode trades an authorization code for an access token.
	ExchangeCode(ctx context.Context, code string) (string, error)

	// FetchProfile retrieves the raw user profile with the access token.
	FetchProfile(ctx context.Context, accessToken string) (RawProfile, error)

	// Normalize maps a raw profile onto a ProviderIdentity.
	Normalize(raw RawProfile) (domain.ProviderIdentity, error)
}

// RawProfile is the unprocessed response of the profile fetch step.
type RawProfile struct {
	Profile json.RawMessage
	// Emails is only populated by providers that expose a separate email list.
	Emails []Email
}

// Email is one entry of a provider's email list.
type Email struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// Endpoints are the provider URLs used by an adapter.
type Endpoints struct {
	AuthURL     string
	TokenURL    string
	UserInfoURL string
	EmailsURL   string
}

// Options configures an adapter.
type Options struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	// Endpoints overrides individual provider URLs; empty fields keep the defaults.
	Endpoints  Endpoints
	HTTPClient *http.Client
}

// base holds what every adapter shares: the oauth2 config and the outbound client.
type base struct {
	name      domain.AuthProvider
	config    *oauth2.Config
	endpoints Endpoints
	client    *http.Client
}

func newBase(name domain.AuthProvider, opts Options, defaults Endpoints, scopes []string) base {
	ep := mergeEndpoints(defaults, opts.Endpoints)

	client := opts.HTTPClient
	if client == nil {
		client = NewHTTPClient(0)
	}

	return base{
		name: name,
		config: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.RedirectURI,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   ep.AuthURL,
				TokenURL:  ep.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		endpoints: ep,
		client:    client,
	}
}

func mergeEndpoints(defaults, overrides Endpoints) Endpoints {
	if overrides.AuthURL != "" {
		defaults.AuthURL = overrides.AuthURL
	}
	if overrides.TokenURL != "" {
		defaults.TokenURL = overrides.TokenURL
	}
	if overrides.UserInfoURL != "" {
		defaults.UserInfoURL = overrides.UserInfoURL
	}
	if overrides.EmailsURL != "" {
		defaults.EmailsURL = overrides.EmailsURL
	}
	return defaults
}

func (b *base) Name() domain.AuthProvider {
	return b.name
}

func (b *base) Configured() bool {
	return b.config.ClientID != "" && b.config.ClientSecret != ""
}

func (b *base) authorizationURL(opts ...oauth2.AuthCodeOption) (string, error) {
	if b.config.ClientID == "" {
		return "", fmt.Errorf("%w: %s client id is not set", domain.ErrConfiguration, b.name)
	}
	// No state parameter is sent: the callback does not verify one.
	return b.config.AuthCodeURL("", opts...), nil
}

func (b *base) exchange(ctx context.Context, code string) (string, error) {
	if !b.Configured() {
		return "", fmt.Errorf("%w: %s client credentials are not set", domain.ErrConfiguration, b.name)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, b.client)
	tok, err := b.config.Exchange(ctx, code)
	if err != nil {
		return "", classifyExchangeError(b.name, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrNoAccessToken, b.name)
	}
	return tok.AccessToken, nil
}

// classifyExchangeError separates provider rejections from transport
// failures. Anything else after a successful round trip means the response
// carried no usable access token.
func classifyExchangeError(name domain.AuthProvider, err error) error {
	var retrieveErr *oauth2.RetrieveError
	switch {
	case errors.As(err, &retrieveErr):
		code := retrieveErr.ErrorCode
		if code == "" && retrieveErr.Response != nil {
			code = retrieveErr.Response.Status
		}
		return fmt.Errorf("%w: %s: %s", domain.ErrTokenExchange, name, code)
	case isNetworkError(err):
		return fmt.Errorf("%w: %s token endpoint: %v", domain.ErrNetwork, name, err)
	default:
		return fmt.Errorf("%w: %s: %v", domain.ErrNoAccessToken, name, err)
	}
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// getJSON performs a bearer-authenticated GET and returns the response body.
func (b *base) getJSON(ctx context.Context, endpoint, accessToken, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", domain.ErrProfileFetch, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", accept)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrNetwork, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrNetwork, endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", domain.ErrProfileFetch, endpoint, resp.StatusCode)
	}
	return body, nil
}

// Registry holds the available adapters keyed by provider name.
type Registry struct {
	providers map[domain.AuthProvider]Provider
}

// NewRegistry registers the given adapters by name.
func NewRegistry(list ...Provider) *Registry {
	m := make(map[domain.AuthProvider]Provider, len(list))
	for _, p := range list {
		m[p.Name()] = p
	}
	return &Registry{providers: m}
}

// Get returns the adapter registered under name.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[domain.AuthProvider(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, name)
	}
	return p, nil
}

// Configured returns the sorted names of adapters with client credentials.
func (r *Registry) Configured() []string {
	names := make([]string, 0, len(r.providers))
	for name, p := range r.providers {
		if p.Configured() {
			names = append(names, string(name))
		}
	}
	sort.Strings(names)
	return names
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
