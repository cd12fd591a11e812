package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/oauth2"
	googleOAuth "golang.org/x/oauth2/google"

	"github.com/sumire/socialauth/internal/domain"
)

// GoogleUserInfoURL is the OAuth2 v2 userinfo endpoint.
const GoogleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var _ Provider = (*Google)(nil)

// Google implements the authorization-code flow against Google.
type Google struct {
	base
}

// NewGoogle creates a Google adapter requesting only identity scopes.
func NewGoogle(opts Options) *Google {
	defaults := Endpoints{
		AuthURL:     googleOAuth.Endpoint.AuthURL,
		TokenURL:    googleOAuth.Endpoint.TokenURL,
		UserInfoURL: GoogleUserInfoURL,
	}
	return &Google{base: newBase(domain.AuthProviderGoogle, opts, defaults, []string{"openid", "email", "profile"})}
}

// AuthorizationURL asks for online access and lets the user pick an account.
func (g *Google) AuthorizationURL() (string, error) {
	return g.authorizationURL(
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

// ExchangeCode implements Provider.
func (g *Google) ExchangeCode(ctx context.Context, code string) (string, error) {
	return g.exchange(ctx, code)
}

// FetchProfile implements Provider.
func (g *Google) FetchProfile(ctx context.Context, accessToken string) (RawProfile, error) {
	body, err := g.getJSON(ctx, g.endpoints.UserInfoURL, accessToken, "application/json")
	if err != nil {
		return RawProfile{}, err
	}
	return RawProfile{Profile: body}, nil
}

type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Normalize implements Provider.
func (g *Google) Normalize(raw RawProfile) (domain.ProviderIdentity, error) {
	var info googleUserInfo
	if err := json.Unmarshal(raw.Profile, &info); err != nil {
		return domain.ProviderIdentity{}, fmt.Errorf("%w: decode google user info: %v", domain.ErrProfileFetch, err)
	}
	if info.ID == "" {
		return domain.ProviderIdentity{}, fmt.Errorf("%w: google user info has no id", domain.ErrProfileFetch)
	}
	if info.Email == "" {
		return domain.ProviderIdentity{}, fmt.Errorf("%w: google user info has no email", domain.ErrMissingRequiredField)
	}

	return domain.ProviderIdentity{
		ProviderUserID: info.ID,
		Email:          info.Email,
		DisplayName:    info.Name,
		AvatarURL:      strPtr(info.Picture),
		Provider:       domain.AuthProviderGoogle,
	}, nil
}
