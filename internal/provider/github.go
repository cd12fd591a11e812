package provider

import (
	"context"
	"encoding/json"
	"fmt"

	githubOAuth "golang.org/x/oauth2/github"

	"github.com/sumire/socialauth/internal/domain"
)

const (
	GitHubUserURL   = "https://api.github.com/user"
	GitHubEmailsURL = "https://api.github.com/user/emails"

	githubAccept = "application/vnd.github+json"
)

var _ Provider = (*GitHub)(nil)

// GitHub implements the authorization-code flow against GitHub. GitHub hides
// the email of most accounts, so the profile fetch may need a second call.
type GitHub struct {
	base
}

// NewGitHub creates a GitHub adapter requesting the user:email scope.
func NewGitHub(opts Options) *GitHub {
	defaults := Endpoints{
		AuthURL:     githubOAuth.Endpoint.AuthURL,
		TokenURL:    githubOAuth.Endpoint.TokenURL,
		UserInfoURL: GitHubUserURL,
		EmailsURL:   GitHubEmailsURL,
	}
	return &GitHub{base: newBase(domain.AuthProviderGitHub, opts, defaults, []string{"user:email"})}
}

// AuthorizationURL implements Provider.
func (g *GitHub) AuthorizationURL() (string, error) {
	return g.authorizationURL()
}

// ExchangeCode implements Provider.
func (g *GitHub) ExchangeCode(ctx context.Context, code string) (string, error) {
	return g.exchange(ctx, code)
}

type githubUserInfo struct {
	ID        json.Number `json:"id"`
	Login     string      `json:"login"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	AvatarURL string      `json:"avatar_url"`
}

// FetchProfile loads /user and, when it carries no public email, /user/emails.
func (g *GitHub) FetchProfile(ctx context.Context, accessToken string) (RawProfile, error) {
	body, err := g.getJSON(ctx, g.endpoints.UserInfoURL, accessToken, githubAccept)
	if err != nil {
		return RawProfile{}, err
	}

	var info githubUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return RawProfile{}, fmt.Errorf("%w: decode github user: %v", domain.ErrProfileFetch, err)
	}

	raw := RawProfile{Profile: body}
	if info.Email != "" {
		return raw, nil
	}

	emailsBody, err := g.getJSON(ctx, g.endpoints.EmailsURL, accessToken, githubAccept)
	if err != nil {
		return RawProfile{}, err
	}
	if err := json.Unmarshal(emailsBody, &raw.Emails); err != nil {
		return RawProfile{}, fmt.Errorf("%w: decode github emails: %v", domain.ErrProfileFetch, err)
	}
	return raw, nil
}

// Normalize prefers the primary entry of the emails list, then the public
// email. The display name falls back to the login.
func (g *GitHub) Normalize(raw RawProfile) (domain.ProviderIdentity, error) {
	var info githubUserInfo
	if err := json.Unmarshal(raw.Profile, &info); err != nil {
		return domain.ProviderIdentity{}, fmt.Errorf("%w: decode github user: %v", domain.ErrProfileFetch, err)
	}
	if info.ID == "" {
		return domain.ProviderIdentity{}, fmt.Errorf("%w: github user has no id", domain.ErrProfileFetch)
	}

	email := primaryEmail(raw.Emails)
	if email == "" {
		email = info.Email
	}
	if email == "" {
		return domain.ProviderIdentity{}, fmt.Errorf("%w: github user has no primary or public email", domain.ErrMissingRequiredField)
	}

	name := info.Name
	if name == "" {
		name = info.Login
	}

	return domain.ProviderIdentity{
		ProviderUserID: info.ID.String(),
		Email:          email,
		DisplayName:    name,
		AvatarURL:      strPtr(info.AvatarURL),
		Provider:       domain.AuthProviderGitHub,
	}, nil
}

func primaryEmail(emails []Email) string {
	for _, e := range emails {
		if e.Primary && e.Email != "" {
			return e.Email
		}
	}
	return ""
}
