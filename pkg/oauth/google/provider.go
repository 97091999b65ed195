package google

import (
	"context"
	"encoding/json"
	"fmt"
	"mowitajm/auth"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const DefaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type Provider struct {
	config      *oauth2.Config
	userInfoURL string
}

type Option func(*Provider)

// WithEndpoint replaces the Google authorization and token endpoints.
func WithEndpoint(endpoint oauth2.Endpoint) Option {
	return func(p *Provider) {
		p.config.Endpoint = endpoint
	}
}

func WithUserInfoURL(url string) Option {
	return func(p *Provider) {
		p.userInfoURL = url
	}
}

// NewProvider returns nil unless client id, secret and redirect URL are all set.
func NewProvider(clientID, clientSecret, redirectURL string, opts ...Option) *Provider {
	if strings.TrimSpace(clientID) == "" || strings.TrimSpace(clientSecret) == "" || strings.TrimSpace(redirectURL) == "" {
		return nil
	}
	p := &Provider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: DefaultUserInfoURL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

func (p *Provider) Exchange(ctx context.Context, code string) (auth.OAuthUser, error) {
	if p == nil || p.config == nil {
		return auth.OAuthUser{}, auth.ErrOAuthNotConfigured
	}

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return auth.OAuthUser{}, fmt.Errorf("exchange google code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return auth.OAuthUser{}, err
	}
	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return auth.OAuthUser{}, fmt.Errorf("fetch google profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return auth.OAuthUser{}, fmt.Errorf("fetch google profile: unexpected status %d", resp.StatusCode)
	}

	var profile struct {
		Email         string `json:"email"`
		Name          string `json:"name"`
		VerifiedEmail bool   `json:"verified_email"` // nolint: tagliatelle
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return auth.OAuthUser{}, fmt.Errorf("decode google profile: %w", err)
	}

	return auth.OAuthUser{
		Email:         strings.ToLower(strings.TrimSpace(profile.Email)),
		Name:          profile.Name,
		EmailVerified: profile.VerifiedEmail,
	}, nil
}
