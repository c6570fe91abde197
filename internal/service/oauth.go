package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/marquee/marquee-go/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const (
	ProviderGitHub = "github"
	ProviderGoogle = "google"

	googleIssuer = "https://accounts.google.com"
	githubAPIURL = "https://api.github.com"
)

// OAuthIdentity is what a provider tells us about a signed-in user.
type OAuthIdentity struct {
	AccountID     string
	Email         string
	EmailVerified bool
	Name          string
	Image         string
	AccessToken   string
	RefreshToken  string
	IDToken       string
	Expiry        *time.Time
	Scope         string
}

// OAuthProvider runs the authorization code flow for one identity provider.
type OAuthProvider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*OAuthIdentity, error)
}

// CallbackURL is where a provider redirects after consent.
func CallbackURL(baseURL, provider string) string {
	return baseURL + "/api/auth/oauth/" + provider + "/callback"
}

// GitHubProvider signs users in with GitHub.
type GitHubProvider struct {
	config *oauth2.Config
	apiURL string
}

func NewGitHubProvider(client config.OAuthClient, baseURL string) *GitHubProvider {
	return newGitHubProvider(&oauth2.Config{
		ClientID:     client.ClientID,
		ClientSecret: client.ClientSecret,
		RedirectURL:  CallbackURL(baseURL, ProviderGitHub),
		Endpoint:     github.Endpoint,
		Scopes:       []string{"read:user", "user:email"},
	}, githubAPIURL)
}

func newGitHubProvider(cfg *oauth2.Config, apiURL string) *GitHubProvider {
	return &GitHubProvider{config: cfg, apiURL: apiURL}
}

func (p *GitHubProvider) Name() string { return ProviderGitHub }

func (p *GitHubProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// Exchange trades the code for a token and loads the GitHub profile. The
// primary verified email is used when the profile email is private.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*OAuthIdentity, error) {
	tok, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("github token exchange: %w", err)
	}
	client := p.config.Client(ctx, tok)

	var user struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := p.getJSON(ctx, client, "/user", &user); err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, errors.New("github user has no id")
	}

	identity := &OAuthIdentity{
		AccountID:    strconv.FormatInt(user.ID, 10),
		Name:         user.Name,
		Image:        user.AvatarURL,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		identity.Scope = scope
	}
	if identity.Name == "" {
		identity.Name = user.Login
	}
	if !tok.Expiry.IsZero() {
		exp := tok.Expiry.UTC()
		identity.Expiry = &exp
	}

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := p.getJSON(ctx, client, "/user/emails", &emails); err == nil {
		for _, e := range emails {
			if e.Primary && e.Verified {
				identity.Email, identity.EmailVerified = e.Email, true
				break
			}
		}
	}
	if identity.Email == "" {
		identity.Email = user.Email
	}
	return identity, nil
}

func (p *GitHubProvider) getJSON(ctx context.Context, client *http.Client, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("github %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

// GoogleProvider signs users in with Google and trusts only verified ID tokens.
type GoogleProvider struct {
	config   *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// NewGoogleProvider discovers Google's OpenID configuration.
func NewGoogleProvider(ctx context.Context, client config.OAuthClient, baseURL string) (*GoogleProvider, error) {
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("google oidc discovery: %w", err)
	}
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     client.ClientID,
			ClientSecret: client.ClientSecret,
			RedirectURL:  CallbackURL(baseURL, ProviderGoogle),
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: client.ClientID}),
	}, nil
}

func (p *GoogleProvider) Name() string { return ProviderGoogle }

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*OAuthIdentity, error) {
	tok, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google token exchange: %w", err)
	}
	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok {
		return nil, errors.New("google response has no id_token")
	}
	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("google id token: %w", err)
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("google id token claims: %w", err)
	}

	identity := &OAuthIdentity{
		AccountID:     idToken.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		Image:         claims.Picture,
		AccessToken:   tok.AccessToken,
		RefreshToken:  tok.RefreshToken,
		IDToken:       rawIDToken,
		Scope:         "openid profile email",
	}
	if !tok.Expiry.IsZero() {
		exp := tok.Expiry.UTC()
		identity.Expiry = &exp
	}
	return identity, nil
}
