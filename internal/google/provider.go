package google

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/Geek-Mradul/mintern/internal/platform/identity"
)

const (
	issuerURL = "https://accounts.google.com"
	certsURL  = "https://www.googleapis.com/oauth2/v3/certs"
)

var ErrMissingIDToken = errors.New("google: token response carried no id_token")

// Provider runs the Google half of the federated login: it builds the consent
// redirect and turns the callback code into a verified identity.Assertion.
type Provider struct {
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
}

// NewProvider does no network I/O. Signing keys are fetched lazily on the
// first verification.
func NewProvider(ctx context.Context, clientID, clientSecret, redirectURL string) *Provider {
	keySet := oidc.NewRemoteKeySet(ctx, certsURL)

	return &Provider{
		oauth2Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  redirectURL,
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: oidc.NewVerifier(issuerURL, keySet, &oidc.Config{ClientID: clientID}),
	}
}

func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth2Config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

type idTokenClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// Exchange trades the authorization code for tokens and verifies the ID
// token. An email Google has not verified is dropped, which the identity
// service reports as a missing email.
func (p *Provider) Exchange(ctx context.Context, code string) (identity.Assertion, error) {
	token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return identity.Assertion{}, fmt.Errorf("google: exchange code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return identity.Assertion{}, ErrMissingIDToken
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return identity.Assertion{}, fmt.Errorf("google: verify id token: %w", err)
	}

	var claims idTokenClaims
	if err := idToken.Claims(&claims); err != nil {
		return identity.Assertion{}, fmt.Errorf("google: decode id token claims: %w", err)
	}

	assertion := identity.Assertion{Name: claims.Name}
	if claims.EmailVerified {
		assertion.Email = claims.Email
	}
	return assertion, nil
}
