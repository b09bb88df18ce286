package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// Scopes requested at sign-in.
var Scopes = []string{
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserReadEmail,
	spotifyauth.ScopeUserTopRead,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
}

// Renewer exchanges a refresh token for a new access token.
type Renewer interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// OAuthConfig holds the Spotify app registration.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string // default spotifyauth.AuthURL
	TokenURL     string // default spotifyauth.TokenURL
}

// OAuthRenewer performs the authorization-code and refresh-token grants
// against the Spotify accounts service using HTTP Basic client auth.
type OAuthRenewer struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// NewOAuthRenewer creates an OAuthRenewer.
func NewOAuthRenewer(cfg OAuthConfig) *OAuthRenewer {
	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = spotifyauth.AuthURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyauth.TokenURL
	}

	return &OAuthRenewer{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// AuthURL returns the Spotify consent URL for the given state.
func (r *OAuthRenewer) AuthURL(state string) string {
	return r.config.AuthCodeURL(state, oauth2.SetAuthURLParam("show_dialog", "false"))
}

// Exchange trades an authorization code for tokens.
func (r *OAuthRenewer) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := r.config.Exchange(r.withClient(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("exchanging code for token: %w", err)
	}
	return tok, nil
}

// Refresh runs the refresh_token grant. A 400 or 401 from the token
// endpoint means the refresh credential itself was rejected and is
// reported as ErrAuthExpired.
func (r *OAuthRenewer) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: no refresh token", ErrAuthExpired)
	}

	// An empty access token is never valid, so the source always refreshes.
	src := r.config.TokenSource(r.withClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil &&
			(re.Response.StatusCode == http.StatusBadRequest || re.Response.StatusCode == http.StatusUnauthorized) {
			return nil, fmt.Errorf("%w: %v", ErrAuthExpired, err)
		}
		return nil, fmt.Errorf("refreshing token: %w", err)
	}
	return tok, nil
}

func (r *OAuthRenewer) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, r.httpClient)
}

// TokenScopes returns the space-separated scope list granted with tok.
func TokenScopes(tok *oauth2.Token) []string {
	raw, _ := tok.Extra("scope").(string)
	return strings.Fields(raw)
}
