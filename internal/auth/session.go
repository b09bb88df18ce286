// Package auth implements the session capsule and Spotify credential renewal.
package auth

import (
	"errors"
	"time"

	"golang.org/x/oauth2"
)

var (
	// ErrUnauthenticated is returned when a request carries no valid session.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrAuthExpired is returned when the identity provider rejects the refresh token.
	// The user must sign in again.
	ErrAuthExpired = errors.New("spotify authorization expired")

	// ErrInvalidCapsule is returned when a capsule fails verification or has expired.
	ErrInvalidCapsule = errors.New("invalid session capsule")
)

// DefaultRefreshBuffer is how long before access token expiry a session is
// treated as stale.
const DefaultRefreshBuffer = 5 * time.Minute

// User is the Spotify profile stored in a session.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"name"`
	Email       string `json:"email"`
	AvatarURL   string `json:"image,omitempty"`
}

// Session holds Spotify credentials for one signed-in user.
// ExpiresAt is the access token expiry in epoch milliseconds; it is
// independent of the capsule's own expiry.
type Session struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	ExpiresAt    int64    `json:"expiresAt"`
	Scopes       []string `json:"scopes,omitempty"`
	User         User     `json:"user"`
}

// Expiry returns ExpiresAt as a time.
func (s Session) Expiry() time.Time {
	return time.UnixMilli(s.ExpiresAt)
}

// Stale reports whether the access token should be renewed before use.
func (s Session) Stale(now time.Time, buffer time.Duration) bool {
	return !now.Before(s.Expiry().Add(-buffer))
}

// OAuthToken returns the access token for use with an oauth2 transport.
func (s Session) OAuthToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       s.Expiry(),
	}
}

// withToken returns a copy of s carrying the renewed credentials.
// The refresh token is replaced only when the provider issued a new one.
func (s Session) withToken(tok *oauth2.Token, scopes []string, now time.Time) Session {
	next := s
	next.AccessToken = tok.AccessToken
	next.ExpiresAt = tokenExpiry(tok, now).UnixMilli()
	if tok.RefreshToken != "" {
		next.RefreshToken = tok.RefreshToken
	}
	if len(scopes) > 0 {
		next.Scopes = scopes
	} else if s.Scopes != nil {
		next.Scopes = append([]string(nil), s.Scopes...)
	}
	return next
}

// NewSession builds a session from a freshly exchanged token.
func NewSession(tok *oauth2.Token, user User, now time.Time) Session {
	return Session{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tokenExpiry(tok, now).UnixMilli(),
		Scopes:       TokenScopes(tok),
		User:         user,
	}
}

// tokenExpiry falls back to one hour when the provider omitted expires_in.
func tokenExpiry(tok *oauth2.Token, now time.Time) time.Time {
	if tok.Expiry.IsZero() {
		return now.Add(time.Hour)
	}
	return tok.Expiry
}
