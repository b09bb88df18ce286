// Package spotify provides a wrapper around the Spotify Web API.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds every catalog call.
const DefaultTimeout = 15 * time.Second

// ErrUnauthorized is returned when Spotify rejects the access token (401)
// or its scopes (403). The user must sign in again.
var ErrUnauthorized = errors.New("spotify rejected credentials")

// APIError is a non-2xx response from the Web API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify api error %d: %s", e.Status, e.Message)
}

// Unwrap exposes ErrUnauthorized for 401 and 403 responses.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden {
		return ErrUnauthorized
	}
	return nil
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client wraps the Spotify API client with convenience methods.
// A Client is bound to a single user's access token.
type Client struct {
	api     *spotify.Client
	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	baseURL string
	limiter *rate.Limiter
}

// WithBaseURL points the client at a different API root. The URL must end
// with a slash.
func WithBaseURL(url string) Option {
	return func(o *clientOptions) {
		o.baseURL = url
	}
}

// WithSearchLimiter paces search requests. Limiters may be shared between
// clients.
func WithSearchLimiter(l *rate.Limiter) Option {
	return func(o *clientOptions) {
		o.limiter = l
	}
}

// New creates a new Spotify client wrapper.
// The http client should already carry the user's bearer token.
func New(httpClient *http.Client, opts ...Option) *Client {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	apiOpts := []spotify.ClientOption{spotify.WithRetry(true)}
	if o.baseURL != "" {
		apiOpts = append(apiOpts, spotify.WithBaseURL(o.baseURL))
	}

	return &Client{
		api:     spotify.New(httpClient, apiOpts...),
		limiter: o.limiter,
	}
}

// HTTPClient returns an http.Client that sends tok as a bearer token.
// The token is never refreshed by this client.
func HTTPClient(tok *oauth2.Token, timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Transport: &oauth2.Transport{Source: oauth2.StaticTokenSource(tok)},
		Timeout:   timeout,
	}
}

// Profile returns the current user's profile.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return nil, wrapError("getting current user", err)
	}
	return &Profile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		AvatarURL:   firstImage(user.Images),
	}, nil
}

// wrapError converts Web API errors into *APIError so callers can inspect
// the status.
func wrapError(op string, err error) error {
	var se spotify.Error
	if errors.As(err, &se) {
		return fmt.Errorf("%s: %w", op, &APIError{Status: se.Status, Message: se.Message})
	}
	var sep *spotify.Error
	if errors.As(err, &sep) {
		return fmt.Errorf("%s: %w", op, &APIError{Status: sep.Status, Message: sep.Message})
	}
	return fmt.Errorf("%s: %w", op, err)
}

func firstImage(images []spotify.Image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}
