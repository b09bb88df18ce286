package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/justestif/go-spotify-ai-curator/internal/logging"
	"github.com/justestif/go-spotify-ai-curator/internal/metrics"
)

// CookieName is the session capsule cookie.
const CookieName = "sac_session"

// Store reads and writes session capsules on HTTP requests and keeps the
// embedded Spotify credentials fresh.
type Store struct {
	codec   *CapsuleCodec
	renewer Renewer
	buffer  time.Duration
	secure  bool
	now     func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithRefreshBuffer sets how early before expiry a session is renewed.
func WithRefreshBuffer(d time.Duration) StoreOption {
	return func(s *Store) {
		if d >= 0 {
			s.buffer = d
		}
	}
}

// WithSecureCookie marks the session cookie Secure.
func WithSecureCookie(secure bool) StoreOption {
	return func(s *Store) {
		s.secure = secure
	}
}

// WithClock overrides the time source for both the store and its codec.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
		s.codec.now = now
	}
}

// NewStore creates a Store.
func NewStore(codec *CapsuleCodec, renewer Renewer, opts ...StoreOption) *Store {
	s := &Store{
		codec:   codec,
		renewer: renewer,
		buffer:  DefaultRefreshBuffer,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the session carried by the request, or nil if there is
// none or the capsule is invalid.
func (s *Store) Load(r *http.Request) *Session {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	sess, err := s.codec.Decode(cookie.Value)
	if err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("discarding session capsule")
		return nil
	}
	return &sess
}

// Save encodes the session into a fresh capsule and sets it on the response.
func (s *Store) Save(w http.ResponseWriter, sess Session) error {
	capsule, err := s.codec.Encode(sess)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    capsule,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.codec.TTL().Seconds()),
	})
	return nil
}

// Clear expires the session cookie.
func (s *Store) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// EnsureFresh returns a session whose access token is usable for at least
// the refresh buffer. A stale session is renewed and the new capsule is
// written to w before returning.
//
// If the provider rejects the refresh token the stale session is returned
// with ErrAuthExpired. Any other renewal failure returns the stale session
// and a nil error; the next catalog call will surface the problem.
func (s *Store) EnsureFresh(ctx context.Context, w http.ResponseWriter, sess Session) (Session, error) {
	now := s.now()
	if !sess.Stale(now, s.buffer) {
		return sess, nil
	}

	log := logging.Ctx(ctx).With().Str("user_id", sess.User.ID).Logger()

	tok, err := s.renewer.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrAuthExpired) {
			metrics.RecordRefresh("expired")
			log.Info().Err(err).Msg("refresh token rejected")
			return sess, err
		}
		metrics.RecordRefresh("failed")
		log.Warn().Err(err).Msg("token refresh failed, continuing with stale session")
		return sess, nil
	}

	next := sess.withToken(tok, TokenScopes(tok), now)
	if err := s.Save(w, next); err != nil {
		return sess, fmt.Errorf("saving renewed session: %w", err)
	}

	metrics.RecordRefresh("renewed")
	log.Debug().Time("expires_at", next.Expiry()).Msg("access token renewed")
	return next, nil
}
