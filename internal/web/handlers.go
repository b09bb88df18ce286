package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/justestif/go-spotify-ai-curator/internal/auth"
	"github.com/justestif/go-spotify-ai-curator/internal/logging"
	"github.com/justestif/go-spotify-ai-curator/internal/resolve"
	"github.com/justestif/go-spotify-ai-curator/internal/spotify"
	"github.com/justestif/go-spotify-ai-curator/internal/suggest"
)

const stateCookieName = "oauth_state"

// OAuthFlow runs the authorization code flow against the identity provider.
type OAuthFlow interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}

// Catalog is the per-user view of the Spotify catalog.
type Catalog interface {
	Profile(ctx context.Context) (*spotify.Profile, error)
	TopTracks(ctx context.Context, limit int) ([]spotify.Track, error)
	TopArtists(ctx context.Context, limit int) ([]spotify.Artist, error)
	Playlists(ctx context.Context) ([]spotify.Playlist, error)
	SearchTracks(ctx context.Context, query string, limit int) ([]spotify.Track, error)
	CreatePlaylist(ctx context.Context, ownerID, name, description string) (*spotify.Playlist, error)
	AddTracks(ctx context.Context, playlistID string, uris []string) error
}

// CatalogFunc returns a Catalog acting with the given access token.
type CatalogFunc func(tok *oauth2.Token) Catalog

// SpotifyCatalog returns a CatalogFunc backed by the Spotify Web API.
// All catalogs it creates share one search limiter.
func SpotifyCatalog(apiURL string, timeout time.Duration, limiter *rate.Limiter) CatalogFunc {
	return func(tok *oauth2.Token) Catalog {
		return spotify.New(
			spotify.HTTPClient(tok, timeout),
			spotify.WithBaseURL(apiURL),
			spotify.WithSearchLimiter(limiter),
		)
	}
}

// Generator produces suggestions from seeds.
type Generator interface {
	Generate(ctx context.Context, seeds suggest.SeedSet) (*suggest.Generation, error)
}

// Deps are the collaborators the handlers call.
type Deps struct {
	Store     *auth.Store
	OAuth     OAuthFlow
	Catalog   CatalogFunc
	Generator Generator
}

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	cfg       Config
	store     *auth.Store
	oauth     OAuthFlow
	catalog   CatalogFunc
	generator Generator
	now       func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cfg Config, deps Deps) *Handlers {
	if cfg.ResolveConcurrency <= 0 {
		cfg.ResolveConcurrency = resolve.DefaultConcurrency
	}
	return &Handlers{
		cfg:       cfg,
		store:     deps.Store,
		oauth:     deps.OAuth,
		catalog:   deps.Catalog,
		generator: deps.Generator,
		now:       time.Now,
	}
}

// catalogFor returns the catalog for the session in ctx.
func (h *Handlers) catalogFor(ctx context.Context) Catalog {
	return h.catalog(sessionFrom(ctx).OAuthToken())
}

// Health handles GET /healthz.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SignIn starts the Spotify OAuth flow (GET /api/auth/signin/spotify).
func (h *Handlers) SignIn(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/api/auth",
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300,
	})

	http.Redirect(w, r, h.oauth.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback completes the OAuth flow (GET /api/auth/callback/spotify).
// Every outcome redirects back to the app.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	log := logging.Ctx(r.Context())
	q := r.URL.Query()

	stateCookie, cookieErr := r.Cookie(stateCookieName)
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/api/auth",
		HttpOnly: true,
		MaxAge:   -1,
	})

	code := q.Get("code")
	if reason := q.Get("error"); reason != "" || code == "" {
		log.Info().Str("reason", reason).Msg("spotify sign-in declined")
		h.redirectApp(w, r, "/?error=access_denied")
		return
	}

	if cookieErr != nil || stateCookie.Value == "" || stateCookie.Value != q.Get("state") {
		log.Warn().Msg("oauth state mismatch")
		h.redirectApp(w, r, "/?error=auth_failed")
		return
	}

	tok, err := h.oauth.Exchange(r.Context(), code)
	if err != nil {
		log.Error().Err(err).Msg("exchanging oauth code")
		h.redirectApp(w, r, "/?error=auth_failed")
		return
	}

	profile, err := h.catalog(tok).Profile(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("fetching spotify profile")
		h.redirectApp(w, r, "/?error=auth_failed")
		return
	}

	sess := auth.NewSession(tok, auth.User{
		ID:          profile.ID,
		DisplayName: profile.DisplayName,
		Email:       profile.Email,
		AvatarURL:   profile.AvatarURL,
	}, h.now())

	if err := h.store.Save(w, sess); err != nil {
		log.Error().Err(err).Msg("saving session")
		h.redirectApp(w, r, "/?error=auth_failed")
		return
	}

	log.Info().Str("user_id", profile.ID).Msg("signed in")
	h.redirectApp(w, r, h.cfg.PostLoginPath)
}

// SignOutRedirect clears the session and returns to the app
// (GET /api/auth/signout).
func (h *Handlers) SignOutRedirect(w http.ResponseWriter, r *http.Request) {
	h.store.Clear(w)
	h.redirectApp(w, r, "/")
}

// SignOut clears the session (POST /api/auth/signout).
func (h *Handlers) SignOut(w http.ResponseWriter, _ *http.Request) {
	h.store.Clear(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type meResponse struct {
	User      auth.User `json:"user"`
	ExpiresAt int64     `json:"expiresAt"`
	Scopes    []string  `json:"scopes"`
}

// Me returns the signed-in user (GET /api/me).
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	scopes := sess.Scopes
	if scopes == nil {
		scopes = []string{}
	}
	writeJSON(w, http.StatusOK, meResponse{
		User:      sess.User,
		ExpiresAt: sess.ExpiresAt,
		Scopes:    scopes,
	})
}

func (h *Handlers) redirectApp(w http.ResponseWriter, r *http.Request, path string) {
	target := strings.TrimRight(h.cfg.AppURL, "/") + path
	http.Redirect(w, r, target, http.StatusFound)
}
