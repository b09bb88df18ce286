// Command spotify-curator runs the Spotify AI Curator API server.
package main

import (
	"fmt"
	"os"

	"golang.org/x/time/rate"

	"github.com/justestif/go-spotify-ai-curator/internal/auth"
	"github.com/justestif/go-spotify-ai-curator/internal/config"
	"github.com/justestif/go-spotify-ai-curator/internal/lastfm"
	"github.com/justestif/go-spotify-ai-curator/internal/llm"
	"github.com/justestif/go-spotify-ai-curator/internal/logging"
	"github.com/justestif/go-spotify-ai-curator/internal/spotify"
	"github.com/justestif/go-spotify-ai-curator/internal/suggest"
	"github.com/justestif/go-spotify-ai-curator/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	log := logging.Logger()

	codec, err := auth.NewCapsuleCodec(cfg.Session.Secret, cfg.Session.TTL)
	if err != nil {
		return fmt.Errorf("creating session codec: %w", err)
	}

	renewer := auth.NewOAuthRenewer(auth.OAuthConfig{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		RedirectURL:  cfg.RedirectURI(),
		AuthURL:      cfg.Spotify.AuthURL,
		TokenURL:     cfg.Spotify.TokenURL,
	})

	store := auth.NewStore(codec, renewer,
		auth.WithRefreshBuffer(cfg.Session.RefreshBuffer),
		auth.WithSecureCookie(cfg.Session.CookieSecure),
	)

	if cfg.Model.Token == "" {
		log.Warn().Msg("no model token configured, recommendation requests will fail")
	}
	model := llm.NewBreakerClient(llm.NewClient(llm.Config{
		Endpoint:    cfg.Model.Endpoint,
		Token:       cfg.Model.Token,
		Model:       cfg.Model.Name,
		Temperature: cfg.Model.Temperature,
		MaxTokens:   cfg.Model.MaxTokens,
		Timeout:     cfg.Model.Timeout,
	}), llm.DefaultBreakerSettings())

	var engineOpts []suggest.Option
	if cfg.LastFM.APIKey != "" {
		engineOpts = append(engineOpts, suggest.WithTagger(lastfm.NewClient(lastfm.Config{APIKey: cfg.LastFM.APIKey})))
		log.Info().Msg("last.fm genre enrichment enabled")
	}
	engine := suggest.NewEngine(model, engineOpts...)

	var limiter *rate.Limiter
	if cfg.Spotify.SearchRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Spotify.SearchRate), max(1, int(cfg.Spotify.SearchRate)))
	}

	server := web.NewServer(web.Config{
		Addr:               cfg.Server.Addr,
		AppURL:             cfg.Server.AppURL,
		PostLoginPath:      cfg.Server.PostLoginPath,
		CORSOrigins:        cfg.Server.CORSOrigins,
		RateLimitRequests:  cfg.Server.RateLimitRequests,
		RateLimitWindow:    cfg.Server.RateLimitWindow,
		SecureCookies:      cfg.Session.CookieSecure,
		ResolveConcurrency: cfg.Resolve.Concurrency,
	}, web.Deps{
		Store:     store,
		OAuth:     renewer,
		Catalog:   web.SpotifyCatalog(cfg.Spotify.APIURL, spotify.DefaultTimeout, limiter),
		Generator: engine,
	})

	return server.Run()
}
