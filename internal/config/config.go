// Package config loads service configuration from defaults, an optional
// YAML file and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
)

// PathEnvVar overrides the config file location.
const PathEnvVar = "CONFIG_PATH"

// DefaultPaths are searched in order when PathEnvVar is unset.
var DefaultPaths = []string{"config.yaml", "config.yml"}

var (
	// ErrMissingCredentials is returned when the Spotify client id or secret is not set.
	ErrMissingCredentials = errors.New("missing SPOTIFY_CLIENT_ID or SPOTIFY_CLIENT_SECRET")

	// ErrMissingSessionSecret is returned when SESSION_SECRET is not set.
	ErrMissingSessionSecret = errors.New("missing SESSION_SECRET")

	// ErrInvalid wraps validation failures.
	ErrInvalid = errors.New("invalid configuration")
)

// Config is the full service configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Spotify SpotifyConfig `koanf:"spotify"`
	Session SessionConfig `koanf:"session"`
	Model   ModelConfig   `koanf:"model"`
	LastFM  LastFMConfig  `koanf:"lastfm"`
	Resolve ResolveConfig `koanf:"resolve"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr              string        `koanf:"addr" validate:"required"`
	AppURL            string        `koanf:"app_url" validate:"required,url"`
	PostLoginPath     string        `koanf:"post_login_path"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"min=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// SpotifyConfig holds Spotify app credentials and endpoints.
type SpotifyConfig struct {
	ClientID     string  `koanf:"client_id"`
	ClientSecret string  `koanf:"client_secret"`
	AuthURL      string  `koanf:"auth_url" validate:"required,url"`
	TokenURL     string  `koanf:"token_url" validate:"required,url"`
	APIURL       string  `koanf:"api_url" validate:"required,url"`
	SearchRate   float64 `koanf:"search_rate" validate:"min=0"`
}

// SessionConfig holds session capsule settings.
type SessionConfig struct {
	Secret        string        `koanf:"secret" validate:"required,min=32"`
	TTL           time.Duration `koanf:"ttl" validate:"required"`
	CookieSecure  bool          `koanf:"cookie_secure"`
	RefreshBuffer time.Duration `koanf:"refresh_buffer"`
}

// ModelConfig holds generative model settings.
type ModelConfig struct {
	Endpoint    string        `koanf:"endpoint" validate:"required,url"`
	Token       string        `koanf:"token"`
	Name        string        `koanf:"name" validate:"required"`
	Temperature float64       `koanf:"temperature" validate:"min=0,max=2"`
	MaxTokens   int           `koanf:"max_tokens" validate:"min=1"`
	Timeout     time.Duration `koanf:"timeout"`
}

// LastFMConfig holds optional Last.fm settings. Enrichment is disabled
// when APIKey is empty.
type LastFMConfig struct {
	APIKey string `koanf:"api_key"`
}

// ResolveConfig holds resolution pipeline settings.
type ResolveConfig struct {
	Concurrency int `koanf:"concurrency" validate:"min=1,max=50"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn warning error disabled"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
}

// RedirectURI returns the OAuth callback URL derived from the app URL.
func (c *Config) RedirectURI() string {
	return strings.TrimRight(c.Server.AppURL, "/") + "/api/auth/callback/spotify"
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              "127.0.0.1:3000",
			AppURL:            "http://127.0.0.1:3000",
			PostLoginPath:     "/dashboard",
			RateLimitRequests: 20,
			RateLimitWindow:   time.Minute,
		},
		Spotify: SpotifyConfig{
			AuthURL:    spotifyauth.AuthURL,
			TokenURL:   spotifyauth.TokenURL,
			APIURL:     "https://api.spotify.com/v1/",
			SearchRate: 10,
		},
		Session: SessionConfig{
			TTL:           24 * time.Hour,
			RefreshBuffer: 5 * time.Minute,
		},
		Model: ModelConfig{
			Endpoint:    "https://models.github.ai/inference",
			Name:        "openai/gpt-4o-mini",
			Temperature: 0.8,
			MaxTokens:   2000,
			Timeout:     60 * time.Second,
		},
		Resolve: ResolveConfig{
			Concurrency: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// envKeys maps environment variables to config paths.
var envKeys = map[string]string{
	"SERVER_ADDR":           "server.addr",
	"APP_URL":               "server.app_url",
	"POST_LOGIN_PATH":       "server.post_login_path",
	"CORS_ORIGINS":          "server.cors_origins",
	"RATE_LIMIT_REQUESTS":   "server.rate_limit_requests",
	"RATE_LIMIT_WINDOW":     "server.rate_limit_window",
	"SPOTIFY_CLIENT_ID":     "spotify.client_id",
	"SPOTIFY_CLIENT_SECRET": "spotify.client_secret",
	"SPOTIFY_AUTH_URL":      "spotify.auth_url",
	"SPOTIFY_TOKEN_URL":     "spotify.token_url",
	"SPOTIFY_API_URL":       "spotify.api_url",
	"SPOTIFY_SEARCH_RATE":   "spotify.search_rate",
	"SESSION_SECRET":        "session.secret",
	"SESSION_TTL":           "session.ttl",
	"SESSION_COOKIE_SECURE": "session.cookie_secure",
	"MODEL_ENDPOINT":        "model.endpoint",
	"GITHUB_TOKEN":          "model.token",
	"MODEL_NAME":            "model.name",
	"MODEL_TEMPERATURE":     "model.temperature",
	"MODEL_MAX_TOKENS":      "model.max_tokens",
	"MODEL_TIMEOUT":         "model.timeout",
	"LASTFM_API_KEY":        "lastfm.api_key",
	"RESOLVE_CONCURRENCY":   "resolve.concurrency",
	"LOG_LEVEL":             "logging.level",
	"LOG_FORMAT":            "logging.format",
}

// Load reads configuration with precedence env > file > defaults.
// Returns ErrMissingCredentials if the Spotify client id or secret is not set
// and ErrMissingSessionSecret if no capsule signing key is configured.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", func(s string) string { return envKeys[s] }), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	// Env values arrive as one comma-separated string.
	cfg.Server.CORSOrigins = splitList(cfg.Server.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return ErrMissingCredentials
	}
	if c.Session.Secret == "" {
		return ErrMissingSessionSecret
	}
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func findConfigFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func splitList(in []string) []string {
	var out []string
	for _, v := range in {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
