package suggest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/justestif/go-spotify-ai-curator/internal/logging"
)

// Completer produces a completion for a system and user message.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ArtistTagger looks up genre tags for an artist.
type ArtistTagger interface {
	ArtistTags(ctx context.Context, artist string, limit int) ([]string, error)
}

// Engine generates playlist suggestions from seeds.
type Engine struct {
	model         Completer
	tagger        ArtistTagger
	enrichTimeout time.Duration
	log           zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTagger enables genre enrichment for artist seeds without genres.
func WithTagger(t ArtistTagger) Option {
	return func(e *Engine) {
		e.tagger = t
	}
}

// NewEngine creates an Engine backed by model.
func NewEngine(model Completer, opts ...Option) *Engine {
	e := &Engine{
		model:         model,
		enrichTimeout: 5 * time.Second,
		log:           logging.Component("suggest"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Generate asks the model for suggestions matching seeds.
// Returns ErrNoSeeds for an empty seed set, ErrModelUnavailable when the
// model call fails and ErrMalformedModelOutput when the answer cannot be
// decoded. The number of suggestions may differ from the requested count
// but never exceeds it.
func (e *Engine) Generate(ctx context.Context, seeds SeedSet) (*Generation, error) {
	if seeds.Empty() {
		return nil, ErrNoSeeds
	}
	seeds = seeds.normalized()
	if seeds.Empty() {
		return nil, ErrNoSeeds
	}

	if e.tagger != nil {
		seeds.Artists = e.enrichArtists(ctx, seeds.Artists)
	}

	prompt := BuildPrompt(seeds)

	start := time.Now()
	raw, err := e.model.Complete(ctx, prompt.System, prompt.User)
	if err != nil {
		e.log.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("model call failed")
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}

	gen, err := ParseOutput(raw)
	if err != nil {
		e.log.Warn().Err(err).Int("answer_bytes", len(raw)).Msg("discarding model answer")
		return nil, err
	}

	if len(gen.Suggestions) > seeds.Count {
		gen.Suggestions = gen.Suggestions[:seeds.Count]
	}

	e.log.Debug().
		Int("requested", seeds.Count).
		Int("returned", len(gen.Suggestions)).
		Dur("elapsed", time.Since(start)).
		Msg("generated suggestions")

	return gen, nil
}
