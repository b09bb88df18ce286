// Package resolve maps model suggestions onto real catalog tracks.
package resolve

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/justestif/go-spotify-ai-curator/internal/logging"
	"github.com/justestif/go-spotify-ai-curator/internal/metrics"
	"github.com/justestif/go-spotify-ai-curator/internal/spotify"
	"github.com/justestif/go-spotify-ai-curator/internal/suggest"
)

// Tier records which search found the track.
type Tier string

const (
	// TierNone means no search found a track.
	TierNone Tier = "none"
	// Tier1 is the field-qualified search: track:<name> artist:<artist>.
	Tier1 Tier = "tier1"
	// Tier2 is the free-text fallback: <name> <artist>.
	Tier2 Tier = "tier2"
)

const (
	// DefaultConcurrency is the number of suggestions resolved in parallel.
	DefaultConcurrency = 5

	searchLimit = 3
)

// Resolved is a suggestion paired with its catalog match, if any.
// URI is empty when no tier found a track.
type Resolved struct {
	Suggestion     suggest.Suggestion
	URI            string
	TrackID        string
	ArtworkURL     string
	ResolvedName   string
	ResolvedArtist string
	Tier           Tier
	Err            error // last search error; nil when simply not found
}

// Found reports whether the suggestion matched a catalog track.
func (r Resolved) Found() bool {
	return r.URI != ""
}

// Searcher runs a catalog track search.
type Searcher interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]spotify.Track, error)
}

// Resolver resolves suggestions against the catalog.
type Resolver struct {
	searcher    Searcher
	concurrency int
	log         zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithConcurrency sets the number of concurrent resolutions.
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// NewResolver creates a Resolver.
func NewResolver(searcher Searcher, opts ...Option) *Resolver {
	r := &Resolver{
		searcher:    searcher,
		concurrency: DefaultConcurrency,
		log:         logging.Component("resolve"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve looks up one suggestion. It tries the field-qualified search
// first and falls back to free text when that finds nothing or fails.
// Search errors are recorded on the result, never returned.
func (r *Resolver) Resolve(ctx context.Context, s suggest.Suggestion) Resolved {
	res := Resolved{Suggestion: s, Tier: TierNone}

	raw := strings.Join(strings.Fields(s.Name), " ")
	if raw == "" {
		metrics.RecordResolution(string(TierNone))
		return res
	}
	name := Normalize(s.Name)
	artist := Normalize(s.Artist)

	// A title that is only an annotation, like "(Interlude)", skips the
	// field-qualified search and goes to free text with the raw title.
	if name != "" {
		qualified := "track:" + name
		if artist != "" {
			qualified += " artist:" + artist
		}

		hits, err := r.searcher.SearchTracks(ctx, qualified, searchLimit)
		if err == nil && len(hits) > 0 {
			return r.found(res, hits[0], Tier1)
		}
		if err != nil {
			res.Err = err
			if ctx.Err() != nil {
				metrics.RecordResolution(string(TierNone))
				return res
			}
		}
	} else {
		name = raw
	}

	free := name
	if artist != "" {
		free += " " + artist
	}

	hits, err := r.searcher.SearchTracks(ctx, free, searchLimit)
	if err == nil && len(hits) > 0 {
		return r.found(res, hits[0], Tier2)
	}
	if err != nil {
		res.Err = err
	}

	r.log.Debug().
		Str("name", s.Name).
		Str("artist", s.Artist).
		AnErr("search_error", res.Err).
		Msg("suggestion not found in catalog")
	metrics.RecordResolution(string(TierNone))
	return res
}

func (r *Resolver) found(res Resolved, hit spotify.Track, tier Tier) Resolved {
	res.URI = hit.URI
	res.TrackID = hit.ID
	res.ArtworkURL = hit.ArtworkURL
	res.ResolvedName = hit.Name
	res.ResolvedArtist = hit.Artist
	if res.ResolvedArtist == "" {
		res.ResolvedArtist = res.Suggestion.Artist
	}
	res.Tier = tier
	res.Err = nil

	metrics.RecordResolution(string(tier))
	return res
}

// ResolveAll resolves suggestions concurrently.
// Results are returned in the same order as the input, one per suggestion.
// Individual failures are captured in Resolved.Err rather than failing the
// batch. If ctx is cancelled, suggestions not yet started are marked
// unresolved with the context error and that error is returned alongside
// the full result slice.
func (r *Resolver) ResolveAll(ctx context.Context, suggestions []suggest.Suggestion) ([]Resolved, error) {
	if len(suggestions) == 0 {
		return []Resolved{}, nil
	}

	results := make([]Resolved, len(suggestions))

	type workItem struct {
		index      int
		suggestion suggest.Suggestion
	}
	workCh := make(chan workItem, len(suggestions))
	for i, s := range suggestions {
		workCh <- workItem{index: i, suggestion: s}
	}
	close(workCh)

	workers := min(r.concurrency, len(suggestions))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for work := range workCh {
				select {
				case <-ctx.Done():
					results[work.index] = Resolved{
						Suggestion: work.suggestion,
						Tier:       TierNone,
						Err:        ctx.Err(),
					}
					continue
				default:
				}

				results[work.index] = r.Resolve(ctx, work.suggestion)
			}
		}()
	}

	wg.Wait()

	if ctx.Err() != nil {
		return results, ctx.Err()
	}
	return results, nil
}

// Count returns how many results matched a catalog track.
func Count(results []Resolved) int {
	n := 0
	for _, r := range results {
		if r.Found() {
			n++
		}
	}
	return n
}
