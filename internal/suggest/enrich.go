package suggest

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const (
	maxEnrichTags     = 3
	enrichConcurrency = 3
)

// enrichArtists fills in genres for artist seeds that have none.
// Lookup failures leave the seed unchanged.
func (e *Engine) enrichArtists(ctx context.Context, artists []ArtistSeed) []ArtistSeed {
	out := make([]ArtistSeed, len(artists))
	copy(out, artists)

	ctx, cancel := context.WithTimeout(ctx, e.enrichTimeout)
	defer cancel()

	var g errgroup.Group
	g.SetLimit(enrichConcurrency)

	for i := range out {
		if len(out[i].Genres) > 0 {
			continue
		}
		g.Go(func() error {
			tags, err := e.tagger.ArtistTags(ctx, out[i].Name, maxEnrichTags)
			if err != nil {
				e.log.Debug().Err(err).Str("artist", out[i].Name).Msg("artist tag lookup failed")
				return nil
			}
			out[i].Genres = tags
			return nil
		})
	}

	_ = g.Wait()
	return out
}
