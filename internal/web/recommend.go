package web

import (
	"net/http"

	"github.com/justestif/go-spotify-ai-curator/internal/logging"
	"github.com/justestif/go-spotify-ai-curator/internal/resolve"
	"github.com/justestif/go-spotify-ai-curator/internal/suggest"
)

// fallbackSeedTracks is how many top tracks seed a request that named no
// tracks or artists.
const fallbackSeedTracks = 10

// recommendation is one row of a recommend response.
type recommendation struct {
	Name           string `json:"name"`
	Artist         string `json:"artist"`
	Reason         string `json:"reason,omitempty"`
	Found          bool   `json:"found"`
	URI            string `json:"uri,omitempty"`
	TrackID        string `json:"trackId,omitempty"`
	ArtworkURL     string `json:"image,omitempty"`
	ResolvedName   string `json:"resolvedName,omitempty"`
	ResolvedArtist string `json:"resolvedArtist,omitempty"`
	Tier           string `json:"tier"`
}

type recommendResponse struct {
	PlaylistName        string           `json:"playlistName"`
	PlaylistDescription string           `json:"playlistDescription"`
	Requested           int              `json:"requested"`
	ResolvedCount       int              `json:"resolvedCount"`
	Recommendations     []recommendation `json:"recommendations"`
}

// Recommend generates suggestions and resolves them against the catalog
// (POST /api/ai/recommend).
func (h *Handlers) Recommend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var seeds suggest.SeedSet
	if err := decodeJSON(w, r, &seeds); err != nil {
		writeError(w, r, err)
		return
	}

	catalog := h.catalogFor(ctx)

	if len(seeds.Tracks) == 0 && len(seeds.Artists) == 0 {
		top, err := catalog.TopTracks(ctx, fallbackSeedTracks)
		if err != nil {
			writeError(w, r, err)
			return
		}
		for _, t := range top {
			seeds.Tracks = append(seeds.Tracks, suggest.TrackSeed{Name: t.Name, Artist: t.Artist})
		}
	}

	gen, err := h.generator.Generate(ctx, seeds)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resolver := resolve.NewResolver(catalog, resolve.WithConcurrency(h.cfg.ResolveConcurrency))
	results, err := resolver.ResolveAll(ctx, gen.Suggestions)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := recommendResponse{
		PlaylistName:        gen.PlaylistName,
		PlaylistDescription: gen.PlaylistDescription,
		Requested:           suggest.ClampCount(seeds.Count),
		ResolvedCount:       resolve.Count(results),
		Recommendations:     make([]recommendation, len(results)),
	}
	for i, res := range results {
		resp.Recommendations[i] = recommendation{
			Name:           res.Suggestion.Name,
			Artist:         res.Suggestion.Artist,
			Reason:         res.Suggestion.Reason,
			Found:          res.Found(),
			URI:            res.URI,
			TrackID:        res.TrackID,
			ArtworkURL:     res.ArtworkURL,
			ResolvedName:   res.ResolvedName,
			ResolvedArtist: res.ResolvedArtist,
			Tier:           string(res.Tier),
		}
	}

	logging.Ctx(ctx).Info().
		Int("suggested", len(results)).
		Int("resolved", resp.ResolvedCount).
		Msg("recommendations ready")
	writeJSON(w, http.StatusOK, resp)
}
