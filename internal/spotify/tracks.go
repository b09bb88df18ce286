package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

// DefaultTopLimit is the number of top items fetched when no limit is given.
const DefaultTopLimit = 20

// TopTracks returns the user's medium-term top tracks.
func (c *Client) TopTracks(ctx context.Context, limit int) ([]Track, error) {
	page, err := c.api.CurrentUsersTopTracks(ctx,
		spotify.Limit(topLimit(limit)),
		spotify.Timerange(spotify.MediumTermRange),
	)
	if err != nil {
		return nil, wrapError("fetching top tracks", err)
	}

	tracks := make([]Track, 0, len(page.Tracks))
	for _, t := range page.Tracks {
		tracks = append(tracks, convertTrack(t))
	}
	return tracks, nil
}

// TopArtists returns the user's medium-term top artists.
func (c *Client) TopArtists(ctx context.Context, limit int) ([]Artist, error) {
	page, err := c.api.CurrentUsersTopArtists(ctx,
		spotify.Limit(topLimit(limit)),
		spotify.Timerange(spotify.MediumTermRange),
	)
	if err != nil {
		return nil, wrapError("fetching top artists", err)
	}

	artists := make([]Artist, 0, len(page.Artists))
	for _, a := range page.Artists {
		artists = append(artists, Artist{
			ID:       a.ID.String(),
			Name:     a.Name,
			Genres:   a.Genres,
			ImageURL: firstImage(a.Images),
			URL:      a.ExternalURLs["spotify"],
		})
	}
	return artists, nil
}

// SearchTracks runs a track search and returns at most limit hits in
// relevance order. Calls are paced by the client's search limiter.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]Track, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for search slot: %w", err)
		}
	}

	res, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, wrapError("searching tracks", err)
	}
	if res.Tracks == nil {
		return nil, nil
	}

	tracks := make([]Track, 0, len(res.Tracks.Tracks))
	for _, t := range res.Tracks.Tracks {
		if t.URI == "" {
			continue
		}
		tracks = append(tracks, convertTrack(t))
	}
	return tracks, nil
}

// convertTrack converts a Spotify FullTrack to Track.
// The first listed artist is the primary artist.
func convertTrack(t spotify.FullTrack) Track {
	artists := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
	}

	var primary string
	if len(artists) > 0 {
		primary = artists[0]
	}

	return Track{
		ID:         t.ID.String(),
		URI:        string(t.URI),
		Name:       t.Name,
		Artist:     primary,
		Artists:    artists,
		Album:      t.Album.Name,
		ArtworkURL: firstImage(t.Album.Images),
		URL:        t.ExternalURLs["spotify"],
	}
}

func topLimit(limit int) int {
	if limit <= 0 || limit > 50 {
		return DefaultTopLimit
	}
	return limit
}
