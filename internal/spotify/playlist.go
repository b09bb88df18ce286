package spotify

import (
	"context"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"
)

// MaxTracksPerRequest is the Web API limit for adding tracks in one call.
const MaxTracksPerRequest = 100

// Playlists returns up to 50 of the user's playlists.
// Entries Spotify reports without an ID are skipped.
func (c *Client) Playlists(ctx context.Context) ([]Playlist, error) {
	page, err := c.api.CurrentUsersPlaylists(ctx, spotify.Limit(50))
	if err != nil {
		return nil, wrapError("fetching playlists", err)
	}

	playlists := make([]Playlist, 0, len(page.Playlists))
	for _, p := range page.Playlists {
		if p.ID == "" {
			continue
		}
		playlists = append(playlists, Playlist{
			ID:          p.ID.String(),
			Name:        p.Name,
			Description: p.Description,
			URL:         p.ExternalURLs["spotify"],
			ImageURL:    firstImage(p.Images),
			TrackCount:  int(p.Tracks.Total),
			Owner:       p.Owner.DisplayName,
		})
	}
	return playlists, nil
}

// CreatePlaylist creates a private playlist owned by ownerID.
func (c *Client) CreatePlaylist(ctx context.Context, ownerID, name, description string) (*Playlist, error) {
	playlist, err := c.api.CreatePlaylistForUser(ctx, ownerID, name, description, false, false)
	if err != nil {
		return nil, wrapError("creating playlist", err)
	}

	return &Playlist{
		ID:          playlist.ID.String(),
		Name:        playlist.Name,
		Description: playlist.Description,
		URL:         playlist.ExternalURLs["spotify"],
	}, nil
}

// AddTracks appends tracks to a playlist in a single request.
// Callers batch to MaxTracksPerRequest.
func (c *Client) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	if len(uris) == 0 {
		return nil
	}
	if len(uris) > MaxTracksPerRequest {
		return fmt.Errorf("adding tracks: %d exceeds limit of %d", len(uris), MaxTracksPerRequest)
	}

	ids := make([]spotify.ID, len(uris))
	for i, uri := range uris {
		ids[i] = idFromURI(uri)
	}

	if _, err := c.api.AddTracksToPlaylist(ctx, spotify.ID(playlistID), ids...); err != nil {
		return wrapError("adding tracks", err)
	}
	return nil
}

// idFromURI accepts "spotify:track:<id>" or a bare id.
func idFromURI(uri string) spotify.ID {
	if i := strings.LastIndexByte(uri, ':'); i >= 0 {
		return spotify.ID(uri[i+1:])
	}
	return spotify.ID(uri)
}
