package web

import (
	"net/http"
	"strconv"

	"github.com/justestif/go-spotify-ai-curator/internal/spotify"
)

// maxTopLimit is the catalog's page size cap for top items.
const maxTopLimit = 50

// TopTracks handles GET /api/spotify/top-tracks?limit=N.
func (h *Handlers) TopTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.catalogFor(r.Context()).TopTracks(r.Context(), queryLimit(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if tracks == nil {
		tracks = []spotify.Track{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tracks": tracks})
}

// TopArtists handles GET /api/spotify/top-artists?limit=N.
func (h *Handlers) TopArtists(w http.ResponseWriter, r *http.Request) {
	artists, err := h.catalogFor(r.Context()).TopArtists(r.Context(), queryLimit(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if artists == nil {
		artists = []spotify.Artist{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"artists": artists})
}

// Playlists handles GET /api/spotify/playlists.
func (h *Handlers) Playlists(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.catalogFor(r.Context()).Playlists(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if playlists == nil {
		playlists = []spotify.Playlist{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"playlists": playlists})
}

// queryLimit reads ?limit=, falling back to the default for missing or
// out-of-range values.
func queryLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 || n > maxTopLimit {
		return spotify.DefaultTopLimit
	}
	return n
}
