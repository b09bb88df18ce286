// Package export writes resolved suggestions to a new Spotify playlist.
package export

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/justestif/go-spotify-ai-curator/internal/logging"
	"github.com/justestif/go-spotify-ai-curator/internal/metrics"
	"github.com/justestif/go-spotify-ai-curator/internal/resolve"
	"github.com/justestif/go-spotify-ai-curator/internal/spotify"
	"github.com/justestif/go-spotify-ai-curator/internal/suggest"
)

// Stage is the point an export reached.
type Stage string

const (
	StageIdle       Stage = "idle"
	StageCreating   Stage = "creating"
	StagePopulating Stage = "populating"
	StageDone       Stage = "done"
)

// batchSize is the most tracks added per catalog call.
const batchSize = spotify.MaxTracksPerRequest

var (
	// ErrNoResolvedTracks is returned when no suggestion in the draft has a
	// catalog URI. No playlist is created.
	ErrNoResolvedTracks = errors.New("none of the suggested tracks were found on Spotify")

	// ErrCatalogWriteFailed is returned when creating or filling the
	// playlist fails.
	ErrCatalogWriteFailed = errors.New("spotify playlist write failed")
)

// WriteError describes a failed catalog write.
// It matches ErrCatalogWriteFailed and the underlying cause.
type WriteError struct {
	Stage      Stage
	StatusCode int // provider HTTP status, 0 if unknown
	Err        error
}

func (e *WriteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s playlist (status %d): %v", e.Stage, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s playlist: %v", e.Stage, e.Err)
}

func (e *WriteError) Unwrap() []error {
	return []error{ErrCatalogWriteFailed, e.Err}
}

// Draft is a playlist the user has reviewed and confirmed.
type Draft struct {
	Name        string
	Description string
	Tracks      []resolve.Resolved
}

// Exportable returns the catalog URIs of resolved tracks in draft order.
func (d Draft) Exportable() []string {
	uris := make([]string, 0, len(d.Tracks))
	for _, t := range d.Tracks {
		if t.Found() {
			uris = append(uris, t.URI)
		}
	}
	return uris
}

// Result is the outcome of an export. ExportedTrackCount is the number of
// tracks actually written, which is less than requested after a partial
// failure.
type Result struct {
	PlaylistID         string `json:"playlistId"`
	PlaylistURL        string `json:"url"`
	PlaylistName       string `json:"name"`
	ExportedTrackCount int    `json:"trackCount"`
	DroppedCount       int    `json:"droppedCount"`
	Warning            string `json:"warning,omitempty"`
	Stage              Stage  `json:"stage"`
}

// PlaylistWriter creates and fills playlists.
type PlaylistWriter interface {
	CreatePlaylist(ctx context.Context, ownerID, name, description string) (*spotify.Playlist, error)
	AddTracks(ctx context.Context, playlistID string, uris []string) error
}

// Exporter runs exports. It never retries and never deletes a playlist it
// created.
type Exporter struct {
	writer PlaylistWriter
	log    zerolog.Logger
}

// NewExporter creates an Exporter.
func NewExporter(w PlaylistWriter) *Exporter {
	return &Exporter{
		writer: w,
		log:    logging.Component("export"),
	}
}

// Export creates a private playlist for ownerID and adds the draft's
// resolved tracks.
//
// A draft without resolved tracks fails with ErrNoResolvedTracks before any
// catalog call. A failure while creating returns a *WriteError and no
// result. A failure while adding tracks returns both the partial Result and
// a *WriteError.
func (e *Exporter) Export(ctx context.Context, d Draft, ownerID string) (*Result, error) {
	uris := d.Exportable()
	if len(uris) == 0 {
		metrics.RecordExport("no_tracks", 0)
		return nil, ErrNoResolvedTracks
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(d.Name)
	if name == "" {
		name = suggest.DefaultPlaylistName
	}

	log := e.log.With().Str("owner", ownerID).Int("tracks", len(uris)).Logger()
	log.Debug().Str("stage", string(StageCreating)).Msg("creating playlist")

	playlist, err := e.writer.CreatePlaylist(ctx, ownerID, name, strings.TrimSpace(d.Description))
	if err != nil {
		metrics.RecordExport("create_failed", 0)
		log.Warn().Err(err).Msg("playlist creation failed")
		return nil, &WriteError{Stage: StageCreating, StatusCode: spotify.StatusCode(err), Err: err}
	}

	result := &Result{
		PlaylistID:   playlist.ID,
		PlaylistURL:  playlist.URL,
		PlaylistName: name,
		DroppedCount: len(d.Tracks) - len(uris),
		Stage:        StagePopulating,
	}

	for i := 0; i < len(uris); i += batchSize {
		end := min(i+batchSize, len(uris))
		if err := e.writer.AddTracks(ctx, playlist.ID, uris[i:end]); err != nil {
			result.Warning = fmt.Sprintf("Playlist created but only %d of %d tracks were added.", result.ExportedTrackCount, len(uris))
			metrics.RecordExport("partial", result.ExportedTrackCount)
			log.Warn().Err(err).Str("playlist_id", playlist.ID).Int("written", result.ExportedTrackCount).Msg("adding tracks failed")
			return result, &WriteError{Stage: StagePopulating, StatusCode: spotify.StatusCode(err), Err: err}
		}
		result.ExportedTrackCount = end
	}

	result.Stage = StageDone
	if result.DroppedCount > 0 {
		result.Warning = fmt.Sprintf("%d of %d suggestions couldn't be found on Spotify and were skipped.", result.DroppedCount, len(d.Tracks))
	}

	metrics.RecordExport("success", result.ExportedTrackCount)
	log.Info().Str("playlist_id", playlist.ID).Int("dropped", result.DroppedCount).Msg("playlist exported")
	return result, nil
}
