package web

import (
	"net/http"

	"github.com/justestif/go-spotify-ai-curator/internal/export"
	"github.com/justestif/go-spotify-ai-curator/internal/resolve"
	"github.com/justestif/go-spotify-ai-curator/internal/suggest"
)

// exportTrack is one reviewed suggestion. URI is set for rows that were
// already resolved; the rest are resolved again before export.
type exportTrack struct {
	Name   string `json:"name" validate:"required,max=200"`
	Artist string `json:"artist" validate:"max=200"`
	Reason string `json:"reason" validate:"max=500"`
	URI    string `json:"uri" validate:"omitempty,startswith=spotify:track:"`
}

type exportRequest struct {
	Name            string        `json:"name" validate:"max=100"`
	Description     string        `json:"description" validate:"max=300"`
	Recommendations []exportTrack `json:"recommendations" validate:"max=200,dive"`
}

// Export writes the reviewed suggestions to a new private playlist
// (POST /api/spotify/export).
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req exportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	catalog := h.catalogFor(ctx)

	tracks := make([]resolve.Resolved, len(req.Recommendations))
	var pending []suggest.Suggestion
	var pendingIdx []int
	for i, t := range req.Recommendations {
		s := suggest.Suggestion{Name: t.Name, Artist: t.Artist, Reason: t.Reason}
		if t.URI != "" {
			tracks[i] = resolve.Resolved{Suggestion: s, URI: t.URI}
			continue
		}
		pending = append(pending, s)
		pendingIdx = append(pendingIdx, i)
	}

	if len(pending) > 0 {
		resolver := resolve.NewResolver(catalog, resolve.WithConcurrency(h.cfg.ResolveConcurrency))
		results, err := resolver.ResolveAll(ctx, pending)
		if err != nil {
			writeError(w, r, err)
			return
		}
		for j, res := range results {
			tracks[pendingIdx[j]] = res
		}
	}

	draft := export.Draft{
		Name:        req.Name,
		Description: req.Description,
		Tracks:      tracks,
	}

	res, err := export.NewExporter(catalog).Export(ctx, draft, sessionFrom(ctx).User.ID)
	if err != nil {
		writeErrorResult(w, r, err, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
