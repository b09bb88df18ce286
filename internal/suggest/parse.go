package suggest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Suggestion is one song proposed by the model. It is untrusted until
// resolved against the catalog.
type Suggestion struct {
	Name   string `json:"name" validate:"required"`
	Artist string `json:"artist" validate:"required"`
	Reason string `json:"reason"`
}

// Generation is a decoded model answer.
type Generation struct {
	PlaylistName        string       `json:"playlistName"`
	PlaylistDescription string       `json:"playlistDescription"`
	Suggestions         []Suggestion `json:"recommendations"`
}

type modelOutput struct {
	PlaylistName        string       `json:"playlistName"`
	PlaylistDescription string       `json:"playlistDescription"`
	Recommendations     []Suggestion `json:"recommendations" validate:"required,dive"`
}

// ParseOutput decodes a model answer. The answer must be a single JSON
// object with a recommendations list, or a bare JSON array of
// recommendations. Every recommendation needs a name and an artist.
// Anything else, including JSON wrapped in prose, is ErrMalformedModelOutput.
func ParseOutput(raw string) (*Generation, error) {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty answer", ErrMalformedModelOutput)
	}

	var out modelOutput
	switch data[0] {
	case '{':
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedModelOutput, err)
		}
	case '[':
		if err := json.Unmarshal(data, &out.Recommendations); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedModelOutput, err)
		}
		if out.Recommendations == nil {
			out.Recommendations = []Suggestion{}
		}
	default:
		return nil, fmt.Errorf("%w: answer is not a JSON object", ErrMalformedModelOutput)
	}

	for i := range out.Recommendations {
		r := &out.Recommendations[i]
		r.Name = strings.TrimSpace(r.Name)
		r.Artist = strings.TrimSpace(r.Artist)
		r.Reason = strings.TrimSpace(r.Reason)
	}

	if err := validate.Struct(out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedModelOutput, err)
	}

	gen := &Generation{
		PlaylistName:        strings.TrimSpace(out.PlaylistName),
		PlaylistDescription: strings.TrimSpace(out.PlaylistDescription),
		Suggestions:         out.Recommendations,
	}
	if gen.PlaylistName == "" {
		gen.PlaylistName = DefaultPlaylistName
	}
	return gen, nil
}
