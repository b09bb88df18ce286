// Package suggest turns listener seeds into playlist suggestions from a
// generative model.
package suggest

import (
	"errors"
	"strings"
)

const (
	// MinCount and MaxCount bound the number of requested suggestions.
	MinCount = 4
	MaxCount = 30

	// DefaultCount is used when no count is requested.
	DefaultCount = 8

	// DefaultPlaylistName is used when the model omits a name.
	DefaultPlaylistName = "AI Curator Picks"

	// maxPromptTracks caps how many track seeds reach the prompt.
	maxPromptTracks = 20
)

var (
	// ErrNoSeeds is returned when a seed set has no mood, tracks or artists.
	ErrNoSeeds = errors.New("no mood, tracks or artists to seed recommendations")

	// ErrModelUnavailable is returned when the model cannot be reached or
	// rejects the request.
	ErrModelUnavailable = errors.New("recommendation model unavailable")

	// ErrMalformedModelOutput is returned when the model's answer does not
	// match the expected JSON shape.
	ErrMalformedModelOutput = errors.New("recommendation model returned malformed output")
)

// TrackSeed is a track the listener picked.
type TrackSeed struct {
	Name   string `json:"name" validate:"required,max=200"`
	Artist string `json:"artist" validate:"max=200"`
}

// ArtistSeed is an artist the listener picked.
type ArtistSeed struct {
	Name   string   `json:"name" validate:"required,max=200"`
	Genres []string `json:"genres,omitempty" validate:"max=10,dive,max=60"`
}

// SeedSet is everything the listener gave us to work from.
type SeedSet struct {
	Mood    string       `json:"mood" validate:"max=500"`
	Tracks  []TrackSeed  `json:"tracks" validate:"max=50,dive"`
	Artists []ArtistSeed `json:"artists" validate:"max=50,dive"`
	Count   int          `json:"count"`
}

// Empty reports whether there is nothing to seed a generation with.
func (s SeedSet) Empty() bool {
	return strings.TrimSpace(s.Mood) == "" && len(s.Tracks) == 0 && len(s.Artists) == 0
}

// ClampCount maps a requested count into [MinCount, MaxCount].
// Zero or negative means DefaultCount.
func ClampCount(n int) int {
	switch {
	case n <= 0:
		return DefaultCount
	case n < MinCount:
		return MinCount
	case n > MaxCount:
		return MaxCount
	default:
		return n
	}
}

// normalized returns a copy with trimmed text, blank seeds dropped and the
// count clamped.
func (s SeedSet) normalized() SeedSet {
	out := SeedSet{
		Mood:  strings.TrimSpace(s.Mood),
		Count: ClampCount(s.Count),
	}
	for _, t := range s.Tracks {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			continue
		}
		out.Tracks = append(out.Tracks, TrackSeed{Name: name, Artist: strings.TrimSpace(t.Artist)})
	}
	for _, a := range s.Artists {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			continue
		}
		out.Artists = append(out.Artists, ArtistSeed{Name: name, Genres: append([]string(nil), a.Genres...)})
	}
	return out
}
