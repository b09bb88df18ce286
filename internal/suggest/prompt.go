package suggest

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a music curator building a Spotify playlist.
Given a listener's mood and the tracks and artists they love, suggest new songs they would enjoy.
Only suggest real songs that are available on Spotify, and never repeat the listener's own tracks.
Respond ONLY with a JSON object of this exact shape:
{"playlistName": "...", "playlistDescription": "...", "recommendations": [{"name": "...", "artist": "...", "reason": "..."}]}
Use the primary artist only. Each reason is one short sentence tying the song to the listener's taste.`

// Prompt is the pair of messages sent to the model.
type Prompt struct {
	System string
	User   string
}

// BuildPrompt renders the seeds as a prompt. Empty sections are omitted and
// the final instruction always states the clamped count. The same seeds
// always produce the same prompt.
func BuildPrompt(seeds SeedSet) Prompt {
	seeds = seeds.normalized()

	var sections []string

	if seeds.Mood != "" {
		sections = append(sections, "Mood: "+seeds.Mood)
	}

	if len(seeds.Tracks) > 0 {
		var b strings.Builder
		b.WriteString("Tracks I love:")
		for i, t := range seeds.Tracks {
			if i == maxPromptTracks {
				break
			}
			if t.Artist != "" {
				fmt.Fprintf(&b, "\n%d. %q by %s", i+1, t.Name, t.Artist)
			} else {
				fmt.Fprintf(&b, "\n%d. %q", i+1, t.Name)
			}
		}
		sections = append(sections, b.String())
	}

	if len(seeds.Artists) > 0 {
		var b strings.Builder
		b.WriteString("Artists I love:")
		for _, a := range seeds.Artists {
			if len(a.Genres) > 0 {
				fmt.Fprintf(&b, "\n- %s (%s)", a.Name, strings.Join(a.Genres, ", "))
			} else {
				fmt.Fprintf(&b, "\n- %s", a.Name)
			}
		}
		sections = append(sections, b.String())
	}

	sections = append(sections, fmt.Sprintf("Recommend exactly %d songs I'd love.", seeds.Count))

	return Prompt{
		System: systemPrompt,
		User:   strings.Join(sections, "\n\n"),
	}
}
