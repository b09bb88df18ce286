package suggest

import (
	"fmt"
	"strings"
	"testing"
)

func TestBuildPrompt_Sections(t *testing.T) {
	tests := []struct {
		name        string
		seeds       SeedSet
		wantContain []string
		wantAbsent  []string
	}{
		{
			name:        "mood only",
			seeds:       SeedSet{Mood: "rainy sunday", Count: 10},
			wantContain: []string{"Mood: rainy sunday", "Recommend exactly 10 songs"},
			wantAbsent:  []string{"Tracks I love", "Artists I love"},
		},
		{
			name: "tracks only",
			seeds: SeedSet{
				Tracks: []TrackSeed{{Name: "Blinding Lights", Artist: "The Weeknd"}},
			},
			wantContain: []string{`1. "Blinding Lights" by The Weeknd`, "Recommend exactly 8 songs"},
			wantAbsent:  []string{"Mood:", "Artists I love"},
		},
		{
			name: "artists with genres",
			seeds: SeedSet{
				Artists: []ArtistSeed{{Name: "Slowdive", Genres: []string{"shoegaze", "dream pop"}}, {Name: "Ride"}},
				Count:   2,
			},
			wantContain: []string{"- Slowdive (shoegaze, dream pop)", "- Ride", "Recommend exactly 4 songs"},
			wantAbsent:  []string{"Mood:", "Tracks I love"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BuildPrompt(tt.seeds)
			for _, s := range tt.wantContain {
				if !strings.Contains(p.User, s) {
					t.Errorf("prompt missing %q:\n%s", s, p.User)
				}
			}
			for _, s := range tt.wantAbsent {
				if strings.Contains(p.User, s) {
					t.Errorf("prompt unexpectedly contains %q:\n%s", s, p.User)
				}
			}
			if !strings.Contains(p.System, "recommendations") {
				t.Error("system prompt does not describe the output shape")
			}
		})
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	seeds := SeedSet{
		Mood:    "focus",
		Tracks:  []TrackSeed{{Name: "Intro", Artist: "The xx"}},
		Artists: []ArtistSeed{{Name: "Bonobo", Genres: []string{"downtempo"}}},
		Count:   12,
	}

	a := BuildPrompt(seeds)
	b := BuildPrompt(seeds)
	if a != b {
		t.Errorf("BuildPrompt() not deterministic:\n%q\n%q", a.User, b.User)
	}
	if !strings.HasSuffix(a.User, "Recommend exactly 12 songs I'd love.") {
		t.Errorf("final instruction missing or not last:\n%s", a.User)
	}
}

func TestBuildPrompt_CapsTracks(t *testing.T) {
	var seeds SeedSet
	for i := 1; i <= 25; i++ {
		seeds.Tracks = append(seeds.Tracks, TrackSeed{Name: fmt.Sprintf("Song %d", i), Artist: "Band"})
	}

	p := BuildPrompt(seeds)
	if !strings.Contains(p.User, `20. "Song 20"`) {
		t.Error("prompt missing 20th track")
	}
	if strings.Contains(p.User, `21. "Song 21"`) {
		t.Error("prompt includes more than 20 tracks")
	}
}
