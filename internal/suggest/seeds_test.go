package suggest

import "testing"

func TestClampCount(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{in: 0, want: DefaultCount},
		{in: -5, want: DefaultCount},
		{in: 1, want: MinCount},
		{in: 3, want: MinCount},
		{in: 4, want: 4},
		{in: 8, want: 8},
		{in: 30, want: 30},
		{in: 31, want: MaxCount},
		{in: 1000, want: MaxCount},
	}

	for _, tt := range tests {
		if got := ClampCount(tt.in); got != tt.want {
			t.Errorf("ClampCount(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSeedSet_Empty(t *testing.T) {
	tests := []struct {
		name  string
		seeds SeedSet
		want  bool
	}{
		{name: "zero value", seeds: SeedSet{}, want: true},
		{name: "whitespace mood", seeds: SeedSet{Mood: "   "}, want: true},
		{name: "mood only", seeds: SeedSet{Mood: "rainy sunday"}, want: false},
		{name: "tracks only", seeds: SeedSet{Tracks: []TrackSeed{{Name: "Blinding Lights", Artist: "The Weeknd"}}}, want: false},
		{name: "artists only", seeds: SeedSet{Artists: []ArtistSeed{{Name: "Slowdive"}}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.seeds.Empty(); got != tt.want {
				t.Errorf("Empty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSeedSet_Normalized(t *testing.T) {
	in := SeedSet{
		Mood:    "  late night  ",
		Tracks:  []TrackSeed{{Name: " "}, {Name: " Nightcall ", Artist: " Kavinsky "}},
		Artists: []ArtistSeed{{Name: ""}, {Name: "Chromatics", Genres: []string{"italo disco"}}},
		Count:   100,
	}

	got := in.normalized()

	if got.Mood != "late night" {
		t.Errorf("Mood = %q, want %q", got.Mood, "late night")
	}
	if len(got.Tracks) != 1 || got.Tracks[0].Name != "Nightcall" || got.Tracks[0].Artist != "Kavinsky" {
		t.Errorf("Tracks = %+v", got.Tracks)
	}
	if len(got.Artists) != 1 || got.Artists[0].Name != "Chromatics" {
		t.Errorf("Artists = %+v", got.Artists)
	}
	if got.Count != MaxCount {
		t.Errorf("Count = %d, want %d", got.Count, MaxCount)
	}
}
