package suggest

import (
	"errors"
	"testing"
)

func TestParseOutput(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantErr   error
		wantName  string
		wantCount int
	}{
		{
			name:      "full object",
			raw:       `{"playlistName":"Rainy Day","playlistDescription":"Soft songs","recommendations":[{"name":"Holocene","artist":"Bon Iver","reason":"hushed"}]}`,
			wantName:  "Rainy Day",
			wantCount: 1,
		},
		{
			name:      "missing playlist name uses default",
			raw:       `{"recommendations":[{"name":"Holocene","artist":"Bon Iver"},{"name":"Re: Stacks","artist":"Bon Iver"}]}`,
			wantName:  DefaultPlaylistName,
			wantCount: 2,
		},
		{
			name:      "unknown fields are ignored",
			raw:       `{"recommendations":[{"name":"Holocene","artist":"Bon Iver","year":2011}],"note":"x"}`,
			wantName:  DefaultPlaylistName,
			wantCount: 1,
		},
		{
			name:      "bare array",
			raw:       ` [{"name":"Holocene","artist":"Bon Iver","reason":"r"}] `,
			wantName:  DefaultPlaylistName,
			wantCount: 1,
		},
		{
			name:      "empty recommendations list",
			raw:       `{"recommendations":[]}`,
			wantName:  DefaultPlaylistName,
			wantCount: 0,
		},
		{name: "empty answer", raw: "  ", wantErr: ErrMalformedModelOutput},
		{name: "prose wrapped", raw: `Sure! Here you go: {"recommendations":[]}`, wantErr: ErrMalformedModelOutput},
		{name: "code fence", raw: "```json\n{\"recommendations\":[]}\n```", wantErr: ErrMalformedModelOutput},
		{name: "trailing text", raw: `{"recommendations":[]} hope this helps`, wantErr: ErrMalformedModelOutput},
		{name: "missing recommendations", raw: `{"playlistName":"x"}`, wantErr: ErrMalformedModelOutput},
		{name: "null recommendations", raw: `{"recommendations":null}`, wantErr: ErrMalformedModelOutput},
		{name: "missing artist", raw: `{"recommendations":[{"name":"Holocene"}]}`, wantErr: ErrMalformedModelOutput},
		{name: "blank name", raw: `{"recommendations":[{"name":"  ","artist":"Bon Iver"}]}`, wantErr: ErrMalformedModelOutput},
		{name: "wrong type", raw: `{"recommendations":"Holocene by Bon Iver"}`, wantErr: ErrMalformedModelOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := ParseOutput(tt.raw)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseOutput() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if gen.PlaylistName != tt.wantName {
				t.Errorf("PlaylistName = %q, want %q", gen.PlaylistName, tt.wantName)
			}
			if len(gen.Suggestions) != tt.wantCount {
				t.Errorf("got %d suggestions, want %d", len(gen.Suggestions), tt.wantCount)
			}
		})
	}
}

func TestParseOutput_TrimsFields(t *testing.T) {
	gen, err := ParseOutput(`{"recommendations":[{"name":" Holocene ","artist":" Bon Iver ","reason":" hushed "}]}`)
	if err != nil {
		t.Fatalf("ParseOutput() error = %v", err)
	}
	want := Suggestion{Name: "Holocene", Artist: "Bon Iver", Reason: "hushed"}
	if gen.Suggestions[0] != want {
		t.Errorf("Suggestions[0] = %+v, want %+v", gen.Suggestions[0], want)
	}
}
