package spotify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/time/rate"
)

// newTestClient serves the given routes (method + " " + path) from a fake
// Web API.
func newTestClient(t *testing.T, routes map[string]http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return New(srv.Client(), WithBaseURL(srv.URL+"/"))
}

func jsonBody(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestConvertTrack(t *testing.T) {
	tests := []struct {
		name           string
		track          spotify.FullTrack
		expectedArtist string
		expectedArt    string
	}{
		{
			name: "single artist",
			track: spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{
					ID:      "track123",
					URI:     "spotify:track:track123",
					Name:    "Test Song",
					Artists: []spotify.SimpleArtist{{Name: "Artist One"}},
				},
				Album: spotify.SimpleAlbum{
					Name:   "Album",
					Images: []spotify.Image{{URL: "https://img/large"}, {URL: "https://img/small"}},
				},
			},
			expectedArtist: "Artist One",
			expectedArt:    "https://img/large",
		},
		{
			name: "primary artist is first listed",
			track: spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{
					ID:   "track456",
					URI:  "spotify:track:track456",
					Name: "Collab Track",
					Artists: []spotify.SimpleArtist{
						{Name: "Artist A"},
						{Name: "Artist B"},
					},
				},
			},
			expectedArtist: "Artist A",
		},
		{
			name: "no artists",
			track: spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{
					ID:      "track000",
					URI:     "spotify:track:track000",
					Name:    "Unknown Track",
					Artists: []spotify.SimpleArtist{},
				},
			},
			expectedArtist: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertTrack(tt.track)

			if got.ID != tt.track.ID.String() {
				t.Errorf("ID = %q, want %q", got.ID, tt.track.ID)
			}
			if got.URI != string(tt.track.URI) {
				t.Errorf("URI = %q, want %q", got.URI, tt.track.URI)
			}
			if got.Artist != tt.expectedArtist {
				t.Errorf("Artist = %q, want %q", got.Artist, tt.expectedArtist)
			}
			if got.ArtworkURL != tt.expectedArt {
				t.Errorf("ArtworkURL = %q, want %q", got.ArtworkURL, tt.expectedArt)
			}
		})
	}
}

func TestSearchTracks(t *testing.T) {
	var gotQuery, gotType, gotLimit string
	client := newTestClient(t, map[string]http.HandlerFunc{
		"GET /search": func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query().Get("q")
			gotType = r.URL.Query().Get("type")
			gotLimit = r.URL.Query().Get("limit")
			jsonBody(http.StatusOK, `{"tracks":{"items":[
				{"id":"t1","uri":"spotify:track:t1","name":"Hey Jude","artists":[{"name":"The Beatles"}],"album":{"name":"1","images":[{"url":"https://img/1"}]}},
				{"id":"t2","uri":"spotify:track:t2","name":"Hey Jude - Remastered","artists":[{"name":"The Beatles"}],"album":{"name":"Past Masters"}}
			],"total":2}}`)(w, r)
		},
	})

	tracks, err := client.SearchTracks(context.Background(), "track:Hey Jude artist:The Beatles", 3)
	if err != nil {
		t.Fatalf("SearchTracks() error = %v", err)
	}

	if gotQuery != "track:Hey Jude artist:The Beatles" {
		t.Errorf("q = %q", gotQuery)
	}
	if gotType != "track" {
		t.Errorf("type = %q, want track", gotType)
	}
	if gotLimit != "3" {
		t.Errorf("limit = %q, want 3", gotLimit)
	}

	if len(tracks) != 2 {
		t.Fatalf("got %d tracks, want 2", len(tracks))
	}
	if tracks[0].URI != "spotify:track:t1" {
		t.Errorf("tracks[0].URI = %q, want spotify:track:t1", tracks[0].URI)
	}
	if tracks[0].ArtworkURL != "https://img/1" {
		t.Errorf("tracks[0].ArtworkURL = %q", tracks[0].ArtworkURL)
	}
}

func TestSearchTracks_NoResults(t *testing.T) {
	client := newTestClient(t, map[string]http.HandlerFunc{
		"GET /search": jsonBody(http.StatusOK, `{"tracks":{"items":[],"total":0}}`),
	})

	tracks, err := client.SearchTracks(context.Background(), "nothing", 3)
	if err != nil {
		t.Fatalf("SearchTracks() error = %v", err)
	}
	if len(tracks) != 0 {
		t.Errorf("got %d tracks, want 0", len(tracks))
	}
}

func TestSearchTracks_LimiterCancelled(t *testing.T) {
	client := newTestClient(t, map[string]http.HandlerFunc{})
	client.limiter = rate.NewLimiter(rate.Limit(0.001), 1)
	client.limiter.Allow() // drain the only token

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.SearchTracks(ctx, "q", 3); err == nil {
		t.Fatal("SearchTracks() error = nil, want context error")
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name             string
		status           int
		wantUnauthorized bool
	}{
		{name: "expired token", status: http.StatusUnauthorized, wantUnauthorized: true},
		{name: "missing scope", status: http.StatusForbidden, wantUnauthorized: true},
		{name: "not found", status: http.StatusNotFound, wantUnauthorized: false},
		{name: "server error", status: http.StatusInternalServerError, wantUnauthorized: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, map[string]http.HandlerFunc{
				"GET /me": jsonBody(tt.status, `{"error":{"status":`+strconv.Itoa(tt.status)+`,"message":"nope"}}`),
			})

			_, err := client.Profile(context.Background())
			if err == nil {
				t.Fatal("Profile() error = nil, want error")
			}
			if got := errors.Is(err, ErrUnauthorized); got != tt.wantUnauthorized {
				t.Errorf("errors.Is(err, ErrUnauthorized) = %v, want %v", got, tt.wantUnauthorized)
			}
			if got := StatusCode(err); got != tt.status {
				t.Errorf("StatusCode() = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestProfile(t *testing.T) {
	client := newTestClient(t, map[string]http.HandlerFunc{
		"GET /me": jsonBody(http.StatusOK, `{"id":"alice","display_name":"Alice","email":"alice@example.com","images":[{"url":"https://img/alice"}]}`),
	})

	p, err := client.Profile(context.Background())
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	want := Profile{ID: "alice", DisplayName: "Alice", Email: "alice@example.com", AvatarURL: "https://img/alice"}
	if *p != want {
		t.Errorf("Profile() = %+v, want %+v", *p, want)
	}
}

func TestTopTracksAndArtists(t *testing.T) {
	var trackRange, artistLimit string
	client := newTestClient(t, map[string]http.HandlerFunc{
		"GET /me/top/tracks": func(w http.ResponseWriter, r *http.Request) {
			trackRange = r.URL.Query().Get("time_range")
			jsonBody(http.StatusOK, `{"items":[{"id":"t1","uri":"spotify:track:t1","name":"Song","artists":[{"name":"Band"}]}]}`)(w, r)
		},
		"GET /me/top/artists": func(w http.ResponseWriter, r *http.Request) {
			artistLimit = r.URL.Query().Get("limit")
			jsonBody(http.StatusOK, `{"items":[{"id":"a1","name":"Band","genres":["indie rock"],"images":[{"url":"https://img/band"}]}]}`)(w, r)
		},
	})

	tracks, err := client.TopTracks(context.Background(), 10)
	if err != nil {
		t.Fatalf("TopTracks() error = %v", err)
	}
	if len(tracks) != 1 || tracks[0].Artist != "Band" {
		t.Errorf("TopTracks() = %+v", tracks)
	}
	if trackRange != "medium_term" {
		t.Errorf("time_range = %q, want medium_term", trackRange)
	}

	artists, err := client.TopArtists(context.Background(), 0)
	if err != nil {
		t.Fatalf("TopArtists() error = %v", err)
	}
	if len(artists) != 1 || artists[0].Genres[0] != "indie rock" || artists[0].ImageURL != "https://img/band" {
		t.Errorf("TopArtists() = %+v", artists)
	}
	if artistLimit != "20" {
		t.Errorf("limit = %q, want default 20", artistLimit)
	}
}

func TestCreatePlaylistAndAddTracks(t *testing.T) {
	var createBody, addBody string
	client := newTestClient(t, map[string]http.HandlerFunc{
		"POST /users/alice/playlists": func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			createBody = string(b)
			jsonBody(http.StatusCreated, `{"id":"pl1","name":"Rainy Day","external_urls":{"spotify":"https://open.spotify.com/playlist/pl1"}}`)(w, r)
		},
		"POST /playlists/pl1/tracks": func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			addBody = string(b)
			jsonBody(http.StatusCreated, `{"snapshot_id":"s1"}`)(w, r)
		},
	})

	pl, err := client.CreatePlaylist(context.Background(), "alice", "Rainy Day", "for rain")
	if err != nil {
		t.Fatalf("CreatePlaylist() error = %v", err)
	}
	if pl.ID != "pl1" || pl.URL != "https://open.spotify.com/playlist/pl1" {
		t.Errorf("CreatePlaylist() = %+v", pl)
	}
	if !strings.Contains(createBody, `"public":false`) {
		t.Errorf("create body = %s, want private playlist", createBody)
	}

	err = client.AddTracks(context.Background(), "pl1", []string{"spotify:track:t1", "t2"})
	if err != nil {
		t.Fatalf("AddTracks() error = %v", err)
	}
	if !strings.Contains(addBody, "spotify:track:t1") || !strings.Contains(addBody, "spotify:track:t2") {
		t.Errorf("add body = %s, want both track URIs", addBody)
	}
}

func TestAddTracks_Limits(t *testing.T) {
	client := newTestClient(t, map[string]http.HandlerFunc{})

	if err := client.AddTracks(context.Background(), "pl1", nil); err != nil {
		t.Errorf("AddTracks(nil) error = %v, want nil", err)
	}

	uris := make([]string, MaxTracksPerRequest+1)
	for i := range uris {
		uris[i] = "spotify:track:x"
	}
	if err := client.AddTracks(context.Background(), "pl1", uris); err == nil {
		t.Error("AddTracks(101) error = nil, want error")
	}
}

func TestIDFromURI(t *testing.T) {
	tests := []struct {
		in   string
		want spotify.ID
	}{
		{"spotify:track:abc", "abc"},
		{"abc", "abc"},
	}
	for _, tt := range tests {
		if got := idFromURI(tt.in); got != tt.want {
			t.Errorf("idFromURI(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
