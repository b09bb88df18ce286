package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/justestif/go-spotify-ai-curator/internal/export"
	"github.com/justestif/go-spotify-ai-curator/internal/spotify"
)

func exportRequestBody(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/spotify/export", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestExport(t *testing.T) {
	e := newTestEnv(t, Config{})
	e.catalog.known = []spotify.Track{
		{ID: "t2", URI: "spotify:track:t2", Name: "Needs Lookup", Artist: "Band B"},
	}

	body := `{
		"name": "Late Night",
		"description": "Slow songs",
		"recommendations": [
			{"name": "Already Found", "artist": "Band A", "uri": "spotify:track:t1"},
			{"name": "Needs Lookup", "artist": "Band B"},
			{"name": "Not On Spotify", "artist": "Nobody"}
		]
	}`
	rec := e.do(e.signIn(t, exportRequestBody(body), freshSession()))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
	}

	var res export.Result
	decodeBody(t, rec, &res)
	if res.PlaylistURL != "https://open.spotify.com/playlist/pl1" || res.PlaylistName != "Late Night" {
		t.Errorf("result = %+v", res)
	}
	if res.ExportedTrackCount != 2 || res.DroppedCount != 1 {
		t.Errorf("trackCount = %d dropped = %d, want 2 and 1", res.ExportedTrackCount, res.DroppedCount)
	}
	if res.Warning == "" {
		t.Error("expected a warning about the dropped suggestion")
	}

	want := []string{"spotify:track:t1", "spotify:track:t2"}
	if len(e.catalog.added) != len(want) {
		t.Fatalf("added = %v, want %v", e.catalog.added, want)
	}
	for i := range want {
		if e.catalog.added[i] != want[i] {
			t.Errorf("added[%d] = %q, want %q", i, e.catalog.added[i], want[i])
		}
	}
}

func TestExport_SkipsSearchForResolvedRows(t *testing.T) {
	e := newTestEnv(t, Config{})

	body := `{"name":"Mix","recommendations":[{"name":"A","artist":"B","uri":"spotify:track:t1"}]}`
	rec := e.do(e.signIn(t, exportRequestBody(body), freshSession()))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
	}
	if got := e.catalog.searches.Load(); got != 0 {
		t.Errorf("searches = %d, want 0", got)
	}
}

func TestExport_NothingResolvable(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no matches", `{"name":"Mix","recommendations":[{"name":"Ghost","artist":"Nobody"}]}`},
		{"empty list", `{"name":"Mix","recommendations":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t, Config{})

			rec := e.do(e.signIn(t, exportRequestBody(tt.body), freshSession()))
			if rec.Code != http.StatusNotFound {
				t.Fatalf("status = %d, want 404", rec.Code)
			}
			var body errorBody
			decodeBody(t, rec, &body)
			if body.Error != "Couldn't find any of those tracks on Spotify" {
				t.Errorf("error = %q", body.Error)
			}
			if got := e.catalog.creates.Load(); got != 0 {
				t.Errorf("create calls = %d, want 0", got)
			}
		})
	}
}

func TestExport_Failures(t *testing.T) {
	tests := []struct {
		name         string
		createErr    error
		addErr       error
		wantStatus   int
		wantReauth   bool
		wantProvider int
		wantResult   bool
	}{
		{
			name:       "create forbidden",
			createErr:  &spotify.APIError{Status: http.StatusForbidden, Message: "Insufficient client scope"},
			wantStatus: http.StatusUnauthorized,
			wantReauth: true,
		},
		{
			name:         "create server error",
			createErr:    &spotify.APIError{Status: http.StatusInternalServerError, Message: "boom"},
			wantStatus:   http.StatusBadGateway,
			wantProvider: http.StatusInternalServerError,
		},
		{
			name:         "populate fails",
			addErr:       &spotify.APIError{Status: http.StatusBadGateway, Message: "bad gateway"},
			wantStatus:   http.StatusBadGateway,
			wantProvider: http.StatusBadGateway,
			wantResult:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t, Config{})
			e.catalog.createErr = tt.createErr
			e.catalog.addErr = tt.addErr

			body := `{"name":"Mix","recommendations":[{"name":"A","artist":"B","uri":"spotify:track:t1"}]}`
			rec := e.do(e.signIn(t, exportRequestBody(body), freshSession()))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body = %s", rec.Code, tt.wantStatus, rec.Body.String())
			}

			var resp errorBody
			decodeBody(t, rec, &resp)
			if resp.NeedsReauth != tt.wantReauth {
				t.Errorf("needsReauth = %v, want %v", resp.NeedsReauth, tt.wantReauth)
			}
			if resp.ProviderStatus != tt.wantProvider {
				t.Errorf("providerStatus = %d, want %d", resp.ProviderStatus, tt.wantProvider)
			}
			if (resp.Result != nil) != tt.wantResult {
				t.Fatalf("result present = %v, want %v", resp.Result != nil, tt.wantResult)
			}
			if tt.wantResult {
				if resp.Result.PlaylistID != "pl1" || resp.Result.ExportedTrackCount != 0 {
					t.Errorf("partial result = %+v", resp.Result)
				}
				if resp.Result.Stage != export.StagePopulating {
					t.Errorf("stage = %q, want %q", resp.Result.Stage, export.StagePopulating)
				}
			}
		})
	}
}

func TestExport_InvalidBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"recommendations":[`},
		{"row without name", `{"recommendations":[{"artist":"B"}]}`},
		{"bad uri", `{"recommendations":[{"name":"A","uri":"https://example.com"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t, Config{})
			rec := e.do(e.signIn(t, exportRequestBody(tt.body), freshSession()))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400; body = %s", rec.Code, rec.Body.String())
			}
			if got := e.catalog.creates.Load(); got != 0 {
				t.Errorf("create calls = %d, want 0", got)
			}
		})
	}
}
