package status

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pipeline-player/internal/history"
	"pipeline-player/internal/player"
	"pipeline-player/internal/playlist"
	"pipeline-player/internal/startup"
)

// Compile-time wiring checks: the player session and the run ledger must
// satisfy the provider interfaces the handlers are built against.
var (
	_ Snapshotter      = (*player.Session)(nil)
	_ PlaylistProvider = (*player.Session)(nil)
	_ HistoryReader    = (*history.Ledger)(nil)
)

// =============================================================================
// Fakes
// =============================================================================

type fakeSession struct {
	snapshot player.Snapshot
}

func (f *fakeSession) Snapshot() player.Snapshot { return f.snapshot }

type fakePlaylist struct {
	entries []playlist.Stats
}

func (f *fakePlaylist) Playlist() []playlist.Stats { return f.entries }

type fakeHistory struct {
	pingErr  error
	queryErr error
	runs     []history.Run

	gotPipeline  string
	gotLimit     int
	recentCalls  int
	runsForCalls int
}

func (f *fakeHistory) Ping(_ context.Context) error { return f.pingErr }

func (f *fakeHistory) RecentRuns(_ context.Context, limit int) ([]history.Run, error) {
	f.recentCalls++
	f.gotLimit = limit
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.runs, nil
}

func (f *fakeHistory) RunsFor(_ context.Context, pipeline string, limit int) ([]history.Run, error) {
	f.runsForCalls++
	f.gotPipeline = pipeline
	f.gotLimit = limit
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.runs, nil
}

// newTestHandlers returns handlers backed by fakes in a ready state: an
// attached (empty) playlist and a history reader whose ping succeeds.
func newTestHandlers() (*Handlers, *fakeSession, *fakePlaylist, *fakeHistory) {
	session := &fakeSession{snapshot: player.Snapshot{State: "idle", FrameIndex: -1, Zoom: 1.0}}
	pl := &fakePlaylist{entries: []playlist.Stats{}}
	hist := &fakeHistory{}
	return New(session, pl, hist), session, pl, hist
}

func testStats() []playlist.Stats {
	return []playlist.Stats{
		{
			Pipeline:   "demo/pose.yml",
			Name:       "pose.yml",
			Exists:     true,
			ModifiedAt: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			Pipeline: "demo/object.yml",
			Name:     "object.yml",
			Exists:   false,
		},
	}
}

// =============================================================================
// GetStatus Tests
// =============================================================================

func TestGetStatusReturnsSnapshot(t *testing.T) {
	t.Parallel()

	h, session, _, _ := newTestHandlers()
	session.snapshot = player.Snapshot{
		State:          "running",
		Pipeline:       "demo/pose.yml",
		FrameIndex:     3,
		FramesBuffered: 4,
		TotalFrames:    10,
		Zoom:           1.25,
	}

	req := httptest.NewRequest(http.MethodGet, "/api/status", http.NoBody)
	w := httptest.NewRecorder()

	h.GetStatus(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if contentType := w.Header().Get("Content-Type"); contentType != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %q", contentType)
	}

	var got player.Snapshot
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got != session.snapshot {
		t.Errorf("Snapshot mismatch: got %+v, want %+v", got, session.snapshot)
	}
}

func TestGetStatusCarriesLastError(t *testing.T) {
	t.Parallel()

	h, session, _, _ := newTestHandlers()
	session.snapshot = player.Snapshot{
		State:     "idle",
		Pipeline:  "demo/pose.yml",
		LastError: "step 2 failed: decode failure",
		Zoom:      1.0,
	}

	req := httptest.NewRequest(http.MethodGet, "/api/status", http.NoBody)
	w := httptest.NewRecorder()

	h.GetStatus(w, req)

	var got player.Snapshot
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got.LastError != session.snapshot.LastError {
		t.Errorf("Expected lastError %q, got %q", session.snapshot.LastError, got.LastError)
	}
}

// =============================================================================
// GetPlaylist Tests
// =============================================================================

func TestGetPlaylistPayload(t *testing.T) {
	t.Parallel()

	h, _, pl, _ := newTestHandlers()
	pl.entries = testStats()

	req := httptest.NewRequest(http.MethodGet, "/api/playlist", http.NoBody)
	w := httptest.NewRecorder()

	h.GetPlaylist(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp PlaylistResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Count != 2 {
		t.Errorf("Expected count 2, got %d", resp.Count)
	}
	if len(resp.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(resp.Entries))
	}
	if resp.Entries[0].Pipeline != "demo/pose.yml" || resp.Entries[1].Pipeline != "demo/object.yml" {
		t.Errorf("Entries not in insertion order: %+v", resp.Entries)
	}
	if !resp.Entries[0].Exists {
		t.Error("Expected first entry to exist")
	}
	if resp.Entries[1].Exists {
		t.Error("Expected second entry to be missing")
	}
}

func TestGetPlaylistWithoutStoreServesEmptyList(t *testing.T) {
	t.Parallel()

	h, _, pl, _ := newTestHandlers()
	pl.entries = nil

	req := httptest.NewRequest(http.MethodGet, "/api/playlist", http.NoBody)
	w := httptest.NewRecorder()

	h.GetPlaylist(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	// The payload must carry an empty array, never null.
	if !strings.Contains(w.Body.String(), `"entries":[]`) {
		t.Errorf("Expected empty entries array, got %s", w.Body.String())
	}
}

// =============================================================================
// GetVersion Tests
// =============================================================================

func TestGetVersionFields(t *testing.T) {
	t.Parallel()

	h, _, _, _ := newTestHandlers()

	req := httptest.NewRequest(http.MethodGet, "/api/version", http.NoBody)
	w := httptest.NewRecorder()

	h.GetVersion(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if cacheControl := w.Header().Get("Cache-Control"); cacheControl != "no-cache" {
		t.Errorf("Expected Cache-Control: no-cache, got %q", cacheControl)
	}

	var resp startup.BuildInfo
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.GoVersion == "" {
		t.Error("Expected non-empty goVersion")
	}
	if resp.OS == "" || resp.Arch == "" {
		t.Errorf("Expected non-empty os/arch, got %q/%q", resp.OS, resp.Arch)
	}
}

// =============================================================================
// Router Tests
// =============================================================================

func TestRouterServesAllRoutes(t *testing.T) {
	t.Parallel()

	h, _, _, _ := newTestHandlers()
	router := Router(h)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"healthz", http.MethodGet, "/healthz", http.StatusOK},
		{"healthz HEAD", http.MethodHead, "/healthz", http.StatusOK},
		{"livez", http.MethodGet, "/livez", http.StatusOK},
		{"readyz", http.MethodGet, "/readyz", http.StatusOK},
		{"status", http.MethodGet, "/api/status", http.StatusOK},
		{"playlist", http.MethodGet, "/api/playlist", http.StatusOK},
		{"history", http.MethodGet, "/api/history", http.StatusOK},
		{"version", http.MethodGet, "/api/version", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"unknown path", http.MethodGet, "/api/nope", http.StatusNotFound},
		{"no mutation via status", http.MethodPost, "/api/status", http.StatusMethodNotAllowed},
		{"no mutation via playlist", http.MethodDelete, "/api/playlist", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("Expected status %d for %s %s, got %d", tt.want, tt.method, tt.path, w.Code)
			}
		})
	}
}

// =============================================================================
// Metrics Tests
// =============================================================================

func TestMetricsEndpointServesPrometheusText(t *testing.T) {
	t.Parallel()

	h, _, _, _ := newTestHandlers()
	router := Router(h)

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	if !strings.Contains(w.Body.String(), "pipeline_player_playlist_entries") {
		t.Error("Expected playlist entries gauge in the exposition")
	}
}
