package status

import (
	"context"

	"pipeline-player/internal/history"
	"pipeline-player/internal/player"
	"pipeline-player/internal/playlist"

	"github.com/gorilla/mux"
)

// Snapshotter reports the live playback state. *player.Session implements it.
type Snapshotter interface {
	Snapshot() player.Snapshot
}

// PlaylistProvider reports the playlist entries in insertion order.
// *player.Session implements it; a nil slice means no playlist is attached.
type PlaylistProvider interface {
	Playlist() []playlist.Stats
}

// HistoryReader answers run history queries. *history.Ledger implements it.
type HistoryReader interface {
	Ping(ctx context.Context) error
	RecentRuns(ctx context.Context, limit int) ([]history.Run, error)
	RunsFor(ctx context.Context, pipeline string, limit int) ([]history.Run, error)
}

// Handlers serves the read-only status API. All playback and playlist
// mutation flows through the player's typed interfaces; HTTP only reports.
type Handlers struct {
	session  Snapshotter
	playlist PlaylistProvider
	history  HistoryReader // nil when run history is disabled
}

func New(session Snapshotter, playlist PlaylistProvider, hist HistoryReader) *Handlers {
	return &Handlers{
		session:  session,
		playlist: playlist,
		history:  hist,
	}
}

// Router builds the route table for the status server.
func Router(h *Handlers) *mux.Router {
	r := mux.NewRouter()

	// Probe routes
	r.HandleFunc("/healthz", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")

	// Read-only API routes
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", h.GetStatus).Methods("GET")
	api.HandleFunc("/playlist", h.GetPlaylist).Methods("GET")
	api.HandleFunc("/history", h.GetHistory).Methods("GET")
	api.HandleFunc("/version", h.GetVersion).Methods("GET")

	// Prometheus metrics
	r.Handle("/metrics", h.MetricsHandler()).Methods("GET")

	return r
}
