package status

import (
	"net/http"

	"pipeline-player/internal/playlist"
)

// PlaylistResponse is the payload served at /api/playlist.
type PlaylistResponse struct {
	Count   int              `json:"count"`
	Entries []playlist.Stats `json:"entries"`
}

// GetPlaylist returns the playlist entries with their cached file stats,
// in insertion order
func (h *Handlers) GetPlaylist(w http.ResponseWriter, _ *http.Request) {
	entries := h.playlist.Playlist()
	if entries == nil {
		entries = []playlist.Stats{}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, PlaylistResponse{
		Count:   len(entries),
		Entries: entries,
	})
}
