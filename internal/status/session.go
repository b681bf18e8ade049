package status

import (
	"net/http"
)

// GetStatus returns a point-in-time snapshot of the playback session
func (h *Handlers) GetStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, h.session.Snapshot())
}
