package status

import (
	"context"
	"net/http"

	"pipeline-player/internal/logging"
)

// LivenessCheck is a simple liveness probe (always returns 200 if the server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	// For HEAD requests, only send headers (no body)
	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		return
	}

	writeJSONStatus(w, "ok")
}

// ReadinessCheck returns 200 only when the player can serve its full API:
// the playlist store is attached and, when run history is enabled, the
// ledger answers a ping.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if h.ready(r.Context()) {
		writeJSONStatus(w, "ready")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusServiceUnavailable)
	writeJSON(w, map[string]string{
		"status": "not_ready",
	})
}

func (h *Handlers) ready(ctx context.Context) bool {
	if h.playlist == nil || h.playlist.Playlist() == nil {
		return false
	}

	// A nil reader means history is disabled, which is a valid ready state.
	if h.history != nil {
		if err := h.history.Ping(ctx); err != nil {
			logging.Warn("readiness check: history ping failed: %v", err)
			return false
		}
	}

	return true
}
