package status

import (
	"net/http"
	"strconv"

	"pipeline-player/internal/history"
	"pipeline-player/internal/logging"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// GetHistory returns recent pipeline runs, newest first. ?pipeline= narrows
// the result to one pipeline, ?limit= caps the count.
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeJSONError(w, "run history is disabled", http.StatusNotFound)
		return
	}

	limit := defaultHistoryLimit
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	var (
		runs []history.Run
		err  error
	)
	if pipeline := r.URL.Query().Get("pipeline"); pipeline != "" {
		runs, err = h.history.RunsFor(r.Context(), pipeline, limit)
	} else {
		runs, err = h.history.RecentRuns(r.Context(), limit)
	}
	if err != nil {
		logging.Error("history query failed: %v", err)
		writeJSONError(w, "history query failed", http.StatusInternalServerError)
		return
	}

	if runs == nil {
		runs = []history.Run{}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, runs)
}
