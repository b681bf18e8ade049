package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	// --- Playlist store operations ---
	for _, op := range []string{"load", "save", "add", "remove", "set"} {
		PlaylistOperationsTotal.WithLabelValues(op, "success")
		PlaylistOperationsTotal.WithLabelValues(op, "error")
	}

	// --- Pipeline run outcomes ---
	for _, status := range []string{"completed", "stopped", "failed"} {
		PipelineRunsTotal.WithLabelValues(status)
	}

	// --- Run history operations ---
	for _, op := range []string{"initialize_schema", "record_run", "runs_for", "recent_runs", "last_run"} {
		HistoryQueriesTotal.WithLabelValues(op, "success")
		HistoryQueriesTotal.WithLabelValues(op, "error")
		HistoryQueryDuration.WithLabelValues(op)
	}

	// Gauges start at their idle values instead of being absent.
	SessionState.Set(0)
	SessionFramesBuffered.Set(0)
	SessionZoomFactor.Set(1)
	PlaylistEntries.Set(0)
}
