// Package metrics provides Prometheus instrumentation for the pipeline player.
//
// This package defines and exposes the metrics scraped from the status
// server's /metrics endpoint. All metrics are prefixed with
// "pipeline_player_" to avoid naming collisions with other applications.
//
// # Metric Categories
//
// ## HTTP Metrics
//
// Track status API request performance:
//   - HTTPRequestsTotal: Counter of total requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of currently processing requests
//
// ## Playlist Metrics
//
// Monitor playlist store operations:
//   - PlaylistOperationsTotal: Counter of store operations by operation and status
//   - PlaylistEntries: Gauge of pipeline references in the playlist
//   - PlaylistPersistDuration: Histogram of playlist save duration
//
// ## Session Metrics
//
// Track the playback session:
//   - SessionState: Gauge of the current state (0 idle, 1 running, 2 playback)
//   - SessionFramesBuffered: Gauge of frames held in the session buffer
//   - SessionZoomFactor: Gauge of the current zoom factor
//   - FramesCapturedTotal: Counter of frames captured from pipeline runs
//   - FramesDisplayedTotal: Counter of frames handed to the display
//
// ## Pipeline Run Metrics
//
// Monitor pipeline execution:
//   - PipelineRunsTotal: Counter of runs by outcome (completed/stopped/failed)
//   - PipelineStepDuration: Histogram of single step duration
//   - PipelineStepErrors: Counter of step errors
//
// ## Run History Metrics
//
// Monitor the run history database:
//   - HistoryQueriesTotal: Counter of history operations by operation and status
//   - HistoryQueryDuration: Histogram of history operation duration
//
// ## Application Info
//
// Expose build information:
//   - AppInfo: Gauge with version, commit, and Go version labels
//
// # Usage
//
// Metrics are automatically registered with the default Prometheus registry
// using promauto. To expose them, mount the promhttp.Handler() on the
// metrics endpoint:
//
//	import "github.com/prometheus/client_golang/prometheus/promhttp"
//
//	router.Handle("/metrics", promhttp.Handler())
//
// # Recording Metrics
//
// To record metrics from other packages, import this package and use the
// exported metric variables:
//
//	import "pipeline-player/internal/metrics"
//
//	// Increment a counter
//	metrics.PlaylistOperationsTotal.WithLabelValues("add", "success").Inc()
//
//	// Observe a histogram value
//	metrics.PipelineStepDuration.Observe(0.016)
//
//	// Set a gauge value
//	metrics.SessionState.Set(1)
//
// # Collector
//
// The package provides a [Collector] type that periodically gathers gauge
// values from a [StatsProvider] (the running session) so that state, buffer
// size, and zoom stay current between scrapes. PlaylistEntries is not
// collected here; the playlist store sets it on every mutation:
//
//	collector := metrics.NewCollector(session, 15*time.Second)
//	collector.Start()
//	defer collector.Stop()
//
// # Prometheus Queries
//
// Example PromQL queries for common use cases:
//
// Request rate by endpoint:
//
//	sum(rate(pipeline_player_http_requests_total[5m])) by (path)
//
// Pipeline step latency P95:
//
//	histogram_quantile(0.95, sum(rate(pipeline_player_pipeline_step_duration_seconds_bucket[5m])) by (le))
//
// Failed run ratio:
//
//	rate(pipeline_player_pipeline_runs_total{status="failed"}[1h]) /
//	sum(rate(pipeline_player_pipeline_runs_total[1h]))
//
// Playlist save latency:
//
//	histogram_quantile(0.95, rate(pipeline_player_playlist_persist_duration_seconds_bucket[5m]))
package metrics
