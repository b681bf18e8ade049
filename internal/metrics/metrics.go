package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_player_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_player_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipeline_player_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Playlist metrics
var (
	PlaylistOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_player_playlist_operations_total",
			Help: "Total number of playlist store operations",
		},
		[]string{"operation", "status"},
	)

	PlaylistEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipeline_player_playlist_entries",
			Help: "Number of pipeline references currently in the playlist",
		},
	)

	PlaylistPersistDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pipeline_player_playlist_persist_duration_seconds",
			Help:    "Playlist save duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)
)

// Session metrics
var (
	SessionState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipeline_player_session_state",
			Help: "Current session state (0 = idle, 1 = running, 2 = playback)",
		},
	)

	SessionFramesBuffered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipeline_player_session_frames_buffered",
			Help: "Number of captured frames held in the session buffer",
		},
	)

	SessionZoomFactor = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipeline_player_session_zoom_factor",
			Help: "Current zoom factor applied to displayed frames",
		},
	)

	FramesCapturedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_player_frames_captured_total",
			Help: "Total number of frames captured from pipeline runs",
		},
	)

	FramesDisplayedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_player_frames_displayed_total",
			Help: "Total number of frames handed to the display",
		},
	)
)

// Pipeline run metrics
var (
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_player_pipeline_runs_total",
			Help: "Total number of pipeline runs by outcome",
		},
		[]string{"status"},
	)

	PipelineStepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pipeline_player_pipeline_step_duration_seconds",
			Help:    "Single pipeline step duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	PipelineStepErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_player_pipeline_step_errors_total",
			Help: "Total number of pipeline step errors",
		},
	)
)

// Run history metrics
var (
	HistoryQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_player_history_queries_total",
			Help: "Total number of run history database operations",
		},
		[]string{"operation", "status"},
	)

	HistoryQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_player_history_query_duration_seconds",
			Help:    "Run history database operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pipeline_player_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
