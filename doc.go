// Package main provides the entry point for the pipeline-player application.
//
// Pipeline-player is a desktop player for computer-vision pipeline files. It
// runs a pipeline frame by frame, buffers the output for replay, remembers
// played pipelines in a per-user playlist, records finished runs, and exposes
// a local status API for tooling.
//
// # Application Lifecycle
//
// The application follows a structured initialization sequence:
//
//  1. Configuration Loading: Reads environment variables (with flag
//     overrides) and validates the .peekingduck directory
//  2. Metrics Registration: Registers Prometheus collectors and build info
//  3. Playlist Loading: Reads <base>/.peekingduck/playlist.yaml
//  4. Run History: Opens the SQLite run ledger (if enabled)
//  5. Session Creation: Builds the frame source and playback session
//  6. HTTP Server Setup: Configures status routes, middleware, and starts
//     the local status server (if enabled)
//  7. Graceful Shutdown: Handles SIGINT/SIGTERM, stops all components
//     cleanly and saves the playlist
//
// # Background Services
//
// Several goroutines run throughout the application lifecycle:
//
//   - Playback loop: Ticks the session at the configured frame rate
//   - Status server: Serves the local status and metrics API
//   - Metrics Collector: Refreshes session gauges periodically
//   - Signal watcher: Initiates shutdown on SIGINT/SIGTERM
//
// # HTTP Server
//
// The status server (default 127.0.0.1:8099) is loopback-only by default
// and serves:
//
//   - Probe endpoints (/healthz, /livez, /readyz)
//   - Session snapshot and playlist state (/api/status, /api/playlist)
//   - Recorded runs (/api/history)
//   - Build information (/api/version)
//   - Prometheus metrics (/metrics)
//
// # Environment Variables
//
// Configuration is primarily through environment variables:
//
//   - PLAYER_HOME: Base directory holding .peekingduck (default: user home)
//   - STATUS_ADDR: Status server listen address (default: 127.0.0.1:8099)
//   - STATUS_ENABLED: Enable the status server (default: true)
//   - HISTORY_ENABLED: Record finished runs (default: true)
//   - PLAYBACK_FPS: Playback tick rate, 1-240 (default: 60)
//   - LOG_HEALTH_CHECKS: Log probe endpoint requests (default: true)
//   - LOG_LEVEL: Logging level (debug/info/warn/error)
//
// Flags override their environment counterparts; run with -h for the list.
//
// # Graceful Shutdown
//
// The application handles SIGINT and SIGTERM signals gracefully:
//
//  1. Finish the executing run as stopped so it reaches the ledger
//  2. Shutdown the status server (30s timeout)
//  3. Stop the metrics collector
//  4. Save the playlist
//  5. Close the run history database
//
// # Build Requirements
//
// The application requires CGO for the SQLite run ledger. The window
// toolkit and the pipeline execution engine are linked by downstream
// builds; this binary uses a synthetic frame source.
//
// # Related Packages
//
//   - [pipeline-player/internal/player]: Playback session state machine
//   - [pipeline-player/internal/playlist]: Playlist store and YAML persistence
//   - [pipeline-player/internal/pipeline]: Frame source seam and synthetic source
//   - [pipeline-player/internal/history]: SQLite run ledger
//   - [pipeline-player/internal/status]: Status API handlers
//   - [pipeline-player/internal/middleware]: HTTP middleware (logging, metrics, gzip)
//   - [pipeline-player/internal/startup]: Configuration and initialization
package main
