// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// This package centralizes all application configuration and provides
// consistent logging throughout the application lifecycle.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig].
// The following environment variables are supported:
//
//   - PLAYER_HOME: Base directory holding the .peekingduck config directory
//     (default: the user home directory)
//   - STATUS_ADDR: Listen address for the status/metrics HTTP server
//     (default: 127.0.0.1:8099)
//   - STATUS_ENABLED: Enable or disable the status server (default: true)
//   - HISTORY_ENABLED: Enable or disable the run history database (default: true)
//   - PLAYBACK_FPS: Session tick rate in frames per second (default: 60)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// # Directory Setup
//
// LoadConfig resolves the base directory, derives the .peekingduck config
// directory beneath it, creates the directory when absent, and verifies it is
// writable. The playlist file and the run history database both live there.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//   - Version: Application version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//   - GoVersion: Go compiler version
//
// # Lifecycle Logging
//
// The package provides structured logging functions for consistent output:
//   - [LogPlaylistInit]: Playlist store load timing and entry count
//   - [LogHistoryInit]: Run history database location
//   - [LogSessionInit]: Session tick rate and iteration limit
//   - [LogHTTPRoutes]: Registered status routes (debug level)
//   - [LogServerStarted]: Endpoints and startup duration
//   - [LogShutdownInitiated]: Graceful shutdown start
//   - [LogShutdownComplete]: Shutdown completion
package startup
