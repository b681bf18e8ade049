// Package status provides the read-only HTTP API for observing the player.
//
// It includes handlers for:
//   - Liveness and readiness probes
//   - The live session snapshot and playlist contents
//   - Pipeline run history queries
//   - Version info and Prometheus metrics
//
// The handlers never mutate player state; changes go through the playback
// session and playlist view, not over HTTP.
package status
