// Package logging provides a simple leveled logging interface for the
// pipeline player.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The starting level is resolved once from the DEBUG and LOG_LEVEL
// environment variables; SetLevel and SetOutput exist so tests and the
// startup path can adjust behavior without re-reading the environment.
package logging
