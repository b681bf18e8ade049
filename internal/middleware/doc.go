// Package middleware provides HTTP middleware for the status server.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics with path normalization
//   - Response compression (gzip)
//   - Configurable filtering for health check probes
package middleware
