package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"pipeline-player/internal/logging"
)

// responseWriter records the status code and body size of a response as
// it passes through, for the access log line written afterwards.
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// LoggingConfig controls which requests get an access log line.
type LoggingConfig struct {
	// SkipPaths suppresses logging for any path with one of these prefixes.
	SkipPaths []string
	// LogHealthChecks includes the probe endpoints in the access log.
	LogHealthChecks bool
}

// DefaultLoggingConfig logs everything, probes included.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{SkipPaths: []string{}, LogHealthChecks: true}
}

// probePaths are the endpoints liveness/readiness tooling polls.
var probePaths = map[string]bool{
	"/healthz": true,
	"/livez":   true,
	"/readyz":  true,
}

// Logger returns middleware that writes one W3C Extended Log Format line
// per request. Field values taken from the request are sanitized first so
// a crafted header cannot forge extra log lines.
func Logger(config LoggingConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if shouldSkip(r.URL.Path, config) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			wrapped := newResponseWriter(w)
			next.ServeHTTP(wrapped, r)
			writeAccessLog(r, wrapped, time.Since(start))
		})
	}
}

// writeAccessLog emits the fields in this order:
//
//	date time c-ip cs-method cs-uri-stem cs-uri-query sc-status sc-bytes
//	time-taken cs(Content-Encoding) cs(User-Agent) cs(Referer)
func writeAccessLog(r *http.Request, rw *responseWriter, elapsed time.Duration) {
	now := time.Now().UTC()

	query := sanitizeLogField(r.URL.RawQuery)
	if query == "" {
		query = "-"
	}

	encoding := rw.Header().Get("Content-Encoding")
	if encoding == "" {
		encoding = "-"
	}

	agent := sanitizeLogField(r.Header.Get("User-Agent"))
	if agent == "" {
		agent = "-"
	} else {
		agent = escapeW3CField(agent)
	}

	referer := sanitizeLogField(r.Header.Get("Referer"))
	if referer == "" {
		referer = "-"
	}

	logging.Printf("%s %s %s %s %s %s %d %d %d %s %s %s",
		now.Format("2006-01-02"),
		now.Format("15:04:05"),
		sanitizeLogField(getClientIP(r)),
		sanitizeLogField(r.Method),
		sanitizeLogField(r.URL.Path),
		query,
		rw.statusCode,
		rw.bytesWritten,
		elapsed.Milliseconds(),
		encoding,
		agent,
		referer,
	)
}

func shouldSkip(path string, config LoggingConfig) bool {
	for _, prefix := range config.SkipPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return !config.LogHealthChecks && probePaths[path]
}

// sanitizeLogField strips the control characters a client could use to
// forge log lines or inject terminal escapes. Newlines and carriage
// returns become spaces; tabs survive; everything else below 0x20 and
// the NUL byte are dropped.
func sanitizeLogField(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r':
			return ' '
		case r == '\t':
			return r
		case r < 0x20 || r == 0x7f:
			return -1
		default:
			return r
		}
	}, s)
}

// getClientIP prefers the proxy-supplied headers over the socket peer,
// taking the first hop from X-Forwarded-For when it lists several.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// escapeW3CField quotes a value containing whitespace or quotes, doubling
// any embedded quote per the W3C quoted-string rules.
func escapeW3CField(s string) string {
	if !strings.ContainsAny(s, " \t\"") {
		return s
	}
	return "\"" + strings.ReplaceAll(s, "\"", "\"\"") + "\""
}
