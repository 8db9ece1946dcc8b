package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// unmatchedPath is the label used for paths outside the known route set.
const unmatchedPath = "unmatched"

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.wroteHeader = true
	}
	return rw.ResponseWriter.Write(b)
}

// Unwrap returns the underlying ResponseWriter for middleware compatibility
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// normalizePath maps a request path onto one of the known routes so that
// bots probing random URLs cannot inflate label cardinality. Exact matches
// win; other routes ending in "/" match by prefix, except "/" itself.
func normalizePath(path string, routes []string) string {
	for _, route := range routes {
		if path == route {
			return route
		}
	}
	for _, route := range routes {
		if route != "/" && strings.HasSuffix(route, "/") && strings.HasPrefix(path, route) {
			return route
		}
	}
	return unmatchedPath
}

// Middleware returns middleware that records HTTP request metrics,
// labelling paths by the given known routes.
func Middleware(routes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip metrics endpoint to avoid recursion
			if r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			HTTPRequestsInFlight.Inc()
			defer HTTPRequestsInFlight.Dec()

			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			duration := time.Since(start).Seconds()
			path := normalizePath(r.URL.Path, routes)
			statusCode := strconv.Itoa(rw.statusCode)

			HTTPRequestsTotal.WithLabelValues(r.Method, path, statusCode).Inc()
			HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
		})
	}
}
