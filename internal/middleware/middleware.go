// Package middleware provides HTTP middleware for the cowork website.
package middleware

import (
	"net/http"
	"strings"
)

// Stack composes middlewares so that the first one listed runs first.
//
// Example:
//
//	limited := middleware.Stack(securityMw.Handler, limiter.Limit)
//	mux.Handle("POST /contact", limited(handler))
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// isAPIRequest reports whether the client expects a JSON response.
func isAPIRequest(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
