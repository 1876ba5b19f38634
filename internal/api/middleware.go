// Package api implements the media REST API using chi.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/starford/mediastore/internal/auth"
	"github.com/starford/mediastore/internal/metrics"
)

// Gate consults provider once per request. Rejected requests get a 403 whose
// body is the serialized decision and never reach next.
func Gate(provider auth.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := provider.IsAuthorized(r)
			metrics.RecordAuthDecision(d.IsAuthorized)
			if !d.IsAuthorized {
				writeJSON(w, http.StatusForbidden, d)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Instrument records request count and latency per route pattern.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RecordHTTPRequest(r.Method, route, status, time.Since(start))
	})
}
