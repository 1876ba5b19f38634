package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/mediastore/internal/auth"
	"github.com/starford/mediastore/internal/media"
)

// NewRouter creates a chi router with the media routes mounted. Every route
// passes the authorization gate first. maxUpload caps the request body of
// an upload; values <= 0 use the default.
func NewRouter(model *media.Model, provider auth.Provider, maxUpload int64) chi.Router {
	h := NewHandler(model, maxUpload)

	r := chi.NewRouter()
	r.Use(Gate(provider))

	r.Get("/list", h.List)
	r.Get("/list/*", h.List)
	r.Post("/upload/*", h.Upload)
	r.Delete("/*", h.Delete)

	return r
}

// MountEvents registers GET /api/events and GET /api/journal on r behind the
// same gate as the media routes. Nil handlers are not mounted.
func MountEvents(r chi.Router, provider auth.Provider, events http.Handler, journal http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(Gate(provider))
		if events != nil {
			r.Get("/api/events", events.ServeHTTP)
		}
		if journal != nil {
			r.Get("/api/journal", journal.ServeHTTP)
		}
	})
}
