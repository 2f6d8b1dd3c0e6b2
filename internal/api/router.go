package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/wikihugo/internal/pageservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *pageservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Converted pages.
	r.Get("/pages", h.ListPages)
	r.Get("/pages/*", h.GetPage)
	r.Get("/categories", h.Categories)

	// Link report.
	r.Get("/broken", h.BrokenLinks)
	r.Get("/redirects", h.Redirects)
	r.Get("/backlinks", h.Backlinks)
	r.Get("/resolve", h.Resolve)
	r.Get("/stats", h.Stats)

	// Search.
	r.Get("/search", h.Search)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
