package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/wikihugo/internal/pageservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *pageservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *pageservice.Service) *Handler {
	return &Handler{svc: svc}
}

// pagePath extracts the page path from the URL (everything after /api/pages/).
// Supports encoded slashes from OpenAPI clients (e.g. Gitara%2FAkord.md).
func pagePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListPages handles GET /api/pages.
//
//	@Summary		List converted pages with optional pagination and filtering
//	@Tags			pages
//	@Produce		json
//	@Param			limit		query		int		false	"Page size"
//	@Param			offset		query		int		false	"Page offset"
//	@Param			category	query		string	false	"Filter by category"
//	@Param			status		query		string	false	"Filter by status"	Enums(written, unchanged, redirect)
//	@Success		200			{object}	PageListResponse
//	@Security		BearerAuth
//	@Router			/pages [get]
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.svc.ListPages(r.Context(), limit, offset, q.Get("category"), q.Get("status"))
	if err != nil {
		writeServiceError(w, "list pages failed", err)
		return
	}
	writeJSON(w, http.StatusOK, PageListResponse{Pages: items, Total: total})
}

// GetPage handles GET /api/pages/*.
//
//	@Summary		Get a converted page with its links and backlinks
//	@Tags			pages
//	@Produce		json
//	@Param			path	path		string	true	"Page path"
//	@Success		200		{object}	PageDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pages/{path} [get]
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	path := pagePath(r)
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	page, err := h.svc.GetPage(r.Context(), path)
	if err != nil {
		writeServiceError(w, "get page failed", err, slog.String("path", path))
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Categories handles GET /api/categories.
//
//	@Summary		List categories in use
//	@Tags			pages
//	@Produce		json
//	@Success		200	{object}	CategoryResponse
//	@Security		BearerAuth
//	@Router			/categories [get]
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Categories(r.Context())
	if err != nil {
		writeServiceError(w, "categories failed", err)
		return
	}
	writeJSON(w, http.StatusOK, CategoryResponse{Categories: cats})
}

// BrokenLinks handles GET /api/broken.
//
//	@Summary		List wikilinks that did not resolve
//	@Tags			links
//	@Produce		json
//	@Param			limit	query		int	false	"Max results"
//	@Success		200		{object}	LinkResponse
//	@Security		BearerAuth
//	@Router			/broken [get]
func (h *Handler) BrokenLinks(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	links, err := h.svc.BrokenLinks(r.Context(), limit)
	if err != nil {
		writeServiceError(w, "broken links failed", err)
		return
	}
	writeJSON(w, http.StatusOK, LinkResponse{Links: links})
}

// Redirects handles GET /api/redirects.
//
//	@Summary		List redirect pages and their targets
//	@Tags			links
//	@Produce		json
//	@Success		200	{object}	RedirectResponse
//	@Security		BearerAuth
//	@Router			/redirects [get]
func (h *Handler) Redirects(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Redirects(r.Context())
	if err != nil {
		writeServiceError(w, "redirects failed", err)
		return
	}
	writeJSON(w, http.StatusOK, RedirectResponse{Redirects: items})
}

// Backlinks handles GET /api/backlinks.
//
//	@Summary		List wikilinks that resolved to a page
//	@Tags			links
//	@Produce		json
//	@Param			target	query		string	true	"Target page path"
//	@Success		200		{object}	LinkResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/backlinks [get]
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("target")
	if target == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'target' is required")
		return
	}
	links, err := h.svc.Backlinks(r.Context(), target)
	if err != nil {
		writeServiceError(w, "backlinks failed", err, slog.String("target", target))
		return
	}
	writeJSON(w, http.StatusOK, LinkResponse{Links: links})
}

// Resolve handles GET /api/resolve.
//
//	@Summary		Resolve one wikilink as written on a page
//	@Tags			links
//	@Produce		json
//	@Param			from	query		string	true	"Source page path"
//	@Param			dest	query		string	true	"Wikilink destination"
//	@Success		200		{object}	ResolveResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/resolve [get]
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, dest := q.Get("from"), q.Get("dest")
	if from == "" || dest == "" {
		writeError(w, http.StatusBadRequest, "query parameters 'from' and 'dest' are required")
		return
	}
	res, err := h.svc.ResolveLink(r.Context(), from, dest)
	if err != nil {
		writeServiceError(w, "resolve failed", err, slog.String("from", from), slog.String("dest", dest))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Stats handles GET /api/stats.
//
//	@Summary		Summarize the conversion report
//	@Tags			links
//	@Produce		json
//	@Success		200	{object}	StatsResponse
//	@Security		BearerAuth
//	@Router			/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		writeServiceError(w, "stats failed", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across converted pages
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeServiceError(w, "search failed", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
