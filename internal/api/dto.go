package api

import (
	"github.com/starford/wikihugo/internal/pageservice"
	"github.com/starford/wikihugo/internal/report"
	"github.com/starford/wikihugo/internal/resolve"
)

// PageDetail is the full page response type (aliased from the domain layer).
type PageDetail = pageservice.PageDetail

// PageListItem is a lightweight item in a list response (aliased from the domain layer).
type PageListItem = pageservice.PageListItem

// PageListResponse wraps paginated page listings.
type PageListResponse struct {
	Pages []PageListItem `json:"pages" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// LinkResponse wraps a list of recorded wikilinks.
type LinkResponse struct {
	Links []report.LinkRow `json:"links" validate:"required"`
}

// RedirectResponse wraps the redirect pages.
type RedirectResponse struct {
	Redirects []PageListItem `json:"redirects" validate:"required"`
}

// CategoryResponse wraps the categories in use.
type CategoryResponse struct {
	Categories []string `json:"categories" validate:"required"`
}

// SearchResult is a single search hit.
type SearchResult = report.SearchResult

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// ResolveResponse is the outcome of resolving one wikilink.
type ResolveResponse = resolve.Resolution

// StatsResponse summarizes the report.
type StatsResponse = report.Stats
