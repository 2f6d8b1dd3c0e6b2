// Package pageservice answers read-only questions about the last conversion:
// which pages were produced, how their wikilinks resolved, and what links to
// what. It is shared by the HTTP API and the MCP server.
package pageservice

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/starford/wikihugo/internal/apperr"
	"github.com/starford/wikihugo/internal/report"
	"github.com/starford/wikihugo/internal/resolve"
	"github.com/starford/wikihugo/internal/storage"
)

// PageDetail is the full representation of a converted page.
type PageDetail struct {
	Path       string           `json:"path"`
	WikiName   string           `json:"wiki_name"`
	Title      string           `json:"title"`
	Slug       string           `json:"slug"`
	URLPath    string           `json:"url_path"`
	Checksum   string           `json:"checksum"`
	Redirect   string           `json:"redirect,omitempty"`
	Status     string           `json:"status"`
	Categories []string         `json:"categories"`
	Content    string           `json:"content"`
	Links      []report.LinkRow `json:"links"`
	Backlinks  []report.LinkRow `json:"backlinks"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// PageListItem is a lightweight item in a list response.
type PageListItem struct {
	Path       string    `json:"path"`
	Title      string    `json:"title"`
	URLPath    string    `json:"url_path"`
	Status     string    `json:"status"`
	Redirect   string    `json:"redirect,omitempty"`
	Categories []string  `json:"categories"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Resolver resolves a single wikilink against the current source tree.
type Resolver interface {
	ResolveLink(ctx context.Context, from, dest string) (resolve.Resolution, error)
}

// Service coordinates the output tree and the conversion report.
type Service struct {
	dst      storage.Provider
	db       report.Store
	resolver Resolver
}

// NewService creates a new page service. resolver may be nil, in which case
// ResolveLink is unavailable.
func NewService(dst storage.Provider, db report.Store, resolver Resolver) *Service {
	return &Service{dst: dst, db: db, resolver: resolver}
}

// GetPage returns the recorded page, its generated content and its links.
func (s *Service) GetPage(_ context.Context, path string) (*PageDetail, error) {
	row, err := s.db.GetPage(path)
	if err != nil {
		return nil, err
	}
	var content []byte
	if row.Status != report.StatusRedirect {
		content, err = s.dst.Read(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	links, err := s.db.Links(path)
	if err != nil {
		return nil, err
	}
	bl, err := s.db.Backlinks(path)
	if err != nil {
		return nil, err
	}
	return &PageDetail{
		Path:       row.Path,
		WikiName:   row.WikiName,
		Title:      row.Title,
		Slug:       row.Slug,
		URLPath:    row.URLPath,
		Checksum:   row.Checksum,
		Redirect:   row.Redirect,
		Status:     row.Status,
		Categories: nonNilSlice(row.Categories),
		Content:    string(content),
		Links:      nonNilSlice(links),
		Backlinks:  nonNilSlice(bl),
		UpdatedAt:  row.UpdatedAt,
	}, nil
}

// ListPages returns paginated pages with optional category and status filters.
func (s *Service) ListPages(_ context.Context, limit, offset int, category, status string) ([]PageListItem, int, error) {
	rows, total, err := s.db.ListPages(limit, offset, category, status)
	if err != nil {
		return nil, 0, err
	}
	items := make([]PageListItem, len(rows))
	for i, r := range rows {
		items[i] = listItem(r)
	}
	return items, total, nil
}

// Redirects returns every redirect page with its target.
func (s *Service) Redirects(_ context.Context) ([]PageListItem, error) {
	rows, err := s.db.Redirects()
	if err != nil {
		return nil, err
	}
	items := make([]PageListItem, len(rows))
	for i, r := range rows {
		items[i] = listItem(r)
	}
	return items, nil
}

// BrokenLinks returns up to limit unresolved wikilinks; limit <= 0 means all.
func (s *Service) BrokenLinks(_ context.Context, limit int) ([]report.LinkRow, error) {
	links, err := s.db.BrokenLinks(limit)
	return nonNilSlice(links), err
}

// Backlinks returns every wikilink that resolved to target.
func (s *Service) Backlinks(_ context.Context, target string) ([]report.LinkRow, error) {
	links, err := s.db.Backlinks(target)
	return nonNilSlice(links), err
}

// Search delegates full-text search to the report.
func (s *Service) Search(_ context.Context, query string, limit int) ([]report.SearchResult, error) {
	res, err := s.db.Search(query, limit)
	return nonNilSlice(res), err
}

// Categories returns every category in use.
func (s *Service) Categories(_ context.Context) ([]string, error) {
	cats, err := s.db.Categories()
	return nonNilSlice(cats), err
}

// Stats summarizes the report.
func (s *Service) Stats(_ context.Context) (report.Stats, error) {
	return s.db.Stats()
}

// ResolveLink resolves dest as a wikilink written on the page at from.
func (s *Service) ResolveLink(ctx context.Context, from, dest string) (resolve.Resolution, error) {
	if s.resolver == nil {
		return resolve.Resolution{}, fmt.Errorf("pageservice: resolve: %w", apperr.ErrNotFound)
	}
	return s.resolver.ResolveLink(ctx, from, dest)
}

func listItem(r report.PageRow) PageListItem {
	return PageListItem{
		Path:       r.Path,
		Title:      r.Title,
		URLPath:    r.URLPath,
		Status:     r.Status,
		Redirect:   r.Redirect,
		Categories: nonNilSlice(r.Categories),
		UpdatedAt:  r.UpdatedAt,
	}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
