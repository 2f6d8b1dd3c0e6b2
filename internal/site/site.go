// Package site indexes a whole corpus of documents for cross-page lookups:
// by source path, by wiki name, and along redirect chains.
package site

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/starford/wikihugo/internal/apperr"
	"github.com/starford/wikihugo/internal/document"
	"github.com/starford/wikihugo/internal/names"
)

// Site is the read-only index of a corpus. Build it with New once every
// document has been parsed.
type Site struct {
	docs       []*document.Document
	byPath     map[names.Path]*document.Document
	byWikiName map[names.WikiName]*document.Document
	redirects  map[names.WikiName]names.WikiName
	syntax     *document.Syntax
}

// New indexes docs, discovers redirect edges and appends redirect aliases to
// their targets. It fails on duplicate paths, duplicate wiki names and
// redirect cycles.
func New(docs []*document.Document, syntax *document.Syntax, logger *slog.Logger) (*Site, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sorted := slices.Clone(docs)
	slices.SortFunc(sorted, func(a, b *document.Document) int {
		return strings.Compare(a.Path().String(), b.Path().String())
	})

	byPath, err := BuildByPath(sorted)
	if err != nil {
		return nil, err
	}
	byWikiName, err := BuildByWikiName(sorted)
	if err != nil {
		return nil, err
	}
	s := &Site{
		docs:       sorted,
		byPath:     byPath,
		byWikiName: byWikiName,
		redirects:  DiscoverRedirects(sorted, byWikiName, syntax, logger),
		syntax:     syntax,
	}
	if err := s.validateChains(); err != nil {
		return nil, err
	}
	return s, nil
}

// BuildByPath maps every document path to its document. Each document is also
// reachable through its lower-cased path unless an earlier document already
// holds that key; verbatim paths always win over lower-cased ones.
func BuildByPath(docs []*document.Document) (map[names.Path]*document.Document, error) {
	byPath := make(map[names.Path]*document.Document, 2*len(docs))
	for _, d := range docs {
		if _, dup := byPath[d.Path()]; dup {
			return nil, fmt.Errorf("site: %w: %s", apperr.ErrDuplicatePath, d.Path())
		}
		byPath[d.Path()] = d
	}
	for _, d := range docs {
		lower := d.Path().Lower()
		if _, taken := byPath[lower]; !taken {
			byPath[lower] = d
		}
	}
	return byPath, nil
}

// BuildByWikiName maps canonical wiki names to documents. Documents without a
// wiki name are skipped.
func BuildByWikiName(docs []*document.Document) (map[names.WikiName]*document.Document, error) {
	byName := make(map[names.WikiName]*document.Document, len(docs))
	for _, d := range docs {
		if d.WikiName() == "" {
			continue
		}
		key := names.Canonical(d.WikiName().String())
		if prev, dup := byName[key]; dup {
			return nil, fmt.Errorf("site: %w: %s (%s and %s)", apperr.ErrDuplicateWikiName, key, prev.Path(), d.Path())
		}
		byName[key] = d
	}
	return byName, nil
}

// DiscoverRedirects records an edge for every redirect whose target exists and
// adds the redirect's URL path to the target's aliases. Redirects to
// categories and to missing pages are logged and dropped.
func DiscoverRedirects(docs []*document.Document, byWikiName map[names.WikiName]*document.Document,
	syntax *document.Syntax, logger *slog.Logger) map[names.WikiName]names.WikiName {
	edges := make(map[names.WikiName]names.WikiName)
	for _, d := range docs {
		target := d.FrontMatter().Redirect
		if target == "" {
			continue
		}
		if dst, ok := byWikiName[target]; ok {
			edges[names.Canonical(d.WikiName().String())] = target
			dst.FrontMatter().AddAlias(d.URLPath())
			continue
		}
		if syntax != nil && syntax.IsCategoryReference(target.String()) {
			logger.Warn("redirect to category is not supported",
				slog.String("path", d.Path().String()),
				slog.String("target", target.String()))
			continue
		}
		logger.Warn("redirect target does not exist",
			slog.String("path", d.Path().String()),
			slog.String("target", target.String()))
	}
	return edges
}

func (s *Site) validateChains() error {
	for _, start := range slices.Sorted(maps.Keys(s.redirects)) {
		if _, err := s.ResolveChain(start); err != nil && errors.Is(err, apperr.ErrRedirectCycle) {
			return err
		}
	}
	return nil
}

// ResolveChain follows redirect edges from name to the last page of the
// chain. It returns apperr.ErrNotFound when name has no outgoing edge,
// apperr.ErrRedirectCycle when the chain loops, and apperr.ErrDanglingRedirect
// together with the last page when that page still declares a redirect.
func (s *Site) ResolveChain(name names.WikiName) (*document.Document, error) {
	var (
		cur     = name
		doc     *document.Document
		visited = map[names.WikiName]bool{}
		chain   []string
	)
	for {
		next, ok := s.redirects[cur]
		if !ok {
			break
		}
		target, ok := s.byWikiName[next]
		if !ok {
			break
		}
		if visited[cur] {
			return nil, fmt.Errorf("site: %w: %s", apperr.ErrRedirectCycle, strings.Join(append(chain, cur.String()), " -> "))
		}
		visited[cur] = true
		chain = append(chain, cur.String())
		doc, cur = target, next
	}
	if doc == nil {
		return nil, fmt.Errorf("site: redirect %s: %w", name, apperr.ErrNotFound)
	}
	if doc.IsRedirect() {
		return doc, fmt.Errorf("site: %s -> %s: %w", name, doc.WikiName(), apperr.ErrDanglingRedirect)
	}
	return doc, nil
}

// LookupPath finds a document by path, falling back to the case-insensitive
// index.
func (s *Site) LookupPath(p names.Path) (*document.Document, bool) {
	if d, ok := s.byPath[p]; ok {
		return d, true
	}
	d, ok := s.byPath[p.Lower()]
	return d, ok
}

// ByWikiName finds a document by wiki name after canonicalization.
func (s *Site) ByWikiName(name names.WikiName) (*document.Document, bool) {
	d, ok := s.byWikiName[names.Canonical(name.String())]
	return d, ok
}

// Redirect returns the redirect edge leaving name, if any.
func (s *Site) Redirect(name names.WikiName) (names.WikiName, bool) {
	t, ok := s.redirects[name]
	return t, ok
}

// Redirects returns a copy of the redirect edges.
func (s *Site) Redirects() map[names.WikiName]names.WikiName {
	return maps.Clone(s.redirects)
}

// Documents returns the indexed documents ordered by path.
func (s *Site) Documents() []*document.Document { return s.docs }

// Syntax returns the wiki syntax of the corpus.
func (s *Site) Syntax() *document.Syntax { return s.syntax }
