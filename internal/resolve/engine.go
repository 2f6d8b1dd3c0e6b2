// Package resolve rewrites the wikilinks of a page into links of the
// generated site.
//
// Every "[anchor](destination "wikilink")" occurrence is resolved on its own
// against a read-only site index. The candidates are tried in order:
//
//  1. The destination's redirect chain, by wiki name.
//  2. The page at the destination path next to the referring page, following
//     its redirect if it has one.
//  3. A category archive.
//
// A link that matches none of them keeps its anchor text and is annotated as
// broken.
package resolve

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/starford/wikihugo/internal/apperr"
	"github.com/starford/wikihugo/internal/document"
	"github.com/starford/wikihugo/internal/names"
	"github.com/starford/wikihugo/internal/site"
)

// Kind classifies how a wikilink was resolved.
type Kind string

const (
	KindPage     Kind = "page"
	KindRedirect Kind = "redirect"
	KindCategory Kind = "category"
	KindBroken   Kind = "broken"
)

// Resolution is the outcome for one wikilink occurrence.
type Resolution struct {
	Anchor      string     `json:"anchor"`
	Destination string     `json:"destination"`
	Kind        Kind       `json:"kind"`
	Target      names.Path `json:"target,omitempty"`
	// Replacement is the text that replaces the wikilink in the body.
	Replacement string `json:"replacement"`
	Diagnostic  string `json:"diagnostic,omitempty"`
}

// Engine resolves wikilinks against a site.
type Engine struct {
	site   *site.Site
	syntax *document.Syntax
	logger *slog.Logger
}

// New returns an engine over s.
func New(s *site.Site, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{site: s, syntax: s.Syntax(), logger: logger}
}

// Site returns the index the engine resolves against.
func (e *Engine) Site() *site.Site { return e.site }

// Resolve returns a revision of doc with every wikilink rewritten, together
// with the per-link outcomes in order of appearance. Only a redirect cycle is
// reported as an error; unresolvable links are annotated in place.
func (e *Engine) Resolve(doc *document.Document) (*document.Document, []Resolution, error) {
	content := doc.Content()
	links := document.Wikilinks(content)
	if len(links) == 0 {
		return doc, nil, nil
	}

	var (
		b    strings.Builder
		last int
		out  = make([]Resolution, 0, len(links))
	)
	b.Grow(len(content))
	for _, l := range links {
		res, err := e.ResolveLink(doc, l.Anchor, l.Destination)
		if err != nil {
			return nil, nil, err
		}
		b.WriteString(content[last:l.Start])
		b.WriteString(res.Replacement)
		last = l.End
		out = append(out, res)
	}
	b.WriteString(content[last:])
	return doc.WithContent(b.String()), out, nil
}

// ResolveLink resolves a single wikilink found on page from.
func (e *Engine) ResolveLink(from *document.Document, anchor, dest string) (Resolution, error) {
	res := Resolution{Anchor: anchor, Destination: dest}

	target, err := e.site.ResolveChain(names.Canonical(dest))
	switch {
	case err == nil:
		return e.toPage(res, KindRedirect, target), nil
	case errors.Is(err, apperr.ErrRedirectCycle):
		return res, fmt.Errorf("resolve: %s: %w", from.Path(), err)
	case errors.Is(err, apperr.ErrDanglingRedirect):
		return e.broken(from, res, "", fmt.Sprintf("%s redirects to %s, which redirects nowhere",
			dest, target.WikiName())), nil
	}

	destPath := names.Path(path.Join(from.Path().Dir().String(), dest+e.syntax.Extension()))
	if direct, ok := e.site.LookupPath(destPath); ok {
		if !direct.IsRedirect() {
			return e.toPage(res, KindPage, direct), nil
		}
		final, err := e.site.ResolveChain(names.Canonical(direct.WikiName().String()))
		switch {
		case err == nil:
			return e.toPage(res, KindRedirect, final), nil
		case errors.Is(err, apperr.ErrRedirectCycle):
			return res, fmt.Errorf("resolve: %s: %w", from.Path(), err)
		}
		return e.broken(from, res, destPath, fmt.Sprintf("%s wants to redirect to %s, but %s will be deleted",
			destPath, direct.FrontMatter().Redirect, direct.Path())), nil
	}

	if e.syntax.IsCategoryReference(dest) {
		category, ok := e.syntax.CategoryReference(dest)
		if !ok {
			return e.broken(from, res, destPath, "could not find the category name in "+dest), nil
		}
		res.Kind = KindCategory
		res.Replacement = e.syntax.CategoryLink(anchor, category)
		return res, nil
	}

	return e.broken(from, res, destPath, fmt.Sprintf("%q (%s) links to %s (%s) and that does not exist",
		from.Title(), from.Path(), dest, destPath)), nil
}

func (e *Engine) toPage(res Resolution, kind Kind, target *document.Document) Resolution {
	res.Kind = kind
	res.Target = target.Path()
	res.Replacement = Relref(res.Anchor, target.FileName())
	return res
}

func (e *Engine) broken(from *document.Document, res Resolution, computed names.Path, reason string) Resolution {
	e.logger.Info("could not resolve wikilink",
		slog.String("title", from.Title()),
		slog.String("path", from.Path().String()),
		slog.String("anchor", res.Anchor),
		slog.String("destination", res.Destination),
		slog.String("computed_path", computed.String()),
		slog.String("reason", reason))
	res.Kind = KindBroken
	res.Diagnostic = reason
	res.Replacement = Annotate(res.Anchor, reason)
	return res
}

// Relref renders a site-internal reference to the page stored as fileName.
func Relref(anchor, fileName string) string {
	return fmt.Sprintf(`[%s]({{< relref "%s" >}})`, anchor, fileName)
}

// Annotate renders an unresolvable link: the bare anchor followed by an HTML
// comment carrying the reason.
func Annotate(anchor, reason string) string {
	for strings.Contains(reason, "--") {
		reason = strings.ReplaceAll(reason, "--", "- -")
	}
	return anchor + "<!-- link did not resolve to anything: " + reason + " -->"
}
