// Package document models one exported wiki page: its content, its path in
// the source tree and the front matter derived from both.
package document

import (
	"fmt"
	"path"
	"strings"

	"github.com/starford/wikihugo/internal/frontmatter"
	"github.com/starford/wikihugo/internal/models"
	"github.com/starford/wikihugo/internal/names"
	"github.com/starford/wikihugo/internal/parser"
)

// Document is a page revision. Transformations return new Documents sharing
// the path, metadata and front matter of the receiver.
type Document struct {
	content string
	path    names.Path
	meta    *models.PageMeta
	fm      *frontmatter.FrontMatter
	syntax  *Syntax
}

// New parses content and derives its front matter. meta may be nil.
func New(content string, p names.Path, meta *models.PageMeta, syntax *Syntax) (*Document, error) {
	fm, err := buildFrontMatter(content, p, meta, syntax)
	if err != nil {
		return nil, fmt.Errorf("document: %s: %w", p, err)
	}
	return &Document{content: content, path: p, meta: meta, fm: fm, syntax: syntax}, nil
}

func buildFrontMatter(content string, p names.Path, meta *models.PageMeta, syntax *Syntax) (*frontmatter.FrontMatter, error) {
	links, err := parser.Links([]byte(content))
	if err != nil {
		return nil, err
	}

	fm := frontmatter.New(names.TitleFromPath(p))
	for _, l := range links {
		if c, ok := syntax.category(l.Destination); ok {
			fm.AddCategory(c)
			continue
		}
		if l.Title == "wikilink" {
			fm.Wikilinks = append(fm.Wikilinks, models.Wikilink{Anchor: l.Anchor, Destination: l.Destination})
			continue
		}
		fm.Links = append(fm.Links, models.Link{Anchor: l.Anchor, URL: l.Destination, Title: l.Title})
	}

	if target, ok := GetRedirect(content); ok {
		fm.Redirect = target
	}
	for _, m := range syntax.imageLink.FindAllStringSubmatch(content, -1) {
		fm.AddImage(imagePath(m[1]))
	}

	if base := syntax.settings.LegacyAliasBase; base != "" {
		fm.AddAlias(strings.TrimSuffix(base, "/") + "/" + fm.WikiName.String())
	}
	if meta != nil {
		if !meta.Timestamp.IsZero() {
			fm.Date = meta.Timestamp
		}
		fm.Contributor = meta.Contributor
	}
	return fm, nil
}

// Content returns the page body.
func (d *Document) Content() string { return d.content }

// Path returns the page's path relative to the source root.
func (d *Document) Path() names.Path { return d.path }

// Meta returns the imported XML metadata, or nil.
func (d *Document) Meta() *models.PageMeta { return d.meta }

// FrontMatter returns the page's metadata record. The record is shared by all
// Documents derived from the same page.
func (d *Document) FrontMatter() *frontmatter.FrontMatter { return d.fm }

// Syntax returns the wiki syntax the page was parsed with.
func (d *Document) Syntax() *Syntax { return d.syntax }

// Title returns the display title.
func (d *Document) Title() string { return d.fm.Title }

// WikiName returns the page name as derived from its path.
func (d *Document) WikiName() names.WikiName { return d.fm.WikiName }

// IsRedirect reports whether the page only redirects elsewhere.
func (d *Document) IsRedirect() bool { return d.fm.IsRedirect() }

// FileName is the name other pages use to reference this page with relref.
func (d *Document) FileName() string {
	return strings.ReplaceAll(d.fm.Title, " ", "_") + d.syntax.Extension()
}

// URLPath is the site path the page is served under: its top-level source
// directory, if any, followed by its slug.
func (d *Document) URLPath() string {
	segments := names.DirSegments(d.path)
	if len(segments) > 1 {
		segments = segments[:1]
	}
	return "/" + path.Join(append(segments, d.fm.Slug.String())...)
}

// WithContent returns a revision of d with a different body.
func (d *Document) WithContent(content string) *Document {
	return &Document{content: content, path: d.path, meta: d.meta, fm: d.fm, syntax: d.syntax}
}

// RemoveCategoryLinks strips every category link from the body.
func (d *Document) RemoveCategoryLinks() *Document {
	return d.WithContent(d.syntax.categoryLink.ReplaceAllString(d.content, ""))
}

// HandleImageTags replaces image links with the image shortcode.
func (d *Document) HandleImageTags() *Document {
	out := d.syntax.imageLink.ReplaceAllStringFunc(d.content, func(match string) string {
		m := d.syntax.imageLink.FindStringSubmatch(match)
		return fmt.Sprintf(`{{< %s src="%s" >}}`, d.syntax.settings.ImageShortcode, imagePath(m[1]))
	})
	return d.WithContent(out)
}
