// Package frontmatter holds the per-page metadata record of a converted page
// and renders it as a YAML front matter block.
package frontmatter

import (
	"slices"
	"strings"
	"time"

	"github.com/starford/wikihugo/internal/models"
	"github.com/starford/wikihugo/internal/names"
)

// DefaultDate marks a page whose original creation date is unknown.
var DefaultDate = time.Date(2005, time.January, 1, 0, 0, 0, 0, time.FixedZone("", 3600))

// FrontMatter is the metadata derived from a page's content and path.
type FrontMatter struct {
	Title    string
	Slug     names.Slug
	WikiName names.WikiName
	Date     time.Time

	Categories []string
	Links      []models.Link
	Wikilinks  []models.Wikilink

	// Redirect is the canonical target of a redirect page, empty otherwise.
	Redirect names.WikiName

	Aliases    []string
	ImagePaths []string

	Contributor string
}

// New returns front matter for a page titled title, with the ASCII slug and
// the default date.
func New(title string) *FrontMatter {
	return &FrontMatter{
		Title:    title,
		Slug:     names.NoDiacriticsSlugify(title),
		WikiName: names.WikiName(strings.ReplaceAll(title, " ", "_")),
		Date:     DefaultDate,
	}
}

// IsRedirect reports whether the page only redirects to another page.
func (fm *FrontMatter) IsRedirect() bool { return fm.Redirect != "" }

// AddCategory records category once.
func (fm *FrontMatter) AddCategory(category string) {
	if !slices.Contains(fm.Categories, category) {
		fm.Categories = append(fm.Categories, category)
	}
}

// AddAlias records an additional URL path the page is reachable under.
func (fm *FrontMatter) AddAlias(alias string) {
	if alias != "" && !slices.Contains(fm.Aliases, alias) {
		fm.Aliases = append(fm.Aliases, alias)
	}
}

// AddImage records an image path, keeping the order of first appearance.
func (fm *FrontMatter) AddImage(path string) {
	if !slices.Contains(fm.ImagePaths, path) {
		fm.ImagePaths = append(fm.ImagePaths, path)
	}
}

// Cover returns the first image of the page, if any.
func (fm *FrontMatter) Cover() (string, bool) {
	if len(fm.ImagePaths) == 0 {
		return "", false
	}
	return fm.ImagePaths[0], true
}

// WikilinkDestinations returns the sorted, distinct raw destinations of the
// page's wikilinks.
func (fm *FrontMatter) WikilinkDestinations() []string {
	out := make([]string, 0, len(fm.Wikilinks))
	for _, wl := range fm.Wikilinks {
		out = append(out, wl.Destination)
	}
	return sortedUnique(out)
}

func sortedUnique(in []string) []string {
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}
