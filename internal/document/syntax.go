package document

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/starford/wikihugo/internal/models"
	"github.com/starford/wikihugo/internal/names"
)

var (
	redirectPattern = regexp.MustCompile(`REDIRECT\s+\[(?P<anchor>[^\]]+)\]\((?P<dest>[^\s]+) "wikilink"\)`)
	wikilinkPattern = regexp.MustCompile(`\[(?P<anchor>[^\]]+)\]\((?P<dest>[^\s]+) "wikilink"\)`)
)

// Syntax is the compiled form of models.Settings: the locale-specific link
// patterns of one wiki. A Syntax is immutable and safe to share.
type Syntax struct {
	settings models.Settings

	categoryDest *regexp.Regexp // link destination that files the page in a category
	categoryRef  *regexp.Regexp // wikilink destination that points at a category
	categoryLink *regexp.Regexp // whole category link, as removed from the body
	imageLink    *regexp.Regexp
}

// NewSyntax compiles the patterns for settings.
func NewSyntax(settings models.Settings) (*Syntax, error) {
	if settings.CategoryTag == "" || settings.ImageTag == "" {
		return nil, fmt.Errorf("document: category and image tags are required")
	}
	if settings.Extension == "" {
		settings.Extension = ".md"
	}
	if settings.ImageShortcode == "" {
		settings.ImageShortcode = "figure"
	}
	cat := regexp.QuoteMeta(settings.CategoryTag)
	img := regexp.QuoteMeta(settings.ImageTag)
	return &Syntax{
		settings:     settings,
		categoryDest: regexp.MustCompile(`(?i)^` + cat + `:(.*)`),
		categoryRef:  regexp.MustCompile(`(?i)^:?` + cat + `:(.*)`),
		categoryLink: regexp.MustCompile(`(?i)\[:?` + cat + `:[^\]]+\]\([^\)]+\)`),
		imageLink:    regexp.MustCompile(`(?i)\[[^\]]+\]\(` + img + `:([^\s]+)\s"wikilink"\)`),
	}, nil
}

// Settings returns the settings s was compiled from.
func (s *Syntax) Settings() models.Settings { return s.settings }

// Extension returns the source and output file extension.
func (s *Syntax) Extension() string { return s.settings.Extension }

// IsCategoryReference reports whether dest points at a category, with or
// without the leading colon of a plain link.
func (s *Syntax) IsCategoryReference(dest string) bool {
	return s.categoryRef.MatchString(dest)
}

// CategoryReference extracts the category name from a wikilink destination
// such as ":Category:Chord_charts". ok is false when dest does not reference a
// category or the name is empty.
func (s *Syntax) CategoryReference(dest string) (name string, ok bool) {
	m := s.categoryRef.FindStringSubmatch(dest)
	if m == nil {
		return "", false
	}
	name = strings.TrimSuffix(m[1], ":")
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	name = strings.ReplaceAll(name, "_", " ")
	if strings.TrimSpace(name) == "" {
		return "", false
	}
	return name, true
}

// CategoryLink renders the archive link for category.
func (s *Syntax) CategoryLink(anchor, category string) string {
	slug := names.NoDiacriticsSlugify(category)
	return fmt.Sprintf("[%s](%s/%s \"%s %s\")", anchor,
		strings.TrimSuffix(s.settings.CategoryURLBase, "/"), slug, s.settings.CategoryTitle, category)
}

// category returns the front matter category a link destination files the
// page under.
func (s *Syntax) category(dest string) (string, bool) {
	m := s.categoryDest.FindStringSubmatch(dest)
	if m == nil {
		return "", false
	}
	raw := m[1]
	if decoded, err := url.QueryUnescape(raw); err == nil {
		raw = decoded
	}
	c := names.Capitalize(strings.ReplaceAll(raw, "_", " "))
	if c == "" {
		return "", false
	}
	return c, true
}

// imagePath maps a referenced image name to its site path. Stored image names
// always start with an upper-case letter.
func imagePath(name string) string {
	return "/images/" + names.UpperFirst(name)
}

// GetRedirect returns the canonical target of a redirect directive anywhere
// in content.
func GetRedirect(content string) (names.WikiName, bool) {
	m := redirectPattern.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	return names.Canonical(m[redirectPattern.SubexpIndex("dest")]), true
}

// Wikilink is one occurrence of a wikilink in a body, with its byte span.
type Wikilink struct {
	Anchor      string
	Destination string
	Start, End  int
}

// Wikilinks returns every wikilink occurrence in content, left to right.
func Wikilinks(content string) []Wikilink {
	anchorIdx := wikilinkPattern.SubexpIndex("anchor")
	destIdx := wikilinkPattern.SubexpIndex("dest")
	var out []Wikilink
	for _, m := range wikilinkPattern.FindAllStringSubmatchIndex(content, -1) {
		out = append(out, Wikilink{
			Anchor:      content[m[2*anchorIdx]:m[2*anchorIdx+1]],
			Destination: content[m[2*destIdx]:m[2*destIdx+1]],
			Start:       m[0],
			End:         m[1],
		})
	}
	return out
}
