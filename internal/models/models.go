// Package models defines the domain types shared across wikihugo packages.
package models

import "time"

// PageMeta is the per-page metadata taken from a MediaWiki XML export.
type PageMeta struct {
	Title       string    `json:"title"`
	Timestamp   time.Time `json:"timestamp"`
	Contributor string    `json:"contributor"`
}

// Link is an external hyperlink found on a page.
type Link struct {
	Anchor string `json:"anchor"`
	URL    string `json:"url"`
	Title  string `json:"title,omitempty"`
}

// Wikilink is an in-corpus reference, marked by the "wikilink" link title.
type Wikilink struct {
	Anchor      string `json:"anchor"`
	Destination string `json:"destination"`
}

// FileMetadata is a lightweight representation returned by list operations.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Settings describe the locale-specific syntax of the source wiki and the
// shape of the generated site. They are passed explicitly to every component
// that needs them.
type Settings struct {
	// CategoryTag is the namespace keyword of category links ("Category",
	// "Kategoria", "Catégorie").
	CategoryTag string `yaml:"category_tag" json:"category_tag"`
	// ImageTag is the namespace keyword of image links ("File", "Grafika").
	ImageTag string `yaml:"image_tag" json:"image_tag"`
	// CategoryURLBase is the URL path of the category archive pages.
	CategoryURLBase string `yaml:"category_url_base" json:"category_url_base"`
	// CategoryTitle prefixes the link title of category archive links.
	CategoryTitle string `yaml:"category_title" json:"category_title"`
	// CategoryKey is the front matter key holding the category list.
	CategoryKey string `yaml:"category_key" json:"category_key"`
	// ImageShortcode is the site shortcode used to render images.
	ImageShortcode string `yaml:"image_shortcode" json:"image_shortcode"`
	// Extension of source and output files, including the dot.
	Extension string `yaml:"extension" json:"extension"`
	// LegacyAliasBase, when set, adds "<base>/<WikiName>" to every page's aliases.
	LegacyAliasBase string `yaml:"legacy_alias_base" json:"legacy_alias_base"`
}

// DefaultSettings returns the settings of an English MediaWiki exported into
// a Polish-language site, matching the converter's historical defaults.
func DefaultSettings() Settings {
	return Settings{
		CategoryTag:     "Category",
		ImageTag:        "File",
		CategoryURLBase: "/kategorie",
		CategoryTitle:   "Kategoria",
		CategoryKey:     "kategorie",
		ImageShortcode:  "figure",
		Extension:       ".md",
	}
}
