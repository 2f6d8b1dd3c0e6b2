// Package names turns raw page identifiers into wiki names, display titles
// and URL slugs.
package names

import (
	"path"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Path is a slash-separated file path relative to the source root.
type Path string

// WikiName is a page identifier with underscores as word separators.
// Canonical wiki names are title-cased (see Canonical).
type WikiName string

// Slug is a URL path segment.
type Slug string

// String returns p as a plain string.
func (p Path) String() string { return string(p) }

// Lower returns the case-folded variant of p used for case-insensitive lookups.
func (p Path) Lower() Path { return Path(strings.ToLower(string(p))) }

// Dir returns all but the last element of p.
func (p Path) Dir() Path { return Path(path.Dir(string(p))) }

// Ext returns the file extension of p, including the dot.
func (p Path) Ext() string { return path.Ext(string(p)) }

// String returns w as a plain string.
func (w WikiName) String() string { return string(w) }

// Title returns w with underscores replaced by spaces.
func (w WikiName) Title() string { return strings.ReplaceAll(string(w), "_", " ") }

// String returns s as a plain string.
func (s Slug) String() string { return string(s) }

const (
	flat  = '♭'
	sharp = '♯'
)

// IsNoteName reports whether s names a musical note: A to H, optionally
// followed by a flat or sharp sign.
func IsNoteName(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r < 'A' || r > 'H' {
		return false
	}
	rest := s[size:]
	if rest == "" {
		return true
	}
	acc, accSize := utf8.DecodeRuneInString(rest)
	return (acc == flat || acc == sharp) && accSize == len(rest)
}

// WikiNameFromPath derives the page name from the last path segment without
// its extension. Chord titles such as "F/C" are stored as directory "F" with
// file "C.md", so a note-name segment is joined with its parent.
func WikiNameFromPath(p Path) WikiName {
	s := string(p)
	noExt := strings.TrimSuffix(s, path.Ext(s))
	parts := strings.Split(noExt, "/")
	last := parts[len(parts)-1]
	if len(parts) >= 2 && IsNoteName(last) {
		return WikiName(parts[len(parts)-2] + "/" + last)
	}
	return WikiName(last)
}

// TitleFromPath returns the display title for p.
func TitleFromPath(p Path) string {
	return WikiNameFromPath(p).Title()
}

// DirSegments returns the directory components of p that are not part of its
// title. The parent of a chord file belongs to the title and is excluded.
func DirSegments(p Path) []string {
	s := string(p)
	noExt := strings.TrimSuffix(s, path.Ext(s))
	parts := strings.Split(noExt, "/")
	dirs := parts[:len(parts)-1]
	if len(parts) >= 2 && IsNoteName(parts[len(parts)-1]) {
		dirs = parts[:len(parts)-2]
	}
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if d != "" && d != "." {
			out = append(out, d)
		}
	}
	return out
}

// Canonical normalizes a raw page reference into its canonical wiki name:
// spaces become underscores and every word is title-cased. A letter is
// upper-cased when the preceding rune is not a cased letter and lower-cased
// otherwise, so "neck_adjustment" becomes "Neck_Adjustment" and "C9sus"
// becomes "C9Sus".
func Canonical(raw string) WikiName {
	s := strings.ReplaceAll(raw, " ", "_")
	var b strings.Builder
	b.Grow(len(s))
	prevCased := false
	for _, r := range s {
		if isCased(r) {
			if prevCased {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToTitle(r))
			}
			prevCased = true
			continue
		}
		b.WriteRune(r)
		prevCased = false
	}
	return WikiName(b.String())
}

func isCased(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
}

// Capitalize upper-cases the first rune of s and lower-cases the rest.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// UpperFirst upper-cases the first rune of s and keeps the rest unchanged.
func UpperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// Slugify lower-cases s, treats underscores as spaces and joins the remaining
// runs of letters and digits with "-".
func Slugify(s string) Slug {
	lowered := strings.ToLower(strings.ReplaceAll(s, "_", " "))
	segments := nonWord.Split(lowered, -1)
	return Slug(strings.Trim(strings.Join(segments, "-"), "-"))
}

// NoDiacriticsSlugify is Slugify applied to the ASCII transliteration of s.
func NoDiacriticsSlugify(s string) Slug {
	return Slugify(Transliterate(s))
}
