package names

import (
	"github.com/gosimple/unidecode"
	"golang.org/x/text/unicode/norm"
)

// Transliterate returns the ASCII transliteration of s. Input is composed to
// NFC first so decomposed accents map like their precomposed forms.
func Transliterate(s string) string {
	return unidecode.Unidecode(norm.NFC.String(s))
}
