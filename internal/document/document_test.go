package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/starford/wikihugo/internal/apperr"
	"github.com/starford/wikihugo/internal/models"
	"github.com/starford/wikihugo/internal/names"
)

const testArticle = `
word

[web link](https://www.example.com "web link title")

[kategoria:technika gry](kategoria:technika_gry "wikilink")

[Another article](Another_article "wikilink")
`

func polishSyntax(t *testing.T) *Syntax {
	t.Helper()
	s := models.DefaultSettings()
	s.CategoryTag = "kategoria"
	s.ImageTag = "grafika"
	s.ImageShortcode = "image"
	syn, err := NewSyntax(s)
	require.NoError(t, err)
	return syn
}

func newDoc(t *testing.T, content string, p names.Path) *Document {
	t.Helper()
	d, err := New(content, p, nil, polishSyntax(t))
	require.NoError(t, err)
	return d
}

func TestNewSyntax_RequiresTags(t *testing.T) {
	_, err := NewSyntax(models.Settings{})
	require.Error(t, err)
}

func TestDocument_Basics(t *testing.T) {
	d := newDoc(t, testArticle, "bar/Test_Article_1.md")
	fm := d.FrontMatter()

	require.Equal(t, "Test Article 1", fm.Title)
	require.Equal(t, names.Slug("test-article-1"), fm.Slug)
	require.Equal(t, names.WikiName("Test_Article_1"), d.WikiName())
	require.Equal(t, "/bar/test-article-1", d.URLPath())
	require.Equal(t, "Test_Article_1.md", d.FileName())

	require.Equal(t, []string{"Technika gry"}, fm.Categories)
	require.Equal(t, []models.Wikilink{{Anchor: "Another article", Destination: "Another_article"}}, fm.Wikilinks)
	require.Equal(t, []models.Link{{Anchor: "web link", URL: "https://www.example.com", Title: "web link title"}}, fm.Links)
	require.False(t, d.IsRedirect())
}

func TestDocument_CategoryDecoding(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"diacritics", `[Pass, Joe](kategoria:gitarzyści_jazzowi "wikilink")`, "Gitarzyści jazzowi"},
		{"percent encoded", `[Pass, Joe](kategoria:gitarzy%C5%9Bci_jazzowi "wikilink")`, "Gitarzyści jazzowi"},
		{"case insensitive tag", `[x](Kategoria:Technika_GRY "wikilink")`, "Technika gry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDoc(t, tt.content, "książka/foo.md")
			require.Contains(t, d.FrontMatter().Categories, tt.want)
			require.Empty(t, d.FrontMatter().Wikilinks)
		})
	}
}

func TestGetRedirect(t *testing.T) {
	tests := []struct {
		content string
		want    names.WikiName
	}{
		{`1. REDIRECT [Neck adjustment](Neck_adjustment "wikilink")`, "Neck_Adjustment"},
		{`1.  REDIRECT [Regulacja gryfu](Regulacja_gryfu "wikilink")`, "Regulacja_Gryfu"},
		{`1.  REDIRECT [Struna](Struna "wikilink")`, "Struna"},
		{`1.  REDIRECT [C9sus](C9sus "wikilink")`, "C9Sus"},
		{"some text first\n\n1.  REDIRECT [Struna](Struna \"wikilink\")", "Struna"},
	}
	for _, tt := range tests {
		got, ok := GetRedirect(tt.content)
		require.True(t, ok, tt.content)
		require.Equal(t, tt.want, got)
	}

	_, ok := GetRedirect(`1. redirect [Struna](Struna "wikilink")`)
	require.False(t, ok, "keyword is case-sensitive")
	_, ok = GetRedirect(`[Struna](Struna "wikilink")`)
	require.False(t, ok)
}

func TestDocument_RedirectFrontMatter(t *testing.T) {
	d := newDoc(t, `1.  REDIRECT [C9sus](C9sus "wikilink")`, "foo.md")
	require.True(t, d.IsRedirect())
	require.Equal(t, names.WikiName("C9Sus"), d.FrontMatter().Redirect)
	require.Equal(t, names.Slug("foo"), d.FrontMatter().Slug)
	require.Equal(t, "/foo", d.URLPath())
}

func TestDocument_ChordURLPath(t *testing.T) {
	d := newDoc(t, `1.  REDIRECT [C9sus](C9sus "wikilink")`, "książka/B♭/C.md")
	require.Equal(t, "B♭/C", d.Title())
	require.Equal(t, names.Slug("b-c"), d.FrontMatter().Slug)
	require.Equal(t, "/książka/b-c", d.URLPath())
	require.Equal(t, "B♭/C.md", d.FileName())
}

func TestDocument_URLPathUsesTopDirectoryOnly(t *testing.T) {
	d := newDoc(t, "x", "a/b/Deep_Page.md")
	require.Equal(t, "/a/deep-page", d.URLPath())
}

func TestDocument_ImagePaths(t *testing.T) {
	t.Run("multiline anchor", func(t *testing.T) {
		d := newDoc(t, "[thumb\nnail](Grafika:MarekBlizinskiPozycja.jpg \"wikilink\") - postawa z", "foo/bar.md")
		require.Equal(t, []string{"/images/MarekBlizinskiPozycja.jpg"}, d.FrontMatter().ImagePaths)
	})
	t.Run("order of appearance", func(t *testing.T) {
		d := newDoc(t, "[thumb\nnail](Grafika:MarekBlizinskiPozycja.jpg \"wikilink\") - postawa z"+
			"[somethingelse](Grafika:anotherImage.jpg \"wikilink\")"+
			"[again](grafika:MarekBlizinskiPozycja.jpg \"wikilink\")", "foo/bar.md")
		require.Equal(t, []string{"/images/MarekBlizinskiPozycja.jpg", "/images/AnotherImage.jpg"}, d.FrontMatter().ImagePaths)
	})
}

func TestDocument_Metadata(t *testing.T) {
	ts := time.Date(2008, time.May, 1, 12, 0, 0, 0, time.UTC)
	d, err := New("x", "foo/Page.md", &models.PageMeta{Title: "Page", Timestamp: ts, Contributor: "Zenek"}, polishSyntax(t))
	require.NoError(t, err)
	require.True(t, d.FrontMatter().Date.Equal(ts))
	require.Equal(t, "Zenek", d.FrontMatter().Contributor)
}

func TestDocument_LegacyAlias(t *testing.T) {
	s := models.DefaultSettings()
	s.LegacyAliasBase = "/gitara/"
	syn, err := NewSyntax(s)
	require.NoError(t, err)
	d, err := New("test content", "foo/Page_Title.md", nil, syn)
	require.NoError(t, err)
	require.Contains(t, d.FrontMatter().Aliases, "/gitara/Page_Title")
}

func TestDocument_ParseFailure(t *testing.T) {
	_, err := New(string([]byte{0xff, 0xfe}), "bad.md", nil, polishSyntax(t))
	require.ErrorIs(t, err, apperr.ErrParse)
}

func TestRemoveCategoryLinks(t *testing.T) {
	d := newDoc(t, `head[kategoria:technika gry](# "Niestety nic nie ma pod tym linkiem")tail`, "książka/foo.md")
	require.Equal(t, "headtail", d.RemoveCategoryLinks().Content())

	d = newDoc(t, `a [:Kategoria:Foo](:Kategoria:Foo "wikilink") b`, "książka/foo.md")
	require.Equal(t, "a  b", d.RemoveCategoryLinks().Content())
}

func TestHandleImageTags(t *testing.T) {
	tests := []struct {
		name, content, want string
	}{
		{"simple",
			`[thumb](Grafika:MarekBlizinskiPozycja.jpg "wikilink") - postawa z`,
			`{{< image src="/images/MarekBlizinskiPozycja.jpg" >}} - postawa z`},
		{"lowercase",
			`[thumb](Grafika:plectrum1.jpg "wikilink") - postawa z`,
			`{{< image src="/images/Plectrum1.jpg" >}} - postawa z`},
		{"multiline",
			"[thumb\nnail](Grafika:MarekBlizinskiPozycja.jpg \"wikilink\") - postawa z",
			`{{< image src="/images/MarekBlizinskiPozycja.jpg" >}} - postawa z`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDoc(t, tt.content, "foo/bar.md")
			require.Equal(t, tt.want, d.HandleImageTags().Content())
		})
	}
}

func TestTransformsShareFrontMatter(t *testing.T) {
	d := newDoc(t, testArticle, "bar/Test_Article_1.md")
	derived := d.RemoveCategoryLinks().HandleImageTags()
	require.NotSame(t, d, derived)
	require.Same(t, d.FrontMatter(), derived.FrontMatter())
	require.Equal(t, d.Path(), derived.Path())
	require.Equal(t, testArticle, d.Content(), "original must be unchanged")
}

func TestFixMonospace(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"merge", "a\n`line1`\n`line2`\nb\n", "a\n\n```\nline1\nline2\n```\n\nb\n"},
		{"no monospace", "a\nb\n", "a\nb\n"},
		{"closed at end of input", "a\n`line1`\n", "a\n\n```\nline1\n```\n"},
		{"inline code untouched", "use `x` here\n", "use `x` here\n"},
		{"existing fence untouched", "text\n\n```\ncode\n```\n\nafter\n", "text\n\n```\ncode\n```\n\nafter\n"},
		{"backtick line inside fence untouched", "```\n`kod`\n```\n", "```\n`kod`\n```\n"},
		{"blank lines kept single", "a\n\n`line1`\n`line2`\n\nb\n", "a\n\n```\nline1\nline2\n```\n\nb\n"},
		{"single character", "a\n`x`\n", "a\n\n```\nx\n```\n"},
		{"double backticks ignored", "``x``\n", "``x``\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDoc(t, tt.in, "foo/Page_Title.md")
			require.Equal(t, tt.want, d.FixMonospace().Content())
		})
	}
}

func TestWikilinks(t *testing.T) {
	content := `a [x](X "wikilink") b [web](https://e.com "t") [y z](Y_(z) "wikilink")`
	got := Wikilinks(content)
	require.Len(t, got, 2)
	require.Equal(t, "x", got[0].Anchor)
	require.Equal(t, "X", got[0].Destination)
	require.Equal(t, `[x](X "wikilink")`, content[got[0].Start:got[0].End])
	require.Equal(t, "Y_(z)", got[1].Destination)
}

func TestCategoryReference(t *testing.T) {
	syn := polishSyntax(t)
	name, ok := syn.CategoryReference(":Kategoria:Tabele_chwytów")
	require.True(t, ok)
	require.Equal(t, "Tabele chwytów", name)
	require.Equal(t, `[a](/kategorie/tabele-chwytow "Kategoria Tabele chwytów")`, syn.CategoryLink("a", name))

	_, ok = syn.CategoryReference(":Kategoria:")
	require.False(t, ok)
	_, ok = syn.CategoryReference("Akord")
	require.False(t, ok)
}
