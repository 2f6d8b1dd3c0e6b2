package site

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starford/wikihugo/internal/apperr"
	"github.com/starford/wikihugo/internal/document"
	"github.com/starford/wikihugo/internal/models"
	"github.com/starford/wikihugo/internal/names"
)

func testSyntax(t *testing.T) *document.Syntax {
	t.Helper()
	s := models.DefaultSettings()
	s.CategoryTag = "kategoria"
	syn, err := document.NewSyntax(s)
	require.NoError(t, err)
	return syn
}

type page struct {
	path    names.Path
	content string
}

func docs(t *testing.T, pages ...page) []*document.Document {
	t.Helper()
	syn := testSyntax(t)
	out := make([]*document.Document, 0, len(pages))
	for _, p := range pages {
		d, err := document.New(p.content, p.path, nil, syn)
		require.NoError(t, err)
		out = append(out, d)
	}
	return out
}

func redirectTo(name string) string {
	return "1.  REDIRECT [" + name + "](" + name + ` "wikilink")`
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildByPath_Duplicate(t *testing.T) {
	d := docs(t, page{"a/Foo.md", "x"}, page{"a/Foo.md", "y"})
	_, err := BuildByPath(d)
	require.ErrorIs(t, err, apperr.ErrDuplicatePath)
}

func TestBuildByPath_LowerCaseFallback(t *testing.T) {
	d := docs(t,
		page{"a/Foo.md", "upper"},
		page{"a/foo.md", "lower"},
		page{"a/Bar.md", "bar"},
	)
	byPath, err := BuildByPath(d)
	require.NoError(t, err)

	require.Equal(t, "upper", byPath["a/Foo.md"].Content())
	require.Equal(t, "lower", byPath["a/foo.md"].Content(), "verbatim path wins over lower-cased key")
	require.Equal(t, "bar", byPath["a/bar.md"].Content())
	require.NotContains(t, byPath, names.Path("a/BAR.md"))
}

func TestLookupPath_CaseInsensitive(t *testing.T) {
	d := docs(t, page{"książka/Akord.md", "akord"}, page{"książka/Bossa_Nova.md", "bossa"})
	s, err := New(d, testSyntax(t), quietLogger())
	require.NoError(t, err)

	got, ok := s.LookupPath("książka/akord.md")
	require.True(t, ok)
	require.Equal(t, "akord", got.Content())

	got, ok = s.LookupPath("KSIĄŻKA/BOSSA_NOVA.md")
	require.True(t, ok)
	require.Equal(t, "bossa", got.Content())

	_, ok = s.LookupPath("książka/missing.md")
	require.False(t, ok)
}

func TestBuildByWikiName_Duplicate(t *testing.T) {
	tests := []struct {
		name  string
		pages []page
	}{
		{"same name in two directories", []page{{"x/Foo.md", ""}, {"y/Foo.md", ""}}},
		{"names equal after canonicalization", []page{{"x/foo_bar.md", ""}, {"y/Foo_Bar.md", ""}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildByWikiName(docs(t, tt.pages...))
			require.ErrorIs(t, err, apperr.ErrDuplicateWikiName)
		})
	}
}

func TestBuildByWikiName_Canonical(t *testing.T) {
	m, err := BuildByWikiName(docs(t, page{"x/neck_adjustment.md", ""}))
	require.NoError(t, err)
	require.Contains(t, m, names.WikiName("Neck_Adjustment"))
}

func TestDiscoverRedirects_AddsAlias(t *testing.T) {
	d := docs(t,
		page{"książka/Akord.md", redirectTo("Bakord")},
		page{"książka/Bakord.md", "O akordzie"},
	)
	s, err := New(d, testSyntax(t), quietLogger())
	require.NoError(t, err)

	target, ok := s.Redirect("Akord")
	require.True(t, ok)
	require.Equal(t, names.WikiName("Bakord"), target)

	bakord, ok := s.ByWikiName("bakord")
	require.True(t, ok)
	require.Equal(t, []string{"/książka/akord"}, bakord.FrontMatter().Aliases)
}

func TestDiscoverRedirects_DropsBadTargets(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	d := docs(t,
		page{"a/Missing_Target.md", redirectTo("Nowhere")},
		page{"a/To_Category.md", redirectTo(":Kategoria:Chwyty")},
	)
	s, err := New(d, testSyntax(t), logger)
	require.NoError(t, err)
	require.Empty(t, s.Redirects())
	require.Contains(t, buf.String(), "redirect target does not exist")
	require.Contains(t, buf.String(), "redirect to category is not supported")
}

func TestNew_RedirectCycle(t *testing.T) {
	d := docs(t,
		page{"a/Akord.md", redirectTo("Bakord")},
		page{"a/Bakord.md", redirectTo("Akord")},
	)
	_, err := New(d, testSyntax(t), quietLogger())
	require.ErrorIs(t, err, apperr.ErrRedirectCycle)
}

func TestNew_SelfRedirect(t *testing.T) {
	d := docs(t, page{"a/Akord.md", redirectTo("Akord")})
	_, err := New(d, testSyntax(t), quietLogger())
	require.ErrorIs(t, err, apperr.ErrRedirectCycle)
}

func TestResolveChain(t *testing.T) {
	d := docs(t,
		page{"książka/Akord.md", redirectTo("Bakord")},
		page{"książka/Bakord.md", redirectTo("Cakord")},
		page{"content/książka/Cakord.md", "O akordzie"},
		page{"książka/Dakord.md", redirectTo("Ekord")},
		page{"książka/Ekord.md", redirectTo("Nowhere")},
	)
	s, err := New(d, testSyntax(t), quietLogger())
	require.NoError(t, err)

	t.Run("double hop", func(t *testing.T) {
		got, err := s.ResolveChain("Akord")
		require.NoError(t, err)
		require.Equal(t, names.Path("content/książka/Cakord.md"), got.Path())
	})
	t.Run("single hop", func(t *testing.T) {
		got, err := s.ResolveChain("Bakord")
		require.NoError(t, err)
		require.Equal(t, "Cakord", got.Title())
	})
	t.Run("no edge", func(t *testing.T) {
		_, err := s.ResolveChain("Cakord")
		require.ErrorIs(t, err, apperr.ErrNotFound)
	})
	t.Run("ends on a redirect page", func(t *testing.T) {
		got, err := s.ResolveChain("Dakord")
		require.ErrorIs(t, err, apperr.ErrDanglingRedirect)
		require.Equal(t, "Ekord", got.Title())
	})
}

func TestDocuments_SortedByPath(t *testing.T) {
	d := docs(t, page{"b.md", ""}, page{"a.md", ""}, page{"c/d.md", ""})
	s, err := New(d, testSyntax(t), quietLogger())
	require.NoError(t, err)
	var got []names.Path
	for _, doc := range s.Documents() {
		got = append(got, doc.Path())
	}
	require.Equal(t, []names.Path{"a.md", "b.md", "c/d.md"}, got)
}
