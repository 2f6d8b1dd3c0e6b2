package convert

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starford/wikihugo/internal/apperr"
	"github.com/starford/wikihugo/internal/report"
	"github.com/starford/wikihugo/internal/resolve"
	"github.com/starford/wikihugo/internal/storage"
	"github.com/starford/wikihugo/internal/testutil"
)

const (
	akord = "Akord to [chwyt](Chwyt \"wikilink\"), [stary chwyt](Stary_chwyt \"wikilink\") " +
		"i [brak](Nieistnieje \"wikilink\").\n\n" +
		"[Kategoria:Harmonia](Kategoria:Harmonia \"wikilink\")\n"
	chwyt      = "Chwyt to kilka dźwięków naraz.\n`kod`\n"
	staryChwyt = "#REDIRECT [Chwyt](Chwyt \"wikilink\")\n"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) PublishPageEvent(kind, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, kind+":"+path)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type env struct {
	srcDir, dstDir string
	src, dst       storage.Provider
}

func newEnv(t *testing.T) env {
	t.Helper()
	srcDir, src := testutil.TestTree(t)
	dstDir, dst := testutil.TestTree(t)
	testutil.WritePage(t, srcDir, "Gitara/Akord.md", akord)
	testutil.WritePage(t, srcDir, "Gitara/Chwyt.md", chwyt)
	testutil.WritePage(t, srcDir, "Gitara/Stary_chwyt.md", staryChwyt)
	return env{srcDir: srcDir, dstDir: dstDir, src: src, dst: dst}
}

func (e env) converter(t *testing.T, cfg Config, opts ...Option) *Converter {
	t.Helper()
	cfg.Settings = testutil.Settings()
	c, err := New(e.src, e.dst, cfg, testutil.Logger(), opts...)
	require.NoError(t, err)
	return c
}

func (e env) output(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.dstDir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestRun_ConvertsTree(t *testing.T) {
	e := newEnv(t)
	c := e.converter(t, Config{})

	sum, err := c.Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, sum.RunID)
	require.Equal(t, 3, sum.Sources)
	require.Equal(t, 2, sum.Written)
	require.Equal(t, 1, sum.Redirects)
	require.Equal(t, 1, sum.BrokenLinks)

	out := e.output(t, "Gitara/Akord.md")
	require.True(t, strings.HasPrefix(out, "---\ntitle: \"Akord\"\n"), out)
	require.Contains(t, out, `kategorie: [Harmonia]`)
	require.Contains(t, out, `[chwyt]({{< relref "Chwyt.md" >}})`)
	require.Contains(t, out, `[stary chwyt]({{< relref "Chwyt.md" >}})`)
	require.Contains(t, out, "brak<!-- link did not resolve to anything: ")
	require.NotContains(t, out, "(Kategoria:Harmonia")

	target := e.output(t, "Gitara/Chwyt.md")
	require.Contains(t, target, "/Gitara/stary-chwyt")
	require.Contains(t, target, "```\nkod\n```")

	_, err = os.Stat(filepath.Join(e.dstDir, "Gitara", "Stary_chwyt.md"))
	require.True(t, os.IsNotExist(err), "redirect pages are not written")
}

func TestRun_Idempotent(t *testing.T) {
	e := newEnv(t)
	c := e.converter(t, Config{})

	_, err := c.Run(context.Background())
	require.NoError(t, err)
	first := e.output(t, "Gitara/Akord.md")

	sum, err := c.Run(context.Background())
	require.NoError(t, err)
	require.Zero(t, sum.Written)
	require.Equal(t, 2, sum.Unchanged)
	require.Equal(t, first, e.output(t, "Gitara/Akord.md"))
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	e := newEnv(t)
	c := e.converter(t, Config{DryRun: true})

	sum, err := c.Run(context.Background())
	require.NoError(t, err)
	require.True(t, sum.DryRun)
	require.Equal(t, 2, sum.Written)

	files, err := e.dst.List("")
	require.NoError(t, err)
	require.Empty(t, files)
}

func TestRun_PrunesRedirectOutput(t *testing.T) {
	e := newEnv(t)
	testutil.WritePage(t, e.dstDir, "Gitara/Stary_chwyt.md", "stale")
	events := &recorder{}
	c := e.converter(t, Config{PruneRedirects: true}, WithEvents(events))

	sum, err := c.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sum.Pruned)

	_, err = os.Stat(filepath.Join(e.dstDir, "Gitara", "Stary_chwyt.md"))
	require.True(t, os.IsNotExist(err))
	require.Contains(t, events.list(), EventPruned+":Gitara/Stary_chwyt.md")
	require.Contains(t, events.list(), EventWritten+":Gitara/Akord.md")
}

func TestRun_SkipsPagesWithFrontMatter(t *testing.T) {
	e := newEnv(t)
	testutil.WritePage(t, e.srcDir, "Gitara/Gotowe.md", "---\ntitle: x\n---\nbody\n")
	c := e.converter(t, Config{})

	sum, err := c.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sum.Skipped)
	require.Equal(t, 3, sum.Sources)
}

func TestRun_NoSources(t *testing.T) {
	_, src := testutil.TestTree(t)
	_, dst := testutil.TestTree(t)
	c, err := New(src, dst, Config{Settings: testutil.Settings()}, testutil.Logger())
	require.NoError(t, err)

	_, err = c.Run(context.Background())
	require.ErrorIs(t, err, apperr.ErrNoSources)
}

func TestRun_CycleAbortsBeforeWriting(t *testing.T) {
	e := newEnv(t)
	testutil.WritePage(t, e.srcDir, "Gitara/Ping.md", "#REDIRECT [Pong](Pong \"wikilink\")\n")
	testutil.WritePage(t, e.srcDir, "Gitara/Pong.md", "#REDIRECT [Ping](Ping \"wikilink\")\n")
	c := e.converter(t, Config{})

	_, err := c.Run(context.Background())
	require.ErrorIs(t, err, apperr.ErrRedirectCycle)

	files, err := e.dst.List("")
	require.NoError(t, err)
	require.Empty(t, files)
}

func TestRun_RecordsReport(t *testing.T) {
	e := newEnv(t)
	db := testutil.TestDB(t)
	c := e.converter(t, Config{}, WithReport(db))

	_, err := c.Run(context.Background())
	require.NoError(t, err)

	page, err := db.GetPage("Gitara/Akord.md")
	require.NoError(t, err)
	require.Equal(t, report.StatusWritten, page.Status)
	require.Equal(t, "/Gitara/akord", page.URLPath)
	require.Equal(t, []string{"Harmonia"}, page.Categories)

	links, err := db.Links("Gitara/Akord.md")
	require.NoError(t, err)
	require.Len(t, links, 3)
	require.Equal(t, resolve.KindPage, links[0].Kind)
	require.Equal(t, resolve.KindRedirect, links[1].Kind)
	require.Equal(t, "Gitara/Chwyt.md", links[1].Target)
	require.Equal(t, resolve.KindBroken, links[2].Kind)

	redirects, err := db.Redirects()
	require.NoError(t, err)
	require.Len(t, redirects, 1)
	require.Equal(t, "Chwyt", redirects[0].Redirect)

	// A removed source page disappears from the report on the next run.
	require.NoError(t, os.Remove(filepath.Join(e.srcDir, "Gitara", "Akord.md")))
	_, err = c.Run(context.Background())
	require.NoError(t, err)
	_, err = db.GetPage("Gitara/Akord.md")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRun_WarnsWhenOutputWasEdited(t *testing.T) {
	e := newEnv(t)
	db := testutil.TestDB(t)
	var logs bytes.Buffer
	cfg := Config{Settings: testutil.Settings()}
	c, err := New(e.src, e.dst, cfg, slog.New(slog.NewJSONHandler(&logs, nil)), WithReport(db))
	require.NoError(t, err)

	_, err = c.Run(context.Background())
	require.NoError(t, err)
	require.NotContains(t, logs.String(), "edited since the last run")

	testutil.WritePage(t, e.dstDir, "Gitara/Chwyt.md", "poprawione ręcznie\n")
	sum, err := c.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sum.Written)
	require.Contains(t, logs.String(), "edited since the last run")
	require.Contains(t, e.output(t, "Gitara/Chwyt.md"), "kilka dźwięków")
}

func TestRun_DryRunLeavesReportUntouched(t *testing.T) {
	e := newEnv(t)
	db := testutil.TestDB(t)
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	settings := testutil.Settings()

	conv, err := New(e.src, e.dst, Config{Settings: settings}, logger, WithReport(db))
	require.NoError(t, err)
	_, err = conv.Run(context.Background())
	require.NoError(t, err)
	before, err := db.GetChecksum("Gitara/Chwyt.md")
	require.NoError(t, err)

	testutil.WritePage(t, e.srcDir, "Gitara/Chwyt.md", "Chwyt to nowa treść.\n")
	testutil.WritePage(t, e.srcDir, "Gitara/Nowy.md", "Nowy.\n")
	dry, err := New(e.src, e.dst, Config{Settings: settings, DryRun: true}, logger, WithReport(db))
	require.NoError(t, err)
	sum, err := dry.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, sum.Written)

	after, err := db.GetChecksum("Gitara/Chwyt.md")
	require.NoError(t, err)
	require.Equal(t, before, after)
	_, err = db.GetPage("Gitara/Nowy.md")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = conv.Run(context.Background())
	require.NoError(t, err)
	require.NotContains(t, logs.String(), "edited since the last run")
	require.Contains(t, e.output(t, "Gitara/Chwyt.md"), "nowa treść")
}

func TestResolveLink(t *testing.T) {
	e := newEnv(t)
	c := e.converter(t, Config{})

	res, err := c.ResolveLink(context.Background(), "Gitara/Akord.md", "Stary_chwyt")
	require.NoError(t, err)
	require.Equal(t, resolve.KindRedirect, res.Kind)
	require.Equal(t, "Gitara/Chwyt.md", res.Target.String())

	res, err = c.ResolveLink(context.Background(), "Gitara/Akord.md", "Kategoria:Harmonia")
	require.NoError(t, err)
	require.Equal(t, resolve.KindCategory, res.Kind)

	_, err = c.ResolveLink(context.Background(), "Gitara/Nope.md", "Chwyt")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
