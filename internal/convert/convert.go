// Package convert runs the two-phase conversion of an exported wiki tree:
// every page is read and indexed first, then every page is resolved against
// the complete index and written out.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/wikihugo/internal/apperr"
	"github.com/starford/wikihugo/internal/checksum"
	"github.com/starford/wikihugo/internal/document"
	"github.com/starford/wikihugo/internal/frontmatter"
	"github.com/starford/wikihugo/internal/mediawiki"
	"github.com/starford/wikihugo/internal/models"
	"github.com/starford/wikihugo/internal/names"
	"github.com/starford/wikihugo/internal/parser"
	"github.com/starford/wikihugo/internal/report"
	"github.com/starford/wikihugo/internal/resolve"
	"github.com/starford/wikihugo/internal/site"
	"github.com/starford/wikihugo/internal/storage"
)

// Page event kinds passed to an EventSink.
const (
	EventWritten = "written"
	EventPruned  = "pruned"
)

// EventSink receives per-page notifications after a page is written or pruned.
type EventSink interface {
	PublishPageEvent(kind, path string)
}

// Config controls a conversion run.
type Config struct {
	Settings models.Settings
	// XMLData is an optional MediaWiki XML export with page metadata.
	XMLData string
	// DryRun computes everything and logs intended writes without touching
	// the destination or the report.
	DryRun bool
	// PruneRedirects deletes destination files of redirect pages.
	PruneRedirects bool
}

// Summary counts the work performed by one run.
type Summary struct {
	RunID       string `json:"run_id"`
	Sources     int    `json:"sources"`
	Skipped     int    `json:"skipped"`
	Written     int    `json:"written"`
	Unchanged   int    `json:"unchanged"`
	Redirects   int    `json:"redirects"`
	Pruned      int    `json:"pruned"`
	BrokenLinks int    `json:"broken_links"`
	DryRun      bool   `json:"dry_run"`
}

// Converter converts a source tree into a destination tree.
type Converter struct {
	src    storage.Provider
	dst    storage.Provider
	cfg    Config
	syntax *document.Syntax
	logger *slog.Logger
	report report.Store
	events EventSink

	runMu sync.Mutex // one run at a time

	mu     sync.RWMutex
	engine *resolve.Engine // index of the last run
}

// Option configures optional collaborators of a Converter.
type Option func(*Converter)

// WithReport records every run in store.
func WithReport(store report.Store) Option {
	return func(c *Converter) { c.report = store }
}

// WithEvents publishes page events to sink.
func WithEvents(sink EventSink) Option {
	return func(c *Converter) { c.events = sink }
}

// New creates a Converter reading from src and writing to dst.
func New(src, dst storage.Provider, cfg Config, logger *slog.Logger, opts ...Option) (*Converter, error) {
	syntax, err := document.NewSyntax(cfg.Settings)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Converter{src: src, dst: dst, cfg: cfg, syntax: syntax, logger: logger}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

type output struct {
	doc      *document.Document
	content  []byte
	links    []resolve.Resolution
	redirect bool
}

// Run performs one full conversion. Corpus-level failures (parse errors,
// duplicate names, redirect cycles, no sources) abort before anything is
// written.
func (c *Converter) Run(ctx context.Context) (Summary, error) {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	sum := Summary{RunID: uuid.NewString(), DryRun: c.cfg.DryRun}
	start := time.Now()
	c.logger.Info("conversion started",
		slog.String("run_id", sum.RunID),
		slog.String("source", c.src.Root()),
		slog.String("destination", c.dst.Root()))

	docs, skipped, err := c.load(ctx)
	if err != nil {
		return sum, err
	}
	sum.Sources, sum.Skipped = len(docs), skipped

	idx, err := site.New(docs, c.syntax, c.logger)
	if err != nil {
		return sum, fmt.Errorf("convert: build site: %w", err)
	}
	engine := resolve.New(idx, c.logger)

	outputs, err := c.render(ctx, idx, engine)
	if err != nil {
		return sum, err
	}

	c.mu.Lock()
	c.engine = engine
	c.mu.Unlock()

	for _, o := range outputs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		status, err := c.emit(o, &sum)
		if err != nil {
			return sum, err
		}
		if !c.cfg.DryRun {
			c.record(o, status)
		}
	}
	if !c.cfg.DryRun {
		c.pruneReport(outputs)
	}

	c.logger.Info("conversion finished",
		slog.String("run_id", sum.RunID),
		slog.Int("sources", sum.Sources),
		slog.Int("skipped", sum.Skipped),
		slog.Int("written", sum.Written),
		slog.Int("unchanged", sum.Unchanged),
		slog.Int("redirects", sum.Redirects),
		slog.Int("pruned", sum.Pruned),
		slog.Int("broken_links", sum.BrokenLinks),
		slog.Bool("dry_run", sum.DryRun),
		slog.Duration("elapsed", time.Since(start)))
	return sum, nil
}

// load reads every source page that does not carry front matter yet.
func (c *Converter) load(ctx context.Context) ([]*document.Document, int, error) {
	files, err := c.src.List("")
	if err != nil {
		return nil, 0, fmt.Errorf("convert: list sources: %w", err)
	}
	if len(files) == 0 {
		return nil, 0, fmt.Errorf("convert: %w in %s", apperr.ErrNoSources, c.src.Root())
	}

	var meta map[string]models.PageMeta
	if c.cfg.XMLData != "" {
		meta, err = mediawiki.LoadFile(c.cfg.XMLData, c.logger)
		if err != nil {
			return nil, 0, fmt.Errorf("convert: %w", err)
		}
		c.logger.Info("loaded page metadata", slog.Int("pages", len(meta)), slog.String("file", c.cfg.XMLData))
	}

	var (
		docs    []*document.Document
		skipped int
	)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		data, err := c.src.Read(f.Path)
		if err != nil {
			return nil, 0, fmt.Errorf("convert: %w", err)
		}
		if delim, ok := parser.FrontMatterDelimiter(data); ok {
			c.logger.Info("already has front matter, skipping",
				slog.String("path", f.Path),
				slog.String("delimiter", delim))
			skipped++
			continue
		}
		p := names.Path(f.Path)
		var pm *models.PageMeta
		if m, ok := meta[names.TitleFromPath(p)]; ok {
			pm = &m
		}
		doc, err := document.New(string(data), p, pm, c.syntax)
		if err != nil {
			return nil, 0, fmt.Errorf("convert: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, skipped, nil
}

// render computes the output of every page without touching the destination.
func (c *Converter) render(ctx context.Context, idx *site.Site, engine *resolve.Engine) ([]output, error) {
	docs := idx.Documents()
	out := make([]output, 0, len(docs))
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if doc.IsRedirect() {
			out = append(out, output{doc: doc, redirect: true})
			continue
		}
		body, links, err := engine.Resolve(doc.RemoveCategoryLinks().HandleImageTags())
		if err != nil {
			return nil, fmt.Errorf("convert: %w", err)
		}
		body = body.FixMonospace()

		fm, err := frontmatter.Render(doc.FrontMatter(), c.cfg.Settings.CategoryKey)
		if err != nil {
			return nil, fmt.Errorf("convert: %w", err)
		}
		out = append(out, output{doc: doc, content: append(fm, body.Content()...), links: links})
	}
	return out, nil
}

// emit writes one output, or prunes it for redirect pages, and returns the
// report status of the page.
func (c *Converter) emit(o output, sum *Summary) (string, error) {
	path := o.doc.Path().String()
	if o.redirect {
		sum.Redirects++
		if c.cfg.PruneRedirects {
			pruned, err := c.prune(path, o.doc.FrontMatter().Redirect)
			if err != nil {
				return "", err
			}
			if pruned {
				sum.Pruned++
			}
		}
		return report.StatusRedirect, nil
	}

	for _, l := range o.links {
		if l.Kind == resolve.KindBroken {
			sum.BrokenLinks++
		}
	}

	existing, err := c.dst.Read(path)
	switch {
	case err == nil && bytes.Equal(existing, o.content):
		c.logger.Debug("output unchanged", slog.String("path", path))
		sum.Unchanged++
		return report.StatusUnchanged, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("convert: %w", err)
	}

	if err == nil {
		c.warnIfEdited(path, existing)
	}

	sum.Written++
	if c.cfg.DryRun {
		c.logger.Info("would write", slog.String("path", path), slog.String("checksum", checksum.Short(o.content)))
		return report.StatusWritten, nil
	}
	if err := c.dst.Write(path, o.content); err != nil {
		return "", fmt.Errorf("convert: %w", err)
	}
	c.logger.Debug("wrote", slog.String("path", path), slog.String("checksum", checksum.Short(o.content)))
	if c.events != nil {
		c.events.PublishPageEvent(EventWritten, path)
	}
	return report.StatusWritten, nil
}

func (c *Converter) prune(path string, target names.WikiName) (bool, error) {
	if _, err := c.dst.Read(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("convert: %w", err)
	}
	if c.cfg.DryRun {
		c.logger.Info("would unlink redirect", slog.String("path", path), slog.String("target", target.String()))
		return true, nil
	}
	if err := c.dst.Delete(path); err != nil {
		return false, fmt.Errorf("convert: %w", err)
	}
	c.logger.Info("unlinked redirect", slog.String("path", path), slog.String("target", target.String()))
	if c.events != nil {
		c.events.PublishPageEvent(EventPruned, path)
	}
	return true, nil
}

// ResolveLink resolves a single wikilink as it would appear on the page at
// from, against the index of the last run. Without a previous run the source
// tree is indexed first.
func (c *Converter) ResolveLink(ctx context.Context, from, dest string) (resolve.Resolution, error) {
	c.mu.RLock()
	engine := c.engine
	c.mu.RUnlock()
	if engine == nil {
		var err error
		if engine, err = c.Index(ctx); err != nil {
			return resolve.Resolution{}, err
		}
	}
	doc, ok := engine.Site().LookupPath(names.Path(from))
	if !ok {
		return resolve.Resolution{}, fmt.Errorf("convert: page %s: %w", from, apperr.ErrNotFound)
	}
	return engine.ResolveLink(doc, dest, dest)
}

// Index loads and indexes the source tree without writing anything and keeps
// the result for ResolveLink.
func (c *Converter) Index(ctx context.Context) (*resolve.Engine, error) {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	docs, _, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	idx, err := site.New(docs, c.syntax, c.logger)
	if err != nil {
		return nil, fmt.Errorf("convert: build site: %w", err)
	}
	engine := resolve.New(idx, c.logger)
	c.mu.Lock()
	c.engine = engine
	c.mu.Unlock()
	return engine, nil
}
