package convert

import (
	"log/slog"
	"time"

	"github.com/starford/wikihugo/internal/checksum"
	"github.com/starford/wikihugo/internal/report"
	"github.com/starford/wikihugo/internal/resolve"
)

// record stores one page and its links in the report. Report failures are
// logged and never fail the run.
func (c *Converter) record(o output, status string) {
	if c.report == nil {
		return
	}
	doc := o.doc
	fm := doc.FrontMatter()
	row := report.PageRow{
		Path:       doc.Path().String(),
		WikiName:   doc.WikiName().String(),
		Title:      doc.Title(),
		Slug:       fm.Slug.String(),
		URLPath:    doc.URLPath(),
		Redirect:   fm.Redirect.String(),
		Status:     status,
		Categories: fm.Categories,
		UpdatedAt:  time.Now().UTC(),
	}
	body := doc.Content()
	if !o.redirect {
		row.Checksum = checksum.Sum(o.content)
		body = string(o.content)
	}
	if err := c.report.RecordPage(row, body, linkRows(row.Path, o.links)); err != nil {
		c.logger.Warn("failed to record page",
			slog.String("path", row.Path),
			slog.String("error", err.Error()))
	}
}

// pruneReport drops pages that no longer exist in the source tree.
func (c *Converter) pruneReport(outputs []output) {
	if c.report == nil {
		return
	}
	keep := make(map[string]struct{}, len(outputs))
	for _, o := range outputs {
		keep[o.doc.Path().String()] = struct{}{}
	}
	removed, err := c.report.Prune(keep)
	if err != nil {
		c.logger.Warn("failed to prune report", slog.String("error", err.Error()))
		return
	}
	for _, p := range removed {
		c.logger.Info("removed stale report entry", slog.String("path", p))
	}
}

// warnIfEdited logs when the output about to be replaced no longer matches
// what the previous run recorded for it.
func (c *Converter) warnIfEdited(path string, existing []byte) {
	if c.report == nil {
		return
	}
	recorded, err := c.report.GetChecksum(path)
	if err != nil {
		c.logger.Warn("failed to read recorded checksum",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return
	}
	if recorded != "" && recorded != checksum.Sum(existing) {
		c.logger.Warn("output was edited since the last run, overwriting", slog.String("path", path))
	}
}

func linkRows(source string, links []resolve.Resolution) []report.LinkRow {
	rows := make([]report.LinkRow, 0, len(links))
	for i, l := range links {
		rows = append(rows, report.LinkRow{
			Source:      source,
			Position:    i,
			Anchor:      l.Anchor,
			Destination: l.Destination,
			Kind:        l.Kind,
			Target:      l.Target.String(),
			Diagnostic:  l.Diagnostic,
		})
	}
	return rows
}
