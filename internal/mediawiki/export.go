// Package mediawiki reads page metadata from a MediaWiki XML export.
package mediawiki

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/starford/wikihugo/internal/models"
)

// Namespace is the XML namespace of the supported export format.
const Namespace = "http://www.mediawiki.org/xml/export-0.10/"

type exportPage struct {
	Title     string           `xml:"title"`
	Revisions []exportRevision `xml:"revision"`
}

type exportRevision struct {
	Timestamp   string `xml:"timestamp"`
	Contributor struct {
		Username string `xml:"username"`
	} `xml:"contributor"`
}

// Load reads every <page> of the export and returns its metadata keyed by
// page title. Pages with a missing title, timestamp or contributor are
// skipped.
func Load(r io.Reader, logger *slog.Logger) (map[string]models.PageMeta, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dec := xml.NewDecoder(r)
	out := make(map[string]models.PageMeta)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("mediawiki: read export: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "page" || start.Name.Space != Namespace {
			continue
		}
		var p exportPage
		if err := dec.DecodeElement(&p, &start); err != nil {
			return nil, fmt.Errorf("mediawiki: decode page: %w", err)
		}
		meta, err := p.meta()
		if err != nil {
			logger.Debug("skipping incomplete page metadata",
				slog.String("title", p.Title),
				slog.String("error", err.Error()))
			continue
		}
		out[meta.Title] = meta
	}
	return out, nil
}

// LoadFile is Load over the file at path.
func LoadFile(path string, logger *slog.Logger) (map[string]models.PageMeta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mediawiki: open export: %w", err)
	}
	defer f.Close()
	return Load(f, logger)
}

func (p exportPage) meta() (models.PageMeta, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return models.PageMeta{}, errors.New("no title")
	}
	if len(p.Revisions) == 0 {
		return models.PageMeta{}, errors.New("no revision")
	}
	rev := p.Revisions[0]
	ts := strings.TrimSpace(rev.Timestamp)
	if ts == "" {
		return models.PageMeta{}, errors.New("no timestamp")
	}
	when, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return models.PageMeta{}, fmt.Errorf("timestamp: %w", err)
	}
	user := strings.TrimSpace(rev.Contributor.Username)
	if user == "" {
		return models.PageMeta{}, errors.New("no contributor")
	}
	return models.PageMeta{Title: title, Timestamp: when, Contributor: user}, nil
}
