package report

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/starford/wikihugo/internal/apperr"
	"github.com/starford/wikihugo/internal/resolve"
)

// Page statuses recorded for a run.
const (
	StatusWritten   = "written"
	StatusUnchanged = "unchanged"
	StatusRedirect  = "redirect"
)

// PageRow represents a row in the pages table.
type PageRow struct {
	Path       string    `json:"path"`
	WikiName   string    `json:"wiki_name"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	URLPath    string    `json:"url_path"`
	Checksum   string    `json:"checksum"`
	Redirect   string    `json:"redirect,omitempty"`
	Status     string    `json:"status"`
	Categories []string  `json:"categories"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// LinkRow represents one resolved wikilink of a source page.
type LinkRow struct {
	Source      string       `json:"source"`
	Position    int          `json:"position"`
	Anchor      string       `json:"anchor"`
	Destination string       `json:"destination"`
	Kind        resolve.Kind `json:"kind"`
	Target      string       `json:"target,omitempty"`
	Diagnostic  string       `json:"diagnostic,omitempty"`
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Stats summarizes the recorded run.
type Stats struct {
	Pages       int            `json:"pages"`
	ByStatus    map[string]int `json:"by_status"`
	Links       int            `json:"links"`
	ByKind      map[string]int `json:"by_kind"`
	LastUpdated time.Time      `json:"last_updated"`
}

// RecordPage inserts or replaces a page, its FTS entry, and its links within a transaction.
func (db *DB) RecordPage(p PageRow, body string, links []LinkRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("report: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	cats := p.Categories
	if cats == nil {
		cats = []string{}
	}
	catsJSON, _ := json.Marshal(cats)
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}

	_, err = tx.Exec(`
		INSERT INTO pages (path, wiki_name, title, slug, url_path, checksum, redirect, status, categories, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			wiki_name  = excluded.wiki_name,
			title      = excluded.title,
			slug       = excluded.slug,
			url_path   = excluded.url_path,
			checksum   = excluded.checksum,
			redirect   = excluded.redirect,
			status     = excluded.status,
			categories = excluded.categories,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, p.Path, p.WikiName, p.Title, p.Slug, p.URLPath, p.Checksum, p.Redirect, p.Status, string(catsJSON), body, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("report: upsert page: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, p.Path, p.Title, body, cats); err != nil {
		return err
	}

	// Replace links: delete old then bulk insert.
	if _, err := tx.Exec(`DELETE FROM links WHERE source = ?`, p.Path); err != nil {
		return fmt.Errorf("report: clear links: %w", err)
	}
	if len(links) > 0 {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO links (source, position, anchor, destination, kind, target, diagnostic)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("report: prepare link insert: %w", err)
		}
		defer stmt.Close()
		for i, l := range links {
			if _, err := stmt.Exec(p.Path, i, l.Anchor, l.Destination, l.Kind, l.Target, l.Diagnostic); err != nil {
				return fmt.Errorf("report: insert link: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeletePage removes a page, its FTS entry, and its links.
func (db *DB) DeletePage(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("report: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	if _, err := tx.Exec(`DELETE FROM links WHERE source = ?`, path); err != nil {
		return fmt.Errorf("report: delete links: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM pages WHERE path = ?`, path); err != nil {
		return fmt.Errorf("report: delete page: %w", err)
	}
	return tx.Commit()
}

// Prune deletes every page whose path is not in keep and returns the removed
// paths in order.
func (db *DB) Prune(keep map[string]struct{}) ([]string, error) {
	paths, err := db.allPaths()
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, p := range paths {
		if _, ok := keep[p]; ok {
			continue
		}
		if err := db.DeletePage(p); err != nil {
			return removed, err
		}
		removed = append(removed, p)
	}
	return removed, nil
}

func (db *DB) allPaths() ([]string, error) {
	rows, err := db.conn.Query(`SELECT path FROM pages ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("report: all paths: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetChecksum returns the stored output checksum for a page, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM pages WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil // not found is fine
	}
	if err != nil {
		return "", fmt.Errorf("report: get checksum: %w", err)
	}
	return cs, nil
}

const pageColumns = `path, wiki_name, title, slug, url_path, checksum, redirect, status, categories, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPage(s rowScanner) (PageRow, error) {
	var (
		p    PageRow
		cats string
	)
	if err := s.Scan(&p.Path, &p.WikiName, &p.Title, &p.Slug, &p.URLPath, &p.Checksum,
		&p.Redirect, &p.Status, &cats, &p.UpdatedAt); err != nil {
		return PageRow{}, err
	}
	if err := json.Unmarshal([]byte(cats), &p.Categories); err != nil {
		p.Categories = []string{}
	}
	return p, nil
}

// GetPage returns a single page, or apperr.ErrNotFound.
func (db *DB) GetPage(path string) (*PageRow, error) {
	row := db.conn.QueryRow(`SELECT `+pageColumns+` FROM pages WHERE path = ?`, path)
	p, err := scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("report: get page: %w", err)
	}
	return &p, nil
}

// ListPages returns pages ordered by path with optional category and status
// filters, plus the total number of matching pages.
func (db *DB) ListPages(limit, offset int, category, status string) ([]PageRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	where := `WHERE (? = '' OR status = ?) AND (? = '' OR EXISTS (
		SELECT 1 FROM json_each(pages.categories) WHERE json_each.value = ?))`
	args := []any{status, status, category, category}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM pages `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("report: count pages: %w", err)
	}

	rows, err := db.conn.Query(`SELECT `+pageColumns+` FROM pages `+where+` ORDER BY path LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("report: list pages: %w", err)
	}
	defer rows.Close()
	var out []PageRow
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// Redirects returns every page recorded as a redirect.
func (db *DB) Redirects() ([]PageRow, error) {
	rows, err := db.conn.Query(`SELECT `+pageColumns+` FROM pages WHERE status = ? ORDER BY path`, StatusRedirect)
	if err != nil {
		return nil, fmt.Errorf("report: redirects: %w", err)
	}
	defer rows.Close()
	var out []PageRow
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const linkColumns = `source, position, anchor, destination, kind, target, diagnostic`

func (db *DB) queryLinks(query string, args ...any) ([]LinkRow, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LinkRow
	for rows.Next() {
		var l LinkRow
		if err := rows.Scan(&l.Source, &l.Position, &l.Anchor, &l.Destination, &l.Kind, &l.Target, &l.Diagnostic); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Links returns the recorded wikilinks of a source page in order.
func (db *DB) Links(source string) ([]LinkRow, error) {
	out, err := db.queryLinks(`SELECT `+linkColumns+` FROM links WHERE source = ? ORDER BY position`, source)
	if err != nil {
		return nil, fmt.Errorf("report: links: %w", err)
	}
	return out, nil
}

// BrokenLinks returns unresolvable wikilinks across all pages.
func (db *DB) BrokenLinks(limit int) ([]LinkRow, error) {
	if limit <= 0 {
		limit = 100
	}
	out, err := db.queryLinks(`SELECT `+linkColumns+` FROM links WHERE kind = ? ORDER BY source, position LIMIT ?`,
		resolve.KindBroken, limit)
	if err != nil {
		return nil, fmt.Errorf("report: broken links: %w", err)
	}
	return out, nil
}

// Backlinks returns all wikilinks that resolved to the given target page.
func (db *DB) Backlinks(target string) ([]LinkRow, error) {
	out, err := db.queryLinks(`SELECT `+linkColumns+` FROM links WHERE target = ? ORDER BY source, position`, target)
	if err != nil {
		return nil, fmt.Errorf("report: backlinks: %w", err)
	}
	return out, nil
}

// Stats counts pages by status and links by kind.
func (db *DB) Stats() (Stats, error) {
	st := Stats{ByStatus: map[string]int{}, ByKind: map[string]int{}}
	count := func(query string, into map[string]int) (int, error) {
		rows, err := db.conn.Query(query)
		if err != nil {
			return 0, err
		}
		defer rows.Close()
		total := 0
		for rows.Next() {
			var (
				k string
				n int
			)
			if err := rows.Scan(&k, &n); err != nil {
				return 0, err
			}
			into[k] = n
			total += n
		}
		return total, rows.Err()
	}
	var err error
	if st.Pages, err = count(`SELECT status, count(*) FROM pages GROUP BY status`, st.ByStatus); err != nil {
		return Stats{}, fmt.Errorf("report: stats: %w", err)
	}
	if st.Links, err = count(`SELECT kind, count(*) FROM links GROUP BY kind`, st.ByKind); err != nil {
		return Stats{}, fmt.Errorf("report: stats: %w", err)
	}
	var last sql.NullString
	if err := db.conn.QueryRow(`SELECT max(updated_at) FROM pages`).Scan(&last); err != nil {
		return Stats{}, fmt.Errorf("report: stats: %w", err)
	}
	if last.Valid {
		for _, layout := range []string{"2006-01-02 15:04:05.999999999-07:00", time.RFC3339Nano} {
			if t, err := time.Parse(layout, last.String); err == nil {
				st.LastUpdated = t
				break
			}
		}
	}
	return st, nil
}

// Categories returns the distinct categories of all recorded pages.
func (db *DB) Categories() ([]string, error) {
	rows, err := db.conn.Query(`SELECT DISTINCT json_each.value FROM pages, json_each(pages.categories)`)
	if err != nil {
		return nil, fmt.Errorf("report: categories: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	slices.Sort(out)
	return out, rows.Err()
}
