// Package testutil provides shared test helpers for setting up page trees and report databases.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/wikihugo/internal/models"
	"github.com/starford/wikihugo/internal/report"
	"github.com/starford/wikihugo/internal/storage"
)

// TestDB creates a temporary SQLite report database that is automatically cleaned up.
func TestDB(t *testing.T) *report.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "wikihugo-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := report.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestTree creates a temporary page tree directory with a storage.Provider.
func TestTree(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir, ".md")
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WritePage writes content to rel (slash separated) below root, creating
// parent directories.
func WritePage(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// Settings returns the syntax of a Polish-language wiki used across tests.
func Settings() models.Settings {
	s := models.DefaultSettings()
	s.CategoryTag = "Kategoria"
	s.ImageTag = "Grafika"
	s.ImageShortcode = "image"
	return s
}

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
