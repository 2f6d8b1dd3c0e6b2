// Package storage defines the file-tree abstraction for source and
// destination content directories.
package storage

import "github.com/starford/wikihugo/internal/models"

// Provider is the interface for content tree operations. Paths are
// slash-separated and relative to the tree root.
type Provider interface {
	// Root returns the absolute path of the tree.
	Root() string
	// List returns metadata for every content file under dir.
	List(dir string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
}
