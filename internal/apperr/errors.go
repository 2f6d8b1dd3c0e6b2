package apperr

import "errors"

// ErrNotFound is returned by lookups of pages, paths and redirect edges.
var ErrNotFound = errors.New("not found")

// Corpus-structural failures. Any of these aborts a conversion run before
// anything is written.
var (
	ErrDuplicatePath     = errors.New("duplicate document path")
	ErrDuplicateWikiName = errors.New("duplicate wiki name")
	ErrRedirectCycle     = errors.New("redirect chain cycles")
	ErrParse             = errors.New("markdown parse failed")
	ErrNoSources         = errors.New("no source files found")
	ErrInvalidDirs       = errors.New("invalid source or destination directory")
)

// ErrDanglingRedirect marks a redirect chain whose last page still declares a
// redirect but has nowhere to go.
var ErrDanglingRedirect = errors.New("redirect chain ends at a redirect page")
