package report

// Store defines the conversion report operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type Store interface {
	RecordPage(p PageRow, body string, links []LinkRow) error
	DeletePage(path string) error
	Prune(keep map[string]struct{}) ([]string, error)
	GetChecksum(path string) (string, error)
	GetPage(path string) (*PageRow, error)
	ListPages(limit, offset int, category, status string) ([]PageRow, int, error)
	Links(source string) ([]LinkRow, error)
	BrokenLinks(limit int) ([]LinkRow, error)
	Redirects() ([]PageRow, error)
	Backlinks(target string) ([]LinkRow, error)
	Search(query string, limit int) ([]SearchResult, error)
	Categories() ([]string, error)
	Stats() (Stats, error)
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
