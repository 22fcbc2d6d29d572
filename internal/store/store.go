package store

// Store defines the interface for document storage operations.
type Store interface {
	// Documents
	Insert(content string, embedding []float32) (*DocumentRef, error)
	ListPage(cursor int64, limit int) (*Page, error)

	// Search
	Search(query []float32, k int) ([]SearchHit, error)

	// Stats
	Count() (int, error)
	Stats() (*Stats, error)
	Dimensions() int

	// Maintenance
	Close() error
}
