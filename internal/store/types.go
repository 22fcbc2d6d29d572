// Package store provides document storage and similarity search using SQLite and sqlite-vec.
package store

import "fmt"

// DistanceMetric selects how sqlite-vec measures distance between embeddings.
type DistanceMetric string

const (
	MetricL2     DistanceMetric = "l2"
	MetricCosine DistanceMetric = "cosine"
)

// ParseDistanceMetric validates a metric name from configuration.
func ParseDistanceMetric(name string) (DistanceMetric, error) {
	switch DistanceMetric(name) {
	case MetricL2, MetricCosine:
		return DistanceMetric(name), nil
	default:
		return "", fmt.Errorf("unsupported distance metric: %q", name)
	}
}

const (
	// NoCursor marks an exhausted page sequence.
	NoCursor int64 = -1

	// MaxSearchK is the largest k sqlite-vec accepts for a KNN query.
	MaxSearchK = 4096

	// MaxPageSize bounds a single ListPage call.
	MaxPageSize = 10000
)

// Document is a stored piece of content with its embedding.
type Document struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding,omitempty"` // Never read back from the database
	CreatedAt int64     `json:"created_at"`          // Unix milliseconds
}

// DocumentRef identifies a freshly inserted document.
type DocumentRef struct {
	ID        int64 `json:"id"`
	CreatedAt int64 `json:"created_at"`
}

// Page is one slice of documents in descending id order.
type Page struct {
	Documents  []Document `json:"documents"`
	HasMore    bool       `json:"has_more"`
	NextCursor int64      `json:"next_cursor"` // NoCursor when HasMore is false
}

// SearchHit is a document ranked by its distance to a query vector.
type SearchHit struct {
	ID        int64   `json:"id"`
	Content   string  `json:"content"`
	CreatedAt int64   `json:"created_at"`
	Distance  float32 `json:"distance"` // Smaller is more similar
}

// Stats describes the store and the database it runs on.
type Stats struct {
	Documents      int            `json:"documents"`
	Dimensions     int            `json:"dimensions"`
	DistanceMetric DistanceMetric `json:"distance_metric"`
	SchemaVersion  int            `json:"schema_version"`
	SQLiteVersion  string         `json:"sqlite_version"`
	VecVersion     string         `json:"vec_version"`
}
