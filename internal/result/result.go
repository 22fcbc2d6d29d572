// Package result maps store output into the response shapes returned to callers.
//
// Every response carries its own failure: a caller checks success (or result)
// before reading the payload. Projections never return nil slices, so empty
// payloads marshal as [] rather than null.
package result

import "github.com/nickcecere/vecdoc/internal/store"

const (
	insertOK     = "Document inserted successfully"
	insertFailed = "Failed to insert document"
)

// InsertResponse acknowledges an insert.
type InsertResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Hit is one search result.
type Hit struct {
	ID        int64   `json:"id"`
	Content   string  `json:"content"`
	Timestamp int64   `json:"timestamp"`
	Distance  float32 `json:"distance"`
}

// SearchResponse holds ranked hits. Result is true only when at least one hit was found.
type SearchResponse struct {
	Result bool   `json:"result"`
	Data   []Hit  `json:"data"`
	Count  int    `json:"count"`
	Error  string `json:"error,omitempty"`
}

// Item is one document in a page.
type Item struct {
	ID        int64  `json:"id"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// PageResponse holds one page of documents, newest first.
type PageResponse struct {
	Results    []Item `json:"results"`
	HasMore    bool   `json:"hasMore"`
	NextCursor int64  `json:"nextCursor"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// Insert builds the acknowledgement for an insert.
func Insert(ref *store.DocumentRef, err error) InsertResponse {
	if err != nil {
		return InsertResponse{Message: insertFailed, Error: err.Error()}
	}

	resp := InsertResponse{Success: true, Message: insertOK}
	if ref != nil {
		resp.ID = ref.ID
	}
	return resp
}

// Search builds the response for a similarity search. Hits keep their order.
func Search(hits []store.SearchHit, err error) SearchResponse {
	if err != nil {
		return SearchResponse{Data: []Hit{}, Error: err.Error()}
	}

	data := make([]Hit, len(hits))
	for i, h := range hits {
		data[i] = Hit{
			ID:        h.ID,
			Content:   h.Content,
			Timestamp: h.CreatedAt,
			Distance:  h.Distance,
		}
	}

	return SearchResponse{
		Result: len(data) > 0,
		Data:   data,
		Count:  len(data),
	}
}

// Page builds the response for a pagination request.
func Page(page *store.Page, err error) PageResponse {
	if err != nil {
		return PageResponse{Results: []Item{}, NextCursor: store.NoCursor, Error: err.Error()}
	}
	if page == nil {
		return PageResponse{Results: []Item{}, NextCursor: store.NoCursor, Success: true}
	}

	items := make([]Item, len(page.Documents))
	for i, d := range page.Documents {
		items[i] = Item{ID: d.ID, Content: d.Content, Timestamp: d.CreatedAt}
	}

	return PageResponse{
		Results:    items,
		HasMore:    page.HasMore,
		NextCursor: page.NextCursor,
		Success:    true,
	}
}
