package result

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nickcecere/vecdoc/internal/store"
)

func TestInsert(t *testing.T) {
	resp := Insert(&store.DocumentRef{ID: 7, CreatedAt: 1000}, nil)
	assert.True(t, resp.Success)
	assert.Equal(t, "Document inserted successfully", resp.Message)
	assert.Equal(t, int64(7), resp.ID)
	assert.Empty(t, resp.Error)

	resp = Insert(nil, errors.New("disk full"))
	assert.False(t, resp.Success)
	assert.Equal(t, "Failed to insert document", resp.Message)
	assert.Equal(t, "disk full", resp.Error)
	assert.Zero(t, resp.ID)
}

func TestSearch(t *testing.T) {
	hits := []store.SearchHit{
		{ID: 1, Content: "a", CreatedAt: 10, Distance: 0},
		{ID: 2, Content: "b", CreatedAt: 20, Distance: 1.4},
	}

	resp := Search(hits, nil)
	assert.True(t, resp.Result)
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, Hit{ID: 1, Content: "a", Timestamp: 10, Distance: 0}, resp.Data[0])
	assert.Equal(t, int64(2), resp.Data[1].ID)

	// Input is untouched
	assert.Equal(t, "a", hits[0].Content)
}

func TestSearchEmptyAndFailed(t *testing.T) {
	empty := Search(nil, nil)
	assert.False(t, empty.Result)
	assert.Zero(t, empty.Count)
	assert.NotNil(t, empty.Data)
	assert.Empty(t, empty.Error)

	failed := Search(nil, errors.New("no such table"))
	assert.False(t, failed.Result)
	assert.NotNil(t, failed.Data)
	assert.Equal(t, "no such table", failed.Error)
}

func TestPage(t *testing.T) {
	page := &store.Page{
		Documents: []store.Document{
			{ID: 2, Content: "b", CreatedAt: 20},
		},
		HasMore:    true,
		NextCursor: 2,
	}

	resp := Page(page, nil)
	assert.True(t, resp.Success)
	assert.True(t, resp.HasMore)
	assert.Equal(t, int64(2), resp.NextCursor)
	assert.Equal(t, []Item{{ID: 2, Content: "b", Timestamp: 20}}, resp.Results)

	failed := Page(nil, errors.New("locked"))
	assert.False(t, failed.Success)
	assert.False(t, failed.HasMore)
	assert.Equal(t, store.NoCursor, failed.NextCursor)
	assert.NotNil(t, failed.Results)
	assert.Equal(t, "locked", failed.Error)
}

func TestJSONShape(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{
			name: "insert",
			in:   Insert(&store.DocumentRef{ID: 1}, nil),
			want: `{"success":true,"message":"Document inserted successfully","id":1}`,
		},
		{
			name: "empty search",
			in:   Search(nil, nil),
			want: `{"result":false,"data":[],"count":0}`,
		},
		{
			name: "search",
			in:   Search([]store.SearchHit{{ID: 1, Content: "a", CreatedAt: 5, Distance: 0.5}}, nil),
			want: `{"result":true,"data":[{"id":1,"content":"a","timestamp":5,"distance":0.5}],"count":1}`,
		},
		{
			name: "exhausted page",
			in:   Page(&store.Page{Documents: []store.Document{}, NextCursor: store.NoCursor}, nil),
			want: `{"results":[],"hasMore":false,"nextCursor":-1,"success":true}`,
		},
		{
			name: "failed page",
			in:   Page(nil, errors.New("boom")),
			want: `{"results":[],"hasMore":false,"nextCursor":-1,"success":false,"error":"boom"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
			assert.Equal(t, tt.want, string(data), "field order")
		})
	}
}
