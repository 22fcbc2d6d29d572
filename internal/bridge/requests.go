package bridge

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// EchoRequest is the argument of echo.
type EchoRequest struct {
	Value string `json:"value"`
}

// EchoResponse mirrors the request value.
type EchoResponse struct {
	Value string `json:"value"`
}

// InitializeResponse reports whether the store is open.
type InitializeResponse struct {
	Result bool `json:"result"`
}

// InsertRequest holds one document. Both fields are required.
type InsertRequest struct {
	Content   *string   `json:"content"`
	Embedding []float32 `json:"embedding"`
}

// QueryRequest asks for the nearest documents to Search.
type QueryRequest struct {
	Search []float32 `json:"search"`
	Limit  *int      `json:"limit,omitempty"`
}

// PageRequest asks for one page of documents below Cursor.
type PageRequest struct {
	Limit  *int   `json:"limit,omitempty"`
	Cursor *int64 `json:"cursor,omitempty"`
}

// decodeParams unmarshals params into v. Absent params leave v at its zero value.
func decodeParams(params json.RawMessage, v any) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return invalidParams("malformed params: %v", err)
	}
	return nil
}

// validate checks presence and content length. maxContent <= 0 disables the length check.
func (r *InsertRequest) validate(maxContent int) error {
	if r.Content == nil || r.Embedding == nil {
		return invalidParams("Content and embedding are required")
	}
	if maxContent > 0 {
		if n := utf8.RuneCountInString(*r.Content); n > maxContent {
			return invalidParams("content is %d characters, limit is %d", n, maxContent)
		}
	}
	return nil
}

func (r *QueryRequest) validate() error {
	if r.Search == nil {
		return invalidParams("search embedding is required")
	}
	return validateLimit(r.Limit)
}

// limitOr returns the requested limit or def when none was given.
func (r *QueryRequest) limitOr(def int) int {
	if r.Limit == nil {
		return def
	}
	return *r.Limit
}

func (r *PageRequest) validate() error {
	if r.Cursor != nil && *r.Cursor < 0 {
		return invalidParams("cursor must not be negative, got %d", *r.Cursor)
	}
	return validateLimit(r.Limit)
}

func (r *PageRequest) limitOr(def int) int {
	if r.Limit == nil {
		return def
	}
	return *r.Limit
}

// cursor returns the requested cursor; 0 starts from the newest document.
func (r *PageRequest) cursor() int64 {
	if r.Cursor == nil {
		return 0
	}
	return *r.Cursor
}

func validateLimit(limit *int) error {
	if limit != nil && *limit <= 0 {
		return invalidParams("limit must be positive, got %d", *limit)
	}
	return nil
}

func invalidParams(format string, args ...any) error {
	return &CallError{Code: CodeInvalidParams, Message: fmt.Sprintf(format, args...)}
}
