package bridge

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/nickcecere/vecdoc/internal/result"
	"github.com/nickcecere/vecdoc/internal/store"
)

// Code names an adapter failure.
type Code string

const (
	CodeInvalidParams  Code = "INVALID_PARAMS"
	CodeNotInitialized Code = "NOT_INITIALIZED"
	CodeInitError      Code = "INIT_ERROR"
	CodeInsertError    Code = "INSERT_ERROR"
	CodeReadError      Code = "READ_ERROR"
)

// CallError is a caller-facing failure with a named code.
type CallError struct {
	Code    Code
	Message string
}

// Error implements the error interface.
func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Opener opens the store on initialize.
type Opener func() (store.Store, error)

// Options holds request defaults and limits.
type Options struct {
	SearchLimit      int // used when a query has no limit
	PageSize         int // used when a page request has no limit
	MaxContentLength int // in characters; 0 disables the check
}

// Adapter validates typed requests and runs them against the store.
//
// Store failures on insert, query and pagination come back inside the
// response envelope. Malformed arguments, calls before initialize and
// failures the store does not classify come back as *CallError.
type Adapter struct {
	open Opener
	opts Options

	mu    sync.Mutex
	store store.Store
}

// NewAdapter creates an adapter. The store is not opened until Initialize.
func NewAdapter(open Opener, opts Options) *Adapter {
	return &Adapter{open: open, opts: opts}
}

// Initialize opens the store once. Later calls are no-ops.
func (a *Adapter) Initialize() (*InitializeResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.store != nil {
		return &InitializeResponse{Result: true}, nil
	}

	st, err := a.open()
	if err != nil {
		log.Error("Failed to open store", "error", err)
		return nil, &CallError{Code: CodeInitError, Message: err.Error()}
	}

	if stats, err := st.Stats(); err == nil {
		log.Info("Store initialized",
			"documents", stats.Documents,
			"dimensions", stats.Dimensions,
			"sqlite", stats.SQLiteVersion,
			"vec", stats.VecVersion,
		)
	}

	a.store = st
	return &InitializeResponse{Result: true}, nil
}

// Echo returns its argument. It does not need the store.
func (a *Adapter) Echo(req EchoRequest) *EchoResponse {
	return &EchoResponse{Value: req.Value}
}

// Insert stores one document.
func (a *Adapter) Insert(req InsertRequest) (*result.InsertResponse, error) {
	if err := req.validate(a.opts.MaxContentLength); err != nil {
		return nil, err
	}

	st, err := a.current()
	if err != nil {
		return nil, err
	}

	ref, err := st.Insert(*req.Content, req.Embedding)
	if err != nil {
		if callErr := classify(err, CodeInsertError); callErr != nil {
			return nil, callErr
		}
		log.Warn("Insert failed", "error", err)
	}

	resp := result.Insert(ref, err)
	return &resp, nil
}

// Query returns the documents nearest to the search embedding.
func (a *Adapter) Query(req QueryRequest) (*result.SearchResponse, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	st, err := a.current()
	if err != nil {
		return nil, err
	}

	hits, err := st.Search(req.Search, req.limitOr(a.opts.SearchLimit))
	if err != nil {
		if callErr := classify(err, CodeReadError); callErr != nil {
			return nil, callErr
		}
		log.Warn("Search failed", "error", err)
	}

	resp := result.Search(hits, err)
	return &resp, nil
}

// GetWithPagination returns one page of documents, newest first.
func (a *Adapter) GetWithPagination(req PageRequest) (*result.PageResponse, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	st, err := a.current()
	if err != nil {
		return nil, err
	}

	page, err := st.ListPage(req.cursor(), req.limitOr(a.opts.PageSize))
	if err != nil {
		if callErr := classify(err, CodeReadError); callErr != nil {
			return nil, callErr
		}
		log.Warn("Pagination failed", "error", err)
	}

	resp := result.Page(page, err)
	return &resp, nil
}

// Status returns store statistics.
func (a *Adapter) Status() (*store.Stats, error) {
	st, err := a.current()
	if err != nil {
		return nil, err
	}

	stats, err := st.Stats()
	if err != nil {
		if errors.Is(err, store.ErrNotReady) {
			return nil, &CallError{Code: CodeNotInitialized, Message: err.Error()}
		}
		return nil, &CallError{Code: CodeReadError, Message: err.Error()}
	}
	return stats, nil
}

// Close releases the store. The adapter may be initialized again afterwards.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

func (a *Adapter) current() (store.Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.store == nil {
		return nil, &CallError{Code: CodeNotInitialized, Message: "store is not initialized, call initialize first"}
	}
	return a.store, nil
}

// classify turns errors that must not be reported in an envelope into a
// CallError. It returns nil for substrate failures the envelope carries.
func classify(err error, fallback Code) *CallError {
	switch {
	case errors.Is(err, store.ErrValidation):
		return &CallError{Code: CodeInvalidParams, Message: err.Error()}
	case errors.Is(err, store.ErrNotReady):
		return &CallError{Code: CodeNotInitialized, Message: err.Error()}
	case errors.Is(err, store.ErrInsertFailed), errors.Is(err, store.ErrReadFailed):
		return nil
	default:
		return &CallError{Code: fallback, Message: err.Error()}
	}
}
