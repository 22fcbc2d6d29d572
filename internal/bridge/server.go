package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Server reads JSON-RPC requests line by line and writes one response line per request.
// Requests are handled sequentially.
type Server struct {
	adapter *Adapter

	reader *bufio.Reader
	writer io.Writer
}

// NewServer creates a server that reads requests from in and writes responses to out.
func NewServer(adapter *Adapter, in io.Reader, out io.Writer) *Server {
	return &Server{
		adapter: adapter,
		reader:  bufio.NewReader(in),
		writer:  out,
	}
}

// readResult is one line read from the input.
type readResult struct {
	line string
	err  error
}

// Run processes requests until EOF or until the context is cancelled.
// Cancellation returns immediately, even while a read is pending.
func (s *Server) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	log.Info("Bridge server starting")

	lines := make(chan readResult)
	go s.readLines(ctx, lines)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case r := <-lines:
			if r.err != nil && r.err != io.EOF {
				return fmt.Errorf("failed to read request: %w", r.err)
			}

			if line := strings.TrimSpace(r.line); line != "" {
				s.handleLine(line)
			}

			if r.err == io.EOF {
				log.Info("Bridge server received EOF, shutting down")
				return nil
			}
		}
	}
}

// readLines sends each input line to lines until a read error or EOF.
func (s *Server) readLines(ctx context.Context, lines chan<- readResult) {
	for {
		line, err := s.reader.ReadString('\n')
		select {
		case lines <- readResult{line: line, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

func (s *Server) handleLine(line string) {
	// Parse the request
	var req Request
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		s.sendError(nil, ErrorCodeParse, "Parse error", err.Error())
		return
	}

	if req.JSONRPC != "2.0" || req.Method == "" {
		s.sendError(req.ID, ErrorCodeInvalidRequest, "Invalid request", "jsonrpc must be \"2.0\" and method is required")
		return
	}

	res, err := s.dispatch(req)

	// Requests without an id are notifications and get no response
	if req.ID == nil {
		if err != nil {
			log.Warn("Notification failed", "method", req.Method, "error", err)
		}
		return
	}

	if err != nil {
		s.sendCallError(req.ID, err)
		return
	}
	s.sendResult(req.ID, res)
}

// dispatch runs a single request against the adapter.
func (s *Server) dispatch(req Request) (any, error) {
	log.Debug("Received request", "method", req.Method, "id", req.ID)

	switch req.Method {
	case MethodInitialize:
		return s.adapter.Initialize()

	case MethodEcho:
		var p EchoRequest
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, err
		}
		return s.adapter.Echo(p), nil

	case MethodInsert:
		var p InsertRequest
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, err
		}
		return s.adapter.Insert(p)

	case MethodQuery:
		var p QueryRequest
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, err
		}
		return s.adapter.Query(p)

	case MethodGetWithPagination:
		var p PageRequest
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, err
		}
		return s.adapter.GetWithPagination(p)

	case MethodStatus:
		return s.adapter.Status()

	case MethodPing:
		return map[string]any{}, nil

	default:
		return nil, errMethodNotFound{method: req.Method}
	}
}

type errMethodNotFound struct {
	method string
}

func (e errMethodNotFound) Error() string {
	return "method not found: " + e.method
}

// sendCallError maps an adapter error onto a JSON-RPC error.
func (s *Server) sendCallError(id any, err error) {
	var notFound errMethodNotFound
	if errors.As(err, &notFound) {
		s.sendError(id, ErrorCodeMethodNotFound, "Method not found", notFound.method)
		return
	}

	var callErr *CallError
	if !errors.As(err, &callErr) {
		s.sendError(id, ErrorCodeInternal, "Internal error", err.Error())
		return
	}

	code, message := ErrorCodeInternal, "Internal error"
	if callErr.Code == CodeInvalidParams {
		code, message = ErrorCodeInvalidParams, "Invalid params"
	}
	s.sendError(id, code, message, ErrorData{Code: callErr.Code, Message: callErr.Message})
}

// sendResult sends a successful response.
func (s *Server) sendResult(id any, result any) {
	resp := Response{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}
	s.send(resp)
}

// sendError sends an error response.
func (s *Server) sendError(id any, code int, message string, data any) {
	resp := Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
	s.send(resp)
}

// send writes a response line.
func (s *Server) send(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error("Failed to marshal response", "error", err)
		return
	}
	fmt.Fprintln(s.writer, string(data))
}
