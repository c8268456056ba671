// Package toolserver serves the audit tools over line-delimited JSON-RPC 2.0,
// one message per line on stdin and stdout.
package toolserver

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/seo-optimizer/seoaudit/analyzer"
	"github.com/seo-optimizer/seoaudit/page"
	"github.com/seo-optimizer/seoaudit/report"
)

const (
	Name           = "seoaudit"
	maxMessageSize = 16 << 20
)

// Service is what the tools need from the analyzer.
type Service interface {
	Analyze(ctx context.Context, url string, vitals *page.WebVitals) (analyzer.Analysis, error)
	Extract(ctx context.Context, url string) (page.Extraction, error)
	Compare(ctx context.Context, urls []string) ([]report.Entry, error)
}

type Server struct {
	svc     Service
	version string
	logger  *slog.Logger
}

// New returns a tool server. Logs go to logger, never to the protocol
// stream, tagged with a per-process session id.
func New(svc Service, version string, logger *slog.Logger) *Server {
	return &Server{
		svc:     svc,
		version: version,
		logger:  logger.With("session", uuid.NewString()),
	}
}

// Serve reads requests from r until EOF or ctx is cancelled, answering each
// on w in the order received.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	s.logger.Info("tool server started", "version", s.version)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxMessageSize)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		resp := s.handle(ctx, line)
		if resp == nil {
			continue
		}
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	s.logger.Info("tool server stopped")
	return nil
}

// handle answers one message. Notifications yield nil.
func (s *Server) handle(ctx context.Context, line []byte) *response {
	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		return &response{JSONRPC: jsonrpcVersion, ID: nullID, Error: &rpcError{Code: codeParseError, Message: "parse error: " + err.Error()}}
	}
	if req.JSONRPC != jsonrpcVersion || req.Method == "" {
		id := req.ID
		if len(id) == 0 {
			id = nullID
		}
		return &response{JSONRPC: jsonrpcVersion, ID: id, Error: &rpcError{Code: codeInvalidRequest, Message: "invalid request"}}
	}

	result, rpcErr := s.dispatch(ctx, req)
	if req.isNotification() {
		return nil
	}
	if rpcErr != nil {
		s.logger.Debug("request failed", "method", req.Method, "code", rpcErr.Code, "error", rpcErr.Message)
		return &response{JSONRPC: jsonrpcVersion, ID: req.ID, Error: rpcErr}
	}
	return &response{JSONRPC: jsonrpcVersion, ID: req.ID, Result: result}
}

func (s *Server) dispatch(ctx context.Context, req request) (any, *rpcError) {
	switch req.Method {
	case "initialize":
		return initializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities:    map[string]any{"tools": map[string]any{}},
			ServerInfo:      serverInfo{Name: Name, Version: s.version},
		}, nil
	case "ping", "notifications/initialized", "notifications/cancelled":
		return struct{}{}, nil
	case "tools/list":
		return map[string]any{"tools": tools}, nil
	case "tools/call":
		var params callParams
		if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
			return nil, invalidParams("tools/call needs a tool name")
		}
		s.logger.Info("tool call", "tool", params.Name)
		result, rpcErr := s.call(ctx, params)
		if rpcErr != nil {
			return nil, rpcErr
		}
		return result, nil
	}
	return nil, &rpcError{Code: codeMethodNotFound, Message: fmt.Sprintf("method not found: %s", req.Method)}
}
