// Package lspserver implements a Language Server Protocol server that
// reports nuspec manifest diagnostics.
//
// Transport: stdio only (--stdio).
// Protocol: LSP 3.16 types via go.lsp.dev/protocol, JSON-RPC via go.lsp.dev/jsonrpc2.
// Documents are synced in full; every open or change republishes the
// complete diagnostic set for that document.
package lspserver

import (
	"context"
	"encoding/json"
	"os"

	"github.com/sirupsen/logrus"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/tinovyatkin/nuspec-lsp/internal/buffer"
	"github.com/tinovyatkin/nuspec-lsp/internal/docsync"
	"github.com/tinovyatkin/nuspec-lsp/internal/lint"
	"github.com/tinovyatkin/nuspec-lsp/internal/schema"
	"github.com/tinovyatkin/nuspec-lsp/internal/version"
)

const serverName = "nuspec-lsp"

// Server is the nuspec LSP server.
type Server struct {
	conn  jsonrpc2.Conn
	store *buffer.Store
	sync  *docsync.Coordinator
	log   logrus.FieldLogger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger. Logs must not go to stdout, which
// carries the protocol.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// New creates a new LSP server validating against s.
func New(s *schema.Schema, opts ...Option) *Server {
	srv := &Server{
		store: buffer.NewStore(),
		log:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(srv)
	}
	engine := lint.NewEngine(srv.store, s, lint.WithLogger(srv.log))
	srv.sync = docsync.New(srv.store, engine, srv, srv.log)
	return srv
}

// RunStdio starts the LSP server on stdin/stdout.
// It blocks until the connection is closed or the context is cancelled.
func (s *Server) RunStdio(ctx context.Context) error {
	stream := jsonrpc2.NewStream(stdioReadWriteCloser{})
	conn := jsonrpc2.NewConn(stream)
	s.conn = conn

	conn.Go(ctx, jsonrpc2.AsyncHandler(jsonrpc2.ReplyHandler(s.handle)))

	select {
	case <-ctx.Done():
		return conn.Close()
	case <-conn.Done():
		return conn.Err()
	}
}

// handle dispatches incoming JSON-RPC messages to the appropriate handler.
func (s *Server) handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	switch req.Method() {
	// Lifecycle
	case protocol.MethodInitialize:
		return s.handleInitialize(ctx, reply, req)
	case protocol.MethodInitialized:
		return reply(ctx, nil, nil)
	case protocol.MethodShutdown:
		return reply(ctx, nil, nil)
	case protocol.MethodExit:
		return s.conn.Close()
	case protocol.MethodSetTrace:
		return reply(ctx, nil, nil)

	// Document sync
	case protocol.MethodTextDocumentDidOpen:
		return s.handleDidOpen(ctx, reply, req)
	case protocol.MethodTextDocumentDidChange:
		return s.handleDidChange(ctx, reply, req)
	case protocol.MethodTextDocumentDidSave:
		return s.handleDidSave(ctx, reply, req)
	case protocol.MethodTextDocumentDidClose:
		return s.handleDidClose(ctx, reply, req)

	// Workspace
	case protocol.MethodWorkspaceDidChangeConfiguration:
		return reply(ctx, nil, nil)

	default:
		return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
	}
}

// handleInitialize responds to the initialize request with server capabilities.
func (s *Server) handleInitialize(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.InitializeParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return replyParseError(ctx, reply, err)
	}

	s.log.WithField("client", clientInfoString(params.ClientInfo)).Info("lsp: initialize")

	result := protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    serverName,
			Version: version.RawVersion(),
		},
	}

	return reply(ctx, result, nil)
}

// handleDidOpen handles textDocument/didOpen by linting the opened document.
func (s *Server) handleDidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidOpenTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return replyParseError(ctx, reply, err)
	}

	doc := params.TextDocument
	if err := s.sync.OnOpen(ctx, string(doc.URI), doc.Version, doc.Text); err != nil {
		s.log.WithError(err).Warn("lsp: didOpen")
	}
	return reply(ctx, nil, nil)
}

// handleDidChange handles textDocument/didChange. With full sync the last
// content change holds the complete new text.
func (s *Server) handleDidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidChangeTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return replyParseError(ctx, reply, err)
	}
	if len(params.ContentChanges) == 0 {
		return reply(ctx, nil, nil)
	}

	text := params.ContentChanges[len(params.ContentChanges)-1].Text
	if err := s.sync.OnChange(ctx, string(params.TextDocument.URI), params.TextDocument.Version, text); err != nil {
		s.log.WithError(err).Warn("lsp: didChange")
	}
	return reply(ctx, nil, nil)
}

// handleDidSave handles textDocument/didSave. The buffer is already current.
func (s *Server) handleDidSave(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidSaveTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return replyParseError(ctx, reply, err)
	}

	s.sync.OnSave(ctx, string(params.TextDocument.URI))
	return reply(ctx, nil, nil)
}

// handleDidClose handles textDocument/didClose by forgetting the document.
func (s *Server) handleDidClose(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidCloseTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return replyParseError(ctx, reply, err)
	}

	s.sync.OnClose(ctx, string(params.TextDocument.URI))
	return reply(ctx, nil, nil)
}

// replyParseError sends a JSON-RPC parse error.
func replyParseError(ctx context.Context, reply jsonrpc2.Replier, err error) error {
	return reply(ctx, nil, jsonrpc2.Errorf(jsonrpc2.ParseError, "invalid params: %v", err))
}

// clientInfoString formats client info for logging.
func clientInfoString(info *protocol.ClientInfo) string {
	if info == nil {
		return "unknown"
	}
	if info.Version != "" {
		return info.Name + " " + info.Version
	}
	return info.Name
}

// stdioReadWriteCloser wraps stdin/stdout as an io.ReadWriteCloser for JSON-RPC.
type stdioReadWriteCloser struct{}

func (stdioReadWriteCloser) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioReadWriteCloser) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdioReadWriteCloser) Close() error                { return nil }
