package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ziadkadry99/localrag/internal/llm"
	"github.com/ziadkadry99/localrag/internal/vectordb"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Store is the document store surface the tools call into.
// *vectordb.VectorStore satisfies it.
type Store interface {
	AddDocument(ctx context.Context, text string, metadata json.RawMessage) (string, error)
	AddDocuments(ctx context.Context, batch string, metadata json.RawMessage, opts ...vectordb.BatchOption) ([]string, error)
	SimilaritySearch(ctx context.Context, query string, topK int) ([]vectordb.SearchResult, error)
	GetAllDocuments() ([]vectordb.Document, error)
	ClearAllDocuments(ctx context.Context) error
}

// Server wraps an MCP server that exposes the document store as tools.
type Server struct {
	store  Store
	chat   llm.Provider
	topK   int
	logger *zap.Logger
	mcp    *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithChat enables ask_documents answers from the given chat provider.
func WithChat(p llm.Provider) Option {
	return func(s *Server) { s.chat = p }
}

// NewServer creates a new MCP server backed by store. topK is the result
// count used when a search call does not set one.
func NewServer(store Store, topK int, logger *zap.Logger, opts ...Option) *Server {
	if topK <= 0 {
		topK = vectordb.DefaultTopK
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		store:  store,
		topK:   topK,
		logger: logger.Named("mcp"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = server.NewMCPServer(
		"localrag",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(addDocumentTool, s.handleAddDocument)
	s.mcp.AddTool(addDocumentsTool, s.handleAddDocuments)
	s.mcp.AddTool(searchDocumentsTool, s.handleSearchDocuments)
	s.mcp.AddTool(listDocumentsTool, s.handleListDocuments)
	s.mcp.AddTool(clearDocumentsTool, s.handleClearDocuments)
	s.mcp.AddTool(askDocumentsTool, s.handleAskDocuments)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	s.logger.Info("serving MCP over stdio")
	return server.ServeStdio(s.mcp)
}
