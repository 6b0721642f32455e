package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/ziadkadry99/localrag/internal/llm"
	"github.com/ziadkadry99/localrag/internal/vectordb"
)

// handleAddDocument embeds and stores a single document.
func (s *Server) handleAddDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}
	metadata, err := metadataArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	id, err := s.store.AddDocument(ctx, text, metadata)
	if err != nil {
		return s.failure("add document", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Added document %s", id)), nil
}

// handleAddDocuments stores every XXXX-separated segment of a batch.
func (s *Server) handleAddDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	batch, err := request.RequireString("batch")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: batch"), nil
	}
	metadata, err := metadataArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ids, err := s.store.AddDocuments(ctx, batch, metadata)
	if err != nil {
		var batchErr *vectordb.BatchError
		if errors.As(err, &batchErr) && len(ids) > 0 {
			return mcp.NewToolResultError(fmt.Sprintf("%s\nAdded before the failure: %s", describe(err), strings.Join(ids, ", "))), nil
		}
		return s.failure("add documents", err), nil
	}
	if len(ids) == 0 {
		return mcp.NewToolResultText("The batch contained no documents."), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Added %d document(s):\n%s", len(ids), strings.Join(ids, "\n"))), nil
}

// handleSearchDocuments runs a similarity search over the stored documents.
func (s *Server) handleSearchDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	topK := request.GetInt("top_k", s.topK)
	if topK < 0 {
		return mcp.NewToolResultError("top_k must not be negative"), nil
	}

	results, err := s.store.SimilaritySearch(ctx, query, topK)
	if err != nil {
		return s.failure("search", err), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("No results found. Add documents with add_document or add_documents first."), nil
	}
	return mcp.NewToolResultText(vectordb.FormatResults(results)), nil
}

// handleListDocuments lists stored documents without their embeddings.
func (s *Server) handleListDocuments(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.store.GetAllDocuments()
	if err != nil {
		return s.failure("list documents", err), nil
	}

	if limit := request.GetInt("limit", 0); limit > 0 && limit < len(docs) {
		docs = docs[:limit]
	}
	return mcp.NewToolResultText(vectordb.FormatDocuments(docs)), nil
}

// handleClearDocuments deletes every stored document once confirmed.
func (s *Server) handleClearDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !request.GetBool("confirm", false) {
		return mcp.NewToolResultError("refusing to clear documents without confirm=true"), nil
	}
	if err := s.store.ClearAllDocuments(ctx); err != nil {
		return s.failure("clear documents", err), nil
	}
	return mcp.NewToolResultText("All documents deleted."), nil
}

// handleAskDocuments answers a question from the most similar stored documents.
func (s *Server) handleAskDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.chat == nil {
		return mcp.NewToolResultError("no chat model is configured; set chat_model and a chat-capable provider"), nil
	}
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}

	topK := request.GetInt("top_k", s.topK)
	if topK < 0 {
		return mcp.NewToolResultError("top_k must not be negative"), nil
	}

	answer, err := llm.Ask(ctx, s.store, s.chat, question, topK)
	if err != nil {
		return s.failure("ask", err), nil
	}

	var sb strings.Builder
	sb.WriteString(answer.Text)
	if len(answer.Sources) > 0 {
		sb.WriteString("\n\nSources:")
		for _, r := range answer.Sources {
			fmt.Fprintf(&sb, "\n- %s (score %.3f)", r.ID, r.Score)
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// metadataArg returns the optional metadata argument re-encoded as JSON.
func metadataArg(request mcp.CallToolRequest) (json.RawMessage, error) {
	v, ok := request.GetArguments()["metadata"]
	if !ok || v == nil {
		return nil, nil
	}
	if _, isObject := v.(map[string]any); !isObject {
		return nil, fmt.Errorf("metadata must be a JSON object")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding metadata: %w", err)
	}
	return raw, nil
}

func (s *Server) failure(op string, err error) *mcp.CallToolResult {
	s.logger.Warn("tool call failed", zap.String("op", op), zap.Error(err))
	return mcp.NewToolResultError(fmt.Sprintf("%s failed: %s", op, describe(err)))
}

// describe adds a hint for the failure kinds a caller can act on.
func describe(err error) string {
	switch {
	case errors.Is(err, vectordb.ErrAuthentication):
		return err.Error() + " (the API key was rejected; restart the server with a valid key)"
	case errors.Is(err, vectordb.ErrTransient):
		return err.Error() + " (temporary provider failure; retry later)"
	default:
		return err.Error()
	}
}
