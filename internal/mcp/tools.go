package mcp

import "github.com/mark3labs/mcp-go/mcp"

// addDocumentTool defines the add_document MCP tool.
var addDocumentTool = mcp.NewTool("add_document",
	mcp.WithDescription("Embed a text document and store it for later semantic search. Returns the new document ID."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Document text"),
	),
	mcp.WithObject("metadata",
		mcp.Description("Optional JSON object stored alongside the document and returned with search results"),
	),
)

// addDocumentsTool defines the add_documents MCP tool.
var addDocumentsTool = mcp.NewTool("add_documents",
	mcp.WithDescription("Add several documents at once. Separate documents with the delimiter XXXX; surrounding whitespace is trimmed and empty segments are skipped."),
	mcp.WithString("batch",
		mcp.Required(),
		mcp.Description("Documents separated by XXXX"),
	),
	mcp.WithObject("metadata",
		mcp.Description("Optional JSON object attached to every document in the batch"),
	),
)

// searchDocumentsTool defines the search_documents MCP tool.
var searchDocumentsTool = mcp.NewTool("search_documents",
	mcp.WithDescription("Find the stored documents most similar to a query by cosine similarity of their embeddings."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("top_k",
		mcp.Description("Maximum number of results to return"),
		mcp.Min(0),
	),
)

// listDocumentsTool defines the list_documents MCP tool.
var listDocumentsTool = mcp.NewTool("list_documents",
	mcp.WithDescription("List stored documents in insertion order."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of documents to list (default all)"),
		mcp.Min(0),
	),
)

// clearDocumentsTool defines the clear_documents MCP tool.
var clearDocumentsTool = mcp.NewTool("clear_documents",
	mcp.WithDescription("Permanently delete every stored document. This cannot be undone."),
	mcp.WithBoolean("confirm",
		mcp.Required(),
		mcp.Description("Must be true to delete the documents"),
	),
)

// askDocumentsTool defines the ask_documents MCP tool.
var askDocumentsTool = mcp.NewTool("ask_documents",
	mcp.WithDescription("Answer a question with the chat model, using the stored documents most similar to it as context. The answer is followed by the IDs of the documents used."),
	mcp.WithString("question",
		mcp.Required(),
		mcp.Description("Natural language question"),
	),
	mcp.WithNumber("top_k",
		mcp.Description("Number of documents to use as context"),
		mcp.Min(0),
	),
)
