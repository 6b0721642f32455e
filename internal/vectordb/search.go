package vectordb

import (
	"fmt"
	"strings"
)

// FormatResults renders search results as human-readable text.
func FormatResults(results []SearchResult) string {
	if len(results) == 0 {
		return "No results found."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d result(s):\n\n", len(results)))

	for i, r := range results {
		sb.WriteString(fmt.Sprintf("--- Result %d (similarity: %.4f) ---\n", i+1, r.Score))
		sb.WriteString(fmt.Sprintf("ID: %s\n", r.ID))
		if len(r.Metadata) > 0 {
			sb.WriteString(fmt.Sprintf("Metadata: %s\n", r.Metadata))
		}

		sb.WriteString("\n")
		sb.WriteString(r.Text)
		sb.WriteString("\n\n")
	}

	return sb.String()
}

// FormatDocuments renders a document listing, one line per document.
func FormatDocuments(docs []Document) string {
	if len(docs) == 0 {
		return "No documents stored."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d document(s):\n\n", len(docs)))
	for _, d := range docs {
		sb.WriteString(fmt.Sprintf("%s  %s  %s\n", d.ID, d.CreatedAt.Format("2006-01-02 15:04:05"), preview(d.Text, 60)))
	}
	return sb.String()
}

func preview(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	return string(r[:max-3]) + "..."
}
