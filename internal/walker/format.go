package walker

import (
	"path/filepath"
	"strings"
)

// extensionToFormat maps file extensions to document formats.
var extensionToFormat = map[string]string{
	".md":       "markdown",
	".markdown": "markdown",
	".mdx":      "markdown",
	".txt":      "text",
	".text":     "text",
	".log":      "text",
	".rst":      "restructuredtext",
	".adoc":     "asciidoc",
	".org":      "org",
	".tex":      "latex",
	".html":     "html",
	".htm":      "html",
	".csv":      "csv",
	".tsv":      "csv",
	".json":     "json",
	".jsonl":    "json",
	".yaml":     "yaml",
	".yml":      "yaml",
	".toml":     "toml",
	".xml":      "xml",
}

// filenameToFormat maps well-known extensionless files.
var filenameToFormat = map[string]string{
	"README":    "text",
	"LICENSE":   "text",
	"CHANGELOG": "text",
	"NOTICE":    "text",
	"AUTHORS":   "text",
}

// DetectFormat returns the document format for a filename based on its
// extension or exact name. Everything else that passed the binary check is
// "source" when it has an extension and "text" when it does not.
func DetectFormat(filename string) string {
	base := filepath.Base(filename)

	if format, ok := filenameToFormat[strings.ToUpper(base)]; ok {
		return format
	}

	ext := strings.ToLower(filepath.Ext(base))
	if ext == "" {
		return "text"
	}
	if format, ok := extensionToFormat[ext]; ok {
		return format
	}
	return "source"
}
