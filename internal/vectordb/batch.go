package vectordb

import (
	"regexp"
	"strings"
)

// BatchDelimiter separates documents in a batch add.
const BatchDelimiter = "XXXX"

var batchSplitRe = regexp.MustCompile(`\s*` + BatchDelimiter + `\s*`)

// SplitBatch splits batch on the delimiter together with any whitespace
// around it, trims each segment and drops the empty ones.
func SplitBatch(batch string) []string {
	parts := batchSplitRe.Split(batch, -1)
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

// BatchOption configures AddDocuments.
type BatchOption func(*batchOptions)

type batchOptions struct {
	progress func(done, total int)
}

// WithProgress calls fn after each segment is added.
func WithProgress(fn func(done, total int)) BatchOption {
	return func(o *batchOptions) {
		o.progress = fn
	}
}
