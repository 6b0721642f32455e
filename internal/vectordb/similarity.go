package vectordb

import (
	"math"
	"sort"
)

// CosineSimilarity returns the cosine of the angle between a and b in
// [-1, 1]. ok is false when either vector has zero magnitude, the lengths
// differ, or the result is not finite; the score is then 0.
func CosineSimilarity(a, b []float32) (score float64, ok bool) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, false
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, false
	}

	score = dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, false
	}
	// Rounding can push parallel vectors just past 1.
	return math.Max(-1, math.Min(1, score)), true
}

type scored struct {
	doc   Document
	score float64
	valid bool
}

// rank scores every document against query and returns the topK best,
// highest first. Documents whose score is undefined sort after every valid
// one; ties keep insertion order.
func rank(docs []Document, query []float32, topK int) []SearchResult {
	if topK <= 0 || len(docs) == 0 {
		return []SearchResult{}
	}

	all := make([]scored, len(docs))
	for i, d := range docs {
		s, ok := CosineSimilarity(query, d.Embedding)
		all[i] = scored{doc: d, score: s, valid: ok}
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].valid != all[j].valid {
			return all[i].valid
		}
		return all[i].score > all[j].score
	})

	if topK > len(all) {
		topK = len(all)
	}
	results := make([]SearchResult, topK)
	for i := range results {
		results[i] = SearchResult{
			ID:       all[i].doc.ID,
			Text:     all[i].doc.Text,
			Score:    all[i].score,
			Metadata: all[i].doc.Metadata,
		}
	}
	return results
}
