package oracle

import (
	"context"
	"regexp"
	"strings"
)

// keywordSet lowercases and stop-word-strips text into a comparison set.
// Kept as a function value so it can be swapped for assembler.Keywords
// without oracle importing assembler (assembler already imports domain;
// oracle stays a leaf package with no upward dependency).
type keywordSet func(text string) map[string]struct{}

// JaccardOracle is the deterministic, no-I/O fallback used when the
// semantic oracle is disabled or has failed (§4.3 Intent, §7 oracle
// errors: "fall back to Jaccard; never fatal").
type JaccardOracle struct {
	Keywords keywordSet
}

// NewJaccard builds a JaccardOracle using the given keyword extractor, or a
// bare lowercase-token splitter when keywords is nil.
func NewJaccard(keywords keywordSet) *JaccardOracle {
	if keywords == nil {
		keywords = defaultKeywords
	}
	return &JaccardOracle{Keywords: keywords}
}

var wordPattern = regexp.MustCompile(`[a-z0-9]{2,}`)

// defaultKeywords is the bare-bones extractor used when no richer one
// (e.g. assembler.Keywords, with its stop-word list) is supplied.
func defaultKeywords(text string) map[string]struct{} {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

// SimilarityBatch computes token-overlap Jaccard similarity for every pair;
// it never errors, matching the "never fatal" fallback contract.
func (j *JaccardOracle) SimilarityBatch(_ context.Context, pairs []Pair) ([]float64, error) {
	out := make([]float64, len(pairs))
	for i, p := range pairs {
		out[i] = jaccard(j.Keywords(p.A), j.Keywords(p.B))
	}
	return out, nil
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
