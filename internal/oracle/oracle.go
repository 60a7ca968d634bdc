// Package oracle implements the semantic_similarity(a, b) -> float external
// interface of §6: a Gemini-backed similarity call, batched and memoized
// per §5, with a Jaccard token-overlap fallback that is never fatal (§7).
package oracle

import "context"

// Pair is one (text_a, text_b) comparison requested of the oracle.
type Pair struct {
	A, B string
}

// Similarity is the oracle contract the Scorer's Intent component depends
// on. Implementations must accept batches of ≥1 pairs; callers batch to
// amortize round trips per §5's "≥32 pairs per call" guidance.
type Similarity interface {
	SimilarityBatch(ctx context.Context, pairs []Pair) ([]float64, error)
}

// SimilarityFunc adapts a plain function to the Similarity interface, for
// tests and for the Jaccard fallback.
type SimilarityFunc func(ctx context.Context, pairs []Pair) ([]float64, error)

func (f SimilarityFunc) SimilarityBatch(ctx context.Context, pairs []Pair) ([]float64, error) {
	return f(ctx, pairs)
}

// MinBatchSize is the "batched (>=32 pairs per call)" floor from §5. Callers
// that have fewer pairs queued should wait for more before flushing, unless
// the cycle is draining its final batch.
const MinBatchSize = 32
