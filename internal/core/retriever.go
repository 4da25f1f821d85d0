// ABOUTME: Retriever runs similarity search over stored policy chunks for a query embedding
// ABOUTME: Validates embedding shape before any I/O and maps failures to stable error codes
package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/tripcortex/trip-cortex/internal/cortexerr"
	"github.com/tripcortex/trip-cortex/internal/models"
)

// Default retrieval tuning. Threshold is the minimum cosine similarity a
// chunk must reach to be returned at all; TopK caps the result count after
// threshold filtering.
const (
	DefaultSimilarityThreshold = 0.65
	DefaultTopK                = 5
)

// ChunkSearcher is the slice of storage the retriever needs.
type ChunkSearcher interface {
	SearchSimilar(ctx context.Context, queryVector []float64, threshold float64, topK int) ([]models.PolicyChunkResult, error)
}

// Retriever performs policy-grounded similarity retrieval
type Retriever struct {
	store     ChunkSearcher
	threshold float64
	topK      int
}

// NewRetriever creates a Retriever with the given tuning. Non-positive topK
// and out-of-range thresholds fall back to the defaults.
func NewRetriever(store ChunkSearcher, threshold float64, topK int) *Retriever {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultSimilarityThreshold
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{
		store:     store,
		threshold: threshold,
		topK:      topK,
	}
}

// Search returns the chunks most similar to the query embedding, strongest
// first. Chunks below the similarity threshold are never returned, and an
// empty result is a successful outcome, not an error.
func (r *Retriever) Search(ctx context.Context, queryEmbedding []float64) ([]models.PolicyChunkResult, error) {
	if len(queryEmbedding) != models.EmbeddingDimension {
		return nil, cortexerr.New(cortexerr.CodeInvalidEmbeddingShape,
			fmt.Sprintf("query embedding has %d dimensions, want %d", len(queryEmbedding), models.EmbeddingDimension))
	}

	results, err := r.store.SearchSimilar(ctx, queryEmbedding, r.threshold, r.topK)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, cortexerr.Wrap(cortexerr.CodeTimeout, "similarity search timed out", err)
		}
		return nil, cortexerr.Wrap(cortexerr.CodeRetrievalFailed, "similarity search failed", err)
	}

	return results, nil
}

// Threshold reports the minimum similarity this retriever accepts.
func (r *Retriever) Threshold() float64 {
	return r.threshold
}

// TopK reports the maximum number of results this retriever returns.
func (r *Retriever) TopK() int {
	return r.topK
}
