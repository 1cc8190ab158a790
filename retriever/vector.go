// Package retriever implements the adapter layer between query dispatch and
// the retrieval backends. Each adapter wraps one backend behind the uniform
// Retriever contract: scores come out normalized into [0,1] higher-is-better,
// and a failing backend degrades to an empty result list instead of an error.
package retriever

import (
	"context"

	"github.com/smallnest/ragfusion"
	"github.com/smallnest/ragfusion/index"
	"github.com/smallnest/ragfusion/log"
)

// VectorRetriever performs dense retrieval over a local flat index. The
// query is embedded, searched by exact L2 distance, and each hit's distance
// is mapped into (0, 1] as 1/(1+distance).
type VectorRetriever struct {
	embedder ragfusion.Embedder
	index    *index.FlatIndex
	logger   log.Logger
}

// VectorOption configures a VectorRetriever.
type VectorOption func(*VectorRetriever)

// WithVectorLogger sets the logger.
func WithVectorLogger(logger log.Logger) VectorOption {
	return func(r *VectorRetriever) {
		r.logger = logger
	}
}

// NewVectorRetriever creates a dense retriever over the given embedder
// and index.
func NewVectorRetriever(embedder ragfusion.Embedder, idx *index.FlatIndex, opts ...VectorOption) *VectorRetriever {
	r := &VectorRetriever{
		embedder: embedder,
		index:    idx,
		logger:   log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ ragfusion.Retriever = (*VectorRetriever)(nil)

// Source reports SourceVector.
func (r *VectorRetriever) Source() ragfusion.Source {
	return ragfusion.SourceVector
}

// Retrieve embeds the query text and returns the k nearest chunks. Embedding
// or search failures are logged and yield an empty slice.
func (r *VectorRetriever) Retrieve(ctx context.Context, q ragfusion.Query) []ragfusion.RetrievalResult {
	vector, err := r.embedder.EmbedDocument(ctx, q.Text)
	if err != nil {
		r.logger.Warn("vector retriever: embedding failed, returning empty results: %v", err)
		return []ragfusion.RetrievalResult{}
	}

	hits, err := r.index.Search(vector, q.K)
	if err != nil {
		r.logger.Warn("vector retriever: search failed, returning empty results: %v", err)
		return []ragfusion.RetrievalResult{}
	}

	results := make([]ragfusion.RetrievalResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, ragfusion.RetrievalResult{
			Source:   ragfusion.SourceVector,
			ChunkID:  hit.Chunk.ID,
			Chunk:    hit.Chunk,
			Score:    1.0 / (1.0 + hit.Distance),
			Distance: hit.Distance,
		})
	}
	r.logger.Debug("vector retriever: %d results for query %q", len(results), q.Text)
	return results
}
