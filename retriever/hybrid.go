package retriever

import (
	"context"

	"github.com/smallnest/ragfusion"
	"github.com/smallnest/ragfusion/log"
)

// HybridRetriever fronts a managed backend that combines vector similarity
// with metadata filtering in a single query. Backend scores are already
// normalized and pass through unmodified.
type HybridRetriever struct {
	embedder ragfusion.Embedder
	backend  ragfusion.HybridBackend
	logger   log.Logger
}

// HybridOption configures a HybridRetriever.
type HybridOption func(*HybridRetriever)

// WithHybridLogger sets the logger.
func WithHybridLogger(logger log.Logger) HybridOption {
	return func(r *HybridRetriever) {
		r.logger = logger
	}
}

// NewHybridRetriever creates a hybrid retriever over the embedder and backend.
func NewHybridRetriever(embedder ragfusion.Embedder, backend ragfusion.HybridBackend, opts ...HybridOption) *HybridRetriever {
	r := &HybridRetriever{
		embedder: embedder,
		backend:  backend,
		logger:   log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ ragfusion.Retriever = (*HybridRetriever)(nil)

// Source reports SourceHybrid.
func (r *HybridRetriever) Source() ragfusion.Source {
	return ragfusion.SourceHybrid
}

// Retrieve embeds the query and asks the backend for pre-ranked matches.
// Embedding or backend failures are logged and yield an empty slice.
func (r *HybridRetriever) Retrieve(ctx context.Context, q ragfusion.Query) []ragfusion.RetrievalResult {
	vector, err := r.embedder.EmbedDocument(ctx, q.Text)
	if err != nil {
		r.logger.Warn("hybrid retriever: embedding failed, returning empty results: %v", err)
		return []ragfusion.RetrievalResult{}
	}

	scored, err := r.backend.QueryVector(ctx, vector, q.Filters, q.K)
	if err != nil {
		r.logger.Warn("hybrid retriever: backend query failed, returning empty results: %v", err)
		return []ragfusion.RetrievalResult{}
	}

	results := make([]ragfusion.RetrievalResult, 0, len(scored))
	for _, sc := range scored {
		results = append(results, ragfusion.RetrievalResult{
			Source:  ragfusion.SourceHybrid,
			ChunkID: sc.Chunk.ID,
			Chunk:   sc.Chunk,
			Score:   sc.Score,
		})
	}
	r.logger.Debug("hybrid retriever: %d results for query %q", len(results), q.Text)
	return results
}
