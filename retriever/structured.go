package retriever

import (
	"context"

	"github.com/smallnest/ragfusion"
	"github.com/smallnest/ragfusion/log"
)

// StructuredRetriever fronts an exact-match metadata store. Every match is
// equally relevant to an exact filter, so all results carry score 1.0 and
// keep the store's deterministic order.
type StructuredRetriever struct {
	store  ragfusion.StructuredStore
	logger log.Logger
}

// StructuredOption configures a StructuredRetriever.
type StructuredOption func(*StructuredRetriever)

// WithStructuredLogger sets the logger.
func WithStructuredLogger(logger log.Logger) StructuredOption {
	return func(r *StructuredRetriever) {
		r.logger = logger
	}
}

// NewStructuredRetriever creates an exact-match retriever over the store.
func NewStructuredRetriever(store ragfusion.StructuredStore, opts ...StructuredOption) *StructuredRetriever {
	r := &StructuredRetriever{
		store:  store,
		logger: log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ ragfusion.Retriever = (*StructuredRetriever)(nil)

// Source reports SourceStructured.
func (r *StructuredRetriever) Source() ragfusion.Source {
	return ragfusion.SourceStructured
}

// Retrieve filters the store by the query's metadata filters. Store failures
// are logged and yield an empty slice.
func (r *StructuredRetriever) Retrieve(ctx context.Context, q ragfusion.Query) []ragfusion.RetrievalResult {
	chunks, err := r.store.Filter(ctx, q.Filters, q.K)
	if err != nil {
		r.logger.Warn("structured retriever: filter failed, returning empty results: %v", err)
		return []ragfusion.RetrievalResult{}
	}

	results := make([]ragfusion.RetrievalResult, 0, len(chunks))
	for _, chunk := range chunks {
		results = append(results, ragfusion.RetrievalResult{
			Source:  ragfusion.SourceStructured,
			ChunkID: chunk.ID,
			Chunk:   chunk,
			Score:   1.0,
		})
	}
	r.logger.Debug("structured retriever: %d results for filters %v", len(results), q.Filters)
	return results
}
