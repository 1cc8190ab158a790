package ragfusion

import (
	"context"
	"fmt"
	"maps"
)

// Document is a raw ingested text with its source metadata.
// Documents are immutable after ingestion; the Chunker and the stores
// only ever read them.
type Document struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Chunk is a bounded contiguous slice of a document's text, the unit of
// retrieval. Chunk identity is stable across rebuilds of the same document:
// the ID is derived from the parent document ID and the chunk index.
type Chunk struct {
	ID         string            `json:"id"`
	DocumentID string            `json:"document_id"`
	Index      int               `json:"index"`
	Text       string            `json:"text"`
	Offset     int               `json:"offset"`
	Length     int               `json:"length"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ChunkID derives the stable chunk identifier for a document and chunk index.
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, index)
}

// CloneMetadata returns a copy of the chunk's metadata map. Callers that
// extend a chunk's metadata must work on a copy so the original chunk stays
// untouched.
func (c Chunk) CloneMetadata() map[string]string {
	m := make(map[string]string, len(c.Metadata))
	maps.Copy(m, c.Metadata)
	return m
}

// Source identifies the retrieval backend a result came from. The numeric
// order doubles as the fusion priority: Hybrid beats Vector beats Structured.
type Source int

const (
	// SourceStructured marks results from an exact-match metadata backend.
	SourceStructured Source = iota
	// SourceVector marks results from local dense-vector search.
	SourceVector
	// SourceHybrid marks results from a managed vector+filter backend.
	SourceHybrid
)

// String returns the human-readable source name.
func (s Source) String() string {
	switch s {
	case SourceStructured:
		return "Structured"
	case SourceVector:
		return "Vector"
	case SourceHybrid:
		return "Hybrid"
	default:
		return fmt.Sprintf("Source(%d)", int(s))
	}
}

// RetrievalResult is one ranked candidate produced by a retriever adapter.
// Score is normalized per adapter into higher-is-better [0,1] before the
// result crosses the adapter boundary. Distance keeps the backend-native
// value for diagnostics only.
type RetrievalResult struct {
	Source   Source  `json:"source"`
	ChunkID  string  `json:"chunk_id"`
	Chunk    Chunk   `json:"chunk"`
	Score    float64 `json:"score"`
	Distance float64 `json:"distance,omitempty"`
}

// FusedContext is the deduplicated, priority-ordered result of fusing the
// adapter lists. Results never contain two entries with the same chunk ID.
type FusedContext struct {
	Results []RetrievalResult `json:"results"`
}

// Query is a single retrieval request fanned out to all adapters.
type Query struct {
	// Text is the user's query, embedded by vector-capable adapters.
	Text string
	// Filters is an exact-match filter set over chunk metadata fields,
	// honored by the structured and hybrid adapters.
	Filters map[string]string
	// K is the per-adapter result budget.
	K int
}

// Embedder converts text into fixed-dimension vectors. Implementations are
// assumed deterministic for identical input within a session.
type Embedder interface {
	EmbedDocument(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	GetDimension() int
}

// Generator is the opaque text-generation service consumed by callers of the
// context assembler. The core never depends on its output.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Retriever is the uniform adapter contract. Implementations normalize
// scores into [0,1] higher-is-better and degrade gracefully: a failing or
// unavailable backend yields an empty slice and a log line, never an error
// that aborts the query.
type Retriever interface {
	// Source reports which backend variant this adapter fronts.
	Source() Source
	// Retrieve returns up to q.K ranked candidates for the query.
	Retrieve(ctx context.Context, q Query) []RetrievalResult
}

// StructuredStore is an exact-match filtering backend over chunk metadata.
// Filter results come back in a deterministic, insertion-stable order.
type StructuredStore interface {
	Add(ctx context.Context, chunks []Chunk) error
	Filter(ctx context.Context, filters map[string]string, limit int) ([]Chunk, error)
	Close() error
}

// ScoredChunk is one pre-ranked match from a hybrid backend. Scores are
// already normalized into [0,1] by the backend contract and pass through
// fusion unmodified.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// HybridBackend is a managed service that accepts both a query vector and an
// exact-match filter set and returns pre-ranked matches.
type HybridBackend interface {
	QueryVector(ctx context.Context, vector []float32, filters map[string]string, k int) ([]ScoredChunk, error)
	Close() error
}
