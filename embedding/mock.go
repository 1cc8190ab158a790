package embedding

import (
	"context"
	"math"

	"github.com/smallnest/ragfusion"
)

// MockEmbedder generates deterministic, normalized embeddings from text
// content alone. Identical input always yields identical vectors, which is
// what index round-trip and fusion tests rely on.
type MockEmbedder struct {
	dimension int
}

// NewMockEmbedder creates a mock embedder with the given dimension.
func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{dimension: dimension}
}

var _ ragfusion.Embedder = (*MockEmbedder)(nil)

// EmbedDocument generates a deterministic embedding for the text.
func (e *MockEmbedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return e.generate(text), nil
}

// EmbedDocuments generates deterministic embeddings for each text.
func (e *MockEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.generate(text)
	}
	return vectors, nil
}

// GetDimension returns the embedding dimension.
func (e *MockEmbedder) GetDimension() int {
	return e.dimension
}

func (e *MockEmbedder) generate(text string) []float32 {
	vector := make([]float32, e.dimension)

	for i := 0; i < e.dimension; i++ {
		var sum float64
		for j, char := range text {
			sum += float64(char) * float64(i+j+1)
		}
		vector[i] = float32(math.Sin(sum / 1000.0))
	}

	var norm float32
	for _, v := range vector {
		norm += v * v
	}
	norm = float32(math.Sqrt(float64(norm)))
	if norm > 0 {
		for i := range vector {
			vector[i] /= norm
		}
	}

	return vector
}
