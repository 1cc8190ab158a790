package retriever

import (
	"context"
	"errors"
	"math"

	"github.com/smallnest/ragfusion"
)

type mockEmbedder struct {
	dimension int
	err       error
}

func (m *mockEmbedder) embed(text string) []float32 {
	v := make([]float32, m.dimension)
	var norm float64
	for i := range v {
		v[i] = float32(math.Sin(float64(len(text)*(i+1)) * 0.1))
		norm += float64(v[i]) * float64(v[i])
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range v {
			v[i] = float32(float64(v[i]) / norm)
		}
	}
	return v
}

func (m *mockEmbedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.embed(text), nil
}

func (m *mockEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = m.embed(text)
	}
	return out, nil
}

func (m *mockEmbedder) GetDimension() int { return m.dimension }

type mockStructuredStore struct {
	chunks []ragfusion.Chunk
	err    error
}

func (m *mockStructuredStore) Add(ctx context.Context, chunks []ragfusion.Chunk) error {
	m.chunks = append(m.chunks, chunks...)
	return nil
}

func (m *mockStructuredStore) Filter(ctx context.Context, filters map[string]string, limit int) ([]ragfusion.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []ragfusion.Chunk
	for _, c := range m.chunks {
		matched := true
		for k, v := range filters {
			if c.Metadata[k] != v {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, c)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *mockStructuredStore) Close() error { return nil }

type mockHybridBackend struct {
	scored []ragfusion.ScoredChunk
	err    error
}

func (m *mockHybridBackend) QueryVector(ctx context.Context, vector []float32, filters map[string]string, k int) ([]ragfusion.ScoredChunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	if k < len(m.scored) {
		return m.scored[:k], nil
	}
	return m.scored, nil
}

func (m *mockHybridBackend) Close() error { return nil }

var errBackendDown = errors.New("backend down")
