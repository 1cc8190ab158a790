package pipeline

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

type mockGenerator struct {
	answer  string
	err     error
	prompts []string
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

// filterAwareBackend returns matches only when the filters are empty, so a
// filtered first attempt comes back empty and the retry (filters dropped)
// succeeds.
type filterAwareBackend struct {
	chunks []ragfusion.Chunk
}

func (m *filterAwareBackend) QueryVector(ctx context.Context, vector []float32, filters map[string]string, k int) ([]ragfusion.ScoredChunk, error) {
	if len(filters) > 0 {
		return nil, nil
	}
	out := make([]ragfusion.ScoredChunk, 0, len(m.chunks))
	for i, c := range m.chunks {
		if len(out) >= k {
			break
		}
		out = append(out, ragfusion.ScoredChunk{Chunk: c, Score: 0.9 - float64(i)*0.1})
	}
	return out, nil
}

func (m *filterAwareBackend) Close() error { return nil }

var errGeneratorDown = errors.New("generator down")
