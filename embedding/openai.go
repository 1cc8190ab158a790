// Package embedding provides Embedder implementations: a production adapter
// over the OpenAI embeddings API and a deterministic mock for tests and
// offline demos.
package embedding

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/smallnest/ragfusion"
)

// embeddingsClient is the slice of the OpenAI client this adapter needs,
// kept narrow so tests can substitute a double.
type embeddingsClient interface {
	CreateEmbeddings(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// OpenAIEmbedder adapts the OpenAI embeddings API to the Embedder interface.
type OpenAIEmbedder struct {
	client    embeddingsClient
	model     openai.EmbeddingModel
	dimension int
}

// OpenAIOption configures the OpenAIEmbedder.
type OpenAIOption func(*OpenAIEmbedder)

// WithModel sets the embedding model. Defaults to text-embedding-3-small.
func WithModel(model openai.EmbeddingModel) OpenAIOption {
	return func(e *OpenAIEmbedder) {
		e.model = model
	}
}

// WithDimension sets the expected vector dimension. Defaults to 1536.
func WithDimension(dimension int) OpenAIOption {
	return func(e *OpenAIEmbedder) {
		e.dimension = dimension
	}
}

// NewOpenAIEmbedder creates an embedder backed by the given API key.
func NewOpenAIEmbedder(apiKey string, opts ...OpenAIOption) *OpenAIEmbedder {
	return newOpenAIEmbedder(openai.NewClient(apiKey), opts...)
}

// NewOpenAIEmbedderWithClient creates an embedder over an existing client.
// Useful for custom base URLs and for testing with doubles.
func NewOpenAIEmbedderWithClient(client *openai.Client, opts ...OpenAIOption) *OpenAIEmbedder {
	return newOpenAIEmbedder(client, opts...)
}

func newOpenAIEmbedder(client embeddingsClient, opts ...OpenAIOption) *OpenAIEmbedder {
	e := &OpenAIEmbedder{
		client:    client,
		model:     openai.SmallEmbedding3,
		dimension: 1536,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ ragfusion.Embedder = (*OpenAIEmbedder)(nil)

// EmbedDocument embeds a single text.
func (e *OpenAIEmbedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedDocuments embeds a batch of texts in one API call.
func (e *OpenAIEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings request: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings: requested %d vectors, got %d", len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		if len(d.Embedding) != e.dimension {
			return nil, &ragfusion.DimensionMismatchError{Want: e.dimension, Got: len(d.Embedding)}
		}
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

// GetDimension returns the configured embedding dimension.
func (e *OpenAIEmbedder) GetDimension() int {
	return e.dimension
}
