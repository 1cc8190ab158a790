package ragfusion

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
)

// LangChainEmbedder adapts langchaingo's embeddings.Embedder to the Embedder
// interface, so any langchaingo-supported embedding provider can feed the
// index and the vector adapter.
type LangChainEmbedder struct {
	embedder  embeddings.Embedder
	dimension int
}

// NewLangChainEmbedder creates a new adapter for langchaingo embedders.
// dimension must match the vectors the provider returns; it is what the
// indexer will be validated against.
func NewLangChainEmbedder(embedder embeddings.Embedder, dimension int) *LangChainEmbedder {
	return &LangChainEmbedder{
		embedder:  embedder,
		dimension: dimension,
	}
}

// EmbedDocument embeds a single text using the underlying langchaingo embedder.
func (l *LangChainEmbedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	embedding, err := l.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("langchain embed query: %w", err)
	}

	result := make([]float32, len(embedding))
	for i, val := range embedding {
		result[i] = float32(val)
	}
	return result, nil
}

// EmbedDocuments embeds multiple texts using the underlying langchaingo embedder.
func (l *LangChainEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := l.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("langchain embed documents: %w", err)
	}

	result := make([][]float32, len(vectors))
	for i, vec := range vectors {
		result[i] = make([]float32, len(vec))
		for j, val := range vec {
			result[i][j] = float32(val)
		}
	}
	return result, nil
}

// GetDimension returns the configured embedding dimension.
func (l *LangChainEmbedder) GetDimension() int {
	return l.dimension
}

// LangChainGenerator adapts a langchaingo llms.Model to the Generator
// interface consumed downstream of the context assembler.
type LangChainGenerator struct {
	llm llms.Model
}

// NewLangChainGenerator creates a new adapter for langchaingo models.
func NewLangChainGenerator(llm llms.Model) *LangChainGenerator {
	return &LangChainGenerator{llm: llm}
}

// Generate produces a completion for the prompt.
func (l *LangChainGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	response, err := l.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("generation returned no choices")
	}
	return response.Choices[0].Content, nil
}
