package openai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Embedder is an implementation of the Embedder interface using the OpenAI
// embeddings API, requesting vectors trimmed to the configured dimension.
type Embedder struct {
	client     *openai.Client
	modelName  string
	dimensions int
	logger     *zap.Logger
}

// NewEmbedder creates a new OpenAI embedder
func NewEmbedder(client *openai.Client, modelName string, dimensions int, logger *zap.Logger) *Embedder {
	return &Embedder{
		client:     client,
		modelName:  modelName,
		dimensions: dimensions,
		logger:     logger,
	}
}

// Embed maps text to a fixed-dimension vector
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      openai.EmbeddingModel(e.modelName),
		Dimensions: e.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding with OpenAI: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("empty embedding response from OpenAI")
	}

	vec := resp.Data[0].Embedding
	if len(vec) != e.dimensions {
		return nil, fmt.Errorf("unexpected embedding dimension: got %d, want %d", len(vec), e.dimensions)
	}
	return vec, nil
}

// Dimensions returns the embedding dimension size
func (e *Embedder) Dimensions() int {
	return e.dimensions
}
