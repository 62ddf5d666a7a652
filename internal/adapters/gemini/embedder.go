package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
)

// Embedder is an implementation of the Embedder interface using the Gemini
// embedding API. The configured dimension must match what the model
// returns; there is no server-side trimming here.
type Embedder struct {
	client     *genai.Client
	model      *genai.EmbeddingModel
	dimensions int
	logger     *zap.Logger
}

// NewEmbedder creates a new Gemini embedder
func NewEmbedder(client *genai.Client, modelName string, dimensions int, logger *zap.Logger) *Embedder {
	return &Embedder{
		client:     client,
		model:      client.EmbeddingModel(modelName),
		dimensions: dimensions,
		logger:     logger,
	}
}

// Embed maps text to a fixed-dimension vector
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding with Gemini: %w", err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding response from Gemini")
	}

	vec := resp.Embedding.Values
	if len(vec) != e.dimensions {
		return nil, fmt.Errorf("unexpected embedding dimension: got %d, want %d", len(vec), e.dimensions)
	}
	return vec, nil
}

// Dimensions returns the embedding dimension size
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// Close closes the underlying Gemini client
func (e *Embedder) Close() error {
	return e.client.Close()
}
