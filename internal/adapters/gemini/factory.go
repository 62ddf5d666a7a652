package gemini

import (
	"context"
	"fmt"

	"github.com/ewfx/gaied-aivengers/internal/config"
	"github.com/ewfx/gaied-aivengers/internal/core"
	"github.com/ewfx/gaied-aivengers/internal/utils"
	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Factory creates new instances of GeminiClient
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new factory for GeminiClient instances
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateReasoningClient creates a new GeminiClient
func (f *Factory) CreateReasoningClient() (core.ReasoningClient, error) {
	geminiCfg := f.cfg.GetGemini()
	return NewGeminiClient(
		geminiCfg.APIKey,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		geminiCfg.TopP,
		geminiCfg.MaxBodySize,
		f.logger,
		f.textProcessor,
	)
}

// CreateEmbedder creates a new Gemini embedder
func (f *Factory) CreateEmbedder() (core.Embedder, error) {
	geminiCfg := f.cfg.GetGemini()
	embeddingCfg := f.cfg.GetEmbedding()

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(geminiCfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return NewEmbedder(client, embeddingCfg.ModelName, embeddingCfg.Dimensions, f.logger), nil
}
