package openai

import (
	"github.com/ewfx/gaied-aivengers/internal/config"
	"github.com/ewfx/gaied-aivengers/internal/core"
	"github.com/ewfx/gaied-aivengers/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Factory creates new OpenAI-backed clients
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new factory for OpenAI clients
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateReasoningClient creates a new OpenAIClient
func (f *Factory) CreateReasoningClient() (core.ReasoningClient, error) {
	openaiCfg := f.cfg.GetOpenAI()
	client := openai.NewClient(openaiCfg.APIKey)

	return NewOpenAIClient(
		client,
		openaiCfg.ModelName,
		openaiCfg.MaxTokens,
		openaiCfg.Temperature,
		openaiCfg.TopP,
		openaiCfg.MaxBodySize,
		f.logger,
		f.textProcessor,
	), nil
}

// CreateEmbedder creates a new OpenAI embedder
func (f *Factory) CreateEmbedder() (core.Embedder, error) {
	openaiCfg := f.cfg.GetOpenAI()
	embeddingCfg := f.cfg.GetEmbedding()
	client := openai.NewClient(openaiCfg.APIKey)

	return NewEmbedder(client, embeddingCfg.ModelName, embeddingCfg.Dimensions, f.logger), nil
}
