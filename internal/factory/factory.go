// Package factory builds the configured adapter implementations behind the
// core ports, selecting providers from configuration.
package factory

import (
	"context"
	"fmt"

	"github.com/ewfx/gaied-aivengers/internal/adapters/bedrock"
	"github.com/ewfx/gaied-aivengers/internal/adapters/extract"
	"github.com/ewfx/gaied-aivengers/internal/adapters/gemini"
	"github.com/ewfx/gaied-aivengers/internal/adapters/gmail"
	"github.com/ewfx/gaied-aivengers/internal/adapters/openai"
	"github.com/ewfx/gaied-aivengers/internal/adapters/smtpd"
	"github.com/ewfx/gaied-aivengers/internal/adapters/store"
	"github.com/ewfx/gaied-aivengers/internal/config"
	"github.com/ewfx/gaied-aivengers/internal/core"
	"github.com/ewfx/gaied-aivengers/internal/utils"
	"go.uber.org/zap"
)

// Factory creates configured adapter instances
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new adapter factory
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateReasoningClient creates the reasoning client named by llm.provider.
func (f *Factory) CreateReasoningClient() (core.ReasoningClient, error) {
	provider := f.cfg.GetLLM().Provider
	switch provider {
	case "openai":
		return openai.NewFactory(f.cfg, f.logger, f.textProcessor).CreateReasoningClient()
	case "gemini":
		return gemini.NewFactory(f.cfg, f.logger, f.textProcessor).CreateReasoningClient()
	case "bedrock":
		return bedrock.NewFactory(f.cfg, f.logger, f.textProcessor).CreateReasoningClient()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", provider)
	}
}

// CreateEmbedder creates the encoder named by embedding.provider.
func (f *Factory) CreateEmbedder() (core.Embedder, error) {
	provider := f.cfg.GetEmbedding().Provider
	switch provider {
	case "openai":
		return openai.NewFactory(f.cfg, f.logger, f.textProcessor).CreateEmbedder()
	case "gemini":
		return gemini.NewFactory(f.cfg, f.logger, f.textProcessor).CreateEmbedder()
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", provider)
	}
}

// CreateProcessedStore creates the processed-email ledger named by store.type.
func (f *Factory) CreateProcessedStore() (core.ProcessedStore, error) {
	storeType := f.cfg.GetString("store.type")
	switch storeType {
	case "memory":
		return store.NewMemoryStore(), nil
	case "sqlite":
		return store.NewSqliteStore(f.cfg.GetString("store.sqlite_path"), f.logger)
	case "mysql":
		return store.NewMysqlStore(f.cfg.GetString("store.mysql_dsn"), f.logger)
	default:
		return nil, fmt.Errorf("unknown store type: %s", storeType)
	}
}

// CreateEmailSource creates the mailbox named by mailbox.source. An SMTP
// source must be started by the caller before mail can arrive.
func (f *Factory) CreateEmailSource(ctx context.Context) (core.EmailSource, error) {
	source := f.cfg.GetString("mailbox.source")
	switch source {
	case "gmail":
		return gmail.NewMailbox(ctx, f.cfg.GetGmail(), f.logger)
	case "smtp":
		return smtpd.NewIngest(f.cfg.GetSMTP(), f.logger), nil
	default:
		return nil, fmt.Errorf("unknown mailbox source: %s", source)
	}
}

// CreateDocumentExtractor creates the attachment text extractor.
func (f *Factory) CreateDocumentExtractor() core.DocumentExtractor {
	return extract.NewFileExtractor(f.logger, f.textProcessor)
}
