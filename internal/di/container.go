// Package di wires the application together with a dig container.
package di

import (
	"context"
	"fmt"

	"github.com/ewfx/gaied-aivengers/internal/config"
	"github.com/ewfx/gaied-aivengers/internal/core"
	"github.com/ewfx/gaied-aivengers/internal/dedup"
	"github.com/ewfx/gaied-aivengers/internal/factory"
	"github.com/ewfx/gaied-aivengers/internal/logging"
	"github.com/ewfx/gaied-aivengers/internal/review"
	"github.com/ewfx/gaied-aivengers/internal/utils"
	"github.com/ewfx/gaied-aivengers/internal/vector"
	"go.uber.org/dig"
	"go.uber.org/zap"
)

// BuildContainer assembles the dependency graph for the server.
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	providers := []interface{}{
		config.New,
		logging.InitLogger,
		utils.NewTextProcessor,
		factory.NewFactory,

		func(f *factory.Factory) (core.ReasoningClient, error) {
			return f.CreateReasoningClient()
		},
		func(f *factory.Factory) (core.Embedder, error) {
			return f.CreateEmbedder()
		},
		func(f *factory.Factory) (core.ProcessedStore, error) {
			return f.CreateProcessedStore()
		},
		func(f *factory.Factory) (core.EmailSource, error) {
			return f.CreateEmailSource(context.Background())
		},
		func(f *factory.Factory) core.DocumentExtractor {
			return f.CreateDocumentExtractor()
		},

		func(cfg *config.Config) (*core.RequestTaxonomy, error) {
			mapping := cfg.GetTaxonomy()
			if mapping == nil {
				mapping = core.DefaultTaxonomy()
			}
			return core.NewRequestTaxonomy(mapping)
		},

		func(encoder core.Embedder) *vector.SessionStore {
			return vector.NewSessionStore(encoder.Dimensions())
		},
		func(cfg *config.Config, encoder core.Embedder, store *vector.SessionStore, logger *zap.Logger) core.DuplicateFinder {
			dedupCfg := cfg.GetDedup()
			return dedup.NewDetector(encoder, store, logger, dedupCfg.Threshold, dedupCfg.MaxCandidates)
		},

		func(cfg *config.Config, taxonomy *core.RequestTaxonomy, logger *zap.Logger) *review.Server {
			return review.NewServer(cfg.GetString("review.listen_address"), taxonomy, logger)
		},
		func(srv *review.Server) core.ResultSink {
			return srv
		},

		func(
			cfg *config.Config,
			reasoner core.ReasoningClient,
			duplicates core.DuplicateFinder,
			extractor core.DocumentExtractor,
			taxonomy *core.RequestTaxonomy,
			logger *zap.Logger,
		) *core.TriageService {
			return core.NewTriageService(reasoner, duplicates, extractor, taxonomy, logger,
				cfg.GetLLM().DuplicateReasoning)
		},
		func(
			cfg *config.Config,
			source core.EmailSource,
			store core.ProcessedStore,
			service *core.TriageService,
			sink core.ResultSink,
			logger *zap.Logger,
		) *core.Runner {
			return core.NewRunner(source, store, service, sink, logger,
				cfg.GetInt("run.max_emails"))
		},
	}

	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return nil, fmt.Errorf("failed to register provider: %w", err)
		}
	}

	return container, nil
}
