// Package app assembles the chat service from configuration.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/josinaldojr/portfolio-chat/internal/config"
	"github.com/josinaldojr/portfolio-chat/internal/db"
	"github.com/josinaldojr/portfolio-chat/internal/llm"
	"github.com/josinaldojr/portfolio-chat/internal/rag"
)

// App holds the wired service and the resources it owns.
type App struct {
	Service *rag.Service
	Store   rag.VectorStore

	closers []func()
}

// New opens the configured store, builds the model clients and returns the
// assembled service. Call Close when done.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	a := &App{}

	store, err := a.openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Store = store

	embeddings, generator, err := newClients(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	if cfg.EmbeddingCacheSize > 0 {
		model := cfg.LLMProvider + ":" + cfg.EmbeddingModel
		cached, err := llm.NewCachedEmbedder(embeddings, model, cfg.EmbeddingCacheSize)
		if err != nil {
			a.Close()
			return nil, err
		}
		embeddings = cached
	}

	persona, err := config.LoadPersona(cfg.PersonaFile)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Service = rag.NewService(store, embeddings, generator,
		rag.WithTopK(cfg.TopK),
		rag.WithMaxDistance(cfg.MaxDistance),
		rag.WithAssembler(rag.NewAssembler(persona, cfg.PromptMaxChars)),
		rag.WithLogger(logger),
	)

	logger.Info().
		Str("store", cfg.StoreBackend).
		Str("provider", cfg.LLMProvider).
		Str("persona", persona.Name).
		Int("top_k", cfg.TopK).
		Msg("chat service ready")

	return a, nil
}

// Close releases the store connection pool, if any.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (rag.VectorStore, error) {
	metric, err := rag.ParseDistanceMetric(cfg.DistanceMetric)
	if err != nil {
		return nil, err
	}

	switch cfg.StoreBackend {
	case config.StoreMemory:
		logger.Warn().Msg("using in-memory store; entries are lost on restart")
		return rag.NewMemoryStore(cfg.EmbeddingDimensions)

	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", rag.ErrStore, err)
		}
		a.closers = append(a.closers, pool.Close)

		repo := rag.NewPgRepository(pool, cfg.EmbeddingDimensions, metric)
		if err := repo.Migrate(ctx); err != nil {
			a.Close()
			return nil, err
		}
		return repo, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func newClients(ctx context.Context, cfg *config.Config) (rag.EmbeddingsClient, rag.LLMClient, error) {
	retry := llm.RetryPolicy{
		MaxRetries:    cfg.UpstreamMaxRetries,
		InitialDelay:  cfg.UpstreamInitialBackoff,
		BackoffFactor: 2,
	}

	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		c := llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:         cfg.OpenAIAPIKey,
			OrgID:          cfg.OpenAIOrgID,
			BaseURL:        cfg.OpenAIBaseURL,
			EmbeddingModel: cfg.EmbeddingModel,
			ChatModel:      cfg.ChatModel,
			Dimensions:     cfg.EmbeddingDimensions,
			MaxTokens:      cfg.ChatMaxTokens,
			Timeout:        cfg.UpstreamTimeout,
			Retry:          retry,
		})
		return c, c, nil

	case config.ProviderGemini:
		c, err := llm.NewGeminiClient(ctx, llm.GeminiConfig{
			APIKey:         cfg.GeminiAPIKey,
			EmbeddingModel: cfg.EmbeddingModel,
			ChatModel:      cfg.ChatModel,
			Dimensions:     cfg.EmbeddingDimensions,
			MaxTokens:      cfg.ChatMaxTokens,
			Timeout:        cfg.UpstreamTimeout,
			Retry:          retry,
		})
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil

	default:
		return nil, nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}
