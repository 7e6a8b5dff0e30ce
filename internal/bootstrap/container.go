package bootstrap

import (
	"context"
	"fmt"

	"onboarding-assistant-be/internal/config"
	"onboarding-assistant-be/internal/controller"
	"onboarding-assistant-be/internal/pkg/logger"
	"onboarding-assistant-be/internal/service"
	"onboarding-assistant-be/pkg/assistant"
	"onboarding-assistant-be/pkg/embedding"
	"onboarding-assistant-be/pkg/llm/factory"
	"onboarding-assistant-be/pkg/routecontext"

	"github.com/openai/openai-go/v2/option"
)

const (
	moduleName      = "bootstrap"
	warmConcurrency = 4
)

type Container struct {
	Logger logger.ILogger

	// Core
	Resolver routecontext.Resolver
	Driver   *assistant.Driver

	// Services & Controllers
	AssistantService    service.IAssistantService
	AssistantController controller.IAssistantController
}

func NewContainer(ctx context.Context, cfg *config.Config, log logger.ILogger) (*Container, error) {
	// 1. Assistant backend
	backend, err := factory.NewAssistantBackend(cfg.Assistant.Provider, factory.BackendOptions{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Timeout: cfg.OpenAI.RequestTimeout,
		Verbose: cfg.OpenAI.VerboseLogging,
	}, log)
	if err != nil {
		return nil, err
	}

	driver := assistant.NewDriver(backend, assistant.Config{
		AssistantID:     cfg.OpenAI.AssistantID,
		PollInterval:    cfg.Assistant.PollInterval,
		MaxPollAttempts: cfg.Assistant.MaxPollAttempts,
		Verbose:         cfg.OpenAI.VerboseLogging,
	}, log)

	// 2. Route contexts
	resolver, err := newResolver(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	// 3. Services & Controllers
	assistantService := service.NewAssistantService(driver, resolver, log)

	return &Container{
		Logger:              log,
		Resolver:            resolver,
		Driver:              driver,
		AssistantService:    assistantService,
		AssistantController: controller.NewAssistantController(assistantService),
	}, nil
}

func newResolver(ctx context.Context, cfg *config.Config, log logger.ILogger) (routecontext.Resolver, error) {
	contexts := routecontext.LoadDirectory(cfg.Context.DataDirectory, log)

	switch cfg.Context.Strategy {
	case config.StrategyStatic, "":
		log.Info(moduleName, "Using static route context resolver", map[string]interface{}{"routes": len(contexts)})
		return routecontext.NewStaticResolver(contexts), nil

	case config.StrategyEmbedding:
		provider, err := newEmbeddingProvider(ctx, cfg)
		if err != nil {
			return nil, err
		}
		resolver := routecontext.NewEmbeddingResolver(contexts, provider, cfg.Embedding.SimilarityThreshold, log)
		if err := resolver.Warm(ctx, warmConcurrency); err != nil {
			return nil, fmt.Errorf("warm route embeddings: %w", err)
		}
		log.Info(moduleName, "Using embedding route context resolver", map[string]interface{}{
			"routes":    len(contexts),
			"provider":  cfg.Embedding.Provider,
			"threshold": cfg.Embedding.SimilarityThreshold,
		})
		return resolver, nil

	default:
		return nil, fmt.Errorf("unsupported context strategy: %s", cfg.Context.Strategy)
	}
}

func newEmbeddingProvider(ctx context.Context, cfg *config.Config) (embedding.Provider, error) {
	switch cfg.Embedding.Provider {
	case "openai", "":
		var opts []option.RequestOption
		if cfg.OpenAI.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.OpenAI.BaseURL))
		}
		return embedding.NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.EmbeddingModel, opts...), nil
	case "gemini":
		return embedding.NewGeminiProvider(ctx, cfg.Embedding.GoogleGeminiAPIKey, cfg.Embedding.GeminiModel)
	case "ollama":
		return embedding.NewOllamaProvider(cfg.Embedding.OllamaBaseURL, cfg.Embedding.OllamaModel), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}
