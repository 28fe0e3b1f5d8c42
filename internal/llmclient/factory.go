// internal/llmclient/factory.go
package llmclient

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/scout-cli/api/schemas"
	"github.com/xkilldash9x/scout-cli/internal/config"
)

// NewClient builds the tier router described by cfg. Each model alias is
// instantiated once even when both tiers point at it. A model without its own
// API key uses cfg.APIKey. When cfg.RequestsPerMinute is positive the router
// is wrapped in a RateLimitedClient.
func NewClient(ctx context.Context, cfg config.LLMRouterConfig, logger *zap.Logger) (schemas.LLMClient, error) {
	built := make(map[string]schemas.LLMClient, 2)
	closeAll := func() {
		for _, c := range built {
			_ = c.Close()
		}
	}

	resolve := func(alias string) (schemas.LLMClient, error) {
		if c, ok := built[alias]; ok {
			return c, nil
		}
		modelCfg, ok := cfg.Models[alias]
		if !ok {
			return nil, fmt.Errorf("configuration for model '%s' not found in agent.llm.models", alias)
		}
		if modelCfg.APIKey == "" {
			modelCfg.APIKey = cfg.APIKey
		}
		c, err := newModelClient(ctx, modelCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize model '%s': %w", alias, err)
		}
		built[alias] = c
		return c, nil
	}

	fast, err := resolve(cfg.DefaultFastModel)
	if err != nil {
		return nil, err
	}
	powerful, err := resolve(cfg.DefaultPowerfulModel)
	if err != nil {
		closeAll()
		return nil, err
	}

	router, err := NewLLMRouter(logger, fast, powerful)
	if err != nil {
		closeAll()
		return nil, err
	}
	if cfg.RequestsPerMinute <= 0 {
		return router, nil
	}
	limited, err := NewRateLimitedClient(router, cfg.RequestsPerMinute)
	if err != nil {
		closeAll()
		return nil, err
	}
	return limited, nil
}

func newModelClient(ctx context.Context, cfg config.LLMModelConfig, logger *zap.Logger) (schemas.LLMClient, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		c, err := NewGeminiClient(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderOpenAI:
		c, err := NewOpenAIClient(cfg, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown or unsupported LLM provider configured: '%s'. Supported: [%s, %s]",
			cfg.Provider, config.ProviderGemini, config.ProviderOpenAI)
	}
}
