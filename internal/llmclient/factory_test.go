package llmclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/scout-cli/api/schemas"
	"github.com/xkilldash9x/scout-cli/internal/config"
)

// -- Test Cases: Factory Initialization (NewClient) --

func TestNewClient_Success_RouterInitialization(t *testing.T) {
	logger := setupTestLogger(t)

	fastConfig := getValidOpenAIConfig()
	fastConfig.APIKey = "key-fast"
	powerfulConfig := getValidGeminiConfig()
	powerfulConfig.APIKey = ""

	const fastName = "groq"
	const powerfulName = "gemini"

	cfg := config.LLMRouterConfig{
		Enabled:              true,
		DefaultFastModel:     fastName,
		DefaultPowerfulModel: powerfulName,
		APIKey:               "shared-key",
		Models: map[string]config.LLMModelConfig{
			fastName:     fastConfig,
			powerfulName: powerfulConfig,
		},
	}

	client, err := NewClient(context.Background(), cfg, logger)
	require.NoError(t, err, "NewClient should succeed for a valid configuration")
	t.Cleanup(func() { _ = client.Close() })

	router, ok := client.(*LLMRouter)
	require.True(t, ok, "without a rate limit the router is returned directly")

	fast, ok := router.clients[schemas.TierFast].(*OpenAIClient)
	require.True(t, ok, "fast tier should be an *OpenAIClient")
	assert.Equal(t, "key-fast", fast.apiKey, "a model's own key wins")

	powerful, ok := router.clients[schemas.TierPowerful].(*GeminiClient)
	require.True(t, ok, "powerful tier should be a *GeminiClient")
	assert.Equal(t, "gemini-2.5-flash", powerful.config.Model)
	assert.Equal(t, "shared-key", powerful.config.APIKey, "the router key fills in a missing model key")
}

func TestNewClient_SharedAliasBuiltOnce(t *testing.T) {
	cfg := config.LLMRouterConfig{
		DefaultFastModel:     "groq",
		DefaultPowerfulModel: "groq",
		RequestsPerMinute:    30,
		Models:               map[string]config.LLMModelConfig{"groq": getValidOpenAIConfig()},
	}

	client, err := NewClient(context.Background(), cfg, setupTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	limited, ok := client.(*RateLimitedClient)
	require.True(t, ok, "a positive rate wraps the router")
	router, ok := limited.next.(*LLMRouter)
	require.True(t, ok)
	assert.Same(t, router.clients[schemas.TierFast], router.clients[schemas.TierPowerful])
}

func TestNewClient_Failures(t *testing.T) {
	logger := setupTestLogger(t)

	t.Run("missing alias", func(t *testing.T) {
		cfg := config.LLMRouterConfig{
			DefaultFastModel:     "groq",
			DefaultPowerfulModel: "missing",
			Models:               map[string]config.LLMModelConfig{"groq": getValidOpenAIConfig()},
		}
		client, err := NewClient(context.Background(), cfg, logger)
		assert.Nil(t, client)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration for model 'missing' not found")
	})

	t.Run("unsupported provider", func(t *testing.T) {
		bad := getValidOpenAIConfig()
		bad.Provider = "anthropic"
		cfg := config.LLMRouterConfig{
			DefaultFastModel:     "bad",
			DefaultPowerfulModel: "bad",
			Models:               map[string]config.LLMModelConfig{"bad": bad},
		}
		_, err := NewClient(context.Background(), cfg, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported LLM provider")
	})

	t.Run("no api key anywhere", func(t *testing.T) {
		noKey := getValidOpenAIConfig()
		noKey.APIKey = ""
		cfg := config.LLMRouterConfig{
			DefaultFastModel:     "groq",
			DefaultPowerfulModel: "groq",
			Models:               map[string]config.LLMModelConfig{"groq": noKey},
		}
		_, err := NewClient(context.Background(), cfg, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to initialize model 'groq'")
	})
}
