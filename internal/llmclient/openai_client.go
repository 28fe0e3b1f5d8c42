// internal/llmclient/openai_client.go
package llmclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scout-cli/api/schemas"
	"github.com/xkilldash9x/scout-cli/internal/config"
)

const defaultOpenAIEndpoint = "https://api.openai.com/v1"

// OpenAIClient talks to any OpenAI compatible chat completions API, such as Groq.
type OpenAIClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	client     *openai.Client
	config     config.LLMModelConfig
	logger     *zap.Logger
}

var _ schemas.LLMClient = (*OpenAIClient)(nil)

// NewOpenAIClient initializes the client. cfg.Endpoint is the API base URL,
// for example https://api.groq.com/openai/v1.
func NewOpenAIClient(cfg config.LLMModelConfig, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI compatible API Key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("a model name is required")
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = defaultOpenAIEndpoint
	}

	httpClient := &http.Client{Timeout: cfg.APITimeout}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = endpoint
	clientCfg.HTTPClient = httpClient

	return &OpenAIClient{
		apiKey:     cfg.APIKey,
		endpoint:   endpoint,
		httpClient: httpClient,
		client:     openai.NewClientWithConfig(clientCfg),
		config:     cfg,
		logger:     logger.Named("llm_client.openai"),
	}, nil
}

// Generate requests one chat completion and returns the first choice's content.
func (c *OpenAIClient) Generate(ctx context.Context, req schemas.GenerationRequest) (string, error) {
	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, c.buildRequestPayload(req))
	if err != nil {
		return "", c.handleAPIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completions API returned no choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("chat completions API returned empty content (finish reason: %s)", resp.Choices[0].FinishReason)
	}

	c.logger.Info("LLM generation complete (OpenAI compatible)",
		zap.Duration("duration", time.Since(start)),
		zap.String("model", c.config.Model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return content, nil
}

func (c *OpenAIClient) buildRequestPayload(req schemas.GenerationRequest) openai.ChatCompletionRequest {
	temperature := c.config.Temperature
	if req.Options.Temperature > 0 {
		temperature = float32(req.Options.Temperature)
	}
	maxTokens := c.config.MaxTokens
	if req.Options.MaxTokens > 0 {
		maxTokens = req.Options.MaxTokens
	}

	payload := openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
	if req.SystemPrompt != "" {
		payload.Messages = append(payload.Messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	payload.Messages = append(payload.Messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserPrompt,
	})
	if req.Options.ForceJSONFormat {
		payload.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	return payload
}

// handleAPIError normalizes SDK errors. Structured API errors keep their
// message; bodies that are not an error envelope surface as a request error.
func (c *OpenAIClient) handleAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		c.logger.Error("Chat completions API returned error status",
			zap.Int("status", apiErr.HTTPStatusCode), zap.String("response", apiErr.Message))
		return fmt.Errorf("chat completions API error: status %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		c.logger.Error("Chat completions request rejected",
			zap.Int("status", reqErr.HTTPStatusCode), zap.Error(reqErr.Err))
		return fmt.Errorf("chat completions API error: status %d: %w", reqErr.HTTPStatusCode, err)
	}
	return fmt.Errorf("chat completions request failed: %w", err)
}

// Close releases idle connections.
func (c *OpenAIClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
