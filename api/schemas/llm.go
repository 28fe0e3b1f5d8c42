// File: api/schemas/llm.go
package schemas

import "context"

// ModelTier selects between the fast and the more capable configured model.
type ModelTier string

const (
	TierFast     ModelTier = "fast"     // Action proposals.
	TierPowerful ModelTier = "powerful" // Form value generation.
)

// GenerationOptions tunes a single completion.
type GenerationOptions struct {
	Temperature     float64 `json:"temperature"`
	ForceJSONFormat bool    `json:"force_json_format"` // Request a JSON object response.
	MaxTokens       int     `json:"max_tokens"`        // Zero uses the model default.
}

// GenerationRequest is a provider-neutral completion request.
type GenerationRequest struct {
	SystemPrompt string            `json:"system_prompt"`
	UserPrompt   string            `json:"user_prompt"`
	Tier         ModelTier         `json:"tier"` // Empty routes to TierFast.
	Options      GenerationOptions `json:"options"`
}

// LLMClient is implemented by every provider client and by the router and
// rate limiter that wrap them.
type LLMClient interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
	Close() error
}
