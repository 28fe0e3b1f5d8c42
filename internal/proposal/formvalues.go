// internal/proposal/formvalues.go
package proposal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/scout-cli/api/schemas"
	"github.com/xkilldash9x/scout-cli/internal/agent"
	"github.com/xkilldash9x/scout-cli/internal/llmutil"
)

// maxFormFields bounds how many fields are described to the model.
const maxFormFields = 15

// SyntheticFormValues fills fields from keyword rules on the field label.
type SyntheticFormValues struct {
	// Now stamps generated email addresses. Defaults to time.Now.
	Now func() time.Time
}

var _ agent.FormValueGenerator = SyntheticFormValues{}

// GenerateFormValues maps each field label to a placeholder value. Fields
// that are neither email, password, name nor plain text are left out.
func (s SyntheticFormValues) GenerateFormValues(_ context.Context, fields []agent.InputField) map[string]string {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	ts := now().Unix()

	values := make(map[string]string, len(fields))
	for _, f := range fields {
		label := f.Label()
		if label == "" {
			continue
		}
		lower := strings.ToLower(label)
		switch {
		case strings.Contains(lower, "email"):
			values[label] = fmt.Sprintf("test%d@example.com", ts)
		case strings.Contains(lower, "password"):
			values[label] = "TestPass123!"
		case strings.Contains(lower, "name"):
			values[label] = "TestUser"
		case f.Type == "" || f.Type == "text":
			values[label] = "Test"
		}
	}
	return values
}

// LLMFormValues asks the powerful model tier for a JSON object of values.
type LLMFormValues struct {
	client   schemas.LLMClient
	fallback agent.FormValueGenerator
	logger   *zap.Logger
}

var _ agent.FormValueGenerator = (*LLMFormValues)(nil)

// NewLLMFormValues returns a generator backed by client that falls back to
// SyntheticFormValues.
func NewLLMFormValues(client schemas.LLMClient, logger *zap.Logger) (*LLMFormValues, error) {
	if client == nil {
		return nil, fmt.Errorf("an LLM client is required")
	}
	return &LLMFormValues{
		client:   client,
		fallback: SyntheticFormValues{},
		logger:   logger.Named("form_values.llm"),
	}, nil
}

func (g *LLMFormValues) GenerateFormValues(ctx context.Context, fields []agent.InputField) map[string]string {
	if len(fields) == 0 {
		return map[string]string{}
	}
	described := fields
	if len(described) > maxFormFields {
		described = described[:maxFormFields]
	}

	reply, err := g.client.Generate(ctx, schemas.GenerationRequest{
		SystemPrompt: formSystemPrompt,
		UserPrompt:   buildFormPrompt(described),
		Tier:         schemas.TierPowerful,
		Options:      schemas.GenerationOptions{Temperature: 0.5, MaxTokens: 500, ForceJSONFormat: true},
	})
	if err != nil {
		g.logger.Warn("LLM form generation failed, using synthetic values.", zap.Error(err))
		return g.fallback.GenerateFormValues(ctx, fields)
	}

	parsed, err := llmutil.ParseJSONResponse[map[string]any](reply)
	if err != nil || len(*parsed) == 0 {
		g.logger.Warn("LLM form reply was not a usable JSON object, using synthetic values.", zap.Error(err))
		return g.fallback.GenerateFormValues(ctx, fields)
	}

	values := make(map[string]string, len(*parsed))
	for k, v := range *parsed {
		values[k] = fmt.Sprint(v)
	}
	g.logger.Info("Generated form data.", zap.Int("fields", len(values)))
	return values
}
