// internal/proposal/llm.go
package proposal

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/scout-cli/api/schemas"
	"github.com/xkilldash9x/scout-cli/internal/agent"
	"github.com/xkilldash9x/scout-cli/internal/llmutil"
)

// LLMProposer asks a language model for candidates and falls back to a
// RuleProposer when the call fails or yields nothing usable.
type LLMProposer struct {
	client   schemas.LLMClient
	fallback agent.Proposer
	logger   *zap.Logger
}

var _ agent.Proposer = (*LLMProposer)(nil)

// NewLLMProposer returns a proposer backed by client.
func NewLLMProposer(client schemas.LLMClient, logger *zap.Logger) (*LLMProposer, error) {
	if client == nil {
		return nil, fmt.Errorf("an LLM client is required")
	}
	return &LLMProposer{
		client:   client,
		fallback: RuleProposer{},
		logger:   logger.Named("proposer.llm"),
	}, nil
}

// Propose never fails: any error is logged and answered by the rules.
func (p *LLMProposer) Propose(ctx context.Context, summary string, recent []agent.ActionRecord) []agent.Candidate {
	req := schemas.GenerationRequest{
		SystemPrompt: explorationSystemPrompt,
		UserPrompt:   buildExplorationPrompt(summary, recent),
		Tier:         schemas.TierFast,
		Options:      schemas.GenerationOptions{Temperature: 0.7, MaxTokens: 150},
	}

	reply, err := p.client.Generate(ctx, req)
	if err != nil {
		p.logger.Warn("LLM proposal failed, using rule-based proposals.", zap.Error(err))
		return p.fallback.Propose(ctx, summary, recent)
	}
	p.logger.Debug("LLM raw response.", zap.String("response", truncate(reply, 200)))

	var out []agent.Candidate
	for _, line := range llmutil.ParseActionLines(reply) {
		c, err := agent.ParseCandidate(line)
		if err != nil {
			p.logger.Debug("Discarding unparseable proposal.", zap.String("line", line), zap.Error(err))
			continue
		}
		out = append(out, c)
		if len(out) == MaxCandidates {
			break
		}
	}

	if len(out) == 0 {
		p.logger.Warn("LLM reply contained no usable actions, using rule-based proposals.")
		return p.fallback.Propose(ctx, summary, recent)
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
