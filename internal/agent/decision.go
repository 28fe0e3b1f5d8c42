// internal/agent/decision.go
package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/scout-cli/internal/config"
)

// Decider runs the propose, filter and select pipeline for one step.
type Decider struct {
	proposer      Proposer
	selector      *Selector
	summaryLimit  int
	recentHistory int
	logger        *zap.Logger
}

// NewDecider wires a proposer to a selector built from cfg.
func NewDecider(proposer Proposer, cfg config.AgentConfig, logger *zap.Logger) (*Decider, error) {
	if proposer == nil {
		return nil, fmt.Errorf("a proposer is required")
	}
	selector, err := NewSelector(cfg)
	if err != nil {
		return nil, err
	}
	return &Decider{
		proposer:      proposer,
		selector:      selector,
		summaryLimit:  cfg.SummaryLimit,
		recentHistory: cfg.RecentHistory,
		logger:        logger.Named("decider"),
	}, nil
}

// DecideNextAction returns the action for the current page, or false when the
// run should stop.
func (d *Decider) DecideNextAction(ctx context.Context, page PageState, history []ActionRecord) (ChosenAction, bool) {
	summary := page.Summarize(d.summaryLimit)
	d.logger.Debug("Current page state.", zap.String("summary", summary))

	proposals := d.proposer.Propose(ctx, summary, recent(history, d.recentHistory))
	d.logger.Debug("Proposals received.", zap.Strings("proposals", formatAll(proposals)))

	filtered := FilterCandidates(proposals, history, page)
	if dropped := len(proposals) - len(filtered); dropped > 0 {
		d.logger.Debug("Filtered out repeated or infeasible candidates.",
			zap.Int("dropped", dropped), zap.Strings("remaining", formatAll(filtered)))
	}

	chosen, ok := d.selector.Select(filtered)
	if !ok {
		d.logger.Info("No valid action remaining.")
		return ChosenAction{}, false
	}
	d.logger.Info("Action chosen.",
		zap.String("action", string(chosen.Action)),
		zap.String("target", chosen.Target),
		zap.String("reason", chosen.Reason))
	return chosen, true
}

// recent returns the last n records without copying.
func recent(history []ActionRecord, n int) []ActionRecord {
	if n <= 0 {
		return nil
	}
	if len(history) > n {
		return history[len(history)-n:]
	}
	return history
}

func formatAll(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = FormatCandidate(c)
	}
	return out
}
