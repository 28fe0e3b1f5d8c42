// -- cmd/explore.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scout-cli/internal/agent"
	"github.com/xkilldash9x/scout-cli/internal/browser"
	"github.com/xkilldash9x/scout-cli/internal/browser/roddriver"
	"github.com/xkilldash9x/scout-cli/internal/config"
	"github.com/xkilldash9x/scout-cli/internal/llmclient"
	"github.com/xkilldash9x/scout-cli/internal/observability"
	"github.com/xkilldash9x/scout-cli/internal/proposal"
	"github.com/xkilldash9x/scout-cli/internal/trace"
)

// Factories are variables so tests can run the command without Chrome or a
// model provider.
var (
	newPageDriver = defaultPageDriver
	newLLMClient  = llmclient.NewClient
)

func defaultPageDriver(ctx context.Context, cfg *config.Config, logger *zap.Logger) (agent.PageDriver, error) {
	if cfg.Browser.Engine == config.EngineRod {
		d, err := roddriver.NewDriver(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	d, err := browser.NewDriver(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func newExploreCmd(cc *cliContext) *cobra.Command {
	var noLLM bool

	exploreCmd := &cobra.Command{
		Use:   "explore [url]",
		Short: "Explore a website starting at url and record a trace of every action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cc.cfg
			if noLLM {
				cfg.Agent.LLM.Enabled = false
			}
			return runExplore(cmd.Context(), cmd.OutOrStdout(), cfg, args[0], observability.GetLogger())
		},
	}

	flags := exploreCmd.Flags()
	flags.Int("max-actions", 6, "Maximum number of actions before the run stops")
	flags.Bool("headless", true, "Run the browser without a window")
	flags.String("engine", config.EngineChromedp, "Browser engine: chromedp or rod")
	flags.String("trace-file", "logs/run_log.json", "Where the file sink writes the run trace")
	flags.BoolVar(&noLLM, "no-llm", false, "Use rule-based proposals and synthetic form values only")

	_ = cc.v.BindPFlag("agent.max_actions", flags.Lookup("max-actions"))
	_ = cc.v.BindPFlag("browser.headless", flags.Lookup("headless"))
	_ = cc.v.BindPFlag("browser.engine", flags.Lookup("engine"))
	_ = cc.v.BindPFlag("trace.path", flags.Lookup("trace-file"))

	return exploreCmd
}

// runExplore wires the run together. The trace is persisted whatever the
// outcome of the run, with a context that outlives an interrupt.
func runExplore(ctx context.Context, out io.Writer, cfg *config.Config, startURL string, logger *zap.Logger) error {
	sink, closeSink, err := trace.NewSink(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize trace sink: %w", err)
	}
	defer closeSink()

	proposer, forms, closeLLM := buildProposers(ctx, cfg, logger)
	defer closeLLM()

	driver, err := newPageDriver(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to start page driver: %w", err)
	}

	explorer, err := agent.NewExplorer(driver, proposer, forms, cfg.Agent, logger, agent.WithInsightWriter(out))
	if err != nil {
		_ = driver.Close()
		return err
	}

	t, runErr := explorer.Run(ctx, startURL)
	if werr := sink.Write(context.WithoutCancel(ctx), t); werr != nil {
		logger.Error("Failed to persist run trace.", zap.Error(werr))
		if runErr == nil {
			runErr = werr
		}
	}

	fmt.Fprintf(out, "\nExploration finished: %d action(s), stop reason %s, final URL %s\n",
		t.TotalActions, t.StopReason, t.FinalURL)

	if errors.Is(runErr, context.Canceled) {
		logger.Info("Exploration interrupted, partial trace saved.")
	}
	return runErr
}

// buildProposers returns the LLM backed proposer and form generator when the
// model router can be built, and the rule based fallbacks otherwise.
func buildProposers(ctx context.Context, cfg *config.Config, logger *zap.Logger) (agent.Proposer, agent.FormValueGenerator, func()) {
	rules, synthetic := proposal.RuleProposer{}, proposal.SyntheticFormValues{}
	noop := func() {}

	if !cfg.Agent.LLM.Enabled {
		logger.Info("LLM proposals disabled, using rule-based proposals.")
		return rules, synthetic, noop
	}

	client, err := newLLMClient(ctx, cfg.Agent.LLM, logger)
	if err != nil {
		logger.Warn("LLM client unavailable, using rule-based proposals.", zap.Error(err))
		return rules, synthetic, noop
	}
	closeClient := func() {
		if cerr := client.Close(); cerr != nil {
			logger.Warn("Failed to close LLM client.", zap.Error(cerr))
		}
	}

	proposer, err := proposal.NewLLMProposer(client, logger)
	if err != nil {
		closeClient()
		return rules, synthetic, noop
	}
	forms, err := proposal.NewLLMFormValues(client, logger)
	if err != nil {
		closeClient()
		return rules, synthetic, noop
	}
	return proposer, forms, closeClient
}
