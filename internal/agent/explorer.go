// internal/agent/explorer.go
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scout-cli/internal/config"
)

// loginLabels are tried in order by navigate_to_login, first as links and then as buttons.
var loginLabels = []string{"Login", "Log in", "Sign in"}

// Explorer runs the OBSERVE, DECIDE, ACT, EVALUATE loop against a page driver.
// It is single threaded: one Run at a time per Explorer.
type Explorer struct {
	driver    PageDriver
	decider   *Decider
	evaluator *Evaluator
	forms     FormValueGenerator
	cfg       config.AgentConfig
	out       io.Writer
	logger    *zap.Logger
	now       func() time.Time
}

// ExplorerOption customizes an Explorer.
type ExplorerOption func(*Explorer)

// WithInsightWriter sets where rendered insight blocks are written. The default discards them.
func WithInsightWriter(w io.Writer) ExplorerOption {
	return func(e *Explorer) { e.out = w }
}

// WithClock replaces time.Now for timestamps in the trace.
func WithClock(now func() time.Time) ExplorerOption {
	return func(e *Explorer) { e.now = now }
}

// NewExplorer assembles the loop. forms may be nil, in which case form and
// login actions that need generated values fail.
func NewExplorer(
	driver PageDriver,
	proposer Proposer,
	forms FormValueGenerator,
	cfg config.AgentConfig,
	logger *zap.Logger,
	opts ...ExplorerOption,
) (*Explorer, error) {
	if driver == nil {
		return nil, fmt.Errorf("a page driver is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid agent configuration: %w", err)
	}
	logger = logger.Named("explorer")
	decider, err := NewDecider(proposer, cfg, logger)
	if err != nil {
		return nil, err
	}

	e := &Explorer{
		driver:    driver,
		decider:   decider,
		evaluator: NewEvaluator(cfg.FlagNoChange),
		forms:     forms,
		cfg:       cfg,
		out:       io.Discard,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run explores from startURL until the state machine stops. The returned trace
// is always non-nil so the caller can persist it, even when err is a
// *NavigationError or the context was cancelled. The driver is closed before
// Run returns.
func (e *Explorer) Run(ctx context.Context, startURL string) (trace *Trace, err error) {
	runID := uuid.New().String()
	logger := e.logger.With(zap.String("run_id", runID), zap.String("start_url", startURL))
	trace = &Trace{RunID: runID, StartURL: startURL, StartedAt: e.now()}

	defer func() {
		if cerr := e.driver.Close(); cerr != nil {
			logger.Warn("Failed to close page driver.", zap.Error(cerr))
		}
	}()

	rc := NewRunContext()
	logger.Info("Starting exploration.", zap.Int("max_actions", e.cfg.MaxActions))

	if oerr := e.driver.Open(ctx, startURL); oerr != nil {
		var navErr *NavigationError
		if !errors.As(oerr, &navErr) {
			navErr = &NavigationError{URL: startURL, Err: oerr}
		}
		logger.Error("Could not open start URL.", zap.Error(navErr), zap.String("error_code", string(navErr.Code())))
		rc, _ = rc.Stopped(StopNavigationFailed)
		e.fillTrace(trace, rc)
		return trace, navErr
	}

	if rc, err = rc.Opened(); err != nil {
		return trace, err
	}

	for !rc.Done() {
		if ctx.Err() != nil {
			logger.Warn("Exploration interrupted.", zap.String("state", string(rc.State)))
			rc, _ = rc.Stopped(StopInterrupted)
			break
		}
		prev := rc.State
		next, serr := e.step(ctx, rc, logger)
		if serr != nil {
			rc, _ = rc.Stopped(StopInterrupted)
			e.fillTrace(trace, rc)
			return trace, serr
		}
		logger.Debug("State transition.", zap.String("from", string(prev)), zap.String("to", string(next.State)))
		rc = next
	}

	e.fillTrace(trace, rc)
	logger.Info("Exploration complete.",
		zap.String("stop_reason", string(rc.StopReason)),
		zap.Int("total_actions", rc.Count),
		zap.String("final_url", trace.FinalURL))

	if rc.StopReason == StopInterrupted {
		return trace, ctx.Err()
	}
	return trace, nil
}

// step performs the work of the current state and returns the next snapshot.
func (e *Explorer) step(ctx context.Context, rc RunContext, logger *zap.Logger) (RunContext, error) {
	switch rc.State {
	case StateObserve:
		page := e.driver.PageState(ctx)
		logger.Info("Observed page.",
			zap.String("url", page.URL),
			zap.Int("buttons", len(page.Buttons)),
			zap.Int("links", len(page.Links)),
			zap.Int("inputs", len(page.InputFields)))
		return rc.Observed(page)

	case StateDecide:
		action, ok := e.decider.DecideNextAction(ctx, rc.Page, rc.History)
		return rc.Decided(action, ok)

	case StateAct:
		ok := e.act(ctx, rc.Chosen, rc.Page, logger)
		if !ok {
			logger.Warn("Action failed, continuing with next observation.",
				zap.String("action", string(rc.Chosen.Action)), zap.String("target", rc.Chosen.Target))
		}
		after := e.driver.PageState(ctx)
		rec := ActionRecord{
			ChosenAction: rc.Chosen,
			Success:      ok,
			Step:         rc.Count + 1,
			ExecutedAt:   e.now(),
		}
		return rc.Acted(rec, after)

	case StateEvaluate:
		eval := e.evaluator.Evaluate(rc.Before, rc.Page, rc.Chosen)
		if _, err := io.WriteString(e.out, RenderInsight(eval, rc.Chosen)); err != nil {
			logger.Debug("Failed to write insight block.", zap.Error(err))
		}
		logger.Info("Action evaluated.",
			zap.Int("step", rc.Count),
			zap.String("result", string(eval.Result)),
			zap.String("observation", eval.Observation),
			zap.String("insight", eval.Insight))
		return rc.Evaluated(eval, e.cfg.MaxActions)
	}
	return rc, &TransitionError{From: rc.State, To: rc.State}
}

// act dispatches the chosen action to the driver. It never returns an error;
// failures are reported as false.
func (e *Explorer) act(ctx context.Context, action ChosenAction, page PageState, logger *zap.Logger) bool {
	switch action.Action {
	case KindClickButton:
		return e.driver.ClickButton(ctx, action.Target)
	case KindClickLink:
		return e.driver.ClickLink(ctx, action.Target)
	case KindFillSignupForm, KindFillRegistrationForm, KindFillLoginForm,
		KindTryWrongLogin, KindTryCorrectLogin, KindTryEmptyLogin:
		return e.fillForm(ctx, action.Action, page.InputFields, logger)
	case KindNavigateToLogin:
		return e.navigateToLogin(ctx, page)
	default:
		logger.Warn("Unsupported action kind.",
			zap.String("action", string(action.Action)),
			zap.String("error_code", string(ErrCodeUnknownAction)))
		return false
	}
}

func (e *Explorer) fillForm(ctx context.Context, kind ActionKind, fields []InputField, logger *zap.Logger) bool {
	filler, ok := e.driver.(FormFiller)
	if !ok {
		logger.Warn("Page driver cannot fill forms.", zap.String("error_code", string(ErrCodeFeatureDisabled)))
		return false
	}
	if len(fields) == 0 {
		logger.Warn("No input fields visible for form action.",
			zap.String("action", string(kind)), zap.String("error_code", string(ErrCodeElementNotFound)))
		return false
	}

	values, ok := e.formValues(ctx, kind, fields)
	if !ok {
		logger.Warn("No form value generator configured.", zap.String("error_code", string(ErrCodeFeatureDisabled)))
		return false
	}
	logger.Debug("Submitting form.", zap.String("action", string(kind)), zap.Int("fields", len(values)))
	return filler.FillForm(ctx, values)
}

// formValues decides what to type into each field for the given action kind.
func (e *Explorer) formValues(ctx context.Context, kind ActionKind, fields []InputField) (map[string]string, bool) {
	values := make(map[string]string, len(fields))
	switch kind {
	case KindTryEmptyLogin:
		for _, f := range fields {
			if name := f.Label(); name != "" {
				values[name] = ""
			}
		}
		return values, true

	case KindTryWrongLogin:
		suffix := uuid.New().String()[:8]
		for _, f := range fields {
			name := f.Label()
			switch {
			case name == "":
			case isPasswordField(f):
				values[name] = "WrongPass_" + suffix
			default:
				values[name] = "invalid_user_" + suffix
			}
		}
		return values, true

	case KindTryCorrectLogin:
		creds := e.cfg.Credentials
		if creds.Username != "" && creds.Password != "" {
			for _, f := range fields {
				name := f.Label()
				switch {
				case name == "":
				case isPasswordField(f):
					values[name] = creds.Password
				default:
					values[name] = creds.Username
				}
			}
			return values, true
		}
	}

	if e.forms == nil {
		return nil, false
	}
	return e.forms.GenerateFormValues(ctx, fields), true
}

func (e *Explorer) navigateToLogin(ctx context.Context, page PageState) bool {
	for _, label := range loginLabels {
		if text, ok := matchFold(page.LinkTexts(), label); ok && e.driver.ClickLink(ctx, text) {
			return true
		}
	}
	for _, label := range loginLabels {
		if text, ok := matchFold(page.Buttons, label); ok && e.driver.ClickButton(ctx, text) {
			return true
		}
	}
	return false
}

// fillTrace copies the final snapshot into the trace.
func (e *Explorer) fillTrace(trace *Trace, rc RunContext) {
	trace.TotalActions = rc.Count
	trace.FinalURL = rc.Page.URL
	trace.StopReason = rc.StopReason
	trace.FinishedAt = e.now()
	trace.ActionHistory = append([]ActionRecord{}, rc.History...)
	trace.Insights = append([]InsightEntry{}, rc.Insights...)
}

func isPasswordField(f InputField) bool {
	return strings.EqualFold(f.Type, "password") || strings.Contains(strings.ToLower(f.Label()), "pass")
}

func matchFold(candidates []string, label string) (string, bool) {
	for _, c := range candidates {
		if strings.EqualFold(strings.TrimSpace(c), label) {
			return c, true
		}
	}
	return "", false
}
