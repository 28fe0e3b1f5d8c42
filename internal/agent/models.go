// internal/agent/models.go
package agent

import (
	"time"
)

// ChosenAction is the single action the selector picked for a step.
type ChosenAction struct {
	Action ActionKind `json:"action"`
	Target string     `json:"target"`
	Reason string     `json:"reason"`
}

// Key returns the (kind, target) pair in "kind:target" form, which is what the
// no-repeat rule compares.
func (a ChosenAction) Key() string {
	return string(a.Action) + ":" + a.Target
}

// ActionRecord is one executed action in the run's history.
type ActionRecord struct {
	ChosenAction
	Success    bool      `json:"success"`
	Step       int       `json:"step"`
	ExecutedAt time.Time `json:"executed_at"`
}

// ResultKind classifies the outcome of an action.
type ResultKind string

const (
	ResultURLChanged     ResultKind = "url_changed"
	ResultContentChanged ResultKind = "content_changed"
	ResultErrorAppeared  ResultKind = "error_appeared"
	ResultNoChange       ResultKind = "no_change"
)

// EvaluationResult describes what an action did to the page.
type EvaluationResult struct {
	Result      ResultKind `json:"result"`
	Observation string     `json:"observation"`
	Insight     string     `json:"insight,omitempty"`
}

// InsightEntry pairs an evaluated action with its outcome.
type InsightEntry struct {
	Action     ChosenAction     `json:"action"`
	Evaluation EvaluationResult `json:"evaluation"`
	Step       int              `json:"step"`
}

// StopReason records why a run ended.
type StopReason string

const (
	StopMaxActions       StopReason = "max_actions_reached"
	StopNoAction         StopReason = "no_action_available"
	StopInterrupted      StopReason = "interrupted"
	StopNavigationFailed StopReason = "navigation_failed"
)

// Trace is the persisted record of one exploration run.
type Trace struct {
	RunID         string         `json:"run_id"`
	StartURL      string         `json:"start_url"`
	TotalActions  int            `json:"total_actions"`
	FinalURL      string         `json:"final_url"`
	StopReason    StopReason     `json:"stop_reason"`
	StartedAt     time.Time      `json:"started_at"`
	FinishedAt    time.Time      `json:"finished_at"`
	ActionHistory []ActionRecord `json:"action_history"`
	Insights      []InsightEntry `json:"insights"`
}
