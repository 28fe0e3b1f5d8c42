// internal/agent/state.go
package agent

import (
	"slices"
)

// State is a phase of the exploration state machine.
type State string

const (
	StateIdle     State = "IDLE"
	StateObserve  State = "OBSERVE"
	StateDecide   State = "DECIDE"
	StateAct      State = "ACT"
	StateEvaluate State = "EVALUATE"
	StateStop     State = "STOP"
)

// transitions lists the edges of the state machine. STOP is reachable from
// every non-terminal state so an interrupt can end the run anywhere.
var transitions = map[State][]State{
	StateIdle:     {StateObserve, StateStop},
	StateObserve:  {StateDecide, StateStop},
	StateDecide:   {StateAct, StateStop},
	StateAct:      {StateEvaluate, StateStop},
	StateEvaluate: {StateObserve, StateStop},
	StateStop:     {},
}

// CanTransition reports whether the machine has an edge from -> to.
func CanTransition(from, to State) bool {
	return slices.Contains(transitions[from], to)
}

// RunContext is an immutable snapshot of a run. Every transition method takes
// the receiver by value and returns a new snapshot. History and Insights are
// never appended in place, so older snapshots keep their contents.
type RunContext struct {
	State      State
	Page       PageState
	Before     PageState
	Chosen     ChosenAction
	LastOK     bool
	LastEval   EvaluationResult
	Count      int
	History    []ActionRecord
	Insights   []InsightEntry
	StopReason StopReason
}

// NewRunContext returns the IDLE snapshot a run starts from.
func NewRunContext() RunContext {
	return RunContext{State: StateIdle}
}

func (rc RunContext) moveTo(to State) (RunContext, error) {
	if !CanTransition(rc.State, to) {
		return rc, &TransitionError{From: rc.State, To: to}
	}
	rc.State = to
	return rc, nil
}

// Opened moves IDLE -> OBSERVE after the start URL loaded.
func (rc RunContext) Opened() (RunContext, error) {
	return rc.moveTo(StateObserve)
}

// Observed records the captured page and moves OBSERVE -> DECIDE.
func (rc RunContext) Observed(page PageState) (RunContext, error) {
	next, err := rc.moveTo(StateDecide)
	if err != nil {
		return rc, err
	}
	next.Page = page
	return next, nil
}

// Decided moves DECIDE -> ACT with the chosen action, or DECIDE -> STOP when
// there is none.
func (rc RunContext) Decided(action ChosenAction, ok bool) (RunContext, error) {
	if !ok {
		return rc.Stopped(StopNoAction)
	}
	next, err := rc.moveTo(StateAct)
	if err != nil {
		return rc, err
	}
	next.Chosen = action
	return next, nil
}

// Acted appends the executed action to the history, stores the post-action
// page and moves ACT -> EVALUATE.
func (rc RunContext) Acted(rec ActionRecord, after PageState) (RunContext, error) {
	next, err := rc.moveTo(StateEvaluate)
	if err != nil {
		return rc, err
	}
	next.Before = rc.Page
	next.Page = after
	next.LastOK = rec.Success
	next.Count = rc.Count + 1
	next.History = append(slices.Clip(rc.History), rec)
	return next, nil
}

// Evaluated appends the insight and moves EVALUATE -> OBSERVE, or -> STOP when
// the action ceiling has been reached.
func (rc RunContext) Evaluated(eval EvaluationResult, maxActions int) (RunContext, error) {
	if rc.State != StateEvaluate {
		return rc, &TransitionError{From: rc.State, To: StateObserve}
	}
	rc.LastEval = eval
	rc.Insights = append(slices.Clip(rc.Insights), InsightEntry{
		Action:     rc.Chosen,
		Evaluation: eval,
		Step:       rc.Count,
	})
	if rc.Count >= maxActions {
		return rc.Stopped(StopMaxActions)
	}
	return rc.moveTo(StateObserve)
}

// Stopped ends the run with reason. Stopping an already stopped run keeps the
// first reason.
func (rc RunContext) Stopped(reason StopReason) (RunContext, error) {
	if rc.State == StateStop {
		return rc, nil
	}
	next, err := rc.moveTo(StateStop)
	if err != nil {
		return rc, err
	}
	next.StopReason = reason
	return next, nil
}

// Done reports whether the run reached its terminal state.
func (rc RunContext) Done() bool { return rc.State == StateStop }
