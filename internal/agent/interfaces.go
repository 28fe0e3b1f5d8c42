// File: internal/agent/interfaces.go
package agent

import "context"

// PageDriver is the browser surface the exploration loop drives.
// Only Open may fail; everything else absorbs its own errors.
type PageDriver interface {
	// Open navigates to url. A failure is returned as *NavigationError.
	Open(ctx context.Context, url string) error
	// PageState captures a fresh snapshot. Sub-extractions that fail leave
	// their fields empty.
	PageState(ctx context.Context) PageState
	// ClickButton clicks the first button with the given accessible text.
	ClickButton(ctx context.Context, text string) bool
	// ClickLink clicks the first link with the given accessible text.
	ClickLink(ctx context.Context, text string) bool
	Close() error
}

// FormFiller is an optional PageDriver capability. values maps an input's
// name (or placeholder) to the text typed into it. The form is submitted
// after filling.
type FormFiller interface {
	FillForm(ctx context.Context, values map[string]string) bool
}

// Proposer suggests candidate actions for the page described by summary.
// Implementations absorb their own failures and return an empty slice at worst.
type Proposer interface {
	Propose(ctx context.Context, summary string, recent []ActionRecord) []Candidate
}

// FormValueGenerator produces input values for the visible fields of a form.
type FormValueGenerator interface {
	GenerateFormValues(ctx context.Context, fields []InputField) map[string]string
}
