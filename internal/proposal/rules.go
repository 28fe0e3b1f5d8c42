// internal/proposal/rules.go
package proposal

import (
	"context"
	"strings"

	"github.com/xkilldash9x/scout-cli/internal/agent"
)

// MaxCandidates bounds every proposal list.
const MaxCandidates = 3

// docSections are the documentation entry points the rules know about, in
// preference order.
var docSections = []string{"Tutorial", "Library Reference", "What's New"}

// RuleProposer is the deterministic proposer. It needs no network and is the
// fallback for LLMProposer.
type RuleProposer struct{}

var _ agent.Proposer = RuleProposer{}

// Propose derives candidates from keywords in the page summary and from the
// kinds already present in recent.
func (RuleProposer) Propose(_ context.Context, summary string, recent []agent.ActionRecord) []agent.Candidate {
	lower := strings.ToLower(summary)
	var out []agent.Candidate

	if strings.Contains(summary, "practice-test-login") || strings.Contains(summary, "/login") {
		switch {
		case !triedKind(recent, agent.KindTryWrongLogin):
			out = append(out, agent.LoginAttempt{Mode: agent.LoginWrong, Note: "test_validation"})
		case !triedKind(recent, agent.KindTryCorrectLogin):
			out = append(out, agent.LoginAttempt{Mode: agent.LoginCorrect, Note: "test_success"})
		default:
			out = append(out, agent.ObservePage{Note: "done"})
		}
	}

	if strings.Contains(lower, "successfully") || strings.Contains(lower, "logged in") {
		out = append(out, agent.ObservePage{Note: "success_verified"})
	}

	if strings.Contains(summary, "Input Fields:") {
		switch {
		case strings.Contains(lower, "signup") || strings.Contains(lower, "sign up"):
			if !triedKind(recent, agent.KindFillSignupForm) {
				out = append(out, agent.FillForm{Form: agent.FormSignup, Note: "auto"})
			}
		case strings.Contains(lower, "register") || strings.Contains(lower, "registration"):
			if !triedKind(recent, agent.KindFillRegistrationForm) {
				out = append(out, agent.FillForm{Form: agent.FormRegistration, Note: "auto"})
			}
		}
	}

	for _, section := range docSections {
		if strings.Contains(summary, section) {
			out = append(out, agent.ClickLink{Text: section})
			break
		}
	}

	if len(out) == 0 {
		out = append(out, agent.ObservePage{Note: "no_action"})
	}
	if len(out) > MaxCandidates {
		out = out[:MaxCandidates]
	}
	return out
}

func triedKind(history []agent.ActionRecord, kind agent.ActionKind) bool {
	for _, rec := range history {
		if rec.Action == kind {
			return true
		}
	}
	return false
}
