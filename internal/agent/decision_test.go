// internal/agent/decision_test.go
package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/scout-cli/internal/config"
)

// proposerFunc adapts a function to the Proposer interface.
type proposerFunc func(ctx context.Context, summary string, recent []ActionRecord) []Candidate

func (f proposerFunc) Propose(ctx context.Context, summary string, recent []ActionRecord) []Candidate {
	return f(ctx, summary, recent)
}

func staticProposer(cs ...Candidate) Proposer {
	return proposerFunc(func(context.Context, string, []ActionRecord) []Candidate { return cs })
}

func historyOf(actions ...ChosenAction) []ActionRecord {
	h := make([]ActionRecord, 0, len(actions))
	for i, a := range actions {
		h = append(h, ActionRecord{ChosenAction: a, Success: true, Step: i + 1})
	}
	return h
}

func docsPage() PageState {
	return PageState{
		URL:     "https://docs.python.org/3/index.html",
		Title:   "3.13 Documentation",
		Buttons: []string{"Go", "Search"},
		Links: []Link{
			{Text: "Tutorial", Href: "/3/tutorial/index.html"},
			{Text: "Library Reference", Href: "/3/library/index.html"},
			{Text: "Python 3.13", Href: "/3.13/"},
			{Text: "Download", Href: "/3/download.html"},
			{Text: "What's New", Href: "/3/whatsnew/index.html"},
		},
	}
}

var candidateCmp = cmp.Transformer("format", FormatCandidate)

// -- Filter --

func TestFilterCandidates(t *testing.T) {
	page := docsPage()
	history := historyOf(ChosenAction{Action: KindClickLink, Target: "Tutorial"})

	in := []Candidate{
		ClickLink{Text: "Tutorial"},           // repeated
		ClickLink{Text: "Glossary"},           // not on page
		ClickButton{Label: "Submit"},          // not on page
		ClickLink{Text: "Library Reference"},  // kept
		ClickButton{Label: "Search"},          // kept
		ObservePage{Note: "no_action"},        // kept
		LoginAttempt{Mode: LoginWrong, Note: "x"}, // kept, not checked against page
	}
	want := []Candidate{
		ClickLink{Text: "Library Reference"},
		ClickButton{Label: "Search"},
		ObservePage{Note: "no_action"},
		LoginAttempt{Mode: LoginWrong, Note: "x"},
	}

	got := FilterCandidates(in, history, page)
	if diff := cmp.Diff(formatAll(want), formatAll(got)); diff != "" {
		t.Errorf("FilterCandidates() mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterCandidates_Idempotent(t *testing.T) {
	page := docsPage()
	history := historyOf(
		ChosenAction{Action: KindClickLink, Target: "Download"},
		ChosenAction{Action: KindClickButton, Target: "Go"},
	)
	in := []Candidate{
		ClickLink{Text: "Download"},
		ClickButton{Label: "Go"},
		ClickButton{Label: "Search"},
		ClickLink{Text: "Missing"},
		ClickLink{Text: "What's New"},
	}

	once := FilterCandidates(in, history, page)
	twice := FilterCandidates(once, history, page)
	if diff := cmp.Diff(once, twice, candidateCmp); diff != "" {
		t.Errorf("filter is not idempotent (-once +twice):\n%s", diff)
	}
}

func TestFilterCandidates_NoRepeat(t *testing.T) {
	page := docsPage()
	var history []ActionRecord
	for _, l := range page.Links {
		history = append(history, ActionRecord{ChosenAction: ChosenAction{Action: KindClickLink, Target: l.Text}})
	}
	var in []Candidate
	for _, l := range page.Links {
		in = append(in, ClickLink{Text: l.Text})
	}

	got := FilterCandidates(in, history, page)
	assert.Empty(t, got, "every executed (kind, target) pair must be filtered out")
}

// -- Selector --

func newTestSelector(t *testing.T) *Selector {
	t.Helper()
	s, err := NewSelector(config.NewDefaultConfig().Agent)
	require.NoError(t, err)
	return s
}

func TestSelector_Priority(t *testing.T) {
	s := newTestSelector(t)

	tests := []struct {
		name       string
		candidates []Candidate
		action     ActionKind
		target     string
		reason     string
	}{
		{
			name:       "version link preferred",
			candidates: []Candidate{ClickLink{Text: "Python 3.13"}, ClickLink{Text: "Download"}},
			action:     KindClickLink,
			target:     "Python 3.13",
			reason:     "Version link selected to compare documentation variants across Python versions",
		},
		{
			name:       "information dense link",
			candidates: []Candidate{ClickButton{Label: "Go"}, ClickLink{Text: "About"}, ClickLink{Text: "Global Module INDEX"}},
			action:     KindClickLink,
			target:     "Global Module INDEX",
			reason:     "Navigation to 'Global Module INDEX' increases information density",
		},
		{
			name:       "first link over buttons",
			candidates: []Candidate{ClickButton{Label: "Go"}, ClickLink{Text: "About"}, ClickLink{Text: "FAQ"}},
			action:     KindClickLink,
			target:     "About",
			reason:     "Link 'About' selected for documentation exploration",
		},
		{
			name:       "first button",
			candidates: []Candidate{ObservePage{Note: "x"}, ClickButton{Label: "Go"}, ClickButton{Label: "Search"}},
			action:     KindClickButton,
			target:     "Go",
			reason:     "Button 'Go' selected as available action",
		},
		{
			name:       "generic fallback",
			candidates: []Candidate{LoginAttempt{Mode: LoginWrong, Note: "test_validation"}, ObservePage{Note: "x"}},
			action:     KindTryWrongLogin,
			target:     "unknown",
			reason:     "Default action from proposals",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.Select(tt.candidates)
			require.True(t, ok)
			assert.Equal(t, ChosenAction{Action: tt.action, Target: tt.target, Reason: tt.reason}, got)
		})
	}
}

func TestSelector_None(t *testing.T) {
	s := newTestSelector(t)

	_, ok := s.Select(nil)
	assert.False(t, ok, "empty list selects nothing")

	_, ok = s.Select([]Candidate{ObservePage{Note: "done"}, ObservePage{Note: "no_action"}})
	assert.False(t, ok, "observe markers alone select nothing")

	_, ok = s.Select([]Candidate{ObservePage{Note: "done"}, LoginAttempt{Mode: LoginCorrect, Note: "test_success"}})
	assert.False(t, ok, "a leading observe marker ends selection before the generic fallback")

	got, ok := s.Select([]Candidate{ObservePage{Note: "done"}, ClickLink{Text: "About"}})
	require.True(t, ok, "clicks are still ranked ahead of a leading observe marker")
	assert.Equal(t, "About", got.Target)
}

func TestSelector_CustomKeywords(t *testing.T) {
	cfg := config.NewDefaultConfig().Agent
	cfg.InfoKeywords = []string{" FAQ "}
	s, err := NewSelector(cfg)
	require.NoError(t, err)

	got, ok := s.Select([]Candidate{ClickLink{Text: "Tutorial"}, ClickLink{Text: "Python faq"}})
	require.True(t, ok)
	assert.Equal(t, "Python faq", got.Target)
}

func TestNewSelector_BadPattern(t *testing.T) {
	cfg := config.NewDefaultConfig().Agent
	cfg.VersionPattern = "("
	_, err := NewSelector(cfg)
	assert.Error(t, err)
}

// -- Decision pipeline --

func TestDecideNextAction(t *testing.T) {
	cfg := config.NewDefaultConfig().Agent

	t.Run("version link wins over download", func(t *testing.T) {
		d, err := NewDecider(staticProposer(ClickLink{Text: "Python 3.13"}, ClickLink{Text: "Download"}), cfg, zaptest.NewLogger(t))
		require.NoError(t, err)

		got, ok := d.DecideNextAction(context.Background(), docsPage(), nil)
		require.True(t, ok)
		assert.Equal(t, "Python 3.13", got.Target)
		assert.NotEmpty(t, got.Reason)
	})

	t.Run("repeated proposals yield none", func(t *testing.T) {
		d, err := NewDecider(staticProposer(ClickLink{Text: "Tutorial"}, ClickLink{Text: "Tutorial"}), cfg, zaptest.NewLogger(t))
		require.NoError(t, err)

		history := historyOf(ChosenAction{Action: KindClickLink, Target: "Tutorial", Reason: "r"})
		_, ok := d.DecideNextAction(context.Background(), docsPage(), history)
		assert.False(t, ok)
	})

	t.Run("proposer sees summary and recent window", func(t *testing.T) {
		var gotSummary string
		var gotRecent []ActionRecord
		p := proposerFunc(func(_ context.Context, summary string, recent []ActionRecord) []Candidate {
			gotSummary, gotRecent = summary, recent
			return nil
		})
		d, err := NewDecider(p, cfg, zap.NewNop())
		require.NoError(t, err)

		history := historyOf(
			ChosenAction{Action: KindClickLink, Target: "a"},
			ChosenAction{Action: KindClickLink, Target: "b"},
			ChosenAction{Action: KindClickLink, Target: "c"},
			ChosenAction{Action: KindClickLink, Target: "d"},
		)
		_, ok := d.DecideNextAction(context.Background(), docsPage(), history)
		assert.False(t, ok)

		require.Len(t, gotRecent, 3)
		assert.Equal(t, "b", gotRecent[0].Target)
		assert.Equal(t, "d", gotRecent[2].Target)
		assert.Contains(t, gotSummary, "URL: https://docs.python.org/3/index.html")
		assert.Contains(t, gotSummary, "Visible Links: Tutorial, Library Reference, Python 3.13, Download, What's New")
	})

	t.Run("nil proposer rejected", func(t *testing.T) {
		_, err := NewDecider(nil, cfg, zap.NewNop())
		assert.Error(t, err)
	})
}

func TestPageState_Summarize(t *testing.T) {
	page := PageState{
		URL:     "https://practice.example/signup",
		Title:   "Sign up",
		Buttons: []string{"a", "b", "c", "d", "e", "f"},
		InputFields: []InputField{
			{Type: "email", Name: "email"},
			{Type: "password", Placeholder: "Password"},
		},
		Errors: []string{"Email is required"},
	}
	summary := page.Summarize(5)

	assert.Contains(t, summary, "Visible Buttons: a, b, c, d, e\n")
	assert.NotContains(t, summary, "Visible Links")
	assert.Contains(t, summary, "Input Fields: email(email), password(Password)")
	assert.Contains(t, summary, "Errors Detected: Email is required")
	assert.True(t, strings.HasPrefix(summary, "URL: https://practice.example/signup\nTitle: Sign up\n\n"))
}
