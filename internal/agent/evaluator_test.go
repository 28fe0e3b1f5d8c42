// internal/agent/evaluator_test.go
package agent

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate_URLChanged(t *testing.T) {
	e := NewEvaluator(true)
	action := ChosenAction{Action: KindClickLink, Target: "Tutorial", Reason: "r"}

	res := e.Evaluate(
		PageState{URL: "https://docs.python.org/index"},
		PageState{URL: "https://docs.python.org/tutorial"},
		action,
	)
	assert.Equal(t, ResultURLChanged, res.Result)
	assert.Equal(t, "Page navigated from https://docs.python.org/index to https://docs.python.org/tutorial", res.Observation)
	assert.Contains(t, res.Insight, "Meaningful exploration")

	res = e.Evaluate(
		PageState{URL: "https://docs.python.org/3.12/"},
		PageState{URL: "https://docs.python.org/3.13/"},
		ChosenAction{Action: KindClickLink, Target: "Python 3.13"},
	)
	assert.Equal(t, ResultURLChanged, res.Result)
	assert.Contains(t, res.Insight, "Exploring version variants")

	res = e.Evaluate(
		PageState{URL: "https://docs.python.org/3/faq/general.html"},
		PageState{URL: "https://docs.python.org/3/faq/design.html"},
		action,
	)
	assert.Contains(t, res.Insight, "Possible redundant exploration")
}

func TestEvaluate_VersionSwitchWithinSection(t *testing.T) {
	e := NewEvaluator(true)
	action := ChosenAction{Action: KindClickLink, Target: "Python 3.13"}

	tests := []struct{ before, after string }{
		{"https://docs.python.org/3.12/library/os.html", "https://docs.python.org/3.13/library/os.html"},
		{"https://docs.python.org/3.12/tutorial/index.html", "https://docs.python.org/3.13/tutorial/index.html"},
		{"https://docs.python.org/3.12/", "https://docs.python.org/3.13/"},
	}
	for _, tt := range tests {
		res := e.Evaluate(PageState{URL: tt.before}, PageState{URL: tt.after}, action)
		assert.Equal(t, ResultURLChanged, res.Result, tt.after)
		assert.Contains(t, res.Insight, "Exploring version variants", tt.after)
	}

	// Same version, same section stays redundant.
	res := e.Evaluate(
		PageState{URL: "https://docs.python.org/3.12/library/os.html"},
		PageState{URL: "https://docs.python.org/3.12/library/sys.html"},
		ChosenAction{Action: KindClickLink, Target: "sys"},
	)
	assert.Contains(t, res.Insight, "Possible redundant exploration")
}

func TestEvaluate_ErrorAppeared(t *testing.T) {
	e := NewEvaluator(true)
	before := PageState{URL: "https://docs.python.org/3.12/library", Errors: []string{}}
	after := PageState{URL: "https://docs.python.org/3.12/library", Errors: []string{"invalid input"}}

	res := e.Evaluate(before, after, ChosenAction{Action: KindClickButton, Target: "Go"})
	assert.Equal(t, ResultErrorAppeared, res.Result)
	assert.Contains(t, res.Observation, "invalid input")
	assert.Contains(t, res.Insight, "validation feedback")

	res = e.Evaluate(before, after, ChosenAction{Action: KindTryWrongLogin, Target: "unknown"})
	assert.Equal(t, ResultErrorAppeared, res.Result)
	assert.Contains(t, res.Insight, "Login rejected")

	// Errors that were already there are not new.
	res = e.Evaluate(after, after, ChosenAction{Action: KindClickButton, Target: "Go"})
	assert.Equal(t, ResultNoChange, res.Result)
}

func TestEvaluate_ContentChanged(t *testing.T) {
	e := NewEvaluator(true)
	res := e.Evaluate(
		PageState{URL: "u", Buttons: []string{"Go"}},
		PageState{URL: "u", Buttons: []string{"Go", "Load more", "Load more", "Close"}},
		ChosenAction{Action: KindClickButton, Target: "Go"},
	)
	assert.Equal(t, ResultContentChanged, res.Result)
	assert.Equal(t, "New buttons appeared: Load more, Close", res.Observation)
	assert.Contains(t, res.Insight, "dynamically")
}

func TestEvaluate_NoChange(t *testing.T) {
	page := PageState{URL: "u", Buttons: []string{"Go"}}
	action := ChosenAction{Action: KindClickButton, Target: "Go"}

	res := NewEvaluator(true).Evaluate(page, page, action)
	assert.Equal(t, ResultNoChange, res.Result)
	assert.Equal(t, "Action 'click_button' on 'Go' produced no visible effect", res.Observation)
	assert.Contains(t, res.Insight, "Possible issue")

	res = NewEvaluator(false).Evaluate(page, page, action)
	assert.Equal(t, ResultNoChange, res.Result)
	assert.Empty(t, res.Insight, "diagnostic is disabled")
}

// TestEvaluate_TotalityAndPriority walks every combination of the three
// signals and checks that the highest priority one decides the result.
func TestEvaluate_TotalityAndPriority(t *testing.T) {
	e := NewEvaluator(true)
	action := ChosenAction{Action: KindClickLink, Target: "x"}

	for _, urlChanged := range []bool{false, true} {
		for _, errorsAppeared := range []bool{false, true} {
			for _, buttonsAdded := range []bool{false, true} {
				name := fmt.Sprintf("url=%v/errors=%v/buttons=%v", urlChanged, errorsAppeared, buttonsAdded)
				t.Run(name, func(t *testing.T) {
					before := PageState{URL: "https://a.test/one", Buttons: []string{"A"}}
					after := PageState{URL: before.URL, Buttons: []string{"A"}}
					if urlChanged {
						after.URL = "https://a.test/two"
					}
					if errorsAppeared {
						after.Errors = []string{"failed"}
					}
					if buttonsAdded {
						after.Buttons = append(after.Buttons, "B")
					}

					var want ResultKind
					switch {
					case urlChanged:
						want = ResultURLChanged
					case errorsAppeared:
						want = ResultErrorAppeared
					case buttonsAdded:
						want = ResultContentChanged
					default:
						want = ResultNoChange
					}
					assert.Equal(t, want, e.Evaluate(before, after, action).Result)
				})
			}
		}
	}
}

func TestClassifyPage(t *testing.T) {
	tests := map[string]string{
		"https://www.python.org/downloads/":                    PageDownload,
		"https://docs.python.org/3/py-modindex.html":           PageModuleIndex,
		"https://docs.python.org/3/genindex.html":              PageGeneralIndex,
		"https://docs.python.org/3/index.html":                 PageGeneralIndex,
		"https://docs.python.org/3/tutorial/index.html":        PageTutorial,
		"https://docs.python.org/3.12/library/index.html":      PageLibraryReference,
		"https://docs.python.org/3.12/":                        PageVersionDocs,
		"https://docs.python.org/3.13/whatsnew/3.13.html":      PageVersionDocs,
		"https://docs.python.org/3/faq/general.html":           PageGeneral,
		"HTTPS://DOCS.PYTHON.ORG/3/TUTORIAL/":                  PageTutorial,
	}
	for raw, want := range tests {
		assert.Equal(t, want, ClassifyPage(raw), raw)
	}
}

func TestRenderInsight(t *testing.T) {
	action := ChosenAction{Action: KindClickLink, Target: "Tutorial", Reason: "Link 'Tutorial' selected for documentation exploration"}
	eval := EvaluationResult{Result: ResultURLChanged, Observation: "Page navigated from a to b", Insight: "Meaningful exploration"}

	block := RenderInsight(eval, action)
	lines := strings.Split(strings.TrimSpace(block), "\n")

	assert.Equal(t, []string{
		insightSeparator,
		"ACTION: click_link -> Tutorial",
		"REASON: Link 'Tutorial' selected for documentation exploration",
		"RESULT: url_changed",
		"OBSERVATION: Page navigated from a to b",
		"INSIGHT: Meaningful exploration",
		insightSeparator,
	}, lines)

	eval.Insight = ""
	assert.NotContains(t, RenderInsight(eval, action), "INSIGHT:")
}
