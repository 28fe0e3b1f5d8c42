// internal/agent/evaluator.go
package agent

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Page type tags used to compare the two sides of a navigation.
const (
	PageDownload         = "download_page"
	PageModuleIndex      = "module_index"
	PageGeneralIndex     = "general_index"
	PageTutorial         = "tutorial"
	PageLibraryReference = "library_reference"
	PageVersionDocs      = "version_docs"
	PageGeneral          = "general_page"
)

const insightSeparator = "============================================================"

var versionSegment = regexp.MustCompile(`^\d+\.\d+$`)

// Evaluator classifies the outcome of an action from the page before and after it.
type Evaluator struct {
	flagNoChange bool
}

// NewEvaluator builds an evaluator. When flagNoChange is set, no_change results
// carry a diagnostic insight pointing at a possibly broken interaction.
func NewEvaluator(flagNoChange bool) *Evaluator {
	return &Evaluator{flagNoChange: flagNoChange}
}

// Evaluate always returns exactly one result. Checks run in priority order:
// URL change, new errors, new buttons, nothing.
func (e *Evaluator) Evaluate(before, after PageState, action ChosenAction) EvaluationResult {
	if before.URL != after.URL {
		from, to := ClassifyPage(before.URL), ClassifyPage(after.URL)
		res := EvaluationResult{
			Result:      ResultURLChanged,
			Observation: fmt.Sprintf("Page navigated from %s to %s", before.URL, after.URL),
		}
		fromVer, toVer := versionOf(before.URL), versionOf(after.URL)
		switch {
		case fromVer != "" && toVer != "" && fromVer != toVer,
			from == PageVersionDocs && to == PageVersionDocs:
			res.Insight = fmt.Sprintf("Exploring version variants: '%s' moved between documentation versions", action.Target)
		case from != to:
			res.Insight = fmt.Sprintf("Meaningful exploration: %s led from %s to %s", action.Action, from, to)
		default:
			res.Insight = fmt.Sprintf("Possible redundant exploration: still on a %s", to)
		}
		return res
	}

	if len(after.Errors) > 0 && len(before.Errors) == 0 {
		res := EvaluationResult{
			Result:      ResultErrorAppeared,
			Observation: fmt.Sprintf("Error message appeared: %s", strings.Join(after.Errors, "; ")),
		}
		if action.Action.IsLogin() {
			res.Insight = "Login rejected with a validation error; the credentials may not exist yet"
		} else {
			res.Insight = fmt.Sprintf("Action '%s' triggered validation feedback", action.Action)
		}
		return res
	}

	if added := newItems(before.Buttons, after.Buttons); len(added) > 0 {
		return EvaluationResult{
			Result:      ResultContentChanged,
			Observation: fmt.Sprintf("New buttons appeared: %s", strings.Join(added, ", ")),
			Insight:     fmt.Sprintf("Page loaded new content dynamically after '%s'", action.Action),
		}
	}

	res := EvaluationResult{
		Result:      ResultNoChange,
		Observation: fmt.Sprintf("Action '%s' on '%s' produced no visible effect", action.Action, action.Target),
	}
	if e.flagNoChange {
		res.Insight = "Possible issue: no feedback after interaction (missing validation or broken behavior)"
	}
	return res
}

// versionOf returns the first two-part version segment of the URL path, or "".
func versionOf(raw string) string {
	path := raw
	if u, err := url.Parse(raw); err == nil {
		path = u.Path
	}
	for _, seg := range strings.Split(path, "/") {
		if versionSegment.MatchString(seg) {
			return seg
		}
	}
	return ""
}

// ClassifyPage tags a URL with the kind of documentation page it points at.
// Keyword tags win over the version tag.
func ClassifyPage(raw string) string {
	lower := strings.ToLower(raw)
	path := lower
	if u, err := url.Parse(lower); err == nil {
		path = u.Path
	}

	switch {
	case strings.Contains(path, "download"):
		return PageDownload
	case strings.Contains(path, "modindex"):
		return PageModuleIndex
	case strings.Contains(path, "genindex"):
		return PageGeneralIndex
	case strings.Contains(path, "tutorial"):
		return PageTutorial
	case strings.Contains(path, "library"):
		return PageLibraryReference
	case strings.Contains(path, "/index"):
		return PageGeneralIndex
	}
	if versionOf(path) != "" {
		return PageVersionDocs
	}
	return PageGeneral
}

// RenderInsight formats an evaluated action as the block printed after every step.
func RenderInsight(eval EvaluationResult, action ChosenAction) string {
	var sb strings.Builder
	sb.WriteString("\n" + insightSeparator + "\n")
	fmt.Fprintf(&sb, "ACTION: %s -> %s\n", action.Action, action.Target)
	fmt.Fprintf(&sb, "REASON: %s\n", action.Reason)
	fmt.Fprintf(&sb, "RESULT: %s\n", eval.Result)
	fmt.Fprintf(&sb, "OBSERVATION: %s\n", eval.Observation)
	if eval.Insight != "" {
		fmt.Fprintf(&sb, "INSIGHT: %s\n", eval.Insight)
	}
	sb.WriteString(insightSeparator + "\n")
	return sb.String()
}

// newItems returns the entries of after that are not in before, in after's order.
func newItems(before, after []string) []string {
	seen := make(map[string]struct{}, len(before))
	for _, b := range before {
		seen[b] = struct{}{}
	}
	var added []string
	for _, a := range after {
		if _, ok := seen[a]; !ok {
			added = append(added, a)
			seen[a] = struct{}{}
		}
	}
	return added
}
