// internal/agent/selector.go
package agent

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xkilldash9x/scout-cli/internal/config"
)

const (
	reasonVersionLink = "Version link selected to compare documentation variants across Python versions"
	reasonFallback    = "Default action from proposals"
	fallbackTarget    = "unknown"
)

// Selector picks exactly one action out of a filtered candidate list.
type Selector struct {
	versionPattern *regexp.Regexp
	infoKeywords   []string
}

// NewSelector compiles the version pattern and lowercases the keyword list.
func NewSelector(cfg config.AgentConfig) (*Selector, error) {
	re, err := regexp.Compile(cfg.VersionPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to compile version pattern: %w", err)
	}
	keywords := make([]string, 0, len(cfg.InfoKeywords))
	for _, k := range cfg.InfoKeywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keywords = append(keywords, k)
		}
	}
	return &Selector{versionPattern: re, infoKeywords: keywords}, nil
}

// Select applies the heuristics in priority order and returns the first hit.
// The second return value is false when there is nothing worth doing.
func (s *Selector) Select(candidates []Candidate) (ChosenAction, bool) {
	if len(candidates) == 0 {
		return ChosenAction{}, false
	}

	// Version variants first.
	for _, c := range candidates {
		if isClick(c) && s.versionPattern.MatchString(c.Target()) {
			return ChosenAction{Action: c.Kind(), Target: c.Target(), Reason: reasonVersionLink}, true
		}
	}

	for _, c := range candidates {
		if link, ok := c.(ClickLink); ok && s.isInformationDense(link.Text) {
			return ChosenAction{
				Action: KindClickLink,
				Target: link.Text,
				Reason: fmt.Sprintf("Navigation to '%s' increases information density", link.Text),
			}, true
		}
	}

	for _, c := range candidates {
		if link, ok := c.(ClickLink); ok {
			return ChosenAction{
				Action: KindClickLink,
				Target: link.Text,
				Reason: fmt.Sprintf("Link '%s' selected for documentation exploration", link.Text),
			}, true
		}
	}

	for _, c := range candidates {
		if btn, ok := c.(ClickButton); ok {
			return ChosenAction{
				Action: KindClickButton,
				Target: btn.Label,
				Reason: fmt.Sprintf("Button '%s' selected as available action", btn.Label),
			}, true
		}
	}

	// A leading observe_page marker means the proposer considers the page done.
	if _, observe := candidates[0].(ObservePage); observe {
		return ChosenAction{}, false
	}
	return ChosenAction{Action: candidates[0].Kind(), Target: fallbackTarget, Reason: reasonFallback}, true
}

func (s *Selector) isInformationDense(text string) bool {
	lower := strings.ToLower(text)
	for _, k := range s.infoKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func isClick(c Candidate) bool {
	switch c.(type) {
	case ClickLink, ClickButton:
		return true
	}
	return false
}
