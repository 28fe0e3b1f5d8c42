// internal/agent/pagestate.go
package agent

import (
	"fmt"
	"strings"
)

// Link is a visible anchor on the page.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// InputField describes a visible input or textarea.
type InputField struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Placeholder string `json:"placeholder"`
}

// Label returns the name of the field, or its placeholder when it has no name.
func (f InputField) Label() string {
	if f.Name != "" {
		return f.Name
	}
	return f.Placeholder
}

// PageState is a snapshot of what the agent can see on the current page.
// A driver builds a fresh value for every observation and nothing mutates it
// afterwards.
type PageState struct {
	URL         string       `json:"url"`
	Title       string       `json:"title"`
	Buttons     []string     `json:"buttons"`
	Links       []Link       `json:"links"`
	InputFields []InputField `json:"input_fields"`
	Errors      []string     `json:"errors"`
}

// LinkTexts returns the visible text of every link, in page order.
func (p PageState) LinkTexts() []string {
	texts := make([]string, 0, len(p.Links))
	for _, l := range p.Links {
		texts = append(texts, l.Text)
	}
	return texts
}

// HasButton reports whether label is exactly one of the visible buttons.
func (p PageState) HasButton(label string) bool {
	for _, b := range p.Buttons {
		if b == label {
			return true
		}
	}
	return false
}

// HasLink reports whether text is exactly one of the visible link texts.
func (p PageState) HasLink(text string) bool {
	for _, l := range p.Links {
		if l.Text == text {
			return true
		}
	}
	return false
}

// Summarize renders the page as the short text block handed to proposers.
// At most limit buttons, links and input fields are listed.
func (p PageState) Summarize(limit int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "URL: %s\n", p.URL)
	fmt.Fprintf(&sb, "Title: %s\n\n", p.Title)

	if len(p.Buttons) > 0 {
		fmt.Fprintf(&sb, "Visible Buttons: %s\n", strings.Join(head(p.Buttons, limit), ", "))
	}
	if len(p.Links) > 0 {
		fmt.Fprintf(&sb, "Visible Links: %s\n", strings.Join(head(p.LinkTexts(), limit), ", "))
	}
	if len(p.InputFields) > 0 {
		fields := make([]string, 0, limit)
		for _, f := range head(p.InputFields, limit) {
			fields = append(fields, fmt.Sprintf("%s(%s)", f.Type, f.Label()))
		}
		fmt.Fprintf(&sb, "Input Fields: %s\n", strings.Join(fields, ", "))
	}
	if len(p.Errors) > 0 {
		fmt.Fprintf(&sb, "Errors Detected: %s\n", strings.Join(p.Errors, ", "))
	}
	return sb.String()
}

func head[T any](items []T, n int) []T {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}
