package browser

import (
	"strings"

	"github.com/xkilldash9x/scout-cli/internal/agent"
)

// maxErrors bounds the error messages one observation records.
const maxErrors = 3

// RawLink and RawInput mirror the objects ExtractStateScript returns.
type RawLink struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

type RawInput struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Placeholder string `json:"placeholder"`
}

// RawState is the unprocessed result of ExtractStateScript.
type RawState struct {
	URL     string     `json:"url"`
	Title   string     `json:"title"`
	Buttons []string   `json:"buttons"`
	Links   []RawLink  `json:"links"`
	Inputs  []RawInput `json:"inputs"`
	Errors  []string   `json:"errors"`
}

// Normalize turns a raw extraction into a PageState. Entries with empty text
// are dropped, links are capped at linkLimit and errors at three. Slices in
// the result are never nil.
func Normalize(raw RawState, linkLimit int) agent.PageState {
	state := agent.PageState{
		URL:         raw.URL,
		Title:       strings.TrimSpace(raw.Title),
		Buttons:     []string{},
		Links:       []agent.Link{},
		InputFields: []agent.InputField{},
		Errors:      []string{},
	}

	for _, b := range raw.Buttons {
		if b = collapse(b); b != "" {
			state.Buttons = append(state.Buttons, b)
		}
	}

	for _, l := range raw.Links {
		if linkLimit > 0 && len(state.Links) >= linkLimit {
			break
		}
		text := collapse(l.Text)
		if text == "" || l.Href == "" {
			continue
		}
		state.Links = append(state.Links, agent.Link{Text: text, Href: l.Href})
	}

	for _, in := range raw.Inputs {
		typ := strings.ToLower(strings.TrimSpace(in.Type))
		if typ == "" {
			typ = "text"
		}
		if typ == "hidden" {
			continue
		}
		state.InputFields = append(state.InputFields, agent.InputField{
			Type:        typ,
			Name:        strings.TrimSpace(in.Name),
			Placeholder: strings.TrimSpace(in.Placeholder),
		})
	}

	for _, e := range raw.Errors {
		if len(state.Errors) == maxErrors {
			break
		}
		if e = collapse(e); e != "" {
			state.Errors = append(state.Errors, e)
		}
	}
	return state
}

// collapse trims s and folds internal runs of whitespace into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
