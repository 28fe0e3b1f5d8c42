// internal/agent/filter.go
package agent

// FilterCandidates drops candidates that were already executed or that cannot
// be performed on the current page. The relative order of the survivors is
// kept. The result depends only on the arguments.
func FilterCandidates(candidates []Candidate, history []ActionRecord, page PageState) []Candidate {
	executed := make(map[string]struct{}, len(history))
	for _, rec := range history {
		executed[rec.Key()] = struct{}{}
	}

	filtered := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, seen := executed[FormatCandidate(c)]; seen {
			continue
		}
		switch v := c.(type) {
		case ClickButton:
			if !page.HasButton(v.Label) {
				continue
			}
		case ClickLink:
			if !page.HasLink(v.Text) {
				continue
			}
		}
		filtered = append(filtered, c)
	}
	return filtered
}
