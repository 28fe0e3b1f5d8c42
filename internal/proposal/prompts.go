package proposal

import (
	"fmt"
	"strings"

	"github.com/xkilldash9x/scout-cli/internal/agent"
)

const explorationSystemPrompt = "You are a helpful assistant that suggests web exploration actions for learning."

const formSystemPrompt = "You generate realistic test data for forms. Respond only with valid JSON."

// buildExplorationPrompt renders the user prompt for action proposals.
func buildExplorationPrompt(summary string, recent []agent.ActionRecord) string {
	history := "No actions yet"
	if len(recent) > 0 {
		lines := make([]string, 0, len(recent))
		for _, rec := range recent {
			lines = append(lines, fmt.Sprintf("- %s on '%s'", rec.Action, rec.Target))
		}
		history = strings.Join(lines, "\n")
	}

	return fmt.Sprintf(`You are a web exploration agent browsing Python documentation to learn about different topics.

Current Page State:
%s

Actions Already Taken:
%s

Your goal: Explore the Python documentation by clicking on interesting links or buttons.

RULES:
1. Click on links that lead to interesting documentation topics
2. Explore different Python versions, tutorials, or library docs
3. Navigate through the documentation structure
4. Avoid repeating the same action

Available actions:
- click_link:<exact_link_text> (choose from visible links above)
- click_button:<exact_button_text> (choose from visible buttons above)

Suggest 2-3 diverse exploration actions as a simple list:
- click_link:Tutorial
- click_link:Library Reference`, summary, history)
}

// buildFormPrompt renders the user prompt for form value generation.
func buildFormPrompt(fields []agent.InputField) string {
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		// Keyed like the fill script looks fields up: name, then placeholder.
		name, typ, placeholder := f.Label(), f.Type, f.Placeholder
		if name == "" {
			name = "unknown"
		}
		if typ == "" {
			typ = "text"
		}
		if placeholder == "" {
			placeholder = "N/A"
		}
		lines = append(lines, fmt.Sprintf("- %s (type: %s, placeholder: %s)", name, typ, placeholder))
	}

	return fmt.Sprintf(`You are filling out a test registration form. Generate realistic dummy data for these fields:

%s

Requirements:
- Use realistic but obviously fake test data
- For names: Use "Test" prefix (e.g., "Test User")
- For emails: Use format test[timestamp]@example.com
- For passwords: Use "TestPass123!"
- For dates: Use reasonable values (e.g., birthdate: 1990-01-01)
- For dropdowns/selects: Suggest a reasonable value
- For checkboxes: Suggest "true" or "false"

Respond ONLY with a JSON object mapping field names to values. Example:
{
  "first_name": "Test",
  "last_name": "User",
  "password": "TestPass123!",
  "day": "1",
  "month": "1",
  "year": "1990"
}

Do not include any explanation, only the JSON object.`, strings.Join(lines, "\n"))
}
