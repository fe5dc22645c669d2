package prompt

import "fmt"

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are a senior web accessibility engineer. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- suggestions is an array of 2-4 short, actionable remediation steps a developer can apply directly.
- Reference WCAG techniques where relevant, but keep each suggestion to one sentence.
- If the offending HTML is not provided, suggest fixes based on the rule and description alone.

Schema (example with empty values):
{
  "suggestions": ["<string>"]
}`
}

// GetUserPrompt builds a compact user message around one finding.
func GetUserPrompt(ruleName, description, html string) string {
	msg := fmt.Sprintf("Rule: %s\nFinding: %s", ruleName, description)
	if html != "" {
		msg += fmt.Sprintf("\nOffending HTML: %s", html)
	}
	return msg + "\nRespond with the JSON per schema."
}
