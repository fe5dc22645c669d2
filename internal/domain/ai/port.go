package ai

import "context"

// Client generates remediation suggestions when the scan payload carried
// none. Best-effort: callers log and continue on any error.
type Client interface {
	Suggest(ctx context.Context, ruleName, description, html string) ([]string, error)
}
