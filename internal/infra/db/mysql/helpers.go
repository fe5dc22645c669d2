package mysql

import (
	"encoding/json"
	"fmt"

	"github.com/accessibly/ticketsync/internal/domain/integrations"
)

// syncColumns returns the literal column names for a provider's sync flags.
// Whitelist switch; provider strings never reach the SQL text directly.
func syncColumns(provider integrations.Provider) (synced, ref, errCol string, err error) {
	switch provider {
	case integrations.ProviderJira:
		return "jira_synced", "jira_ticket_ref", "jira_sync_error", nil
	case integrations.ProviderAzureDevOps:
		return "azure_devops_synced", "azure_devops_ticket_ref", "azure_devops_sync_error", nil
	}
	return "", "", "", fmt.Errorf("unknown provider: %s", provider)
}

// pagesFromJSON decodes the pages JSON column; empty/invalid degrades to nil.
func pagesFromJSON(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var pages []string
	if err := json.Unmarshal(raw, &pages); err != nil {
		return nil
	}
	return pages
}
