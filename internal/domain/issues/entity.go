package issues

// IssueID tipe untuk Issue
type IssueID string

// Impact severity enum (axe-core vocabulary)
type Impact string

const (
	ImpactMinor    Impact = "minor"
	ImpactModerate Impact = "moderate"
	ImpactSerious  Impact = "serious"
	ImpactCritical Impact = "critical"
)

// SyncState is the per-provider slice of an issue owned by the sync engine.
// Everything else on Issue is read-only here.
type SyncState struct {
	Synced    bool   `json:"synced"`
	TicketRef string `json:"ticket_ref,omitempty"`
	SyncError string `json:"sync_error,omitempty"`
}

// Aggregate Root: Issue
type Issue struct {
	ID              IssueID  `json:"id"`
	TenantID        string   `json:"tenant_id"`
	RuleID          string   `json:"rule_id"`
	RuleName        string   `json:"rule_name"`
	Description     string   `json:"description"`
	Impact          Impact   `json:"impact"`
	WCAGLevel       string   `json:"wcag_level,omitempty"`
	Priority        string   `json:"priority,omitempty"`
	Occurrences     int      `json:"occurrences"`
	Pages           []string `json:"pages,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	FirstSeenScanID string   `json:"first_seen_scan_id,omitempty"`

	Jira        SyncState `json:"jira"`
	AzureDevOps SyncState `json:"azure_devops"`
}
