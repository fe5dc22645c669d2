package tickets

import (
	"time"

	"github.com/accessibly/ticketsync/internal/domain/integrations"
	"github.com/accessibly/ticketsync/internal/domain/issues"
	"github.com/accessibly/ticketsync/internal/domain/scans"
)

// Ticket is the external tracker's representation of an issue. Ref is the
// human-facing reference: the Jira key ("ACC-42") or the work item id ("107").
type Ticket struct {
	ID  string `json:"id"`
	Ref string `json:"ref"`
	URL string `json:"url,omitempty"`
}

// Mapping links an issue to its external ticket. At most one live mapping per
// (issue, provider); historical rows may remain after a stale replacement and
// the newest row is authoritative. Rows are never mutated in place.
type Mapping struct {
	ID        string                `json:"id"`
	TenantID  string                `json:"tenant_id"`
	IssueID   issues.IssueID        `json:"issue_id"`
	Provider  integrations.Provider `json:"provider"`
	TicketID  string                `json:"ticket_id"`
	TicketRef string                `json:"ticket_ref"`
	URL       string                `json:"url"`
	CreatedAt time.Time             `json:"created_at"`
}

// Remediation is the extracted context embedded into a ticket. Possibly
// empty, never nil fields that a payload mapper must guard against.
type Remediation struct {
	OffendingElements []OffendingElement `json:"offending_elements"`
	Suggestions       []string           `json:"suggestions,omitempty"`
	Screenshots       *scans.Screenshots `json:"screenshots,omitempty"`
}

// OffendingElement is one failing element with whatever context the scan
// payload carried for it.
type OffendingElement struct {
	Selector       string `json:"selector,omitempty"`
	HTML           string `json:"html,omitempty"`
	FailureSummary string `json:"failure_summary,omitempty"`
	Screenshot     string `json:"screenshot,omitempty"`
}
