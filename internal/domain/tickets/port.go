package tickets

import (
	"context"

	"github.com/accessibly/ticketsync/internal/domain/integrations"
	"github.com/accessibly/ticketsync/internal/domain/issues"
)

// MappingStore port. The single source of truth for "does this issue already
// have a ticket". Get returns (nil, nil) when no mapping exists.
type MappingStore interface {
	Get(ctx context.Context, tenant string, issueID issues.IssueID, provider integrations.Provider) (*Mapping, error)
	Insert(ctx context.Context, m *Mapping) error
	Delete(ctx context.Context, tenant string, issueID issues.IssueID, provider integrations.Provider) error
}

// Payload is a provider-specific, marshal-ready ticket creation body: a field
// set for Jira, a JSON-patch operation list for Azure DevOps.
type Payload any

// TrackerClient port. One implementation per provider; all external network
// I/O lives behind Create and Fetch. BuildPayload and BuildURL are pure.
type TrackerClient interface {
	Provider() integrations.Provider
	BuildPayload(issue *issues.Issue, rem Remediation) Payload
	Create(ctx context.Context, p Payload) (*Ticket, error)
	Fetch(ctx context.Context, ref string) (*Ticket, error)
	BuildURL(ref string) string
}

// ClientFactory builds a TrackerClient from a resolved integration config,
// decrypting its credential on the way.
type ClientFactory interface {
	New(cfg *integrations.Config) (TrackerClient, error)
}
