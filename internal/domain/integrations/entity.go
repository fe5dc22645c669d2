package integrations

import "time"

// Provider enum for supported external trackers
type Provider string

const (
	ProviderJira        Provider = "jira"
	ProviderAzureDevOps Provider = "azure_devops"
)

// Scope of an integration record. Resolution walks user → team → organization
// and picks the nearest active config.
type Scope string

const (
	ScopeUser         Scope = "user"
	ScopeTeam         Scope = "team"
	ScopeOrganization Scope = "organization"
)

// Config is the resolved tracker configuration for a tenant. The credential
// is stored sealed; only the tracker client factory decrypts it.
type Config struct {
	ID                  string    `json:"id"`
	TenantID            string    `json:"tenant_id"`
	Provider            Provider  `json:"provider"`
	Scope               Scope     `json:"scope"`
	BaseURL             string    `json:"base_url"` // Jira site or Azure DevOps organization URL
	Email               string    `json:"email,omitempty"` // Jira basic-auth user; unused for Azure DevOps
	EncryptedCredential string    `json:"-"`
	Project             string    `json:"project"` // Jira project key or Azure DevOps project name
	TicketType          string    `json:"ticket_type"`
	AreaPath            string    `json:"area_path,omitempty"`      // Azure DevOps only
	IterationPath       string    `json:"iteration_path,omitempty"` // Azure DevOps only
	SuggestAI           bool      `json:"suggest_ai"`
	Active              bool      `json:"active"`
	CreatedAt           time.Time `json:"created_at"`
}
