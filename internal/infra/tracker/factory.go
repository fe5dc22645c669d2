package tracker

import (
	"fmt"

	"github.com/accessibly/ticketsync/internal/domain/integrations"
	"github.com/accessibly/ticketsync/internal/domain/tickets"
	"github.com/accessibly/ticketsync/internal/infra/tracker/azuredevops"
	"github.com/accessibly/ticketsync/internal/infra/tracker/jira"
)

// Factory builds per-request tracker clients from resolved integration
// configs, unsealing the credential on the way.
type Factory struct {
	Decrypter    integrations.CredentialDecrypter
	DashboardURL string
}

func (f *Factory) New(cfg *integrations.Config) (tickets.TrackerClient, error) {
	token, err := f.Decrypter.Decrypt(cfg.EncryptedCredential)
	if err != nil {
		return nil, fmt.Errorf("decrypting %s credential: %w", cfg.Provider, err)
	}
	switch cfg.Provider {
	case integrations.ProviderJira:
		return jira.New(cfg, token, f.DashboardURL), nil
	case integrations.ProviderAzureDevOps:
		return azuredevops.New(cfg, token, f.DashboardURL), nil
	}
	return nil, fmt.Errorf("unsupported tracker provider: %s", cfg.Provider)
}

var _ tickets.ClientFactory = (*Factory)(nil)
